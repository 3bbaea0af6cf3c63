package tool

import (
	"bytes"
	"strings"
)

const FileTypeUnknown = "unknown"

type magicSignature struct {
	prefix   []byte
	mimeType string
}

// Checked in order; the first matching prefix wins.
var magicSignatures = []magicSignature{
	{[]byte{0x89, 0x50, 0x4E, 0x47}, "image/png"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xE1}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xE2}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xE3}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xE8}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xDB}, "image/jpeg"},
	{[]byte{0xFF, 0xD8, 0xFF, 0xEE}, "image/jpeg"},
	{[]byte{0x47, 0x49, 0x46, 0x38}, "image/gif"},
	{[]byte{0x3C, 0x3F, 0x78, 0x6D}, "image/svg+xml"}, // "<?xm"
	{[]byte{0x3C, 0x73, 0x76, 0x67}, "image/svg+xml"}, // "<svg"
	{[]byte{0x42, 0x4D}, "image/bmp"},
	{[]byte{0x49, 0x49, 0x2A, 0x00}, "image/tiff"},
	{[]byte{0x4D, 0x4D, 0x00, 0x2A}, "image/tiff"},
	{[]byte{0x00, 0x00, 0x01, 0x00}, "image/x-icon"},
}

// DetectFileType classifies data by its leading magic bytes.
// Only the first four bytes are inspected. Returns FileTypeUnknown when nothing matches.
func DetectFileType(data []byte) string {
	head := data
	if len(head) > 4 {
		head = head[:4]
	}
	for _, sig := range magicSignatures {
		if bytes.HasPrefix(head, sig.prefix) {
			return sig.mimeType
		}
	}
	return FileTypeUnknown
}

// IsSVG reports whether the detected type is SVG
func IsSVG(mimeType string) bool {
	return mimeType == "image/svg+xml"
}

// IsImageMimeType checks the declared type of an upload
func IsImageMimeType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// IsSupportedImageType checks mimeType against an allow-list, case-insensitively
func IsSupportedImageType(mimeType string, supported []string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, s := range supported {
		if strings.ToLower(s) == mimeType {
			return true
		}
	}
	return false
}
