package tool

import "testing"

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"jpeg jfif", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "image/jpeg"},
		{"jpeg exif", []byte{0xFF, 0xD8, 0xFF, 0xE1}, "image/jpeg"},
		{"jpeg raw", []byte{0xFF, 0xD8, 0xFF, 0xDB}, "image/jpeg"},
		{"jpeg adobe", []byte{0xFF, 0xD8, 0xFF, 0xEE}, "image/jpeg"},
		{"jpeg unknown marker", []byte{0xFF, 0xD8, 0xFF, 0xC0}, FileTypeUnknown},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"svg xml prolog", []byte(`<?xml version="1.0"?><svg/>`), "image/svg+xml"},
		{"svg tag", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), "image/svg+xml"},
		{"bmp", []byte{0x42, 0x4D, 0x36, 0x00}, "image/bmp"},
		{"bmp two bytes", []byte{0x42, 0x4D}, "image/bmp"},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00}, "image/tiff"},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A}, "image/tiff"},
		{"ico", []byte{0x00, 0x00, 0x01, 0x00, 0x01}, "image/x-icon"},
		{"json", []byte(`{"name":"x"}`), FileTypeUnknown},
		{"short", []byte{0x89, 0x50}, FileTypeUnknown},
		{"empty", nil, FileTypeUnknown},
	}
	for _, c := range cases {
		if got := DetectFileType(c.data); got != c.want {
			t.Errorf("%s: DetectFileType = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestImageTypeChecks(t *testing.T) {
	if !IsImageMimeType("image/png") || !IsImageMimeType(" Image/JPEG") {
		t.Error("expected image types to pass")
	}
	if IsImageMimeType("application/pdf") {
		t.Error("pdf is not an image")
	}
	supported := []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	if !IsSupportedImageType("image/webp", supported) {
		t.Error("webp should be supported")
	}
	if IsSupportedImageType("image/bmp", supported) {
		t.Error("bmp should not be supported")
	}
}
