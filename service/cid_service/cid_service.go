package cid_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"eternal-mint/conf"
	"eternal-mint/storage"
	"eternal-mint/tool"

	"github.com/tidwall/gjson"
)

var (
	ErrCIDRequired    = errors.New("cid is required")
	ErrInvalidNetwork = errors.New("invalid storage network")
	ErrFetchFailed    = errors.New("failed to fetch content")
)

const (
	ContentTypeJSON  = "application/json"
	ContentTypeOctet = "application/octet-stream"
)

// Downloader fetches CID bytes from a storage network
type Downloader interface {
	Download(ctx context.Context, network, cid string) ([]byte, error)
}

// Content bytes resolved for a CID
type Content struct {
	Data        []byte
	ContentType string
	Source      string // "cache" or "network"
}

// IsJSON reports whether the body is a JSON document
func (c *Content) IsJSON() bool {
	return c.ContentType == ContentTypeJSON
}

// CidService resolves CIDs through the blob cache and Auto Drive
type CidService struct {
	cache storage.Storage
	drive Downloader
}

// NewCidService create CID service; cache may be nil
func NewCidService(cache storage.Storage, drive Downloader) *CidService {
	return &CidService{cache: cache, drive: drive}
}

// Validate check network and CID before any lookup
func Validate(network, cid string) error {
	if strings.TrimSpace(cid) == "" {
		return ErrCIDRequired
	}
	if !conf.IsStorageNetwork(network) {
		return ErrInvalidNetwork
	}
	if err := storage.ValidateCID(cid); err != nil {
		return err
	}
	return nil
}

// Fetch resolve cid on network and classify its bytes
func (s *CidService) Fetch(ctx context.Context, network, cid string) (*Content, error) {
	if err := Validate(network, cid); err != nil {
		return nil, err
	}

	data, source, err := s.load(ctx, network, cid)
	if err != nil {
		return nil, err
	}
	return Classify(data, source), nil
}

func (s *CidService) load(ctx context.Context, network, cid string) ([]byte, string, error) {
	key := storage.CidKey(network, cid)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			return data, "cache", nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("⚠️  [cid] cache read failed for %s: %v", key, err)
		}
	}

	data, err := s.drive.Download(ctx, network, cid)
	if err != nil {
		log.Printf("[cid] download failed: cid=%s network=%s: %v", cid, network, err)
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	// CIDs are content addressed so cached bytes never go stale
	if s.cache != nil {
		if err := s.cache.Save(ctx, key, data, Classify(data, "").ContentType); err != nil {
			log.Printf("⚠️  [cid] cache write failed for %s: %v", key, err)
		}
	}
	return data, "network", nil
}

// Classify JSON first, then magic bytes; SVG is returned as UTF-8 text
func Classify(data []byte, source string) *Content {
	if gjson.ValidBytes(data) {
		return &Content{Data: data, ContentType: ContentTypeJSON, Source: source}
	}

	fileType := tool.DetectFileType(data)
	switch {
	case tool.IsSVG(fileType):
		text := strings.ToValidUTF8(string(data), "\uFFFD")
		return &Content{Data: []byte(text), ContentType: fileType, Source: source}
	case fileType == tool.FileTypeUnknown:
		return &Content{Data: data, ContentType: ContentTypeOctet, Source: source}
	default:
		return &Content{Data: data, ContentType: fileType, Source: source}
	}
}
