package storage

import (
	"context"
	"errors"

	"eternal-mint/conf"
)

// Storage blob store used as the CID cache
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error) // ErrNotFound when absent
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
}

var (
	ErrNotFound = errors.New("file not found")
	ErrInvalid  = errors.New("invalid storage configuration")
)

// NewStorage create storage instance by configuration
func NewStorage(cfg conf.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "oss":
		return NewOSSStorage(cfg.OSS.Endpoint, cfg.OSS.AccessKey, cfg.OSS.SecretKey, cfg.OSS.Bucket)
	case "s3":
		return NewS3Storage(cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket)
	case "minio":
		return NewMinIOStorage(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket)
	default:
		return NewLocalStorage(cfg.Local.BasePath)
	}
}

// CidKey cache key for a CID on a storage network
func CidKey(network, cid string) string {
	return "cid/" + network + "/" + cid
}
