package storage

import (
	"context"
	"fmt"

	"github.com/faxbot/faxbot/config"
)

// New builds the configured Provider: local filesystem, a custom
// S3-compatible endpoint via minio-go, or real AWS S3 via
// aws-sdk-go-v2 when no endpoint override is set.
func New(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch cfg.Backend {
	case "local", "":
		root := cfg.LocalRoot
		if root == "" {
			root = "./data/storage"
		}
		return NewLocalProvider(root)
	case "s3":
		if cfg.Endpoint != "" {
			return NewMinIOProvider(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.KMSKeyID, cfg.UseSSL)
		}
		return NewAWSProvider(ctx, cfg.Region, cfg.Bucket, cfg.KMSKeyID)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
