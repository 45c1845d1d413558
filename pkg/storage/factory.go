package storage

import (
	"context"
	"fmt"

	"github.com/ghuser/catalog/pkg/config"
)

// Open selects an ImageStore implementation from BLOB_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch Driver(cfg.BlobDriver) {
	case DriverFS, "":
		return NewFSStore(cfg.UploadDir)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		})
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
