package storage

import (
	"fmt"

	"docmanager/internal/config"
)

// Open builds the blob store selected by cfg.Blob.Driver.
func Open(cfg *config.AppConfig) (BlobStore, error) {
	switch cfg.Blob.Driver {
	case "minio":
		return NewMinIO(cfg.MinIO, cfg.Blob.Container)
	case "azure":
		return NewAzure(cfg.Azure, cfg.Blob.Container)
	case "memory":
		return NewMemory(cfg.Blob.Container), nil
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Blob.Driver)
	}
}
