// Package storage archives generated files in an object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/techmaa/portal/config"
)

// ObjectStorage is implemented by each object store client.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	// Put uploads an object and returns its location, such as
	// s3://bucket/key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Bucket() string
}

// Open builds the client named by cfg.ExportStorage and makes sure its bucket
// exists. It returns (nil, nil) when archiving is disabled.
func Open(ctx context.Context, cfg config.Config) (ObjectStorage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.ExportStorage)) {
	case "":
		return nil, nil
	case "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown export storage %q", cfg.ExportStorage)
	}
	if err != nil {
		return nil, err
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return backend, nil
}
