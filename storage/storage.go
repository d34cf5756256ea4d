// Package storage abstracts the object store holding album cover images.
// The production backend is any S3-compatible API, typically a local
// MinIO instance pointed at through a base endpoint override.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore stores and retrieves binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error

	// PresignGet returns a URL granting temporary read access to the
	// object. The URL stays valid for the given duration.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
