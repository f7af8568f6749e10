package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore keeps opaque documents under string keys.
type BlobStore interface {
	// Get returns ErrObjectNotFound (possibly wrapped) when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	Put(ctx context.Context, key string, contentType string, data []byte) error

	// Copy duplicates src under dst; used for backups before destructive writes.
	Copy(ctx context.Context, src, dst string) error
}
