package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested blob does not exist
var ErrNotFound = errors.New("blob not found")

// Store holds the binary payloads behind material and thumbnail keys.
// Records reference blobs by key; the store itself knows nothing about
// courses or lessons.
type Store interface {
	// Save writes the blob under the given key, replacing any existing
	// content
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns a reader over the blob's content. The caller closes
	// it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing blob returns
	// ErrNotFound; callers decide whether that matters.
	Delete(ctx context.Context, key string) error
}
