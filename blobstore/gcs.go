package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCS is a Store backed by a Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCS creates a GCS-backed store over the given bucket. Credentials
// come from the environment (application default credentials or
// STORAGE_EMULATOR_HOST).
func NewGCS(ctx context.Context, bucket string, logger *zap.Logger) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Info("blob store initialized", zap.String("bucket", bucket))

	return &GCS{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Save writes the blob under the given key
func (s *GCS) Save(ctx context.Context, key string, r io.Reader) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize blob %s: %w", key, err)
	}

	s.logger.Debug("blob saved", zap.String("key", key))
	return nil
}

// Open returns a reader over the blob's content
func (s *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return r, nil
}

// Delete removes the blob
func (s *GCS) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}

	s.logger.Debug("blob deleted", zap.String("key", key))
	return nil
}

// Close releases the underlying storage client
func (s *GCS) Close() error {
	return s.client.Close()
}
