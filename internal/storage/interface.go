package storage

import (
	"context"
	"io"
	"time"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks phonics-coach/internal/storage Storage

// Storage keeps archived attempt recordings.
type Storage interface {
	// PutObject uploads body under key.
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// GetPresignedURL returns a time-limited download URL for key.
	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// DeleteObject removes key. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, key string) error
}

var _ Storage = (*S3Client)(nil)
