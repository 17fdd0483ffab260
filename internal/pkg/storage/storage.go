package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Storage object storage used for generated artifacts such as synthesized speech.
type Storage interface {
	// Upload stores data under key and returns its URL.
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download opens the object. Missing objects return ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object; missing objects are not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	GetStorageType() string
}

// StorageType backend name.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeOSS   StorageType = "oss"
)
