// Package storage holds uploaded media. The core only keeps the returned
// URL and key; it never looks at the bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"omegavideos/internal/config"
	"omegavideos/internal/model"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Store puts and removes media objects.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType, cacheControl string) (*model.UploadResult, error)
	// Delete is a no-op for an empty key or a missing object.
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverLocal:
		return NewLocalStore(cfg.LocalStorageRoot, cfg.LocalStoragePublicURL)
	case config.StorageDriverR2:
		return NewR2Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
