// ===============================
// internal/storage/storage.go - Write-Once Asset Store
// ===============================

package storage

import (
	"context"
	"io"
)

// Store persists uploaded audio assets. Assets are write-once: Save fails on a
// key that already exists, and nothing ever rewrites a stored object.
type Store interface {
	// Save writes the asset under key. The key must not already exist.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error
	// URL returns the address recorded on the episode for this key.
	URL(key string) string
	// Exists reports whether an asset is already stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}
