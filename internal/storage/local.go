// ===============================
// internal/storage/local.go - Local Disk Storage
// ===============================

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps assets on disk under a root directory. The router serves
// the root at /uploads, so URLs are relative paths the client resolves
// against the server's base URL.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (l *LocalStore) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	// O_EXCL enforces write-once: an existing key is never overwritten.
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("asset %s already exists", key)
		}
		return fmt.Errorf("failed to create asset %s: %w", key, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write asset %s: %w", key, err)
	}

	return f.Close()
}

func (l *LocalStore) URL(key string) string {
	return "/uploads/" + strings.TrimPrefix(key, "/")
}

func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	target, err := l.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Root returns the directory assets live under, for static file serving.
func (l *LocalStore) Root() string {
	return l.root
}

// Path maps a recorded /uploads URL back to the file holding the asset, or
// an empty string when the URL is not a local asset reference.
func (l *LocalStore) Path(audioURL string) string {
	rel, ok := strings.CutPrefix(audioURL, "/uploads/")
	if !ok {
		return ""
	}
	target, err := l.resolve(rel)
	if err != nil {
		return ""
	}
	return target
}

func (l *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid asset key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}
