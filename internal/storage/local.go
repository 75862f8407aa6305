package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps receipt images on the local filesystem. Development mode
// only; the server exposes the base directory under /files/.
type LocalStore struct {
	baseDir   string
	urlPrefix string
}

// NewLocalStore creates a filesystem-backed store rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, urlPrefix: "/files/"}, nil
}

// BaseDir returns the directory served under /files/.
func (l *LocalStore) BaseDir() string {
	return l.baseDir
}

// Upload writes data to baseDir/key, overwriting any existing file.
func (l *LocalStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Resolve maps a key to its /files/ URL. Local files never expire, so the
// expiry argument is ignored.
func (l *LocalStore) Resolve(pathOrURL string, _ time.Duration) string {
	raw := strings.TrimSpace(pathOrURL)
	if raw == "" {
		return ""
	}
	if isAbsoluteURL(raw) {
		return raw
	}
	return l.urlPrefix + strings.TrimPrefix(raw, "/")
}
