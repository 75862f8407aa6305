package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSignedURLTTL is how long a resolved URL stays valid unless the
// caller overrides it.
const DefaultSignedURLTTL = 24 * time.Hour

// ErrBucketNotFound signals that the configured bucket does not exist, so the
// caller can surface a specific message instead of an opaque upload failure.
var ErrBucketNotFound = errors.New("storage bucket not found")

// Store abstracts the object storage holding receipt images.
type Store interface {
	// Upload stores data under key with overwrite-on-conflict semantics.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Resolve turns a stored key or an already-absolute URL into a
	// displayable URL. It returns the input unchanged for absolute http(s)
	// URLs, "" for empty input, and "" (logged, never an error) when
	// signing fails. Callers must treat "" as "not displayable yet".
	Resolve(pathOrURL string, expires time.Duration) string
}

// ReceiptKey computes the deterministic object key for the index-th image of
// a document. The key layout is the display order contract: image_urls[i]
// lives at "{documentID}/{i}.jpg".
func ReceiptKey(documentID string, index int) string {
	return fmt.Sprintf("%s/%d.jpg", documentID, index)
}

// isAbsoluteURL reports whether s is already a displayable http(s) URL.
func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
