package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestS3Store(t *testing.T) *S3Store {
	t.Helper()
	store, err := NewS3Store(&S3Config{
		Endpoint:        "https://storage.example.com",
		AccessKeyID:     "test-access-key",
		AccessKeySecret: "test-secret",
		Bucket:          "receipts",
		Region:          "eu-west-1",
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestNewS3StoreRequiresConfig(t *testing.T) {
	_, err := NewS3Store(&S3Config{Bucket: "receipts"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewS3Store(&S3Config{
		Endpoint:        "https://storage.example.com",
		AccessKeyID:     "k",
		AccessKeySecret: "s",
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestS3ResolvePassesThroughAbsoluteURLs(t *testing.T) {
	store := newTestS3Store(t)

	u := "https://cdn.example.com/doc-1/0.jpg"
	assert.Equal(t, u, store.Resolve(u, time.Hour), "absolute URLs are never re-signed")
}

func TestS3ResolveEmptyInput(t *testing.T) {
	store := newTestS3Store(t)

	assert.Equal(t, "", store.Resolve("", time.Hour))
	assert.Equal(t, "", store.Resolve("  \t ", time.Hour))
}

func TestS3ResolveSignsKeys(t *testing.T) {
	store := newTestS3Store(t)

	// Presigning is a local computation, no network involved.
	url := store.Resolve("doc-1/0.jpg", 24*time.Hour)

	require.NotEmpty(t, url)
	assert.Contains(t, url, "receipts/doc-1/0.jpg")
	assert.Contains(t, url, "X-Amz-Expires=86400")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestS3ResolveDefaultExpiry(t *testing.T) {
	store := newTestS3Store(t)

	url := store.Resolve("doc-1/0.jpg", 0)

	require.NotEmpty(t, url)
	assert.Contains(t, url, "X-Amz-Expires=86400", "zero expiry falls back to the 24h default")
}

func TestS3ResolveStripsLeadingSlash(t *testing.T) {
	store := newTestS3Store(t)

	url := store.Resolve("/doc-1/0.jpg", time.Hour)

	require.NotEmpty(t, url)
	assert.Contains(t, url, "receipts/doc-1/0.jpg")
	assert.False(t, strings.Contains(url, "receipts//doc-1"))
}

func TestS3ResolveMintsFreshURLs(t *testing.T) {
	store := newTestS3Store(t)

	a := store.Resolve("doc-1/0.jpg", time.Hour)
	b := store.Resolve("doc-1/0.jpg", 2*time.Hour)

	assert.NotEqual(t, a, b, "every resolution signs anew")
}
