package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/archive-service/internal/storage"
)

type resolveStore struct {
	resolved   string
	gotPath    string
	gotExpires time.Duration
}

func (s *resolveStore) Upload(context.Context, string, []byte, string) error {
	return nil
}

func (s *resolveStore) Resolve(pathOrURL string, expires time.Duration) string {
	s.gotPath = pathOrURL
	s.gotExpires = expires
	return s.resolved
}

func getResolveURL(t *testing.T, store storage.Store, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/images/url", NewImageHandler(store, 0).ResolveURL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestResolveURLSigned(t *testing.T) {
	store := &resolveStore{resolved: "https://storage.example.com/signed?X-Amz-Signature=abc"}

	rec := getResolveURL(t, store, "/v1/images/url?path=doc-1/0.jpg")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://storage.example.com/signed?X-Amz-Signature=abc"}`, rec.Body.String())
	assert.Equal(t, "doc-1/0.jpg", store.gotPath)
	assert.Equal(t, storage.DefaultSignedURLTTL, store.gotExpires, "expiry defaults to 24h")
}

func TestResolveURLCustomExpiry(t *testing.T) {
	store := &resolveStore{resolved: "https://storage.example.com/signed"}

	rec := getResolveURL(t, store, "/v1/images/url?path=doc-1/0.jpg&expires=3600")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Hour, store.gotExpires)
}

func TestResolveURLInvalidExpiryFallsBack(t *testing.T) {
	store := &resolveStore{resolved: "https://storage.example.com/signed"}

	getResolveURL(t, store, "/v1/images/url?path=doc-1/0.jpg&expires=-5")

	assert.Equal(t, storage.DefaultSignedURLTTL, store.gotExpires)
}

func TestResolveURLUnresolvableYieldsNull(t *testing.T) {
	store := &resolveStore{resolved: ""}

	rec := getResolveURL(t, store, "/v1/images/url?path=")

	require.Equal(t, http.StatusOK, rec.Code, "resolution failures never surface as errors")
	assert.JSONEq(t, `{"url":null}`, rec.Body.String())
}
