package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/papervault/archive-service/internal/model"
	"github.com/papervault/archive-service/internal/storage"
)

// ImageHandler resolves stored image keys to displayable URLs.
type ImageHandler struct {
	store      storage.Store
	defaultTTL time.Duration
}

// NewImageHandler creates a new image handler. defaultTTL applies when the
// request carries no usable expires parameter.
func NewImageHandler(store storage.Store, defaultTTL time.Duration) *ImageHandler {
	if defaultTTL <= 0 {
		defaultTTL = storage.DefaultSignedURLTTL
	}
	return &ImageHandler{store: store, defaultTTL: defaultTTL}
}

// ResolveURL handles the GET /images/url endpoint. It always answers 200:
// an unresolvable path yields {"url": null} and the client renders a
// placeholder.
// @Summary Resolve a stored image key to a displayable URL
// @Tags images
// @Produce json
// @Param path query string false "Storage key or absolute URL"
// @Param expires query int false "Validity in seconds (default 86400)"
// @Success 200 {object} model.ResolveURLResponse
// @Router /v1/images/url [get]
func (h *ImageHandler) ResolveURL(c *gin.Context) {
	path := c.Query("path")

	expires := h.defaultTTL
	if raw := c.Query("expires"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			expires = time.Duration(secs) * time.Second
		}
	}

	url := h.store.Resolve(path, expires)
	if url == "" {
		respondOK(c, model.ResolveURLResponse{URL: nil})
		return
	}
	respondOK(c, model.ResolveURLResponse{URL: &url})
}
