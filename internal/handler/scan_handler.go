package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/service"
	"github.com/papervault/archive-service/internal/storage"
)

// ScanHandler handles the scan-to-record pipeline endpoint.
type ScanHandler struct {
	scanService service.ScanService
	logger      *zap.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanService service.ScanService, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
		logger:      logger,
	}
}

// ScanDocument handles the POST /documents/scan endpoint
// @Summary Scan receipt images into a new document
// @Description Uploads the images, OCRs the first one, extracts structured fields and stores the document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Receipt images, in display order"
// @Success 201 {object} model.DocumentResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /v1/documents/scan [post]
func (h *ScanHandler) ScanDocument(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("images", "multipart form data is required"))
		return
	}

	fileHeaders := form.File["images"]
	images := make([][]byte, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondBadRequest(c, ErrFileUpload, newErrorDetail("images", err.Error()))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.logger.Error("failed to read uploaded file", zap.String("filename", fh.Filename), zap.Error(err))
			respondInternalServerError(c, ErrFileProcessing)
			return
		}
		images = append(images, data)
	}

	doc, err := h.scanService.Scan(c.Request.Context(), images, func(step service.Step) {
		h.logger.Debug("scan progress", zap.String("step", string(step)))
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoImages):
			respondBadRequest(c, "At least one image is required", newErrorDetail("images", "no image files provided"))
		case errors.Is(err, storage.ErrBucketNotFound):
			h.logger.Error("scan failed: bucket missing", zap.Error(err))
			respondInternalServerError(c, ErrBucketMissing)
		default:
			h.logger.Error("scan failed", zap.Error(err))
			respondInternalServerError(c, ErrFileProcessing)
		}
		return
	}

	respondCreated(c, formatDocumentResponse(doc))
}
