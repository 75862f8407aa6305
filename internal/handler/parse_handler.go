package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/extract"
	"github.com/papervault/archive-service/internal/model"
)

// ParseHandler exposes the semantic extractor as a standalone endpoint with
// the same contract as the original serverless proxy: 400 bad input, 500
// missing upstream credential, 502 upstream failure or malformed reply.
type ParseHandler struct {
	parser extract.ReceiptParser
	logger *zap.Logger
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(parser extract.ReceiptParser, logger *zap.Logger) *ParseHandler {
	return &ParseHandler{
		parser: parser,
		logger: logger,
	}
}

// ParseReceiptText handles the POST /parse endpoint
// @Summary Parse raw OCR text into structured receipt data
// @Tags parse
// @Accept json
// @Produce json
// @Param request body model.ParseRequest true "Raw OCR text"
// @Success 200 {object} domain.ParsedReceipt
// @Failure 400 {object} object
// @Failure 500 {object} object
// @Failure 502 {object} object
// @Router /v1/parse [post]
func (h *ParseHandler) ParseReceiptText(c *gin.Context) {
	var req model.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if strings.TrimSpace(req.RawOCRText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raw_ocr_text required"})
		return
	}

	parsed, err := h.parser.ParseReceiptText(c.Request.Context(), req.RawOCRText)
	if err != nil {
		var badReply *extract.BadReplyError
		switch {
		case errors.Is(err, extract.ErrNoAPIKey):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "EXTRACT_API_KEY not set"})
		case errors.As(err, &badReply):
			// The model answered with something unparseable; surface it
			// verbatim so the caller can see what came back.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid JSON from model", "raw": badReply.Raw})
		default:
			h.logger.Error("semantic extraction failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream error", "detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, parsed)
}
