// Package ocr extracts raw text from receipt images with Tesseract.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Extractor runs text recognition over a single image.
type Extractor interface {
	ExtractText(ctx context.Context, imageData []byte) (string, error)
}

// TesseractExtractor implements Extractor with the Tesseract engine.
type TesseractExtractor struct {
	languages []string
	logger    *zap.Logger
}

// NewTesseractExtractor creates an extractor for the given languages.
// Receipts in this archive are French or English, so the default is fra+eng.
func NewTesseractExtractor(languages []string, logger *zap.Logger) *TesseractExtractor {
	if len(languages) == 0 {
		languages = []string{"fra", "eng"}
	}
	return &TesseractExtractor{
		languages: languages,
		logger:    logger,
	}
}

// ExtractText recognizes text in imageData and returns it trimmed. The
// result may be empty; engine failures propagate with no retry.
func (e *TesseractExtractor) ExtractText(ctx context.Context, imageData []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// gosseract clients are not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR recognition failed: %w", err)
	}

	text = strings.TrimSpace(text)
	e.logger.Debug("OCR extraction completed",
		zap.Strings("languages", e.languages),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}
