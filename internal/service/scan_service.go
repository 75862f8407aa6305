package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/domain"
	"github.com/papervault/archive-service/internal/extract"
	"github.com/papervault/archive-service/internal/imageutil"
	"github.com/papervault/archive-service/internal/ocr"
	"github.com/papervault/archive-service/internal/repository"
	"github.com/papervault/archive-service/internal/storage"
)

// Step is a stage of the scan pipeline. Transitions are strictly sequential;
// a failure at any stage aborts the remaining stages.
type Step string

const (
	StepIdle      Step = "idle"
	StepUploading Step = "uploading"
	StepOCR       Step = "ocr"
	StepParsing   Step = "parsing"
	StepSaving    Step = "saving"
	StepDone      Step = "done"
)

// ProgressFunc observes pipeline stage transitions. Progress is advisory
// only; it is not part of the functional contract.
type ProgressFunc func(Step)

// ErrNoImages rejects a scan request with no image files.
var ErrNoImages = errors.New("at least one image is required")

// ScanService runs the scan-to-record pipeline.
type ScanService interface {
	Scan(ctx context.Context, images [][]byte, progress ProgressFunc) (*domain.Document, error)
}

// ScanServiceImpl implements ScanService.
type ScanServiceImpl struct {
	repo       repository.DocumentRepository
	store      storage.Store
	extractor  ocr.Extractor
	parser     extract.ReceiptParser
	workerPool chan struct{}
	logger     *zap.Logger
}

// NewScanService creates a new ScanService with at most maxWorkers scans in
// flight at once.
func NewScanService(
	repo repository.DocumentRepository,
	store storage.Store,
	extractor ocr.Extractor,
	parser extract.ReceiptParser,
	maxWorkers int,
	logger *zap.Logger,
) *ScanServiceImpl {
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	return &ScanServiceImpl{
		repo:       repo,
		store:      store,
		extractor:  extractor,
		parser:     parser,
		workerPool: make(chan struct{}, maxWorkers),
		logger:     logger,
	}
}

// Scan uploads the images, runs OCR over the first one, sends the text to
// the semantic extractor, and persists the resulting document. Extraction
// failure is the one absorbed failure: the document is still created with
// empty parsed fields. Every other stage failure aborts the pipeline before
// a document row exists.
func (s *ScanServiceImpl) Scan(ctx context.Context, images [][]byte, progress ProgressFunc) (*domain.Document, error) {
	if len(images) == 0 {
		return nil, &ServiceError{Op: "validate_input", Err: ErrNoImages}
	}
	report := func(step Step) {
		if progress != nil {
			progress(step)
		}
	}

	// Acquire worker from pool
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-ctx.Done():
		return nil, &ServiceError{Op: "acquire_worker", Err: ctx.Err()}
	}

	// Keys depend on the document id, so it is minted up front; the row
	// itself is only inserted in the saving stage.
	docID := uuid.NewString()

	report(StepUploading)
	imageKeys := make([]string, 0, len(images))
	for i, img := range images {
		compressed, err := imageutil.Compress(img, nil)
		if err != nil {
			return nil, &ServiceError{Op: "compress_image", Err: err}
		}
		key := storage.ReceiptKey(docID, i)
		if err := s.store.Upload(ctx, key, compressed, "image/jpeg"); err != nil {
			return nil, &ServiceError{Op: "upload_image", Err: err}
		}
		imageKeys = append(imageKeys, key)
	}

	// OCR runs against the first image only; extra pages are archived but
	// contribute no text.
	report(StepOCR)
	rawText, err := s.extractor.ExtractText(ctx, images[0])
	if err != nil {
		return nil, &ServiceError{Op: "extract_text", Err: err}
	}

	parsed := domain.EmptyParsedReceipt()
	if strings.TrimSpace(rawText) != "" {
		report(StepParsing)
		if p, err := s.parser.ParseReceiptText(ctx, rawText); err != nil {
			s.logger.Warn("semantic extraction failed, saving with empty fields",
				zap.String("document_id", docID),
				zap.Error(err),
			)
		} else {
			parsed = p
		}
	}

	report(StepSaving)
	doc := buildDocument(docID, rawText, imageKeys, parsed)
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, &ServiceError{Op: "store_document", Err: err}
	}

	report(StepDone)
	return created, nil
}

// buildDocument seeds a Document from the extractor output. The ParsedReceipt
// is consumed here and discarded.
func buildDocument(docID, rawText string, imageKeys []string, parsed *domain.ParsedReceipt) *domain.Document {
	doc := &domain.Document{
		ID:              docID,
		Type:            domain.ValidType(parsed.Type),
		MerchantName:    parsed.MerchantName,
		Date:            parseDocumentDate(parsed.Date),
		TotalAmount:     parsed.TotalAmount,
		Currency:        parsed.Currency,
		Category:        parsed.Category,
		WarrantyEnabled: parsed.WarrantySuspected,
		RawOCRText:      rawText,
		ImageURLs:       imageKeys,
	}

	for _, item := range parsed.LineItems {
		quantity := item.Quantity
		if quantity == "" {
			quantity = "1"
		}
		doc.LineItems = append(doc.LineItems, domain.LineItem{
			Description: item.Description,
			Quantity:    quantity,
			Price:       item.Price,
		})
	}

	return doc
}

// parseDocumentDate accepts only dash-separated YYYY-MM-DD dates from the
// extractor; anything else is discarded rather than guessed at.
func parseDocumentDate(s string) *time.Time {
	if s == "" || !strings.Contains(s, "-") {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
