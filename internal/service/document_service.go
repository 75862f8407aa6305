package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/domain"
	"github.com/papervault/archive-service/internal/repository"
)

// ServiceError represents an error in the service layer.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// DocumentService defines document-related business logic.
type DocumentService interface {
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	GetLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error)

	// Search lists all documents for a blank query, otherwise tries the
	// fallback tiers in order and returns the first tier that matches.
	Search(ctx context.Context, query string) ([]domain.Document, error)
}

// DocumentServiceImpl implements DocumentService.
type DocumentServiceImpl struct {
	repo   repository.DocumentRepository
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository, logger *zap.Logger) *DocumentServiceImpl {
	return &DocumentServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// Create saves a new document with its line items.
func (s *DocumentServiceImpl) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.Type == "" {
		doc.Type = domain.TypeReceipt
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, &ServiceError{Op: "create_document", Err: err}
	}
	return created, nil
}

// GetByID retrieves a document with its line items.
func (s *DocumentServiceImpl) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &ServiceError{Op: "get_document", Err: err}
	}
	return doc, nil
}

// Update performs a full-record save: document fields plus a complete
// replacement of its line items.
func (s *DocumentServiceImpl) Update(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	updated, err := s.repo.Update(ctx, doc)
	if err != nil {
		return nil, &ServiceError{Op: "update_document", Err: err}
	}
	return updated, nil
}

// Delete removes a document and its line items.
func (s *DocumentServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return &ServiceError{Op: "delete_document", Err: err}
	}
	return nil
}

// GetLineItems returns a document's line items in position order.
func (s *DocumentServiceImpl) GetLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error) {
	items, err := s.repo.GetLineItems(ctx, documentID)
	if err != nil {
		return nil, &ServiceError{Op: "get_line_items", Err: err}
	}
	return items, nil
}

// searchTier is one strategy in the fallback chain. It returns the documents
// it found and whether its result is final. A non-final empty result hands
// over to the next tier.
type searchTier func(ctx context.Context, query string) (docs []domain.Document, final bool)

// Search implements the three-tier fallback: full-text search, then
// line-item substring match, then direct-field substring match. A tier
// error counts as a miss; if no tier matches the result is an empty list,
// never an error.
func (s *DocumentServiceImpl) Search(ctx context.Context, query string) ([]domain.Document, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		docs, err := s.repo.List(ctx)
		if err != nil {
			return nil, &ServiceError{Op: "list_documents", Err: err}
		}
		return docs, nil
	}

	tiers := []searchTier{
		s.searchByFullText,
		s.searchByLineItems,
		s.searchByFields,
	}
	for _, tier := range tiers {
		if docs, final := tier(ctx, trimmed); final {
			return docs, nil
		}
	}
	return []domain.Document{}, nil
}

// searchByFullText is tier 1. Errors fall through to the next tier.
func (s *DocumentServiceImpl) searchByFullText(ctx context.Context, query string) ([]domain.Document, bool) {
	docs, err := s.repo.SearchFullText(ctx, query)
	if err != nil {
		s.logger.Warn("full-text search failed, falling back", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	if len(docs) == 0 {
		return nil, false
	}
	return docs, true
}

// searchByLineItems is tier 2. Once matching line items exist the tier is
// final: the parent documents are fetched by id and re-sorted by date, and
// tier 3 is never consulted.
func (s *DocumentServiceImpl) searchByLineItems(ctx context.Context, query string) ([]domain.Document, bool) {
	ids, err := s.repo.FindDocumentIDsByItemDescription(ctx, query)
	if err != nil {
		s.logger.Warn("line-item search failed, falling back", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	if len(ids) == 0 {
		return nil, false
	}

	docs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("fetching line-item matches failed", zap.String("query", query), zap.Error(err))
		return []domain.Document{}, true
	}
	return docs, true
}

// searchByFields is tier 3, the last resort.
func (s *DocumentServiceImpl) searchByFields(ctx context.Context, query string) ([]domain.Document, bool) {
	docs, err := s.repo.SearchFields(ctx, query)
	if err != nil {
		s.logger.Warn("field search failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	if len(docs) == 0 {
		return nil, false
	}
	return docs, true
}
