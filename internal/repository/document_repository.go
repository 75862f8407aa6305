package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/papervault/archive-service/internal/domain"
)

// ErrNotFound signals a lookup for a document id that does not exist.
var ErrNotFound = errors.New("document not found")

// RepositoryError wraps failures from the persistence layer.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Err == nil {
		return "repository error: " + e.Op
	}
	return fmt.Sprintf("repository error: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// DocumentRepository defines the data operations over documents and their
// line items. The search methods are raw tiers; the fallback ordering lives
// in the service layer.
type DocumentRepository interface {
	// Document CRUD
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Document, error)

	// Line items
	GetLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error)

	// Search tiers
	SearchFullText(ctx context.Context, query string) ([]domain.Document, error)
	FindDocumentIDsByItemDescription(ctx context.Context, query string) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Document, error)
	SearchFields(ctx context.Context, query string) ([]domain.Document, error)
}
