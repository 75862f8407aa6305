package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/papervault/archive-service/internal/domain"
)

// documentColumns is the select list shared by every document query.
const documentColumns = `id, type, merchant_name, date, total_amount, currency, category, comment,
	warranty_enabled, warranty_end_date, warranty_duration, warranty_product_description,
	raw_ocr_text, image_urls, created_at, updated_at`

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDocumentRepository implements DocumentRepository using PostgreSQL.
type PostgresDocumentRepository struct {
	db DB
}

// NewPostgresDocumentRepository creates a new PostgreSQL document repository.
func NewPostgresDocumentRepository(db DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

func scanDocument(row pgx.Row, doc *domain.Document) error {
	return row.Scan(
		&doc.ID, &doc.Type, &doc.MerchantName, &doc.Date, &doc.TotalAmount, &doc.Currency,
		&doc.Category, &doc.Comment, &doc.WarrantyEnabled, &doc.WarrantyEndDate,
		&doc.WarrantyDuration, &doc.WarrantyProductDesc, &doc.RawOCRText, &doc.ImageURLs,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
}

func collectDocuments(rows pgx.Rows) ([]domain.Document, error) {
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// Create inserts a new document and its line items in one transaction.
// Line items get dense zero-based positions in slice order.
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, &RepositoryError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback(ctx) // rollback if not committed

	err = tx.QueryRow(ctx, `
		INSERT INTO documents (id, type, merchant_name, date, total_amount, currency, category, comment,
			warranty_enabled, warranty_end_date, warranty_duration, warranty_product_description,
			raw_ocr_text, image_urls)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, doc.ID, doc.Type, doc.MerchantName, doc.Date, doc.TotalAmount, doc.Currency, doc.Category,
		doc.Comment, doc.WarrantyEnabled, doc.WarrantyEndDate, doc.WarrantyDuration,
		doc.WarrantyProductDesc, doc.RawOCRText, doc.ImageURLs,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, &RepositoryError{Op: "insert_document", Err: err}
	}

	if err := insertLineItems(ctx, tx, doc.ID, doc.LineItems); err != nil {
		return nil, &RepositoryError{Op: "insert_line_items", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &RepositoryError{Op: "commit_transaction", Err: err}
	}

	return doc, nil
}

// insertLineItems writes items for a document, renumbering positions densely
// from zero in slice order.
func insertLineItems(ctx context.Context, tx pgx.Tx, documentID string, items []domain.LineItem) error {
	for i := range items {
		item := &items[i]
		item.DocumentID = documentID
		item.Position = i
		err := tx.QueryRow(ctx, `
			INSERT INTO line_items (document_id, description, quantity, price, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, documentID, item.Description, item.Quantity, item.Price, item.Position).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert line item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID retrieves a document and its line items.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	row := r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	if err := scanDocument(row, &doc); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &RepositoryError{Op: "get_document", Err: ErrNotFound}
		}
		return nil, &RepositoryError{Op: "get_document", Err: err}
	}

	items, err := r.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.LineItems = items

	return &doc, nil
}

// Update saves a full document record and replaces all of its line items.
// Delete-all-then-reinsert keeps positions dense and zero-based; there is no
// partial line-item update.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, &RepositoryError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback(ctx) // rollback if not committed

	err = tx.QueryRow(ctx, `
		UPDATE documents
		SET type = $1, merchant_name = $2, date = $3, total_amount = $4, currency = $5,
			category = $6, comment = $7, warranty_enabled = $8, warranty_end_date = $9,
			warranty_duration = $10, warranty_product_description = $11, raw_ocr_text = $12,
			image_urls = $13, updated_at = now()
		WHERE id = $14
		RETURNING created_at, updated_at
	`, doc.Type, doc.MerchantName, doc.Date, doc.TotalAmount, doc.Currency, doc.Category,
		doc.Comment, doc.WarrantyEnabled, doc.WarrantyEndDate, doc.WarrantyDuration,
		doc.WarrantyProductDesc, doc.RawOCRText, doc.ImageURLs, doc.ID,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &RepositoryError{Op: "update_document", Err: ErrNotFound}
		}
		return nil, &RepositoryError{Op: "update_document", Err: err}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE document_id = $1`, doc.ID); err != nil {
		return nil, &RepositoryError{Op: "delete_line_items", Err: err}
	}

	if err := insertLineItems(ctx, tx, doc.ID, doc.LineItems); err != nil {
		return nil, &RepositoryError{Op: "insert_line_items", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &RepositoryError{Op: "commit_transaction", Err: err}
	}

	return doc, nil
}

// Delete removes a document; line items go with it via ON DELETE CASCADE.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return &RepositoryError{Op: "delete_document", Err: err}
	}
	if commandTag.RowsAffected() == 0 {
		return &RepositoryError{Op: "delete_document", Err: ErrNotFound}
	}
	return nil
}

// List returns all documents ordered by date descending, nulls last.
func (r *PostgresDocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY date DESC NULLS LAST, created_at DESC
	`)
	if err != nil {
		return nil, &RepositoryError{Op: "list_documents", Err: err}
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &RepositoryError{Op: "list_documents", Err: err}
	}
	return docs, nil
}

// GetLineItems returns a document's line items in position order.
func (r *PostgresDocumentRepository) GetLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, description, quantity, price, position
		FROM line_items
		WHERE document_id = $1
		ORDER BY position ASC
	`, documentID)
	if err != nil {
		return nil, &RepositoryError{Op: "get_line_items", Err: err}
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Description, &item.Quantity, &item.Price, &item.Position); err != nil {
			return nil, &RepositoryError{Op: "scan_line_item", Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "get_line_items", Err: err}
	}

	return items, nil
}
