package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/papervault/archive-service/internal/domain"
)

// psql builds queries with $n placeholders for pgx.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const dateOrder = "date DESC NULLS LAST, created_at DESC"

// SearchFullText is tier 1: web-search syntax against the precomputed
// search_vector column.
func (r *PostgresDocumentRepository) SearchFullText(ctx context.Context, query string) ([]domain.Document, error) {
	sql, args, err := psql.Select(documentColumns).
		From("documents").
		Where(squirrel.Expr("search_vector @@ websearch_to_tsquery('simple', ?)", query)).
		OrderBy(dateOrder).
		ToSql()
	if err != nil {
		return nil, &RepositoryError{Op: "build_fulltext_query", Err: err}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &RepositoryError{Op: "search_fulltext", Err: err}
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &RepositoryError{Op: "search_fulltext", Err: err}
	}
	return docs, nil
}

// FindDocumentIDsByItemDescription is the lookup behind tier 2: distinct ids
// of documents owning at least one line item whose description contains the
// query as a case-insensitive substring.
func (r *PostgresDocumentRepository) FindDocumentIDsByItemDescription(ctx context.Context, query string) ([]string, error) {
	sql, args, err := psql.Select("DISTINCT document_id").
		From("line_items").
		Where(squirrel.ILike{"description": "%" + query + "%"}).
		ToSql()
	if err != nil {
		return nil, &RepositoryError{Op: "build_item_query", Err: err}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &RepositoryError{Op: "find_ids_by_item_description", Err: err}
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &RepositoryError{Op: "scan_document_id", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "find_ids_by_item_description", Err: err}
	}

	return ids, nil
}

// GetByIDs fetches documents by id, re-sorted by date descending.
func (r *PostgresDocumentRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}

	sql, args, err := psql.Select(documentColumns).
		From("documents").
		Where(squirrel.Eq{"id": ids}).
		OrderBy(dateOrder).
		ToSql()
	if err != nil {
		return nil, &RepositoryError{Op: "build_ids_query", Err: err}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &RepositoryError{Op: "get_documents_by_ids", Err: err}
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &RepositoryError{Op: "get_documents_by_ids", Err: err}
	}
	return docs, nil
}

// SearchFields is tier 3: case-insensitive substring match across the direct
// text fields of a document.
func (r *PostgresDocumentRepository) SearchFields(ctx context.Context, query string) ([]domain.Document, error) {
	pattern := "%" + query + "%"
	sql, args, err := psql.Select(documentColumns).
		From("documents").
		Where(squirrel.Or{
			squirrel.ILike{"merchant_name": pattern},
			squirrel.ILike{"comment": pattern},
			squirrel.ILike{"total_amount": pattern},
			squirrel.ILike{"category": pattern},
			squirrel.ILike{"raw_ocr_text": pattern},
		}).
		OrderBy(dateOrder).
		ToSql()
	if err != nil {
		return nil, &RepositoryError{Op: "build_fields_query", Err: fmt.Errorf("squirrel: %w", err)}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &RepositoryError{Op: "search_fields", Err: err}
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &RepositoryError{Op: "search_fields", Err: err}
	}
	return docs, nil
}
