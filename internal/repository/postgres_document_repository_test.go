package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/archive-service/internal/domain"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresDocumentRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresDocumentRepository(mock)
}

func TestUpdateReplacesLineItems(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	// Saving a document that previously held two line items but now holds
	// one: all existing items are deleted, the survivor is reinserted at
	// position zero.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE documents").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("DELETE FROM line_items").
		WithArgs("doc-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs("doc-1", "Baguette", "1", "1.30", 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("item-b"))
	mock.ExpectCommit()

	doc := &domain.Document{
		ID:        "doc-1",
		Type:      domain.TypeReceipt,
		ImageURLs: []string{},
		LineItems: []domain.LineItem{
			{Description: "Baguette", Quantity: "1", Price: "1.30"},
		},
	}
	updated, err := repo.Update(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, updated.LineItems, 1)
	assert.Equal(t, "item-b", updated.LineItems[0].ID)
	assert.Equal(t, 0, updated.LineItems[0].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsDensePositions(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("doc-1", now, now))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs("doc-1", "Croissant", "2", "1.20", 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("item-a"))
	mock.ExpectQuery("INSERT INTO line_items").
		WithArgs("doc-1", "Baguette", "1", "1.30", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("item-b"))
	mock.ExpectCommit()

	doc := &domain.Document{
		Type:      domain.TypeReceipt,
		ImageURLs: []string{},
		LineItems: []domain.LineItem{
			{Description: "Croissant", Quantity: "2", Price: "1.20"},
			{Description: "Baguette", Quantity: "1", Price: "1.30"},
		},
	}
	created, err := repo.Create(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, created.LineItems, 2)
	assert.Equal(t, 0, created.LineItems[0].Position)
	assert.Equal(t, 1, created.LineItems[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingDocument(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
