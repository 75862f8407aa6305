package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/config"
	"github.com/papervault/archive-service/internal/domain"
	"github.com/papervault/archive-service/internal/handler"
	"github.com/papervault/archive-service/internal/service"
)

type stubDocumentService struct{}

func (stubDocumentService) Create(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	return doc, nil
}
func (stubDocumentService) GetByID(_ context.Context, id string) (*domain.Document, error) {
	return &domain.Document{ID: id}, nil
}
func (stubDocumentService) Update(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	return doc, nil
}
func (stubDocumentService) Delete(context.Context, string) error { return nil }
func (stubDocumentService) GetLineItems(context.Context, string) ([]domain.LineItem, error) {
	return []domain.LineItem{}, nil
}
func (stubDocumentService) Search(context.Context, string) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

type stubScanService struct{}

func (stubScanService) Scan(context.Context, [][]byte, service.ProgressFunc) (*domain.Document, error) {
	return &domain.Document{}, nil
}

type stubReceiptParser struct{}

func (stubReceiptParser) ParseReceiptText(context.Context, string) (*domain.ParsedReceipt, error) {
	return domain.EmptyParsedReceipt(), nil
}

type stubStore struct{}

func (stubStore) Upload(context.Context, string, []byte, string) error { return nil }
func (stubStore) Resolve(string, time.Duration) string                 { return "" }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	handlers := Handlers{
		Documents: handler.NewDocumentHandler(stubDocumentService{}, log),
		Scan:      handler.NewScanHandler(stubScanService{}, log),
		Parse:     handler.NewParseHandler(stubReceiptParser{}, log),
		Images:    handler.NewImageHandler(stubStore{}, 0),
	}
	srv := NewServer(&config.Config{Port: 8080}, log, handlers)
	return srv.GetRouter()
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWrongMethodAnswers405(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/parse", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code, "a known path with the wrong method is 405, not 404")
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestUnknownPathStays404(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreflightAnswers204(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/parse", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
}
