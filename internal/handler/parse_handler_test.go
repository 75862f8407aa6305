package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/domain"
	"github.com/papervault/archive-service/internal/extract"
)

type stubParser struct {
	parsed *domain.ParsedReceipt
	err    error
	got    string
}

func (s *stubParser) ParseReceiptText(_ context.Context, rawText string) (*domain.ParsedReceipt, error) {
	s.got = rawText
	if s.err != nil {
		return nil, s.err
	}
	return s.parsed, nil
}

func postParse(t *testing.T, parser extract.ReceiptParser, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/parse", NewParseHandler(parser, zap.NewNop()).ParseReceiptText)

	req := httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestParseEndpointSuccess(t *testing.T) {
	parser := &stubParser{parsed: &domain.ParsedReceipt{MerchantName: "Monoprix", Currency: "EUR"}}

	rec := postParse(t, parser, `{"raw_ocr_text":"MONOPRIX 12,50 EUR"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MONOPRIX 12,50 EUR", parser.got)

	var got domain.ParsedReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Monoprix", got.MerchantName)
}

func TestParseEndpointInvalidJSON(t *testing.T) {
	rec := postParse(t, &stubParser{}, `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, rec.Body.String())
}

func TestParseEndpointBlankText(t *testing.T) {
	rec := postParse(t, &stubParser{}, `{"raw_ocr_text":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"raw_ocr_text required"}`, rec.Body.String())
}

func TestParseEndpointMissingAPIKey(t *testing.T) {
	parser := &stubParser{err: &extract.ExtractError{Op: "validate_configuration", Err: extract.ErrNoAPIKey}}

	rec := postParse(t, parser, `{"raw_ocr_text":"some text"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"EXTRACT_API_KEY not set"}`, rec.Body.String())
}

func TestParseEndpointBadModelReply(t *testing.T) {
	parser := &stubParser{err: &extract.ExtractError{
		Op:  "parse_model_reply",
		Err: &extract.BadReplyError{Raw: "sorry, no receipt here"},
	}}

	rec := postParse(t, parser, `{"raw_ocr_text":"some text"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid JSON from model", body["error"])
	assert.Equal(t, "sorry, no receipt here", body["raw"])
}

func TestParseEndpointUpstreamFailure(t *testing.T) {
	parser := &stubParser{err: &extract.ExtractError{Op: "send_request", Err: context.DeadlineExceeded}}

	rec := postParse(t, parser, `{"raw_ocr_text":"some text"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Upstream error", body["error"])
	assert.NotEmpty(t, body["detail"])
}
