// Package extract turns raw OCR text into a structured ParsedReceipt by
// calling an OpenAI-compatible chat-completions endpoint.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papervault/archive-service/internal/domain"
)

// ErrNoAPIKey means the upstream credential is not configured. The parse
// endpoint maps it to a 500; the scan pipeline degrades instead.
var ErrNoAPIKey = errors.New("extraction API key is not configured")

// ErrEmptyText rejects blank input before any upstream call is made.
var ErrEmptyText = errors.New("raw_ocr_text is required")

// BadReplyError means the model answered, but not with parseable JSON. Raw
// carries the model's reply verbatim so it can be surfaced upstream.
type BadReplyError struct {
	Raw string
}

func (e *BadReplyError) Error() string {
	return "model reply is not valid JSON"
}

// ExtractError wraps failures from the extraction client.
type ExtractError struct {
	Op  string
	Err error
}

func (e *ExtractError) Error() string {
	if e.Err == nil {
		return "extract error: " + e.Op
	}
	return "extract error: " + e.Op + ": " + e.Err.Error()
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// ReceiptParser is the semantic extraction dependency of the scan pipeline.
type ReceiptParser interface {
	ParseReceiptText(ctx context.Context, rawText string) (*domain.ParsedReceipt, error)
}

// Client calls a chat-completions endpoint with the fixed prompt contract.
type Client struct {
	apiKey     string
	apiURL     string
	modelID    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the extraction client.
type Config struct {
	APIKey  string
	APIURL  string
	ModelID string
	Timeout time.Duration
}

// NewClient creates a new extraction client.
func NewClient(config *Config, logger *zap.Logger) *Client {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = "gpt-4o-mini"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  config.APIKey,
		apiURL:  apiURL,
		modelID: modelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseReceiptText sends rawText to the model and returns the extracted
// ParsedReceipt. Any failure is returned typed; the caller decides whether
// to degrade or surface it.
func (c *Client) ParseReceiptText(ctx context.Context, rawText string) (*domain.ParsedReceipt, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &ExtractError{Op: "validate_input", Err: ErrEmptyText}
	}
	if c.apiKey == "" {
		return nil, &ExtractError{Op: "validate_configuration", Err: ErrNoAPIKey}
	}

	payload := chatRequest{
		Model: c.modelID,
		Messages: []chatMessage{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: extractUserPrompt(rawText)},
		},
		Temperature: 0.1,
	}

	requestData, err := json.Marshal(payload)
	if err != nil {
		return nil, &ExtractError{Op: "marshal_request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return nil, &ExtractError{Op: "create_request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExtractError{Op: "send_request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExtractError{Op: "read_response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ExtractError{
			Op:  "check_api_response",
			Err: fmt.Errorf("API error: %s - %s", resp.Status, string(respBody)),
		}
	}

	var response chatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, &ExtractError{Op: "parse_response_json", Err: err}
	}
	if len(response.Choices) == 0 {
		return nil, &ExtractError{Op: "check_response_choices", Err: fmt.Errorf("no choices in response")}
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	cleaned := stripCodeFence(content)

	var parsed domain.ParsedReceipt
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		c.logger.Warn("model reply is not valid JSON", zap.Int("reply_length", len(content)))
		return nil, &ExtractError{Op: "parse_model_reply", Err: &BadReplyError{Raw: content}}
	}

	return &parsed, nil
}

// stripCodeFence removes a ```json ... ``` wrapper that models add despite
// being told not to.
func stripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```JSON")
		out = strings.TrimPrefix(out, "```")
		out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	}
	return strings.TrimSpace(out)
}
