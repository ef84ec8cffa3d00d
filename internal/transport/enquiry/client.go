// Package enquiry is the assistant backend for the external draft and chat
// HTTP service.
package enquiry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
)

// DefaultTimeout bounds one request to the service.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 512

// Client posts chat and draft requests to the enquiry service.
type Client struct {
	http     *http.Client
	draftURL string
	chatURL  string
	logger   *zap.Logger
}

// Config holds the service endpoints.
type Config struct {
	DraftURL string
	ChatURL  string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New creates an enquiry service client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		draftURL: cfg.DraftURL,
		chatURL:  cfg.ChatURL,
		logger:   logger,
	}
}

type chatBody struct {
	CustomerMessage string           `json:"customer_message"`
	PropertyDetails domain.Record    `json:"property_details"`
	ChatHistory     []domast.Message `json:"chat_history"`
	CustomerName    string           `json:"customer_name"`
}

type draftBody struct {
	CustomerName    string        `json:"customer_name"`
	PropertyDetails domain.Record `json:"property_details"`
	CustomerIntent  string        `json:"customer_intent"`
}

// Chat implements assistant.Backend.
func (c *Client) Chat(ctx context.Context, req domast.ChatRequest) (string, error) {
	history := req.History
	if history == nil {
		history = []domast.Message{}
	}
	var resp struct {
		Response string `json:"response"`
	}
	err := c.post(ctx, c.chatURL, chatBody{
		CustomerMessage: req.Message,
		PropertyDetails: req.PropertyDetails,
		ChatHistory:     history,
		CustomerName:    req.CustomerName,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return resp.Response, nil
}

// Draft implements assistant.Backend.
func (c *Client) Draft(ctx context.Context, req domast.DraftRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.post(ctx, c.draftURL, draftBody{
		CustomerName:    req.CustomerName,
		PropertyDetails: req.PropertyDetails,
		CustomerIntent:  req.Intent,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("draft: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	if url == "" {
		return fmt.Errorf("endpoint not configured: %w", domain.ErrAssistantUnavailable)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("enquiry service error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return fmt.Errorf("enquiry service status %d: %w", resp.StatusCode, domain.ErrAssistantUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrAssistantUnavailable, err)
	}
	return nil
}
