package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
)

const (
	chatInstructions = "You are a helpful property assistant. Answer the customer's questions " +
		"about the property described below using only the details given. If a detail is " +
		"missing, say so and suggest asking the agent. Keep answers short."

	draftInstructions = "You write enquiry emails from a prospective buyer or tenant to an estate " +
		"agent about the property described below. Write in the first person as the customer, " +
		"sign with their first name, and ask about anything the details leave open."
)

// Assistant is a chat and draft backend using the OpenAI-compatible API.
type Assistant struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	logger      *zap.Logger
}

// Config holds the assistant provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	User        string
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewAssistant creates an OpenAI-compatible assistant backend.
func NewAssistant(cfg *Config) *Assistant {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		user:        cfg.User,
		logger:      logger,
	}
}

// Chat implements assistant.Backend.
func (a *Assistant) Chat(ctx context.Context, req domast.ChatRequest) (string, error) {
	system, err := systemPrompt(chatInstructions, req.CustomerName, req.PropertyDetails)
	if err != nil {
		return "", err
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == domast.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	return a.complete(ctx, msgs)
}

// Draft implements assistant.Backend.
func (a *Assistant) Draft(ctx context.Context, req domast.DraftRequest) (string, error) {
	system, err := systemPrompt(draftInstructions, req.CustomerName, req.PropertyDetails)
	if err != nil {
		return "", err
	}

	intent := req.Intent
	if intent == "" {
		intent = "I am interested in this property and would like more information."
	}

	return a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: intent},
	})
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Assistant) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (a *Assistant) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    msgs,
		Temperature: a.temperature,
		User:        a.user,
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrAssistantUnavailable)
	}

	a.logger.Debug("assistant completion",
		zap.String("model", a.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func systemPrompt(instructions, customerName string, details domain.Record) (string, error) {
	raw, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal property details: %w", err)
	}
	var b strings.Builder
	b.WriteString(instructions)
	if customerName != "" {
		b.WriteString("\n\nThe customer's name is ")
		b.WriteString(customerName)
		b.WriteString(".")
	}
	b.WriteString("\n\nProperty details:\n")
	b.Write(raw)
	return b.String(), nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAssistantUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAssistantUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("assistant API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("assistant API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("assistant API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("assistant request failed: %w: %w", wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
