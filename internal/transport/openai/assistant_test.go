package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
)

// chatRequest mirrors the fields of a chat completion request the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionHandler(t *testing.T, reply string, got *chatRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}
}

func newTestAssistant(url string) *Assistant {
	return NewAssistant(&Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func TestAssistant_Chat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(completionHandler(t, " There is a garden. ", &got))
	defer server.Close()

	reply, err := newTestAssistant(server.URL).Chat(context.Background(), domast.ChatRequest{
		CustomerName:    "Ann",
		PropertyDetails: domain.Record{"address": "1 High St"},
		History: []domast.Message{
			{Role: domast.RoleUser, Content: "Hi"},
			{Role: domast.RoleAssistant, Content: "Hello!"},
		},
		Message: "Is there a garden?",
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "There is a garden." {
		t.Errorf("reply = %q", reply)
	}

	if got.Model != "test-model" || len(got.Messages) != 4 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "1 High St") ||
		!strings.Contains(got.Messages[0].Content, "Ann") {
		t.Errorf("system prompt lacks context: %q", got.Messages[0].Content)
	}
	if got.Messages[2].Role != "assistant" || got.Messages[3].Content != "Is there a garden?" {
		t.Errorf("history not forwarded: %+v", got.Messages)
	}
}

func TestAssistant_Draft(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(completionHandler(t, "Dear agent", &got))
	defer server.Close()

	msg, err := newTestAssistant(server.URL).Draft(context.Background(), domast.DraftRequest{
		CustomerName:    "Ann",
		PropertyDetails: domain.Record{"address": "1 High St"},
	})
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if msg != "Dear agent" {
		t.Errorf("draft = %q", msg)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content == "" {
		t.Errorf("expected a default intent, got %+v", got.Messages)
	}
}

func TestAssistant_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestAssistant(server.URL).Chat(context.Background(), domast.ChatRequest{Message: "hi"})
	if !errors.Is(err, domain.ErrAssistantUnavailable) {
		t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
	}
}

func TestAssistant_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
	}))
	defer server.Close()

	_, err := newTestAssistant(server.URL).Draft(context.Background(), domast.DraftRequest{})
	if !errors.Is(err, domain.ErrAssistantUnavailable) {
		t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if d := extractDetail([]byte(`{"detail":"quota"}`)); d != "quota" {
		t.Errorf("detail = %q", d)
	}
	if d := extractDetail([]byte(`not json`)); d != "" {
		t.Errorf("detail = %q", d)
	}
}
