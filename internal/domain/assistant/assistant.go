// Package assistant defines the AI property assistant contract.
package assistant

import (
	"context"
	"strings"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// FallbackReply is shown when the assistant cannot answer.
const FallbackReply = "Sorry, I'm having trouble connecting to the chat service. Please try again later."

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a property chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks a question about a property.
type ChatRequest struct {
	CustomerName    string
	PropertyDetails domain.Record
	History         []Message
	Message         string
}

// DraftRequest asks for an enquiry message to the agent.
type DraftRequest struct {
	CustomerName    string
	PropertyDetails domain.Record
	Intent          string
}

// Backend answers chat and draft requests.
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// Validate checks that a chat request carries a question.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return domain.NewValidationError("customer_message", "is required")
	}
	for _, m := range r.History {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return domain.NewValidationError("chat_history", "has an unknown role "+m.Role)
		}
	}
	return nil
}

// Greeting is the assistant's opening line for a property.
func Greeting(address string) string {
	return "Hello! I'm your AI assistant for the property at " + address + ". How can I help you today?"
}
