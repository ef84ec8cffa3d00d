package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound signals that no user is registered under an email.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrPropertyNotFound signals that no property resolves for an id.
	ErrPropertyNotFound = fmt.Errorf("property %w", ErrNotFound)
	// ErrInvalidCredentials signals a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation signals a record that does not match its expected shape.
	ErrValidation = errors.New("validation failed")
	// ErrStore signals a network or driver failure against the document store.
	ErrStore = errors.New("document store unavailable")
	// ErrDecode signals a malformed image payload.
	ErrDecode = errors.New("decode failed")
	// ErrAssistantUnavailable signals that the chat/draft backend failed.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	// ErrSessionNotFound signals an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)

// StoreError wraps a document store failure. It matches both ErrStore and the cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// NewStoreError creates a store error for the given operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
