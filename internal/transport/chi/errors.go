package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
)

// ErrorCode is the machine-readable error class in an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeSessionNotFound    ErrorCode = "session_not_found"
	CodeUserNotFound       ErrorCode = "user_not_found"
	CodePropertyNotFound   ErrorCode = "property_not_found"
	CodeNotFound           ErrorCode = "not_found"
	CodeStoreUnavailable   ErrorCode = "store_unavailable"
	CodeAssistantError     ErrorCode = "assistant_unavailable"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is the ordered sentinel mapping; more specific
// sentinels come before the ones they wrap.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound, false),
		sentinelHandler(domain.ErrPropertyNotFound, http.StatusNotFound, CodePropertyNotFound, false),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound, false),
		sentinelHandler(domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, false),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusUnauthorized, CodeSessionNotFound, false),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed, false),
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, CodeStoreUnavailable, true),
		assistantHandler,
	}
}

func sentinelHandler(sentinel error, status int, code ErrorCode, retryable bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, ErrorResponse{Code: code, Message: safeDomainMessage(err), Retryable: retryable})
		return true
	}
}

// assistantHandler hides the provider failure behind the friendly fallback.
func assistantHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrAssistantUnavailable) {
		return false
	}
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:      CodeAssistantError,
		Message:   domast.FallbackReply,
		Retryable: true,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrStore) || errors.Is(err, domain.ErrAssistantUnavailable) {
				s.requestLogger(r).Warn("upstream failure", zap.Error(err))
			}
			return
		}
	}
	s.requestLogger(r).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage strips driver detail from store errors.
func safeDomainMessage(err error) string {
	var se *domain.StoreError
	if errors.As(err, &se) {
		return domain.ErrStore.Error()
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
