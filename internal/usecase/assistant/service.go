// Package assistant answers questions about a property and drafts enquiries
// to its agent.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
)

// Request kinds used as metric labels.
const (
	kindChat  = "chat"
	kindDraft = "draft"
)

// Service builds the property context and calls the assistant backend.
type Service struct {
	backend  domast.Backend
	listings ListingSource
	provider string

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logger          *zap.Logger
}

// New creates an assistant service. provider labels metrics and logs.
func New(backend domast.Backend, listings ListingSource, provider string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, listings: listings, provider: provider, logger: logger}
}

// WithMetrics sets the request counter (provider, kind, status) and the
// duration histogram (provider, kind).
func (s *Service) WithMetrics(requestsTotal *prometheus.CounterVec, requestDuration *prometheus.HistogramVec) *Service {
	s.requestsTotal = requestsTotal
	s.requestDuration = requestDuration
	return s
}

// Chat answers message about propertyID given the earlier turns.
func (s *Service) Chat(
	ctx context.Context, sess *session.Session, propertyID string,
	history []domast.Message, message string,
) (string, error) {
	l, err := s.listings.Listing(ctx, sess, propertyID)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	req := domast.ChatRequest{
		CustomerName:    sess.FirstName,
		PropertyDetails: PropertyContext(l),
		History:         history,
		Message:         message,
	}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	return s.call(ctx, kindChat, propertyID, func(ctx context.Context) (string, error) {
		return s.backend.Chat(ctx, req)
	})
}

// Draft writes an enquiry about propertyID expressing intent.
func (s *Service) Draft(ctx context.Context, sess *session.Session, propertyID, intent string) (string, error) {
	l, err := s.listings.Listing(ctx, sess, propertyID)
	if err != nil {
		return "", fmt.Errorf("draft: %w", err)
	}
	req := domast.DraftRequest{
		CustomerName:    sess.FirstName,
		PropertyDetails: PropertyContext(l),
		Intent:          strings.TrimSpace(intent),
	}

	return s.call(ctx, kindDraft, propertyID, func(ctx context.Context) (string, error) {
		return s.backend.Draft(ctx, req)
	})
}

// Greeting returns the opening line of a chat about propertyID.
func (s *Service) Greeting(ctx context.Context, sess *session.Session, propertyID string) (string, error) {
	l, err := s.listings.Listing(ctx, sess, propertyID)
	if err != nil {
		return "", fmt.Errorf("greeting: %w", err)
	}
	return domast.Greeting(l.Card("").Address), nil
}

func (s *Service) call(
	ctx context.Context, kind, propertyID string, fn func(context.Context) (string, error),
) (string, error) {
	start := time.Now()
	reply, err := fn(ctx)
	duration := time.Since(start)

	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty %s reply: %w", kind, domain.ErrAssistantUnavailable)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrAssistantUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, err)
		}
		s.observe(kind, "error", duration)
		s.logger.Error("assistant request failed",
			zap.String("provider", s.provider),
			zap.String("kind", kind),
			zap.String("property_id", propertyID),
			zap.Duration("duration", duration),
			zap.Error(err))
		return "", fmt.Errorf("%s: %w", kind, err)
	}

	s.observe(kind, "success", duration)
	return reply, nil
}

func (s *Service) observe(kind, status string, d time.Duration) {
	if s.requestsTotal != nil {
		s.requestsTotal.WithLabelValues(s.provider, kind, status).Inc()
	}
	if s.requestDuration != nil {
		s.requestDuration.WithLabelValues(s.provider, kind).Observe(d.Seconds())
	}
}

// PropertyContext is the property summary sent to the assistant.
func PropertyContext(l listing.Listing) domain.Record {
	d := l.Detail()
	facts := make(map[string]any, len(d.KeyFacts))
	for _, f := range d.KeyFacts {
		facts[f.Label] = f.Value
	}

	ctx := domain.Record{
		"property_id": d.PropertyID,
		"address":     d.Address,
		"postcode":    d.Postcode,
		"price":       d.Price,
		"bedrooms":    d.Bedrooms,
		"mode":        string(d.Mode),
		"tenure":      d.Tenure,
		"epc":         d.EPC,
		"key_facts":   facts,
		"criteria":    d.Criteria,
	}
	if len(d.Features) > 0 {
		ctx["features"] = d.Features
	}
	if len(d.Stations) > 0 {
		ctx["stations"] = d.Stations
	}
	if d.Neighborhood != nil {
		ctx["neighborhood_info"] = d.Neighborhood
	}
	if d.CommuteMinutes != nil {
		ctx["commute_minutes"] = *d.CommuteMinutes
	}
	return ctx
}
