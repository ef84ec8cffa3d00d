// Package shortlist assembles a user's enriched listings from their
// shortlists, properties and extractions.
package shortlist

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/property"
	domsl "github.com/kailas-cloud/estatedash/internal/domain/shortlist"
)

// Service is the shortlist aggregator.
type Service struct {
	querier Querier
	fetcher Fetcher
	tracer  trace.Tracer
	logger  *zap.Logger
}

// New creates a shortlist aggregator.
func New(q Querier, f Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		querier: q,
		fetcher: f,
		tracer:  otel.Tracer("estatedash/shortlist"),
		logger:  logger,
	}
}

// List returns the enriched listings recommended to userID, newest
// shortlist first. A property recommended by several shortlists appears once,
// in the position of its most recent recommendation. Entries whose property
// cannot be resolved are dropped.
func (s *Service) List(ctx context.Context, userID string) ([]listing.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "shortlist.list")
	defer span.End()

	recs, err := s.querier.QueryByField(ctx, domain.CollectionShortlist, domsl.FieldUserID, userID)
	if err != nil {
		return nil, fmt.Errorf("query shortlists: %w", err)
	}

	lists := make([]domsl.Shortlist, 0, len(recs))
	for _, r := range recs {
		sl, err := domsl.FromRecord(r)
		if err != nil {
			s.logger.Warn("skipping invalid shortlist",
				zap.String("id", r.ID()),
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		lists = append(lists, sl)
	}

	domsl.SortByRecency(lists)
	entries := domsl.Dedupe(lists)
	span.SetAttributes(
		attribute.Int("shortlist.count", len(lists)),
		attribute.Int("shortlist.entries", len(entries)),
	)
	if len(entries) == 0 {
		return []listing.Listing{}, nil
	}

	fetched := s.fetcher.Both(ctx, domsl.PropertyIDs(entries))

	out := make([]listing.Listing, 0, len(entries))
	for _, e := range entries {
		prop, ok := fetched.Properties[e.PropertyID]
		if !ok {
			s.logger.Warn("dropping unresolved shortlist entry", zap.String("property_id", e.PropertyID))
			continue
		}
		out = append(out, Merge(e.Fields, prop, fetched.Extractions[e.PropertyID], e.PropertyID))
	}
	span.SetAttributes(attribute.Int("shortlist.listings", len(out)))
	return out, nil
}

// Get returns the enriched listing of a single property, without shortlist
// fields. Store failures are returned as is; only absence maps to
// domain.ErrPropertyNotFound.
func (s *Service) Get(ctx context.Context, propertyID string) (listing.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "shortlist.get")
	defer span.End()

	prop, results, err := s.fetcher.One(ctx, propertyID)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("property %s: %w", propertyID, err)
	}
	if prop == nil {
		return listing.Listing{}, fmt.Errorf("property %s: %w", propertyID, domain.ErrPropertyNotFound)
	}
	return Merge(nil, prop, results, propertyID), nil
}

// Merge layers shortlist entry fields, property fields and extraction
// results (later wins), applies the canonical schema and normalizes the
// result into a listing.
func Merge(entry, prop, results domain.Record, propertyID string) listing.Listing {
	merged := entry.Clone()
	for k, v := range property.Canonicalize(prop) {
		merged[k] = v
	}
	if results != nil {
		for k, v := range property.Canonicalize(results) {
			merged[k] = v
		}
	}
	merged[listing.FieldPropertyID] = propertyID
	merged[domain.FieldID] = propertyID
	return listing.New(merged)
}
