// Package fetch resolves batches of property ids against the document store
// with bounded parallelism.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/extraction"
	"github.com/kailas-cloud/estatedash/internal/repository/fetchcache"
)

const (
	// DefaultWorkers bounds in-flight lookups per batch.
	DefaultWorkers = 8
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second

	latestExtractionCache = "extraction_latest"
)

// Result holds the resolved records of a combined batch keyed by property id.
type Result struct {
	Properties  map[string]domain.Record
	Extractions map[string]domain.Record
}

// Service is the parallel fetcher.
type Service struct {
	reader  RecordReader
	querier RecordQuerier
	latest  *fetchcache.Cache[domain.Record]

	workers int
	timeout time.Duration

	requestsTotal *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	tracer        trace.Tracer
	logger        *zap.Logger
}

// New creates a fetcher. reader serves property point lookups, querier
// serves extraction lookups by property id.
func New(reader RecordReader, querier RecordQuerier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:  reader,
		querier: querier,
		workers: DefaultWorkers,
		timeout: DefaultTimeout,
		tracer:  otel.Tracer("estatedash/fetch"),
		logger:  logger,
	}
}

// WithWorkers sets the per-batch concurrency bound.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithTimeout sets the per-lookup deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithExtractionCache caches the latest extraction results per property id.
func (s *Service) WithExtractionCache(c *fetchcache.Cache[domain.Record]) *Service {
	s.latest = c
	return s
}

// WithMetrics sets the request counter (labels collection, status) and the
// batch duration histogram (label collection). Either may be nil.
func (s *Service) WithMetrics(requestsTotal *prometheus.CounterVec, batchDuration *prometheus.HistogramVec) *Service {
	s.requestsTotal = requestsTotal
	s.batchDuration = batchDuration
	return s
}

// WithTracer overrides the tracer used for batch spans.
func (s *Service) WithTracer(t trace.Tracer) *Service {
	s.tracer = t
	return s
}

// Properties resolves property records. Ids that are absent or fail are
// omitted from the result.
func (s *Service) Properties(ctx context.Context, ids []string) map[string]domain.Record {
	return s.batch(ctx, domain.CollectionProperties, ids, s.property)
}

// Extractions resolves the results of the latest extraction of each
// property. Properties without an extraction are omitted.
func (s *Service) Extractions(ctx context.Context, ids []string) map[string]domain.Record {
	return s.batch(ctx, domain.CollectionExtraction, ids, s.latestExtraction)
}

// Both runs the property and extraction batches concurrently and waits for both.
func (s *Service) Both(ctx context.Context, ids []string) Result {
	var (
		res Result
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Properties = s.Properties(ctx, ids)
	}()
	go func() {
		defer wg.Done()
		res.Extractions = s.Extractions(ctx, ids)
	}()
	wg.Wait()
	return res
}

// One resolves a single property and its latest extraction results. Unlike
// the batch methods it returns lookup errors; an absent property yields a
// nil record and no error.
func (s *Service) One(ctx context.Context, id string) (prop, results domain.Record, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lctx, cancel := context.WithTimeout(gctx, s.timeout)
		defer cancel()
		rec, err := s.property(lctx, id)
		if err != nil {
			s.count(domain.CollectionProperties, "error")
			return fmt.Errorf("get property %s: %w", id, err)
		}
		s.countResolved(domain.CollectionProperties, rec)
		prop = rec
		return nil
	})
	g.Go(func() error {
		lctx, cancel := context.WithTimeout(gctx, s.timeout)
		defer cancel()
		rec, err := s.latestExtraction(lctx, id)
		if err != nil {
			s.count(domain.CollectionExtraction, "error")
			return fmt.Errorf("get extraction %s: %w", id, err)
		}
		s.countResolved(domain.CollectionExtraction, rec)
		results = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err //nolint:wrapcheck // wrapped above
	}
	return prop, results, nil
}

type lookupFunc func(ctx context.Context, id string) (domain.Record, error)

func (s *Service) batch(
	ctx context.Context, collection domain.Collection, ids []string, lookup lookupFunc,
) map[string]domain.Record {
	unique := dedupe(ids)
	out := make(map[string]domain.Record, len(unique))
	if len(unique) == 0 {
		return out
	}

	ctx, span := s.tracer.Start(ctx, "fetch."+string(collection),
		trace.WithAttributes(attribute.Int("fetch.ids", len(unique))))
	defer span.End()

	start := time.Now()
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, id := range unique {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			rec, err := lookup(lctx, id)
			if err != nil {
				s.count(collection, "error")
				s.logger.Warn("fetch failed",
					zap.String("collection", string(collection)),
					zap.String("id", id),
					zap.Error(err))
				// Per-id failures never cancel the batch.
				return nil
			}
			s.countResolved(collection, rec)
			if rec != nil {
				mu.Lock()
				out[id] = rec
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.batchDuration != nil {
		s.batchDuration.WithLabelValues(string(collection)).Observe(time.Since(start).Seconds())
	}
	span.SetAttributes(attribute.Int("fetch.resolved", len(out)))
	return out
}

func (s *Service) property(ctx context.Context, id string) (domain.Record, error) {
	return s.reader.Get(ctx, domain.CollectionProperties, id) //nolint:wrapcheck // logged by batch
}

func (s *Service) latestExtraction(ctx context.Context, propertyID string) (domain.Record, error) {
	if s.latest != nil {
		if rec, ok := s.latest.Get(propertyID); ok {
			return rec.Clone(), nil
		}
	}

	recs, err := s.querier.QueryByField(ctx, domain.CollectionExtraction, extraction.FieldPropertyID, propertyID)
	if err != nil {
		return nil, err //nolint:wrapcheck // logged by batch
	}

	items := make([]extraction.Extraction, 0, len(recs))
	for _, r := range recs {
		e, err := extraction.FromRecord(r)
		if err != nil {
			s.logger.Warn("skipping invalid extraction",
				zap.String("id", r.ID()),
				zap.String("property_id", propertyID),
				zap.Error(err))
			continue
		}
		items = append(items, e)
	}

	latest, ok := extraction.Latest(items)
	if !ok {
		return nil, nil
	}
	if s.latest != nil {
		s.latest.Put(propertyID, latest.Results.Clone())
	}
	return latest.Results, nil
}

func (s *Service) countResolved(collection domain.Collection, rec domain.Record) {
	if rec == nil {
		s.count(collection, "absent")
		return
	}
	s.count(collection, "found")
}

func (s *Service) count(collection domain.Collection, status string) {
	if s.requestsTotal != nil {
		s.requestsTotal.WithLabelValues(string(collection), status).Inc()
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NewExtractionCache builds the per-property cache of latest extraction results.
func NewExtractionCache(capacity int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *fetchcache.Cache[domain.Record] {
	return fetchcache.New[domain.Record](capacity, ttl).WithMetrics(latestExtractionCache, cacheTotal)
}
