package fetchcache

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// source is the consumer interface for point lookups (ISP).
type source interface {
	Get(ctx context.Context, collection domain.Collection, id string) (domain.Record, error)
}

// Reader is a caching decorator over the document store client. Each
// collection gets its own cache. Absent documents are not cached.
type Reader struct {
	inner  source
	caches map[domain.Collection]*Cache[domain.Record]
}

// NewReader wraps inner. cacheTotal may be nil.
func NewReader(
	inner source,
	capacity int,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
) *Reader {
	caches := make(map[domain.Collection]*Cache[domain.Record])
	for _, c := range domain.Collections() {
		caches[c] = New[domain.Record](capacity, ttl).WithMetrics(string(c), cacheTotal)
	}
	return &Reader{inner: inner, caches: caches}
}

// WithClock overrides the time source of every collection cache.
func (r *Reader) WithClock(now func() time.Time) *Reader {
	for _, c := range r.caches {
		c.WithClock(now)
	}
	return r
}

// Get returns the cached record for (collection, id) or loads it from the
// store. Callers receive their own shallow copy.
func (r *Reader) Get(ctx context.Context, collection domain.Collection, id string) (domain.Record, error) {
	cache, ok := r.caches[collection]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", collection, domain.NewValidationError("collection", "is unknown"))
	}

	if rec, hit := cache.Get(id); hit {
		return rec.Clone(), nil
	}

	rec, err := r.inner.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", collection, id, err)
	}
	if rec == nil {
		return nil, nil
	}
	cache.Put(id, rec.Clone())
	return rec, nil
}

// Invalidate drops id from the collection cache.
func (r *Reader) Invalidate(collection domain.Collection, id string) {
	if cache, ok := r.caches[collection]; ok {
		cache.Remove(id)
	}
}

// Purge empties every collection cache.
func (r *Reader) Purge() {
	for _, c := range r.caches {
		c.Purge()
	}
}

// Stats reports per-collection cache statistics.
func (r *Reader) Stats() map[domain.Collection]Stats {
	out := make(map[domain.Collection]Stats, len(r.caches))
	for name, c := range r.caches {
		out[name] = c.Stats()
	}
	return out
}
