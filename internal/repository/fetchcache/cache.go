// Package fetchcache holds the TTL + LRU cache in front of the document store.
package fetchcache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultTTL is how long an entry stays fresh.
	DefaultTTL = 300 * time.Second
	// DefaultCapacity bounds the number of entries per cache.
	DefaultCapacity = 1000
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is a bounded, time-expiring key-value cache. Entries older than the
// TTL are never returned; on overflow the least recently used entry goes.
// Safe for concurrent use.
type Cache[V any] struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, entry[V]]
	ttl    time.Duration
	now    func() time.Time
	hits   uint64
	misses uint64

	name       string
	cacheTotal *prometheus.CounterVec
}

// New creates a cache. Non-positive capacity or ttl fall back to the defaults.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	l, err := simplelru.NewLRU[string, entry[V]](capacity, nil)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Cache[V]{lru: l, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.now = now
	return c
}

// WithMetrics reports hits and misses to cacheTotal under the given cache
// label. cacheTotal has labels "cache" and "result".
func (c *Cache[V]) WithMetrics(name string, cacheTotal *prometheus.CounterVec) *Cache[V] {
	c.name = name
	c.cacheTotal = cacheTotal
	return c
}

// Get returns the value for key if present and fresh. Stale entries are
// evicted on the way out.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if ok && c.now().Sub(e.storedAt) >= c.ttl {
		c.lru.Remove(key)
		ok = false
	}
	if !ok {
		c.misses++
		c.inc("miss")
		var zero V
		return zero, false
	}
	c.hits++
	c.inc("hit")
	return e.value, true
}

// Put stores value under key, resetting its age.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, storedAt: c.now()})
}

// Remove drops key if present.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len returns the number of stored entries, including ones not yet found stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every entry. Counters are kept.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats returns hit/miss counters and the current size.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len()}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *Cache[V]) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(c.name, result).Inc()
	}
}
