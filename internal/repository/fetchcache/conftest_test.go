package fetchcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockSource implements the consumer interface for tests.
type mockSource struct {
	mu    sync.Mutex
	calls int
	getFn func(ctx context.Context, collection domain.Collection, id string) (domain.Record, error)
}

func (m *mockSource) Get(ctx context.Context, collection domain.Collection, id string) (domain.Record, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return domain.Record{"id": id}, nil
}

func (m *mockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
