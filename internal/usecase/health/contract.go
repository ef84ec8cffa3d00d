package health

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/repository/fetchcache"
)

// StorePinger checks document store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// AssistantChecker checks assistant backend availability.
type AssistantChecker interface {
	HealthCheck(ctx context.Context) error
}

// CacheReporter exposes fetch cache counters.
type CacheReporter interface {
	Stats() map[domain.Collection]fetchcache.Stats
}
