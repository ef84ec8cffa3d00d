package health

import (
	"context"
	"time"

	"github.com/kailas-cloud/estatedash/internal/repository/fetchcache"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the assistant is down but listings still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                      `json:"status"`
	Checks map[string]CheckResult      `json:"checks"`
	Caches map[string]fetchcache.Stats `json:"caches,omitempty"`
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	assistant AssistantChecker
	caches    CacheReporter
	timeout   time.Duration
}

// New creates a Service. assistant and caches can be nil.
func New(store StorePinger, assistant AssistantChecker, caches CacheReporter) *Service {
	return &Service{
		store:     store,
		assistant: assistant,
		caches:    caches,
		timeout:   DefaultCheckTimeout,
	}
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"store": s.run(ctx, s.store.Ping),
	}
	if s.assistant != nil {
		checks["assistant"] = s.run(ctx, s.assistant.HealthCheck)
	}

	status := Healthy
	switch {
	case checks["store"] == CheckError:
		status = Unhealthy
	case checks["assistant"] == CheckError:
		status = Degraded
	}

	r := Report{Status: status, Checks: checks}
	if s.caches != nil {
		r.Caches = make(map[string]fetchcache.Stats)
		for c, st := range s.caches.Stats() {
			r.Caches[string(c)] = st
		}
	}
	return r
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
