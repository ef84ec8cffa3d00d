package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dashboard core Prometheus metrics.
var (
	FetchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Fetch cache hits and misses",
		},
		[]string{"cache", "result"}, // result: "hit" / "miss"
	)

	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Per-id lookups issued by the parallel fetcher",
		},
		[]string{"collection", "status"}, // status: "found" / "absent" / "error"
	)

	FetchBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_batch_duration_seconds",
			Help:      "Duration of one parallel fetch batch",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"collection"},
	)

	ImageDecodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_decode_total",
			Help:      "Property image decode attempts",
		},
		[]string{"result"}, // "ok" / "error"
	)

	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant chat and draft requests",
		},
		[]string{"provider", "kind", "status"},
	)

	AssistantRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_request_duration_seconds",
			Help:      "Assistant request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "kind"},
	)
)

var dashboardMetricsRegistered bool

// RegisterDashboardMetrics registers the dashboard metrics. Must be called once from main.
func RegisterDashboardMetrics() {
	if dashboardMetricsRegistered {
		return
	}
	prometheus.MustRegister(FetchCacheTotal)
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(FetchBatchDuration)
	prometheus.MustRegister(ImageDecodeTotal)
	prometheus.MustRegister(AssistantRequestsTotal)
	prometheus.MustRegister(AssistantRequestDuration)
	dashboardMetricsRegistered = true
}
