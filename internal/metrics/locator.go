package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "sessions_total",
			Help:      "Search sessions by terminal outcome",
		},
		[]string{"outcome"}, // committed, aborted, failed, viewport
	)

	SessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storelocator",
			Name:      "session_duration_seconds",
			Help:      "Time from location input to terminal session state",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	PreciseRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "precise_requests_total",
			Help:      "Precise distance provider requests",
		},
		[]string{"mode", "status"},
	)

	PreciseRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storelocator",
			Name:      "precise_request_duration_seconds",
			Help:      "Precise distance provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	PreciseFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "precise_fallbacks_total",
			Help:      "Stores that kept their approximate distance after a failed precise lookup",
		},
	)

	DistanceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "distance_cache_total",
			Help:      "Precise distance cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "geocode_requests_total",
			Help:      "Geocoding provider requests",
		},
		[]string{"kind", "status"}, // kind: forward / reverse
	)
)

var locatorMetricsRegistered bool

// RegisterLocatorMetrics registers the search pipeline metrics. Must be called once from main.
func RegisterLocatorMetrics() {
	if locatorMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		SessionsTotal,
		SessionDuration,
		PreciseRequestsTotal,
		PreciseRequestDuration,
		PreciseFallbacksTotal,
		DistanceCacheTotal,
		GeocodeRequestsTotal,
	)
	locatorMetricsRegistered = true
}

// Register registers every collector exposed on /metrics.
func Register() {
	RegisterLocatorMetrics()
	RegisterHTTPMetrics()
}
