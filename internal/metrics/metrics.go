// Package metrics provides Prometheus metrics for newsdash.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker states as reported by BreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

var (
	// HTTPRequestsTotal counts BFF requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdash",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures BFF request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsdash",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RemoteCallsTotal counts calls to the news API by operation and outcome.
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdash",
			Name:      "remote_calls_total",
			Help:      "Total number of news API calls",
		},
		[]string{"operation", "outcome"},
	)

	// RemoteCallDuration measures news API call latency.
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsdash",
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of news API calls in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"operation"},
	)

	// BatchTotal counts dashboard batch fetches by outcome.
	BatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsdash",
			Name:      "batch_fetch_total",
			Help:      "Total number of dashboard batch fetches",
		},
		[]string{"outcome"},
	)

	// BatchDuration measures how long a full dashboard batch takes.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsdash",
			Name:      "batch_fetch_duration_seconds",
			Help:      "Duration of dashboard batch fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// BreakerState tracks the news API circuit breaker
	// (0 = closed, 1 = half-open, 2 = open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "newsdash",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"name"},
	)

	// StoreArticles reports the size of the loaded and filtered collections.
	StoreArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "newsdash",
			Name:      "store_articles",
			Help:      "Number of articles held by the dashboard store",
		},
		[]string{"view"},
	)
)

// RecordHTTP records one served request.
func RecordHTTP(method, route, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordRemoteCall records one news API call.
func RecordRemoteCall(operation, outcome string, duration float64) {
	RemoteCallsTotal.WithLabelValues(operation, outcome).Inc()
	RemoteCallDuration.WithLabelValues(operation).Observe(duration)
}

// RecordBatch records one dashboard batch fetch.
func RecordBatch(outcome string, duration float64) {
	BatchTotal.WithLabelValues(outcome).Inc()
	BatchDuration.Observe(duration)
}

// SetBreakerState sets the gauge for the named breaker.
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// SetStoreSize records the loaded and filtered collection sizes.
func SetStoreSize(loaded, filtered int) {
	StoreArticles.WithLabelValues("loaded").Set(float64(loaded))
	StoreArticles.WithLabelValues("filtered").Set(float64(filtered))
}
