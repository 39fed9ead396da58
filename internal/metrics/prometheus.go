// Package metrics provides Prometheus metrics for the FIPE client and favorites store
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fipe_api_calls_total",
			Help: "Total number of calls made to the price table providers",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fipe_api_call_duration_seconds",
			Help:    "Duration of calls to the price table providers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Favorites metrics
	FavoritesOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fipe_favorites_operations_total",
			Help: "Favorites operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	FavoritesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fipe_favorites_stored",
			Help: "Number of entries in the favorites slot after the last reload",
		},
	)
)

// ObserveAPICall records one upstream call.
func ObserveAPICall(endpoint string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// ObserveFavorites records one favorites operation.
func ObserveFavorites(operation, outcome string) {
	FavoritesOperations.WithLabelValues(operation, outcome).Inc()
}
