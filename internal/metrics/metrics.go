// Package metrics provides Prometheus metrics for trade fetching and normalization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts backend fetches by provider and result (ok|error).
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradefeed_fetch_total",
		Help: "Trade fetches against the backend",
	}, []string{"provider", "result"})

	// FetchDuration observes the latency of backend fetches.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradefeed_fetch_duration_seconds",
		Help:    "Latency of trade fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// TradesNormalized counts records successfully normalized, per pair.
	TradesNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradefeed_trades_normalized_total",
		Help: "Trade records normalized into base/quote order",
	}, []string{"pair"})

	// NormalizeErrors counts records rejected by the normalizer, per error kind.
	NormalizeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradefeed_normalize_errors_total",
		Help: "Trade records rejected during normalization",
	}, []string{"kind"})
)

// ObserveFetch records one fetch outcome.
func ObserveFetch(provider string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	FetchTotal.WithLabelValues(provider, result).Inc()
	FetchDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}
