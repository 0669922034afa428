// Package metrics provides the centralized Prometheus metrics registry
// for the signal service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FetchCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "fetch_cycles_total",
		Help:      "Total number of odds fetch cycles",
	})
	UpstreamErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "upstream_errors_total",
		Help:      "Total number of failed upstream odds requests",
	}, []string{"endpoint"})
	QuotesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "quotes_dropped_total",
		Help:      "Total number of quotes dropped during aggregation",
	}, []string{"reason"})
	MarketSignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "market_signals_total",
		Help:      "Total number of market signals produced, by decision",
	}, []string{"decision"})
)

// Gauge metrics
var (
	GamesInSnapshot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "games_in_snapshot",
		Help:      "Number of games in the latest snapshot",
	})
	APIQuotaRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "api_quota_remaining",
		Help:      "Requests remaining on the upstream odds API key",
	})
	SnapshotAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "snapshot_age_seconds",
		Help:      "Age of the latest served snapshot",
	})
)

// Histogram metrics
var (
	FetchCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "fetch_cycle_duration_seconds",
		Help:      "Duration of full odds fetch cycles in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
	})
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of engine aggregation passes in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FetchCyclesTotal)
		registry.MustRegister(UpstreamErrorsTotal)
		registry.MustRegister(QuotesDroppedTotal)
		registry.MustRegister(MarketSignalsTotal)

		registry.MustRegister(GamesInSnapshot)
		registry.MustRegister(APIQuotaRemaining)
		registry.MustRegister(SnapshotAgeSeconds)

		registry.MustRegister(FetchCycleDuration)
		registry.MustRegister(AggregationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFetchCycle records a completed fetch cycle.
func RecordFetchCycle(durationSeconds float64) {
	FetchCyclesTotal.Inc()
	FetchCycleDuration.Observe(durationSeconds)
}

// RecordUpstreamError records a failed upstream request.
func RecordUpstreamError(endpoint string) {
	UpstreamErrorsTotal.WithLabelValues(endpoint).Inc()
}

// RecordQuoteDropped records a quote dropped for a data-quality reason.
func RecordQuoteDropped(reason string) {
	QuotesDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordMarketSignal records a produced market signal by decision.
func RecordMarketSignal(decision string) {
	MarketSignalsTotal.WithLabelValues(decision).Inc()
}
