// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Read-path metrics
	ReadsServed    *prometheus.CounterVec
	FallbacksTaken *prometheus.CounterVec

	// Write-path metrics
	CallsSubmitted *prometheus.CounterVec
	CallErrors     *prometheus.CounterVec

	// Local store metrics
	LocalCampaigns   prometheus.Gauge
	ChangeSignals    prometheus.Counter
	LocalStoreErrors *prometheus.CounterVec

	// Delivery metrics
	ImpressionsRecorded prometheus.Counter
	ClicksRecorded      prometheus.Counter
	EventsDebounced     prometheus.Counter

	// Latency metrics
	ReadCallLatency *prometheus.HistogramVec

	// Health metrics
	LastLedgerRead prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "massa_adnet"
	}

	return &Metrics{
		ReadsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "reads_served_total",
			Help:      "Total reads served, by operation and source (ledger or local)",
		}, []string{"operation", "source"}),
		FallbacksTaken: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "fallbacks_taken_total",
			Help:      "Total ledger reads that fell back to the local store, by reason",
		}, []string{"operation", "reason"}),

		CallsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "calls_submitted_total",
			Help:      "Total contract call operations submitted, by function",
		}, []string{"function"}),
		CallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_errors_total",
			Help:      "Total failed contract call submissions, by function",
		}, []string{"function"}),

		LocalCampaigns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "local_campaigns",
			Help:      "Current number of campaigns in the local fallback store",
		}),
		ChangeSignals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "change_signals_total",
			Help:      "Total change notifications published by the local store",
		}),
		LocalStoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total local store errors, by operation",
		}, []string{"operation"}),

		ImpressionsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "impressions_recorded_total",
			Help:      "Total impressions recorded",
		}),
		ClicksRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "clicks_recorded_total",
			Help:      "Total clicks recorded",
		}),
		EventsDebounced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "events_debounced_total",
			Help:      "Total delivery events suppressed by the double-fire guard",
		}),

		ReadCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "read_call_latency_seconds",
			Help:      "Ledger read call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		LastLedgerRead: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_ledger_read_timestamp",
			Help:      "Unix timestamp of the last successful ledger read",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRead counts a read served from the given source.
func RecordRead(operation, source string) {
	DefaultMetrics.ReadsServed.WithLabelValues(operation, source).Inc()
}

// RecordFallback counts a ledger read that fell back to the local store.
func RecordFallback(operation, reason string) {
	DefaultMetrics.FallbacksTaken.WithLabelValues(operation, reason).Inc()
}

// RecordCall counts a contract call submission and its outcome.
func RecordCall(function string, err error) {
	DefaultMetrics.CallsSubmitted.WithLabelValues(function).Inc()
	if err != nil {
		DefaultMetrics.CallErrors.WithLabelValues(function).Inc()
	}
}

// RecordImpression increments the impressions counter.
func RecordImpression() {
	DefaultMetrics.ImpressionsRecorded.Inc()
}

// RecordClick increments the clicks counter.
func RecordClick() {
	DefaultMetrics.ClicksRecorded.Inc()
}

// RecordDebounced increments the debounced events counter.
func RecordDebounced() {
	DefaultMetrics.EventsDebounced.Inc()
}

// RecordReadLatency records ledger read call latency.
func RecordReadLatency(operation string, seconds float64) {
	DefaultMetrics.ReadCallLatency.WithLabelValues(operation).Observe(seconds)
	DefaultMetrics.LastLedgerRead.SetToCurrentTime()
}

// UpdateLocalCampaigns updates the local campaign count gauge.
func UpdateLocalCampaigns(n int) {
	DefaultMetrics.LocalCampaigns.Set(float64(n))
}
