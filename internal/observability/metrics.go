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
	// Ingestion metrics
	MessagesReceived      prometheus.Counter
	EventsDecoded         *prometheus.CounterVec
	EventsStored          *prometheus.CounterVec
	EventsSkipped         *prometheus.CounterVec
	EventProcessingErrors *prometheus.CounterVec
	Reconnects            prometheus.Counter

	// Enrichment metrics
	MetadataFetches *prometheus.CounterVec

	// Latency metrics
	EventProcessingLatency *prometheus.HistogramVec
	EnrichmentLatency      prometheus.Histogram

	// Scoring metrics
	ScorePassesTotal    *prometheus.CounterVec
	ScorePassDuration   prometheus.Histogram
	ScoreRecalculations *prometheus.CounterVec
	ScoreChanges        *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulScorePass prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_drc"
	}

	return &Metrics{
		// Ingestion metrics
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "messages_received_total",
			Help:      "Total number of log notifications received",
		}),
		EventsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_decoded_total",
			Help:      "Total number of events decoded by instruction",
		}, []string{"instruction"}),
		EventsStored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_stored_total",
			Help:      "Total number of events persisted by type",
		}, []string{"event_type"}),
		EventsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_skipped_total",
			Help:      "Total number of events skipped by reason",
		}, []string{"reason"}),
		EventProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_processing_errors_total",
			Help:      "Total number of event processing errors by type",
		}, []string{"event_type", "error_type"}),
		Reconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "reconnects_total",
			Help:      "Total number of websocket reconnects",
		}),

		// Enrichment metrics
		MetadataFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "metadata_fetches_total",
			Help:      "Total number of metadata fetch attempts by outcome",
		}, []string{"outcome"}),

		// Latency metrics
		EventProcessingLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_processing_latency_seconds",
			Help:      "Event processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "latency_seconds",
			Help:      "Metadata enrichment latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Scoring metrics
		ScorePassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "passes_total",
			Help:      "Total number of scoring passes by status",
		}, []string{"status"}),
		ScorePassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "pass_duration_seconds",
			Help:      "Scoring pass duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ScoreRecalculations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "recalculations_total",
			Help:      "Total number of entity recalculations by entity type",
		}, []string{"entity_type"}),
		ScoreChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "score_changes_total",
			Help:      "Total number of effective score changes by entity type",
		}, []string{"entity_type"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successfully processed event",
		}),
		LastSuccessfulScorePass: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_score_pass_timestamp",
			Help:      "Unix timestamp of last completed scoring pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMessageReceived increments the received notifications counter.
func RecordMessageReceived() {
	DefaultMetrics.MessagesReceived.Inc()
}

// RecordEventDecoded increments the decoded events counter.
func RecordEventDecoded(instruction string) {
	DefaultMetrics.EventsDecoded.WithLabelValues(instruction).Inc()
}

// RecordEventStored increments the stored events counter.
func RecordEventStored(eventType string) {
	DefaultMetrics.EventsStored.WithLabelValues(eventType).Inc()
}

// RecordEventSkipped increments the skipped events counter.
func RecordEventSkipped(reason string) {
	DefaultMetrics.EventsSkipped.WithLabelValues(reason).Inc()
}

// RecordEventError records an event processing error.
func RecordEventError(eventType, errorType string) {
	DefaultMetrics.EventProcessingErrors.WithLabelValues(eventType, errorType).Inc()
}

// RecordReconnect increments the reconnect counter.
func RecordReconnect() {
	DefaultMetrics.Reconnects.Inc()
}

// RecordMetadataFetch records a metadata fetch outcome ("hit" or "miss").
func RecordMetadataFetch(outcome string) {
	DefaultMetrics.MetadataFetches.WithLabelValues(outcome).Inc()
}

// RecordScorePass records a finished scoring pass.
func RecordScorePass(status string, durationSeconds float64) {
	DefaultMetrics.ScorePassesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScorePassDuration.Observe(durationSeconds)
}

// RecordScoreRecalculation increments the recalculation counter.
func RecordScoreRecalculation(entityType string) {
	DefaultMetrics.ScoreRecalculations.WithLabelValues(entityType).Inc()
}

// RecordScoreChange increments the effective score change counter.
func RecordScoreChange(entityType string) {
	DefaultMetrics.ScoreChanges.WithLabelValues(entityType).Inc()
}
