// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interview_memory"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Fragment metrics
	FragmentsEmitted   *prometheus.CounterVec
	GroupsOpened       prometheus.Counter
	GroupsClosed       prometheus.Counter
	GroupsDropped      *prometheus.CounterVec
	AnnotationsApplied prometheus.Counter
	AnnotationsDropped prometheus.Counter

	// Classification metrics
	Classifications     *prometheus.CounterVec
	ClassifierCacheHits prometheus.Counter
	ClassifierFallbacks prometheus.Counter
	ClassifierLatency   prometheus.Histogram

	// Memory metrics
	MemoriesSaved     prometheus.Counter
	SaveFailures      *prometheus.CounterVec
	SearchesTotal     prometheus.Counter
	SearchFailures    *prometheus.CounterVec
	SearchLatency     prometheus.Histogram
	EmbeddingLatency  *prometheus.HistogramVec
	EmbeddingFailures *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		FragmentsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_emitted_total",
			Help:      "Total number of transcript fragments emitted",
		}, []string{"final"}),
		GroupsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_opened_total",
			Help:      "Total number of question groups opened",
		}),
		GroupsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_closed_total",
			Help:      "Total number of question groups closed by sentence punctuation",
		}),
		GroupsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_dropped_total",
			Help:      "Total number of question groups dropped",
		}, []string{"reason"}),
		AnnotationsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_applied_total",
			Help:      "Total number of group annotations applied to the display list",
		}),
		AnnotationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_dropped_total",
			Help:      "Total number of late annotations dropped after a display reset",
		}),

		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Total number of question classifications by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		ClassifierCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_cache_hits_total",
			Help:      "Total number of LLM classifier cache hits",
		}),
		ClassifierFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_fallbacks_total",
			Help:      "Total number of LLM classifier failures that fell back to keyword matching",
		}),
		ClassifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_latency_seconds",
			Help:      "Latency of LLM classification calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		MemoriesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_saved_total",
			Help:      "Total number of memories persisted",
		}),
		SaveFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_failures_total",
			Help:      "Total number of failed save-memory requests",
		}, []string{"reason"}),
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of memory searches executed",
		}),
		SearchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failures_total",
			Help:      "Total number of failed memory searches",
		}, []string{"stage"}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_latency_seconds",
			Help:      "End-to-end latency of memory searches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		EmbeddingLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_latency_seconds",
			Help:      "Latency of embedding calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),
		EmbeddingFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_failures_total",
			Help:      "Total number of failed embedding calls",
		}, []string{"provider"}),

		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active live capture sessions",
		}),
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of live capture sessions started",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka publish attempts",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of failed Kafka publishes",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Latency of Kafka publishes in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"topic", "event_type"}),
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, seconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
	m.KafkaPublishLatency.WithLabelValues(topic, eventType).Observe(seconds)
}

// RecordClassification records a classification outcome.
func (m *Metrics) RecordClassification(strategy string, isQuestion bool) {
	outcome := "negative"
	if isQuestion {
		outcome = "question"
	}
	m.Classifications.WithLabelValues(strategy, outcome).Inc()
}

// RecordSearch records a completed memory search.
func (m *Metrics) RecordSearch(start time.Time, err error, stage string) {
	m.SearchesTotal.Inc()
	if err != nil {
		m.SearchFailures.WithLabelValues(stage).Inc()
	}
	m.SearchLatency.Observe(time.Since(start).Seconds())
}
