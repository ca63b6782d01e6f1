// Package metrics provides Prometheus metrics for the Ember feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Event log metrics
	eventsAppended  prometheus.Counter
	eventsDropped   prometheus.Counter
	eventsDuplicate prometheus.Counter
	storeReadErrors prometheus.Counter
	appendLatency   prometheus.Histogram

	// Feed metrics
	feedRequests   prometheus.Counter
	feedLatency    prometheus.Histogram
	feedCandidates prometheus.Histogram

	// Engine metrics
	engineComputations *prometheus.CounterVec

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueDropped     prometheus.Counter

	// Worker metrics
	workerActive    prometheus.Gauge
	workerProcessed prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager on a custom registry to avoid default Go metrics.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(prometheus.NewRegistry()))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ember",
		subsystem:        "feed",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_appended_total",
		Help: "Engagement events durably appended to the event log.",
	})
	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_dropped_total",
		Help: "Engagement events dropped because the store rejected the append.",
	})
	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_duplicate_total",
		Help: "Events acknowledged as duplicates by the idempotency check.",
	})
	m.storeReadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_read_errors_total",
		Help: "Event log reads that degraded to an empty history.",
	})
	m.appendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "append_latency_ms",
		Help:    "Event append latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.feedRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feed_requests_total",
		Help: "Ranked feed requests served.",
	})
	m.feedLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "feed_latency_ms",
		Help:    "End-to-end feed build and rank latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.feedCandidates = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "feed_candidates",
		Help:    "Number of candidates considered per feed request.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	m.engineComputations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "engine_computations_total",
		Help: "Score computations by engine (spark, quality, trust).",
	}, []string{"engine"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Events currently buffered in the ingest queue.",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured ingest queue capacity.",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Ingest queue fill ratio in [0,1].",
	})
	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dropped_total",
		Help: "Events dropped on enqueue due to a full queue.",
	})

	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_active",
		Help: "Append workers currently running.",
	})
	m.workerProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_processed_total",
		Help: "Events drained from the queue by append workers.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers against the global manager.

// RecordEventAppended increments the appended-events counter.
func RecordEventAppended() { globalManager.eventsAppended.Inc() }

// RecordEventDropped increments the dropped-events counter.
func RecordEventDropped() { globalManager.eventsDropped.Inc() }

// RecordEventDuplicate increments the duplicate-events counter.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordStoreReadError increments the degraded-read counter.
func RecordStoreReadError() { globalManager.storeReadErrors.Inc() }

// RecordAppendLatency observes one append latency sample.
func RecordAppendLatency(ms float64) { globalManager.appendLatency.Observe(ms) }

// RecordFeedRequest increments the feed-request counter.
func RecordFeedRequest() { globalManager.feedRequests.Inc() }

// RecordFeedLatency observes one feed latency sample.
func RecordFeedLatency(ms float64) { globalManager.feedLatency.Observe(ms) }

// ObserveFeedCandidates observes the candidate set size of one feed request.
func ObserveFeedCandidates(n int) { globalManager.feedCandidates.Observe(float64(n)) }

// RecordEngineComputation counts one computation for the named engine.
func RecordEngineComputation(engine string) {
	globalManager.engineComputations.WithLabelValues(engine).Inc()
}

// UpdateQueueSize sets the current queue depth gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill ratio gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueDrop counts one event dropped on enqueue.
func RecordQueueDrop() { globalManager.queueDropped.Inc() }

// UpdateWorkerActive sets the running-worker gauge.
func UpdateWorkerActive(count int) { globalManager.workerActive.Set(float64(count)) }

// RecordWorkerProcessed counts one event drained by a worker.
func RecordWorkerProcessed() { globalManager.workerProcessed.Inc() }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration sample.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// GetRegistry exposes the custom registry for the /healthz scrape handler.
func GetRegistry() *prometheus.Registry { return globalManager.registry }
