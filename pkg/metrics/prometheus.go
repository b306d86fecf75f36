// Package metrics provides Prometheus metrics for the tripmap analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds.
var defaultBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // shared default

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Analytics
	projectionsComputed prometheus.Counter
	projectionLatency   prometheus.Histogram
	rankingsComputed    prometheus.Counter
	rankingLatency      prometheus.Histogram
	noDataResults       *prometheus.CounterVec

	// Cache
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions prometheus.Counter
	cacheSize      prometheus.Gauge

	// Repository
	repositoryQueryLatency *prometheus.HistogramVec
	repositoryErrors       *prometheus.CounterVec
	repositoryRowsWritten  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Errors and system
	errorRateByComponent *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tripmap",
		subsystem:        "analytics",
		histogramBuckets: defaultBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.projectionsComputed = m.counter("projections_computed_total", "Area metric projections computed")
	m.projectionLatency = m.histogram("projection_latency_milliseconds", "Area metric projection latency in milliseconds")
	m.rankingsComputed = m.counter("rankings_computed_total", "POI rankings computed")
	m.rankingLatency = m.histogram("ranking_latency_milliseconds", "POI ranking latency in milliseconds")
	m.noDataResults = m.counterVec("no_data_results_total", "Results rendered as no data, by kind and reason", "kind", "reason")

	m.cacheHits = m.counterVec("cache_hits_total", "Memo cache hits by result kind", "kind")
	m.cacheMisses = m.counterVec("cache_misses_total", "Memo cache misses by result kind", "kind")
	m.cacheEvictions = m.counter("cache_evictions_total", "Memo cache evictions")
	m.cacheSize = m.gauge("cache_size", "Current number of memoized results")

	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Repository query latency by operation", "op")
	m.repositoryErrors = m.counterVec("repository_errors_total", "Repository errors by operation", "op")
	m.repositoryRowsWritten = m.counterVec("repository_rows_written_total", "Rows written by table", "table")

	m.queueSize = m.gauge("queue_size", "Current number of queued warmup jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued warmup jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured worker count")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("http_errors_total", "HTTP errors by endpoint, method and error type",
		"endpoint", "method", "error_type")

	m.errorRateByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordProjection records a computed projection and its latency.
func RecordProjection(latencyMs float64) {
	globalManager.projectionsComputed.Inc()
	globalManager.projectionLatency.Observe(latencyMs)
}

// RecordRanking records a computed POI ranking and its latency.
func RecordRanking(latencyMs float64) {
	globalManager.rankingsComputed.Inc()
	globalManager.rankingLatency.Observe(latencyMs)
}

// RecordNoData counts a result rendered as no data.
func RecordNoData(kind, reason string) {
	globalManager.noDataResults.WithLabelValues(kind, reason).Inc()
}

// RecordCacheHit counts a memo cache hit.
func RecordCacheHit(kind string) {
	globalManager.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss counts a memo cache miss.
func RecordCacheMiss(kind string) {
	globalManager.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordCacheEviction counts an evicted cache entry.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// UpdateCacheSize sets the current cache size.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// RecordRepositoryQuery records the latency of a repository operation.
func RecordRepositoryQuery(op string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordRepositoryError counts a failed repository operation.
func RecordRepositoryError(op string) {
	globalManager.repositoryErrors.WithLabelValues(op).Inc()
}

// RecordRowsWritten counts rows inserted into a table.
func RecordRowsWritten(table string, n int) {
	globalManager.repositoryRowsWritten.WithLabelValues(table).Add(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
