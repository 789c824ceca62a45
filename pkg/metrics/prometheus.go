// Package metrics provides Prometheus metrics for the chart service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Chart pipeline
	chartsComputed   prometheus.Counter
	chartFailures    *prometheus.CounterVec
	bodyDiagnostics  *prometheus.CounterVec
	assemblyLatency  prometheus.Histogram
	duplicateSubmits prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storedCharts prometheus.Gauge
	storeLatency *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vedichart",
		subsystem:        "charts",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		constLabels:      prometheus.Labels{},
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

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.chartsComputed = m.counter("computed_total", "Total number of charts assembled successfully")
	m.chartFailures = m.counterVec("failures_total", "Chart computations aborted, by reason", "reason")
	m.bodyDiagnostics = m.counterVec("body_diagnostics_total", "Per-body pipeline failures, by stage", "stage")
	m.assemblyLatency = m.histogram("assembly_latency_milliseconds", "Time spent assembling one chart")
	m.duplicateSubmits = m.counter("duplicate_submissions_total", "Chart requests skipped as already computed")

	m.queueSize = m.gauge("queue_size", "Current number of queued chart requests")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued chart requests")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Chart requests accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeued_total", "Chart requests handed to workers")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rejected enqueue attempts, by reason", "reason")

	m.workerCount = m.gauge("worker_count", "Number of chart workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker time per chart request")
	m.workerErrors = m.counter("worker_errors_total", "Chart requests a worker failed to complete")

	m.storedCharts = m.gauge("stored_total", "Number of charts held by the store")
	m.storeLatency = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "store_latency_milliseconds",
		Help: "Store operation latency", ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, []string{"op"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordChartComputed counts a successfully assembled chart and its latency.
func RecordChartComputed(latencyMs float64) {
	globalManager.chartsComputed.Inc()
	globalManager.assemblyLatency.Observe(latencyMs)
}

// RecordChartFailure counts an aborted chart computation.
func RecordChartFailure(reason string) {
	globalManager.chartFailures.WithLabelValues(reason).Inc()
}

// RecordBodyDiagnostic counts a per-body failure surfaced in a chart.
func RecordBodyDiagnostic(stage string) {
	globalManager.bodyDiagnostics.WithLabelValues(stage).Inc()
}

// RecordDuplicateSubmission counts a request answered from an earlier computation.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmits.Inc()
}

// UpdateQueueSize sets the queue size and utilization gauges.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted request.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a request handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected request.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes the time a worker spent on one request.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a request a worker could not complete.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateStoredCharts sets the stored charts gauge.
func UpdateStoredCharts(count int) {
	globalManager.storedCharts.Set(float64(count))
}

// RecordStoreLatency observes a store operation ("save", "get", "delete").
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// Registry returns the registry holding the global collectors.
func Registry() *prometheus.Registry {
	return customRegistry
}
