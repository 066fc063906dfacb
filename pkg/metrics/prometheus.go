// Package metrics provides Prometheus metrics for the wellness analytics
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Report metrics - what really matters for the analytics core
	reportsGenerated prometheus.Counter
	reportDuration   prometheus.Histogram
	reportFailures   *prometheus.CounterVec

	// Snapshot metrics - data store read path
	snapshotFetches       prometheus.Counter
	snapshotFetchDuration prometheus.Histogram

	// Data quality metrics - per-report findings
	duplicateClusters prometheus.Counter
	anomalyRecords    prometheus.Counter
	malformedEntries  prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wellness",
		subsystem:        "rpe_quality",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.reportsGenerated = prometheus.NewCounter(factory("reports_generated_total", "Total number of reports generated."))
	m.reportFailures = prometheus.NewCounterVec(factory("report_failures_total", "Report failures by reason."), []string{"reason"})
	m.reportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_duration_seconds",
		Help:      "End-to-end report computation time.",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotFetches = prometheus.NewCounter(factory("snapshot_fetches_total", "Total number of snapshot fetches."))
	m.snapshotFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_fetch_duration_seconds",
		Help:      "Snapshot fetch time across all collections.",
		Buckets:   m.histogramBuckets,
	})

	m.duplicateClusters = prometheus.NewCounter(factory("duplicate_clusters_total", "Duplicate clusters found across reports."))
	m.anomalyRecords = prometheus.NewCounter(factory("anomaly_records_total", "Anomaly records found across reports."))
	m.malformedEntries = prometheus.NewCounter(factory("malformed_entries_total", "Malformed entries found across reports."))

	m.httpRequests = prometheus.NewCounterVec(factory("http_requests_total", "HTTP requests by endpoint, method, and status."), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes.",
	})
	m.systemGoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})

	if !m.enabled {
		return
	}
	m.registry.MustRegister(
		m.reportsGenerated,
		m.reportFailures,
		m.reportDuration,
		m.snapshotFetches,
		m.snapshotFetchDuration,
		m.duplicateClusters,
		m.anomalyRecords,
		m.malformedEntries,
		m.httpRequests,
		m.httpRequestDuration,
		m.systemMemoryUsage,
		m.systemGoroutineCount,
	)
}

// RecordReportGenerated records one successful report and its duration.
func RecordReportGenerated(d time.Duration) {
	globalManager.reportsGenerated.Inc()
	globalManager.reportDuration.Observe(d.Seconds())
}

// RecordReportFailure records a failed report by reason.
func RecordReportFailure(reason string) {
	globalManager.reportFailures.WithLabelValues(reason).Inc()
}

// RecordSnapshotFetch records one snapshot fetch and its duration.
func RecordSnapshotFetch(d time.Duration) {
	globalManager.snapshotFetches.Inc()
	globalManager.snapshotFetchDuration.Observe(d.Seconds())
}

// RecordQualityCounts records the data-quality findings of one report.
func RecordQualityCounts(duplicates, anomalies, malformed int) {
	globalManager.duplicateClusters.Add(float64(duplicates))
	globalManager.anomalyRecords.Add(float64(anomalies))
	globalManager.malformedEntries.Add(float64(malformed))
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records a completed HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// UpdateSystemMemoryUsage updates the allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry backing the global manager, for
// serving /metrics without the default Go collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
