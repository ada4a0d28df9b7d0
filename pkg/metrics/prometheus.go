// Package metrics provides Prometheus metrics for the quality-check stage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the stage.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Verdict metrics
	batches        *prometheus.CounterVec
	reports        prometheus.Counter
	failedReports  prometheus.Counter
	issues         *prometheus.CounterVec
	checkLatency   prometheus.Histogram
	validationErrs prometheus.Counter

	// Collaborator metrics
	rulesLoads       *prometheus.CounterVec
	duplicateLookups *prometheus.CounterVec
	lookupLatency    prometheus.Histogram
	publishes        *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec

	// HTTP host metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vsm",
		subsystem:        "quality_check",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.batches = auto.NewCounterVec(m.counterOpts("batches_total",
		"Batches that reached a verdict, by status"), []string{"status"})
	m.reports = auto.NewCounter(m.counterOpts("reports_total",
		"Reports evaluated"))
	m.failedReports = auto.NewCounter(m.counterOpts("failed_reports_total",
		"Reports with at least one issue"))
	m.issues = auto.NewCounterVec(m.counterOpts("issues_total",
		"Issues raised, by check"), []string{"check"})
	m.checkLatency = auto.NewHistogram(m.histogramOpts("check_latency_milliseconds",
		"End-to-end latency of one quality check in milliseconds"))
	m.validationErrs = auto.NewCounter(m.counterOpts("validation_errors_total",
		"Batches rejected by shape validation"))

	m.rulesLoads = auto.NewCounterVec(m.counterOpts("rules_load_total",
		"Rule document loads, by result (hit, miss, error)"), []string{"result"})
	m.duplicateLookups = auto.NewCounterVec(m.counterOpts("duplicate_lookups_total",
		"Persisted-store duplicate lookups, by result (found, absent, error)"), []string{"result"})
	m.lookupLatency = auto.NewHistogram(m.histogramOpts("duplicate_lookup_latency_milliseconds",
		"Latency of a single persisted-store lookup in milliseconds"))
	m.publishes = auto.NewCounterVec(m.counterOpts("publish_total",
		"Quality events published, by result (sent, skipped, error)"), []string{"result"})
	m.stageFailures = auto.NewCounterVec(m.counterOpts("stage_failures_total",
		"Infrastructure failures that aborted a check, by kind"), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status code"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
}

// RecordBatch records the verdict of one batch.
func RecordBatch(status string, total, failed int) {
	globalManager.batches.WithLabelValues(status).Inc()
	globalManager.reports.Add(float64(total))
	globalManager.failedReports.Add(float64(failed))
}

// RecordIssue increments the issue counter for a check name.
func RecordIssue(check string) {
	globalManager.issues.WithLabelValues(check).Inc()
}

// RecordCheckLatency records end-to-end check latency in milliseconds.
func RecordCheckLatency(latencyMs float64) {
	globalManager.checkLatency.Observe(latencyMs)
}

// RecordValidationError counts a batch rejected by the normalizer.
func RecordValidationError() {
	globalManager.validationErrs.Inc()
}

// RecordRulesLoad counts a rule document load by result.
func RecordRulesLoad(result string) {
	globalManager.rulesLoads.WithLabelValues(result).Inc()
}

// RecordDuplicateLookup counts one persisted-store lookup and its latency.
func RecordDuplicateLookup(result string, latencyMs float64) {
	globalManager.duplicateLookups.WithLabelValues(result).Inc()
	globalManager.lookupLatency.Observe(latencyMs)
}

// RecordPublish counts a publish attempt by result.
func RecordPublish(result string) {
	globalManager.publishes.WithLabelValues(result).Inc()
}

// RecordStageFailure counts an infrastructure failure by kind.
func RecordStageFailure(kind string) {
	globalManager.stageFailures.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Configure rebuilds the global collectors on a fresh registry with opts
// applied. It must run before any handler captures GetRegistry.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(customRegistry))
	globalManager = NewManager(opts...)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
