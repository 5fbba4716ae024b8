// Package metrics provides Prometheus metrics for the stationlens service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label of feed fetch metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Feed and snapshot
	feedFetches       *prometheus.CounterVec
	feedFetchLatency  prometheus.Histogram
	stationsLoaded    prometheus.Gauge
	snapshotSwaps     prometheus.Counter
	lastRefreshUnix   prometheus.Gauge
	defaultYearMissed prometheus.Counter

	// Derivation
	memoLookups   *prometheus.CounterVec
	memoEntries   *prometheus.GaugeVec
	deriveLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// defaultLatencyBuckets covers in-process work measured in milliseconds.
var defaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // shared default

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry. It must run
// at startup, before handlers read GetRegistry or any metric is recorded.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithPrometheusRegistry(registry))
	globalManager = NewManager(all...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stationlens",
		subsystem:        "dashboard",
		histogramBuckets: defaultLatencyBuckets,
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
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.feedFetches = auto.NewCounterVec(
		m.counterOpts("feed_fetches_total", "Feed fetch attempts by outcome"),
		[]string{"outcome"},
	)
	m.feedFetchLatency = auto.NewHistogram(m.histogramOpts(
		"feed_fetch_latency_milliseconds",
		"Feed fetch latency in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	))
	m.stationsLoaded = auto.NewGauge(m.gaugeOpts("stations_loaded", "Number of stations in the current snapshot"))
	m.snapshotSwaps = auto.NewCounter(m.counterOpts("snapshot_swaps_total", "Number of times the station snapshot was replaced"))
	m.lastRefreshUnix = auto.NewGauge(m.gaugeOpts("last_refresh_unix_seconds", "Unix time of the last successful feed refresh"))
	m.defaultYearMissed = auto.NewCounter(m.counterOpts(
		"default_year_fallback_total",
		"Times the end year fell back to the current calendar year because the feed had no default_year",
	))

	m.memoLookups = auto.NewCounterVec(
		m.counterOpts("memo_lookups_total", "Memo cache lookups by cache and result"),
		[]string{"cache", "result"},
	)
	m.memoEntries = auto.NewGaugeVec(
		m.gaugeOpts("memo_entries", "Entries currently held per memo cache"),
		[]string{"cache"},
	)
	m.deriveLatency = auto.NewHistogramVec(
		m.histogramOpts("derive_latency_milliseconds", "Latency of filter/count/series derivations in milliseconds", m.histogramBuckets),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordFeedFetch counts a feed fetch attempt and observes its latency.
func RecordFeedFetch(outcome string, latencyMs float64) {
	globalManager.feedFetches.WithLabelValues(outcome).Inc()
	globalManager.feedFetchLatency.Observe(latencyMs)
}

// RecordSnapshotSwap records a snapshot replacement with the new station count.
func RecordSnapshotSwap(stations int, unixSeconds int64) {
	globalManager.snapshotSwaps.Inc()
	globalManager.stationsLoaded.Set(float64(stations))
	globalManager.lastRefreshUnix.Set(float64(unixSeconds))
}

// RecordDefaultYearFallback counts a clock-based end year resolution.
func RecordDefaultYearFallback() {
	globalManager.defaultYearMissed.Inc()
}

// RecordMemoLookup counts a memo lookup; hit reports whether the value was cached.
func RecordMemoLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.memoLookups.WithLabelValues(cache, result).Inc()
}

// UpdateMemoEntries sets the number of entries held by a memo cache.
func UpdateMemoEntries(cache string, entries int) {
	globalManager.memoEntries.WithLabelValues(cache).Set(float64(entries))
}

// RecordDeriveLatency records how long a derivation took.
func RecordDeriveLatency(operation string, latencyMs float64) {
	globalManager.deriveLatency.WithLabelValues(operation).Observe(latencyMs)
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

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
