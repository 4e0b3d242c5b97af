// Package metrics provides Prometheus metrics for the routedash client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Outcome labels shared by the poll and recommendation counters.
const (
	OutcomeSuccess    = "success"
	OutcomeStatus     = "status_error"
	OutcomeTransport  = "transport_error"
	OutcomeMalformed  = "malformed_body"
	OutcomeValidation = "validation_error"
	OutcomeCanceled   = "canceled"
)

// Manager owns every metric exported by the process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Health poller
	healthPolls         *prometheus.CounterVec
	healthPollLatency   prometheus.Histogram
	healthDiscarded     *prometheus.CounterVec
	healthTicksSkipped  *prometheus.CounterVec
	healthServices      *prometheus.GaugeVec
	healthLastSuccessTS prometheus.Gauge

	// Recommendation requester
	recommendRequests *prometheus.CounterVec
	recommendLatency  *prometheus.HistogramVec
	recommendResults  prometheus.Histogram
	recommendInFlight prometheus.Gauge

	// Local HTTP API
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "routedash",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.healthPolls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_polls_total"),
		Help:        "Health polls issued against /service-health by session and outcome",
		ConstLabels: labels,
	}, []string{"session", "outcome"})

	m.healthPollLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_poll_latency_milliseconds"),
		Help:        "Latency of completed health polls in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.healthDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_responses_discarded_total"),
		Help:        "Health responses dropped because a newer poll was issued or the session stopped",
		ConstLabels: labels,
	}, []string{"session", "reason"})

	m.healthTicksSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_ticks_skipped_total"),
		Help:        "Poll ticks skipped because the previous poll was still in flight",
		ConstLabels: labels,
	}, []string{"session"})

	m.healthServices = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_services"),
		Help:        "Services in the current health snapshot by classification",
		ConstLabels: labels,
	}, []string{"session", "class"})

	m.healthLastSuccessTS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("health_last_success_unixtime"),
		Help:        "Unix time of the last applied health snapshot",
		ConstLabels: labels,
	})

	m.recommendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_requests_total"),
		Help:        "Recommendation submissions by requested mode and outcome",
		ConstLabels: labels,
	}, []string{"mode", "outcome"})

	m.recommendLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_latency_milliseconds"),
		Help:        "Latency of recommendation requests in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"mode"})

	m.recommendResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_results"),
		Help:        "Number of recommendations returned per successful request",
		Buckets:     []float64{0, 1, 2, 5, 10, 20, 50},
		ConstLabels: labels,
	})

	m.recommendInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_in_flight"),
		Help:        "Recommendation requests currently awaiting a response",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Requests served by the local dashboard API",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "Duration of requests served by the local dashboard API",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Health poller metrics.

// RecordHealthPoll counts one completed poll for session with outcome.
func RecordHealthPoll(session, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthPolls.WithLabelValues(session, outcome).Inc()
}

// RecordHealthPollLatency records poll latency in milliseconds.
func RecordHealthPollLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthPollLatency.Observe(latencyMs)
}

// RecordHealthDiscarded counts a poll response that was not applied.
func RecordHealthDiscarded(session, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthDiscarded.WithLabelValues(session, reason).Inc()
}

// RecordHealthTickSkipped counts a tick that found a poll still in flight.
func RecordHealthTickSkipped(session string) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthTicksSkipped.WithLabelValues(session).Inc()
}

// UpdateHealthServices sets the healthy/unhealthy split of the current snapshot.
func UpdateHealthServices(session string, healthy, unhealthy int) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthServices.WithLabelValues(session, "healthy").Set(float64(healthy))
	globalManager.healthServices.WithLabelValues(session, "unhealthy").Set(float64(unhealthy))
}

// MarkHealthSuccess stamps the time of the last applied snapshot.
func MarkHealthSuccess(at time.Time) {
	if !globalManager.enabled {
		return
	}
	globalManager.healthLastSuccessTS.Set(float64(at.Unix()))
}

// Recommendation metrics.

// RecordRecommendRequest counts one submission.
func RecordRecommendRequest(mode, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendRequests.WithLabelValues(mode, outcome).Inc()
}

// RecordRecommendLatency records request latency in milliseconds.
func RecordRecommendLatency(mode string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordRecommendResults records how many recommendations a response carried.
func RecordRecommendResults(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendResults.Observe(float64(count))
}

// AddRecommendInFlight adjusts the in-flight gauge by delta.
func AddRecommendInFlight(delta int) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendInFlight.Add(float64(delta))
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System metrics.

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

// SystemRefreshInterval is how often the process should refresh the system
// gauges of the global manager.
func SystemRefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// SetEnabled toggles recording for the domain metrics of the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
