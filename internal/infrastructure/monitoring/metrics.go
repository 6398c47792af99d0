package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

const namespace = "webdesk"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Desktop metrics
	WindowsOpened  prometheus.Counter
	Mutations      *prometheus.CounterVec
	Windows        *prometheus.GaugeVec
	PopoutMessages *prometheus.CounterVec
	CatalogEntries prometheus.Gauge

	// WebSocket metrics
	WSConnections *prometheus.GaugeVec
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	TotalRequests     int64       `json:"total_requests"`
	TotalErrors       int64       `json:"total_errors"`
	Mutations         int64       `json:"mutations"`
	ActiveConnections int64       `json:"active_connections"`
	TotalDuration     float64     `json:"total_duration_seconds"`
	RequestCount      int64       `json:"request_count"`
	Windows           types.Stats `json:"windows"`
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several servers can live in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		WindowsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "windows_opened_total",
				Help:      "Total number of windows opened",
			},
		),
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Desktop state mutations that produced a new snapshot",
			},
			[]string{"op"},
		),
		Windows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows",
				Help:      "Current window records by state",
			},
			[]string{"state"},
		),
		PopoutMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "popout_messages_total",
				Help:      "Popout protocol messages by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		CatalogEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entries",
				Help:      "Number of apps in the dock catalog",
			},
		),

		WSConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
			[]string{"channel"},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	return m
}

// Handler serves this collector's registry in the Prometheus exposition
// format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// IncWindowsOpened increments the windows opened counter
func (m *Metrics) IncWindowsOpened() {
	m.WindowsOpened.Inc()
}

// RecordMutation counts one published state change
func (m *Metrics) RecordMutation(op string) {
	m.Mutations.WithLabelValues(op).Inc()
	m.mu.Lock()
	m.snapshot.Mutations++
	m.mu.Unlock()
}

// SetWindowStats publishes registry gauges
func (m *Metrics) SetWindowStats(s types.Stats) {
	m.Windows.WithLabelValues("total").Set(float64(s.TotalWindows))
	m.Windows.WithLabelValues("visible").Set(float64(s.VisibleWindows))
	m.Windows.WithLabelValues("minimized").Set(float64(s.MinimizedWindows))
	m.Windows.WithLabelValues("popped_out").Set(float64(s.PoppedOut))
	m.Windows.WithLabelValues("pending").Set(float64(s.PendingPopouts))

	m.mu.Lock()
	m.snapshot.Windows = s
	m.mu.Unlock()
}

// RecordPopoutMessage records one popout protocol message. outcome is one
// of applied, ignored, stale, coalesced, dropped or sent.
func (m *Metrics) RecordPopoutMessage(msgType, outcome string) {
	m.PopoutMessages.WithLabelValues(msgType, outcome).Inc()
}

// SetCatalogEntries sets the dock catalog size
func (m *Metrics) SetCatalogEntries(count int) {
	m.CatalogEntries.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections on channel
func (m *Metrics) IncWSConnections(channel string) {
	m.WSConnections.WithLabelValues(channel).Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections on channel
func (m *Metrics) DecWSConnections(channel string) {
	m.WSConnections.WithLabelValues(channel).Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
