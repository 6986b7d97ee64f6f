package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	AuthEvents        *prometheus.CounterVec
	LoginResolutions  *prometheus.CounterVec
	KioskSessions     prometheus.Gauge
	BackendReadErrors *prometheus.CounterVec
}

// New registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kkakdugi",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kkakdugi",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kkakdugi",
			Name:      "auth_events_total",
			Help:      "Auth state change events delivered to subscribers.",
		}, []string{"event"}),
		LoginResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kkakdugi",
			Name:      "login_resolutions_total",
			Help:      "How pending logins were resolved: event, timeout or canceled.",
		}, []string{"outcome"}),
		KioskSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kkakdugi",
			Name:      "kiosk_sessions",
			Help:      "Live kiosk practice sessions.",
		}),
		BackendReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kkakdugi",
			Name:      "backend_read_errors_total",
			Help:      "Backend read failures swallowed into empty results.",
		}, []string{"table"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuthEvents,
		m.LoginResolutions,
		m.KioskSessions,
		m.BackendReadErrors,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
