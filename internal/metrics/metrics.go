package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hairfluencer"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	EditsTotal     *prometheus.CounterVec
	EditDuration   *prometheus.HistogramVec
	SessionsActive prometheus.Gauge
	ExportsTotal   *prometheus.CounterVec
	RateLimited    prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edits_total",
				Help:      "Count of finished hairstyle edits",
			},
			[]string{"outcome"},
		),
		EditDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "edit_duration_seconds",
				Help:      "Time from submission to result or failure",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Current number of live try-on sessions",
			},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Count of save, share and bundle attempts",
			},
			[]string{"kind", "outcome"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Count of requests rejected by the rate limiter",
			},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EditsTotal,
		m.EditDuration,
		m.SessionsActive,
		m.ExportsTotal,
		m.RateLimited,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EditFinished records one edit run.
func (m *Metrics) EditFinished(outcome string, elapsed time.Duration) {
	m.EditsTotal.WithLabelValues(outcome).Inc()
	m.EditDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SessionsChanged sets the live session gauge.
func (m *Metrics) SessionsChanged(active int) {
	m.SessionsActive.Set(float64(active))
}

// ExportFinished records one export attempt.
func (m *Metrics) ExportFinished(kind, outcome string) {
	m.ExportsTotal.WithLabelValues(kind, outcome).Inc()
}

// Limited records one rate limited request.
func (m *Metrics) Limited() {
	m.RateLimited.Inc()
}
