// Package metrics exposes Prometheus collectors for insight generation and calendar imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	ImportImported  = "imported"
	ImportFailed    = "failed"
	ImportDuplicate = "duplicate"
)

// Recorder is the reporting surface the services depend on
type Recorder interface {
	InsightsGenerated(outcome string, duration time.Duration)
	CacheRequest(result string)
	EventsImported(result string, count int)
}

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	insightsGenerated  *prometheus.CounterVec
	generationDuration prometheus.Histogram
	cacheRequests      *prometheus.CounterVec
	eventsImported     *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		insightsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_generated_total",
				Help: "Studio insight computations by outcome",
			},
			[]string{"outcome"},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "insights_generation_duration_seconds",
				Help:    "Time spent loading events and running the analysers",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_cache_requests_total",
				Help: "Insights cache lookups by result",
			},
			[]string{"result"},
		),
		eventsImported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calendar_events_imported_total",
				Help: "Calendar events processed by import result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.insightsGenerated,
		m.generationDuration,
		m.cacheRequests,
		m.eventsImported,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) InsightsGenerated(outcome string, duration time.Duration) {
	m.insightsGenerated.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
}

func (m *Metrics) CacheRequest(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) EventsImported(result string, count int) {
	if count <= 0 {
		return
	}
	m.eventsImported.WithLabelValues(result).Add(float64(count))
}

// Registry returns the registry backing Handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Noop discards everything
type Noop struct{}

func (Noop) InsightsGenerated(string, time.Duration) {}
func (Noop) CacheRequest(string)                     {}
func (Noop) EventsImported(string, int)              {}
