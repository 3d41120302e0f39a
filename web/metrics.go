package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the editing session.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter

	cacheHits       prometheus.Gauge
	cacheMisses     prometheus.Gauge
	cacheEvictions  prometheus.Gauge
	decodeErrors    prometheus.Gauge
	cachedFrames    prometheus.Gauge
	segmentCount    prometheus.Gauge
	virtualDuration prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics for the session.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skipcut_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skipcut_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		cacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_frame_cache_hits",
			Help: "Frame cache hits since the session started",
		}),
		cacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_frame_cache_misses",
			Help: "Frame cache misses since the session started",
		}),
		cacheEvictions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_frame_cache_evictions",
			Help: "Frames evicted from the cache since the session started",
		}),
		decodeErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_decode_errors",
			Help: "Decoder failures since the session started",
		}),
		cachedFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_cached_frames",
			Help: "Frames currently held by the cache",
		}),
		segmentCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_segments",
			Help: "Kept segments on the virtual timeline",
		}),
		virtualDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skipcut_virtual_duration_seconds",
			Help: "Virtual (contracted) timeline duration in seconds",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.cacheHits,
		m.cacheMisses,
		m.cacheEvictions,
		m.decodeErrors,
		m.cachedFrames,
		m.segmentCount,
		m.virtualDuration,
	)
	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values from
// the cache and timeline.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
