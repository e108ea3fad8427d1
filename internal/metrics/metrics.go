// Package metrics implements the observability hooks with Prometheus
// collectors and serves them on /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/redwire/pkg/observability"
)

const namespace = "redwire"

// Metrics holds the Prometheus collectors. Each instance owns its registry,
// so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runTicks     prometheus.Histogram
	runLines     prometheus.Histogram
	warnings     prometheus.Counter
	cacheOps     *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec
	requests     *prometheus.CounterVec
	reqDuration  *prometheus.HistogramVec
	inflightReqs prometheus.Gauge
}

// New creates and registers the collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulation runs by final state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of simulation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		runTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_ticks",
			Help:      "Ticks processed per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_lines",
			Help:      "Lines simulated per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_updates_total",
			Help:      "Updates dropped because of an invalid element.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by artifact kind and result.",
		}, []string{"kind", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by artifact kind.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status code.",
		}, []string{"method", "route", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflightReqs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	m.registry.MustRegister(
		m.runs, m.runDuration, m.runTicks, m.runLines, m.warnings,
		m.cacheOps, m.cacheBytes,
		m.requests, m.reqDuration, m.inflightReqs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Register installs m as the global simulation, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSimulationHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// OnRunStart implements observability.SimulationHooks.
func (m *Metrics) OnRunStart(_ context.Context, lines int) {
	m.runLines.Observe(float64(lines))
}

// OnRunComplete implements observability.SimulationHooks.
func (m *Metrics) OnRunComplete(_ context.Context, state string, ticks int, d time.Duration, err error) {
	if err != nil {
		state = "error"
	}
	m.runs.WithLabelValues(state).Inc()
	m.runDuration.Observe(d.Seconds())
	if err == nil {
		m.runTicks.Observe(float64(ticks))
	}
}

// OnWarning implements observability.SimulationHooks.
func (m *Metrics) OnWarning(context.Context, string) {
	m.warnings.Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheOps.WithLabelValues(kind, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheOps.WithLabelValues(kind, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheOps.WithLabelValues(kind, "set").Inc()
	m.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflightReqs.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflightReqs.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SimulationHooks = (*Metrics)(nil)
	_ observability.CacheHooks      = (*Metrics)(nil)
	_ observability.HTTPHooks       = (*Metrics)(nil)
)
