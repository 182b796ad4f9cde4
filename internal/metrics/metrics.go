package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deepseek_gql"

// MethodOther labels every request method the server does not route.
const MethodOther = "other"

// MethodLabel maps an HTTP method onto the bounded label set.
func MethodLabel(method string) string {
	switch method {
	case http.MethodPost, http.MethodOptions:
		return method
	default:
		return MethodOther
	}
}

// Upstream call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Collector owns a private Prometheus registry so tests and multiple
// handlers in one process never collide on registration.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram

	upstream         *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request duration in seconds.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of chat-completion calls by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Chat-completion call duration in seconds.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	c.registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.upstream,
		c.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRequest records one inbound HTTP request. Methods other than POST
// and OPTIONS share the "other" label so clients cannot grow the series set.
func (c *Collector) ObserveRequest(method string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsCounter(method, code).Inc()
	c.requestDuration.Observe(d.Seconds())
}

// ObserveUpstream records one chat-completion call.
func (c *Collector) ObserveUpstream(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.upstream.WithLabelValues(outcome).Inc()
	c.upstreamDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RequestsCounter returns the request counter child for method and code,
// with method mapped through MethodLabel.
func (c *Collector) RequestsCounter(method string, code int) prometheus.Counter {
	return c.requests.WithLabelValues(MethodLabel(method), strconv.Itoa(code))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
