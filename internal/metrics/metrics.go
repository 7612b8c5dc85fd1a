package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "runtime_config"

// loadStatuses lists every status the config load gauge reports, so exactly
// one series is 1 at a time.
var loadStatuses = []string{"loaded", "not_found", "disabled", "unavailable", "malformed"}

// Collector records request and configuration metrics.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	configLoad      *prometheus.GaugeVec
	configKeys      *prometheus.GaugeVec
}

// NewCollector registers all metrics on registry. A nil registry gets a fresh
// one with the Go and process collectors attached.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
		configLoad: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "load_status",
			Help:      "Outcome of the startup runtime config load (1 for the active status).",
		}, []string{"source", "status"}),
		configKeys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Number of resolved runtime config keys per partition.",
		}, []string{"partition"}),
	}

	registry.MustRegister(c.requests, c.requestDuration, c.configLoad, c.configKeys)
	return c
}

// ObserveRequest records one completed HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordConfigLoad publishes the result of the startup config resolution.
func (c *Collector) RecordConfigLoad(source, status string, publicKeys, serverKeys int) {
	if c == nil {
		return
	}
	for _, s := range loadStatuses {
		value := 0.0
		if s == status {
			value = 1
		}
		c.configLoad.WithLabelValues(source, s).Set(value)
	}
	c.configKeys.WithLabelValues("public").Set(float64(publicKeys))
	c.configKeys.WithLabelValues("server").Set(float64(serverKeys))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
