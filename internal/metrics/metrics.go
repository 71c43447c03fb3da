// Package metrics exposes servo's Prometheus metrics on a private registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric.
const Namespace = "servo"

// Refresh outcomes.
const (
	OutcomeDownloaded = "downloaded"
	OutcomeCurrent    = "current"
	OutcomeFailed     = "failed"
)

// Collector records servo metrics.
type Collector struct {
	downloads     *prometheus.CounterVec
	downloadBytes *prometheus.CounterVec
	refreshUnits  *prometheus.CounterVec
	requests      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a collector with its own registry, including Go runtime metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	c.downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "downloads_total",
			Help:      "Total number of artifact downloads",
		},
		[]string{"kind", "status"},
	)

	c.downloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "download_bytes_total",
			Help:      "Total number of artifact bytes read from the registry",
		},
		[]string{"kind"},
	)

	c.refreshUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "refresh_units_total",
			Help:      "Total number of cache refresh units by outcome",
		},
		[]string{"outcome"},
	)

	c.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"api", "route", "code"},
	)

	c.registry.MustRegister(
		c.downloads,
		c.downloadBytes,
		c.refreshUnits,
		c.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveDownload records one finished download attempt.
func (c *Collector) ObserveDownload(kind string, bytes int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.downloads.WithLabelValues(kind, status).Inc()

	if bytes > 0 {
		c.downloadBytes.WithLabelValues(kind).Add(float64(bytes))
	}
}

// ObserveRefresh records the outcome of one refresh unit.
func (c *Collector) ObserveRefresh(downloaded bool, err error) {
	outcome := OutcomeCurrent

	switch {
	case err != nil:
		outcome = OutcomeFailed
	case downloaded:
		outcome = OutcomeDownloaded
	}

	c.refreshUnits.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one API request.
func (c *Collector) ObserveRequest(api, route string, code int) {
	c.requests.WithLabelValues(api, route, strconv.Itoa(code)).Inc()
}
