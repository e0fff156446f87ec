package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verte-zerg/passintel/internal/model"
)

// Collector records service metrics in a Prometheus registry.
type Collector struct {
	analyses     *prometheus.CounterVec
	breached     prometheus.Counter
	rateLimited  prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passintel_analyses_total",
			Help: "Password analyses recorded, by strength.",
		}, []string{"strength"}),
		breached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passintel_breached_total",
			Help: "Analyses whose password was found in the breach list.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passintel_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passintel_http_requests_total",
			Help: "HTTP responses by route and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "passintel_http_request_duration_seconds",
			Help:    "HTTP handler latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(c.analyses, c.breached, c.rateLimited, c.httpRequests, c.httpLatency)
	return c
}

// RecordAnalysis counts one stored analysis.
func (c *Collector) RecordAnalysis(strength model.Strength, breached bool) {
	c.analyses.WithLabelValues(string(strength)).Inc()
	if breached {
		c.breached.Inc()
	}
}

// RecordRateLimited counts one rejected request.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// RecordRequest counts one response and observes its latency.
func (c *Collector) RecordRequest(route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// MetricsHandler serves the scrape endpoint for gatherer.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
