// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
	borrowOutcomes  *prometheus.CounterVec
	returnOutcomes  *prometheus.CounterVec
	openBorrows     prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "librarium_http_requests_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "librarium_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		borrowOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "librarium_borrows_total",
			Help: "Borrow attempts by outcome",
		}, []string{"outcome"}),
		returnOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "librarium_returns_total",
			Help: "Return attempts by outcome",
		}, []string{"outcome"}),
		openBorrows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "librarium_open_borrows",
			Help: "Borrow records currently open",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestDuration,
		c.borrowOutcomes,
		c.returnOutcomes,
		c.openBorrows,
	)

	return c
}

// RecordRequest records one HTTP response and its latency.
func (c *Collector) RecordRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RecordBorrow records a borrow attempt outcome ("ok", "unavailable",
// "duplicate", "not_found", "error").
func (c *Collector) RecordBorrow(outcome string) {
	c.borrowOutcomes.WithLabelValues(outcome).Inc()
}

// RecordReturn records a return attempt outcome ("ok", "not_found", "error").
func (c *Collector) RecordReturn(outcome string) {
	c.returnOutcomes.WithLabelValues(outcome).Inc()
}

// SetOpenBorrows updates the open-borrow gauge.
func (c *Collector) SetOpenBorrows(n int64) {
	c.openBorrows.Set(float64(n))
}

// GinMiddleware records status and latency for every request.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(g *gin.Context) {
		start := time.Now()
		g.Next()
		c.RecordRequest(g.Writer.Status(), time.Since(start))
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
