package core

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActionsTotal    *prometheus.CounterVec
	StorageUp       *prometheus.GaugeVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filemanager_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_actions_total",
				Help: "File-manager actions by storage and outcome",
			},
			[]string{"action", "storage", "status"},
		),
		StorageUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "filemanager_storage_up",
				Help: "Whether the last probe reached the storage (1) or not (0)",
			},
			[]string{"storage"},
		),
	}
}

// Middleware records request counts and latencies. Routes are labelled by
// their pattern so storage names do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())

		if q := c.Query("q"); q != "" && c.Request.Method != http.MethodOptions {
			action := files.Action(q)
			if !action.IsValid() {
				action = "unknown"
			}
			m.ActionsTotal.WithLabelValues(string(action), c.GetString("storage"), status).Inc()
		}
	}
}
