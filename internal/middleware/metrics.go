package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that hit no registered route, keeping raw
// paths out of the label set.
const unmatchedRoute = "unmatched"

// Metrics records per-route HTTP request counts and latencies.
type Metrics struct {
	skipPath        string
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the request collectors and registers them with reg.
// Requests to skipPath (usually the exposition endpoint) are not recorded.
func NewMetrics(reg prometheus.Registerer, skipPath string) (*Metrics, error) {
	m := &Metrics{
		skipPath: skipPath,
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the gin middleware that observes each request.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.skipPath != "" && c.Request.URL.Path == m.skipPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		m.requestCount.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
