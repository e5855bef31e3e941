package middlewares

import (
	"strconv"
	"time"

	"github.com/buildwithgo/amarodoc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// NewMetrics registers the request collectors with reg. A nil reg uses a
// fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware observes every request. Requests are labelled with the pattern
// of the matched route rather than the raw path.
func (m *Metrics) Middleware() amarodoc.Middleware {
	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Status()
			if err != nil {
				status = amarodoc.StatusCode(err)
			}
			route := c.RoutePath()
			m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() amarodoc.Handler {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *amarodoc.Context) error {
		h.ServeHTTP(c.Writer, c.Request)
		return nil
	}
}
