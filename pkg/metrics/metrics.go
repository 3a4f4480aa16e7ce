package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/servekit/core/outcome"
)

// Collector aggregates request outcomes into Prometheus metrics. It
// implements outcome.Recorder.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bytesReceived   prometheus.Counter
	bytesSent       prometheus.Counter
}

// New creates a collector with the given metric namespace.
func New(namespace string) *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total requests processed, labeled by method, status code, and outcome classification.",
			},
			[]string{"method", "status", "classification"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Request processing time in seconds, labeled by method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_bytes_total",
			Help:      "Total request body bytes consumed from clients.",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_response_bytes_total",
			Help:      "Total response bytes written to clients.",
		}),
	}
}

// Register registers all metrics with the given registerer.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.requestsTotal, c.requestDuration, c.bytesReceived, c.bytesSent,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister registers all metrics with the default registry, panicking on
// conflict. Call once at startup.
func (c *Collector) MustRegister() {
	prometheus.MustRegister(c.requestsTotal, c.requestDuration, c.bytesReceived, c.bytesSent)
}

// Record implements outcome.Recorder.
func (c *Collector) Record(info outcome.RequestInfo, out *outcome.Outcome) {
	c.requestsTotal.WithLabelValues(
		info.Method,
		strconv.Itoa(out.StatusCode),
		out.Classification.String(),
	).Inc()
	c.requestDuration.WithLabelValues(info.Method).Observe(out.Elapsed.Seconds())
	c.bytesReceived.Add(float64(out.BytesReceived))
	c.bytesSent.Add(float64(out.BytesSent))
}
