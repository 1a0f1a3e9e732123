package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the speedtest endpoints.
// These counters are the only cross-request state in the service.
type Metrics struct {
	Requests      *prometheus.CounterVec
	BytesStreamed prometheus.Counter
	BytesReceived prometheus.Counter

	gatherer prometheus.Gatherer
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speedtest_requests_total",
			Help: "Number of requests served, by endpoint.",
		}, []string{"endpoint"}),
		BytesStreamed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speedtest_download_bytes_total",
			Help: "Synthetic bytes streamed to clients.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speedtest_upload_bytes_total",
			Help: "Upload bytes drained from clients.",
		}),
		gatherer: registry,
	}

	registry.MustRegister(metrics.Requests, metrics.BytesStreamed, metrics.BytesReceived)

	return metrics
}
