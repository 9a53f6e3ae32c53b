package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload results recorded by crashlog_uploads_total.
const (
	resultValid       = "valid"
	resultInvalid     = "invalid"
	resultRejected    = "rejected"
	resultRateLimited = "rate_limited"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Uploads       *prometheus.CounterVec
	ParseDuration prometheus.Histogram
	Deliveries    *prometheus.CounterVec
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crashlog_uploads_total",
			Help: "Crash log uploads by result",
		}, []string{"result"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crashlog_parse_duration_seconds",
			Help:    "Time spent reading and parsing one crash log",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crashlog_webhook_deliveries_total",
			Help: "Webhook deliveries by webhook and outcome",
		}, []string{"webhook", "outcome"}),
	}
}
