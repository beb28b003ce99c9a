package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts auth operations by operation (register|verify|login|refresh|reset) and result.
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_auth_events_total",
			Help: "Total number of authentication operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// EmailsSent counts outbound mails by kind and delivery result.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourbook_emails_sent_total",
			Help: "Total number of outbound emails",
		},
		[]string{"kind", "result"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourbook_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RecordAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthEvents.WithLabelValues(operation, result).Inc()
}

func RecordEmail(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	EmailsSent.WithLabelValues(kind, result).Inc()
}
