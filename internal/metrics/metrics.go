package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_events_settled_total",
		Help: "Total number of events settled with a final result.",
	})

	EventsPostponed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_events_postponed_total",
		Help: "Total number of events cancelled because the provider marked them postponed.",
	})

	EventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_events_failed_total",
		Help: "Total number of events that produced a fatal-error record.",
	})

	ProviderRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_provider_requests_total",
		Help: "Total number of HTTP requests issued to the sports-data provider.",
	})

	ProviderRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_provider_retries_total",
		Help: "Total number of provider requests retried after a rate limit or transient failure.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_run_duration_seconds",
		Help:    "End-to-end duration of a settlement run.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
	})
)
