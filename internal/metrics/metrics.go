// Package metrics defines the copilot's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telhawk_copilot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Alert store metrics
	AlertsInStore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telhawk_copilot_alerts_in_store",
			Help: "Number of alerts in the most recent snapshot",
		},
	)

	AlertStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_alert_store_errors_total",
			Help: "Total number of failed alert store reads",
		},
		[]string{"reason"},
	)

	// Investigation metrics
	InvestigationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_investigations_total",
			Help: "Total number of investigations run",
		},
	)

	RelatedLogLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_copilot_related_log_lines",
			Help:    "Number of related log lines found per investigation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_chat_requests_total",
			Help: "Total number of chat questions by answer status",
		},
		[]string{"status"},
	)

	// Outbound provider metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_provider_calls_total",
			Help: "Total number of outbound provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telhawk_copilot_provider_call_duration_seconds",
			Help:    "Duration of outbound provider calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// Notification metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_copilot_events_published_total",
			Help: "Total number of investigation events published",
		},
		[]string{"status"},
	)
)
