package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeUpstream = "upstream_error"
	OutcomeTimeout  = "timeout"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterchat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterchat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Pipeline metrics
	FilterInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterchat_filter_invocations_total",
			Help: "Remote filter calls by outcome",
		},
		[]string{"filter_id", "outcome"},
	)

	FilterInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterchat_filter_invocation_duration_seconds",
			Help:    "Remote filter call latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"input_type"},
	)

	ValuesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterchat_values_stored_total",
			Help: "Values written to the value store",
		},
		[]string{"type"},
	)

	AppendConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterchat_append_conflicts_total",
			Help: "Message history appends rejected because the history moved",
		},
	)

	MessagesFannedOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterchat_message_records_created_total",
			Help: "Per-recipient message records created",
		},
	)
)
