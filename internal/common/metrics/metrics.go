// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound service labels.
const (
	ServiceAgent   = "agent"
	ServiceWiki    = "wiki"
	ServiceLLM     = "llm"
	ServiceRuntime = "runtime"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
)

// Decode path labels.
const (
	PathEventStream = "event_stream"
	PathJSON        = "json"
	PathRaw         = "raw"
)

var (
	OutboundRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_outbound_requests_total",
			Help: "Total number of outbound requests by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	OutboundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripplanner_outbound_request_duration_seconds",
			Help:    "Duration of outbound requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	DecodePaths = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_decode_path_total",
			Help: "Total number of dispatched responses by decode path",
		},
		[]string{"path"},
	)

	Invocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripplanner_invocations_total",
			Help: "Total number of invocations by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	InvocationsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tripplanner_invocations_active",
			Help: "Number of invocations in flight",
		},
		[]string{"mode"},
	)
)

// ObserveOutbound records one outbound call.
func ObserveOutbound(service, outcome string, elapsed time.Duration) {
	OutboundRequests.WithLabelValues(service, outcome).Inc()
	OutboundDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}
