// Package metrics provides Prometheus metrics for the Fandom bot MCP server.
// It tracks tool-call counts and latencies, wiki API activity, token
// lifecycle events, and authentication failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "fandom_bot_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// EditOperations counts write operations by tool and status
	EditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edit_operations_total",
		Help:      "Write operations by tool and status",
	}, []string{"tool", "status"})

	// TokenRefreshes counts CSRF token refreshes triggered by stale-token
	// rejections
	TokenRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "token_refreshes_total",
		Help:      "CSRF token refreshes after badtoken rejections",
	})

	// AuthFailures counts authentication failures by domain
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by domain",
	}, []string{"domain"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordEdit records a completed write operation
func RecordEdit(tool string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	EditOperations.WithLabelValues(tool, status).Inc()
}
