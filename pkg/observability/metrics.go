// Package observability provides Prometheus metrics for monitoring the
// conversation engine and its backend adapters.
//
// Metrics register on the default registry; the host exposes them by
// mounting promhttp.Handler on a mux of its own.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// BackendRequestsTotal counts inference calls by backend, model, and outcome.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_backend_requests_total",
			Help: "Backend inference requests",
		},
		[]string{"backend", "model", "status"},
	)

	// BackendLatency records inference call latency in seconds.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_backend_latency_seconds",
			Help:    "Backend inference latency",
			Buckets: LLMBuckets,
		},
		[]string{"backend", "model"},
	)

	// StreamChunksTotal counts decoded stream chunks by backend.
	StreamChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_stream_chunks_total",
			Help: "Decoded backend stream chunks",
		},
		[]string{"backend"},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool_name", "status"},
	)

	// TurnIterations records how many backend round trips one turn took.
	TurnIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parley_turn_iterations",
			Help:    "Backend round trips per conversation turn",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendLatency,
		StreamChunksTotal,
		ToolExecutionsTotal,
		TurnIterations,
	)
}
