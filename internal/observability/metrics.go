// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the execution engine.
type Metrics struct {
	// Execution metrics
	ExecutionsTotal *prometheus.CounterVec
	ExecutedUSD     prometheus.Counter
	ChunksExecuted  prometheus.Counter
	ChunksFailed    prometheus.Counter
	SlippagePauses  prometheus.Counter

	// Recommendation metrics
	Recommendations *prometheus.CounterVec

	// Latency metrics
	QuoteLatency prometheus.Histogram
	SwapLatency  prometheus.Histogram
	RunDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_exec_engine"
	}

	return &Metrics{
		ExecutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "runs_total",
			Help:      "Total number of execution runs by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		ExecutedUSD: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "executed_usd_total",
			Help:      "Total USD notional executed across all runs",
		}),
		ChunksExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "chunks_executed_total",
			Help:      "Total number of chunks completed successfully",
		}),
		ChunksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "chunks_failed_total",
			Help:      "Total number of chunks that failed",
		}),
		SlippagePauses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "slippage_pauses_total",
			Help:      "Total number of runs stopped by the slippage circuit breaker",
		}),
		Recommendations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analyzer",
			Name:      "recommendations_total",
			Help:      "Total number of algorithm recommendations by algorithm",
		}, []string{"algorithm"}),
		QuoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jupiter",
			Name:      "quote_latency_seconds",
			Help:      "Quote request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SwapLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jupiter",
			Name:      "swap_latency_seconds",
			Help:      "Swap submission latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock execution run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"algorithm"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
