// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache reads served from a fresh file.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache reads served from a valid entry.",
	})

	// CacheMisses counts cache reads that fell through to a fetch.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache reads that missed (absent, expired, or corrupt).",
	})

	// ProviderCalls counts upstream provider calls by operation.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Upstream provider calls.",
	}, []string{"op"})

	// ProviderRetries counts transient-failure retries by operation.
	ProviderRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "provider",
		Name:      "retries_total",
		Help:      "Retries after transient provider failures.",
	}, []string{"op"})

	// ProviderFailures counts calls that exhausted their retry budget
	// or failed permanently.
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "provider",
		Name:      "failures_total",
		Help:      "Provider calls that ultimately failed.",
	}, []string{"op"})

	// AnalysesCompleted counts full composite analyses by risk tier.
	AnalysesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskrank",
		Subsystem: "score",
		Name:      "analyses_total",
		Help:      "Completed composite analyses.",
	}, []string{"tier"})

	// AnalysisDuration observes wall time per composite analysis.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "riskrank",
		Subsystem: "score",
		Name:      "analysis_seconds",
		Help:      "Wall time of one composite analysis.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
