// Package metrics exposes Prometheus metrics for the curator service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all curator metrics.
	Namespace = "curator"
)

// Metrics holds all Prometheus collectors for the feed engine.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDurationSeconds prometheus.Histogram
	ItemsFetchedTotal  prometheus.Counter
	ItemsIncludedTotal prometheus.Counter
	ItemsExcludedTotal *prometheus.CounterVec
	LookupFailures     prometheus.Counter
	ParseErrorsTotal   prometheus.Counter
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
}

// New creates and registers all curator metrics. Passing nil registers
// against the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "feed_runs_total",
				Help:      "Pipeline runs by terminal status",
			},
			[]string{"status"},
		),
		RunDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "feed_run_duration_seconds",
				Help:      "Wall time of one pipeline run",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ItemsFetchedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "items_fetched_total",
				Help:      "Candidate items fetched from the source",
			},
		),
		ItemsIncludedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "items_included_total",
				Help:      "Items that survived every filter",
			},
		),
		ItemsExcludedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "items_excluded_total",
				Help:      "Items dropped, by exclusion reason",
			},
			[]string{"reason"},
		),
		LookupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "context_lookup_failures_total",
				Help:      "Per-item thread context lookups that failed",
			},
		),
		ParseErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "parse_errors_total",
				Help:      "Feed descriptions the parser could not process",
			},
		),
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "context_cache_hits_total",
				Help:      "Thread context served from the pipeline cache",
			},
		),
		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "context_cache_misses_total",
				Help:      "Thread context resolved via the source",
			},
		),
	}
}
