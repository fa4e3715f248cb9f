package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts ephemeral cache lookups by result (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_cache_lookups_total",
			Help: "Total number of ephemeral cache lookups",
		},
		[]string{"result"},
	)

	// RefreshRuns counts refresh job invocations by outcome (success|failure|skipped).
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_refresh_runs_total",
			Help: "Total number of refresh job invocations",
		},
		[]string{"outcome"},
	)

	// ItemsFetched counts raw items fetched from the source across refresh runs.
	ItemsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_items_fetched_total",
			Help: "Total number of raw items fetched from the source",
		},
	)

	// ItemsCategorized counts items that received a category.
	ItemsCategorized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_items_categorized_total",
			Help: "Total number of items categorized",
		},
	)

	// ItemsPersisted counts records successfully written to the durable store.
	ItemsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_items_persisted_total",
			Help: "Total number of records persisted to the durable store",
		},
	)

	// ClassifierFallbacks counts keyword fallbacks after a classifier failure.
	ClassifierFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_classifier_fallbacks_total",
			Help: "Total number of keyword-strategy fallbacks",
		},
	)

	// CleanupSweeps records entries removed per cleanup sweep.
	CleanupSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_cleanup_swept_entries_total",
			Help: "Total number of expired cache entries removed by cleanup",
		},
	)

	// APILatency observes HTTP request latency by method, route, and status.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealhound_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
