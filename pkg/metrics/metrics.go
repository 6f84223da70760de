package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to the external catalogs by source and result (success|failure).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exowars_upstream_requests_total",
			Help: "Total number of upstream catalog requests",
		},
		[]string{"source", "result"},
	)

	// FusionMatches counts fused pairings produced per computation, labelled by the rule that matched.
	FusionMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exowars_fusion_matches_total",
			Help: "Total number of fused planet pairings produced",
		},
		[]string{"rule"},
	)

	// CacheLookups records aggregate cache hits and misses by key class.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exowars_cache_lookups_total",
			Help: "Cache lookups by outcome",
		},
		[]string{"key", "outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exowars_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
