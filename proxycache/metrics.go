package proxycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal tracks intercepted operations by mode and kind.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachingproxy_operations_total",
			Help: "Total number of intercepted proxy operations",
		},
		[]string{"mode", "kind"},
	)

	// replayHits tracks operations served from the cache tree.
	replayHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachingproxy_replay_hits_total",
			Help: "Total number of operations served from recorded results",
		},
		[]string{"mode"},
	)

	// replayMisses tracks pure-mode lookups with no recorded result.
	replayMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachingproxy_replay_misses_total",
			Help: "Total number of replay lookups that found no recording",
		},
	)

	// recordedResults tracks results written into cache trees.
	recordedResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachingproxy_recorded_results_total",
			Help: "Total number of results recorded into cache trees",
		},
	)
)
