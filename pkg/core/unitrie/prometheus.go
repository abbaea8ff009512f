package unitrie

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	//nodeLoads prometheus metric.
	nodeLoads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of trie nodes loaded from the store",
			Name:      "node_loads_total",
			Namespace: "unitrie",
		},
	)
	//nodeCacheHits prometheus metric.
	nodeCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of trie nodes taken from the node cache",
			Name:      "node_cache_hits_total",
			Namespace: "unitrie",
		},
	)
	//flushedNodes prometheus metric.
	flushedNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of trie nodes written to the store",
			Name:      "flushed_nodes_total",
			Namespace: "unitrie",
		},
	)
	//flushedValues prometheus metric.
	flushedValues = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of long values written to the store",
			Name:      "flushed_values_total",
			Namespace: "unitrie",
		},
	)
)

func init() {
	prometheus.MustRegister(
		nodeLoads,
		nodeCacheHits,
		flushedNodes,
		flushedValues,
	)
}

func updateFlushMetrics(nodes, values int) {
	flushedNodes.Add(float64(nodes))
	flushedValues.Add(float64(values))
}
