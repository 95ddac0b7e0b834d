// Package metrics exposes Prometheus counters for library operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRows counts spreadsheet rows by outcome (imported, skipped).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partslib",
		Name:      "import_rows_total",
		Help:      "Spreadsheet rows processed by bulk import, by outcome",
	}, []string{"outcome"})

	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "partslib",
		Name:      "import_duration_seconds",
		Help:      "Duration of bulk imports",
		Buckets:   prometheus.DefBuckets,
	})

	// HierarchyMutations counts edge mutations by operation and result.
	HierarchyMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partslib",
		Name:      "hierarchy_mutations_total",
		Help:      "Hierarchy edge mutations by operation and result",
	}, []string{"op", "result"})

	CycleCheckVisited = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "partslib",
		Name:      "cycle_check_visited_nodes",
		Help:      "Components visited by the reachability check before an edge insert",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	LibraryClears = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "partslib",
		Name:      "library_clears_total",
		Help:      "Completed clear-all operations",
	})

	StoredFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partslib",
		Name:      "stored_files_total",
		Help:      "File storage writes by result",
	}, []string{"result"})
)
