// Package metrics holds the archive service's package-level Prometheus
// collectors, registered against the default registry and served by
// internal/api's /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsAdmitted counts request cost units admitted by the RateWindow, per endpoint URL.
	RequestsAdmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archived_rpc_requests_admitted_total",
		Help: "Total upstream RPC request cost units admitted by the rate window",
	}, []string{"endpoint"})

	// RequestsRejected counts request cost units rejected by the RateWindow, per endpoint URL.
	RequestsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archived_rpc_requests_rejected_total",
		Help: "Total upstream RPC request cost units rejected by the rate window",
	}, []string{"endpoint"})

	// FolderScanDuration records how long QueryHandler spends evaluating a
	// single cold folder against a rewritten query.
	FolderScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "archived_folder_scan_duration_seconds",
		Help:    "Duration of a single cold-folder query evaluation",
		Buckets: prometheus.DefBuckets,
	})

	// FoldersPrunedTotal counts folders skipped entirely because every
	// selection pruned to empty against the folder's bloom filter.
	FoldersPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archived_folders_pruned_total",
		Help: "Total cold folders skipped because the rewritten query had no selections left",
	})
)
