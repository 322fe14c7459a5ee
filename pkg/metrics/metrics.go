// Package metrics provides Prometheus instrumentation for the columnar
// engine. Counters cover both sides of the storage path: rows and row
// groups on the write side, pages, batches and predicate-pushdown skips on
// the scan side.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsWritten counts rows appended through the writer, by column type.
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "rows_written_total",
			Help:      "Total rows appended to column buffers",
		},
		[]string{"type"},
	)

	// RowGroupsFlushed counts row groups materialized to disk.
	RowGroupsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "row_groups_flushed_total",
			Help:      "Total row groups flushed to disk",
		},
	)

	// PagesRead counts pages decoded by the reader, by encoding.
	PagesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "pages_read_total",
			Help:      "Total pages decoded from disk",
		},
		[]string{"encoding"},
	)

	// PagesSkipped counts row-group pages skipped via predicate pushdown.
	PagesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "pages_skipped_total",
			Help:      "Total pages skipped using page statistics",
		},
	)

	// RowsScanned counts rows surviving scan filters.
	RowsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "rows_scanned_total",
			Help:      "Total rows yielded by scanners after filtering",
		},
	)

	// BatchesProduced counts batches yielded by scanners.
	BatchesProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colstore",
			Name:      "batches_produced_total",
			Help:      "Total batches yielded by scanners",
		},
	)

	// ScanDuration observes wall time of full scans, by execution shape.
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colstore",
			Name:      "scan_duration_seconds",
			Help:      "Duration of query execution",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"shape"},
	)
)
