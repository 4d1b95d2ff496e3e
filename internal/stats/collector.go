// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Pipeline metrics.
	MetricRecords        = "openingtree_records_total"
	MetricRecordsSkipped = "openingtree_records_skipped_total"
	MetricNodes          = "openingtree_nodes"
	MetricDocuments      = "openingtree_documents_emitted_total"

	// Sink metrics.
	MetricSinkWrites        = "openingtree_sink_writes_total"
	MetricSinkWriteFailures = "openingtree_sink_write_failures_total"
	MetricSinkWriteSeconds  = "openingtree_sink_write_seconds"

	// Document cache metrics.
	MetricCacheHits   = "openingtree_cache_hits_total"
	MetricCacheMisses = "openingtree_cache_misses_total"
	MetricCacheSize   = "openingtree_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
