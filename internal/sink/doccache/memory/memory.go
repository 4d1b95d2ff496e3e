// Package memory implements an in-memory cache backend.
package memory

import (
	"sync/atomic"

	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink/doccache"
	"github.com/discochess/openingtree/internal/sink/doccache/cachestrategy"
	"github.com/discochess/openingtree/internal/stats"
)

// Compile-time check that Backend implements doccache.Backend.
var _ doccache.Backend = (*Backend)(nil)

// Backend is a thread-safe in-memory cache backend.
type Backend struct {
	strategy  cachestrategy.Strategy
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new memory backend with the given eviction strategy.
// The collector is optional; if nil, a no-op collector is used.
func New(strategy cachestrategy.Strategy, collector stats.Collector) *Backend {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Backend{
		strategy:  strategy,
		collector: collector,
	}
}

// Get retrieves a document from the cache.
func (b *Backend) Get(id string) (emit.Document, bool) {
	doc, ok := b.strategy.Get(id)
	if ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricCacheHits, 1)
		return doc, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricCacheMisses, 1)
	return emit.Document{}, false
}

// Set stores a document in the cache.
func (b *Backend) Set(id string, doc emit.Document) {
	b.strategy.Add(id, doc)
	b.collector.SetGauge(stats.MetricCacheSize, int64(b.strategy.Len()))
}

// Stats returns current cache statistics.
func (b *Backend) Stats() doccache.Stats {
	return doccache.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.strategy.Len(),
	}
}

// Len returns the number of items in the cache.
func (b *Backend) Len() int {
	return b.strategy.Len()
}
