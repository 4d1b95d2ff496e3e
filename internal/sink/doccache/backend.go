// Package doccache provides a caching wrapper for document readers.
//
// Consumers drilling through the tree fetch the same high-traffic nodes
// over and over (the root replies especially), so sinks with a remote
// read path get a cache-aside layer in front of them.
package doccache

import "github.com/discochess/openingtree/internal/emit"

// Backend defines the interface for cache storage backends.
// Implementations handle storage and eviction strategy (LRU, unbounded).
type Backend interface {
	// Get retrieves a cached document. Returns false if not found.
	Get(id string) (emit.Document, bool)

	// Set stores a document in the cache.
	Set(id string, doc emit.Document)

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
