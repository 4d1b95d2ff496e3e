// Package lru implements an LRU cache eviction strategy.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink/doccache/cachestrategy"
)

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy = (*Strategy)(nil)

// Strategy implements LRU eviction.
type Strategy struct {
	cache *lru.Cache[string, emit.Document]
}

// New creates a new LRU strategy with the given capacity.
func New(capacity int) (*Strategy, error) {
	c, err := lru.New[string, emit.Document](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy{cache: c}, nil
}

// Get retrieves a document by id.
func (s *Strategy) Get(id string) (emit.Document, bool) {
	return s.cache.Get(id)
}

// Add adds a document to the cache.
func (s *Strategy) Add(id string, doc emit.Document) bool {
	return s.cache.Add(id, doc)
}

// Len returns the number of items in the cache.
func (s *Strategy) Len() int {
	return s.cache.Len()
}
