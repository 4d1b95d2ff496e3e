package doccache

import (
	"context"

	"github.com/discochess/openingtree/internal/emit"
)

// Getter fetches documents by identifier. The object-store sinks and the
// in-memory sink all satisfy it.
type Getter interface {
	Get(ctx context.Context, id string) (emit.Document, error)
}

// Reader wraps a Getter with caching.
type Reader struct {
	underlying Getter
	backend    Backend
}

// New creates a new cached reader wrapping the given getter.
func New(underlying Getter, backend Backend) *Reader {
	return &Reader{
		underlying: underlying,
		backend:    backend,
	}
}

// Get fetches a document, checking the cache first.
func (r *Reader) Get(ctx context.Context, id string) (emit.Document, error) {
	// Check cache first.
	if doc, ok := r.backend.Get(id); ok {
		return doc, nil
	}

	// Cache miss - fetch from the underlying reader.
	doc, err := r.underlying.Get(ctx, id)
	if err != nil {
		return emit.Document{}, err
	}

	// Cache the result.
	r.backend.Set(id, doc)

	return doc, nil
}

// Stats returns cache statistics.
func (r *Reader) Stats() Stats {
	return r.backend.Stats()
}
