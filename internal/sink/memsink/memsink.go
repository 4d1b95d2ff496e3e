// Package memsink provides an in-memory sink implementation for testing.
package memsink

import (
	"context"
	"sync"

	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink"
)

// Compile-time check that Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink collects documents in memory, preserving delivery order.
type Sink struct {
	mu      sync.Mutex
	docs    []emit.Document
	summary *emit.Summary
	closed  bool
}

// New creates a new in-memory sink.
func New() *Sink {
	return &Sink{}
}

// Put appends a document.
func (s *Sink) Put(ctx context.Context, doc emit.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	s.docs = append(s.docs, doc)
	return nil
}

// PutSummary records the summary.
func (s *Sink) PutSummary(ctx context.Context, sum emit.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sink.ErrClosed
	}
	s.summary = &sum
	return nil
}

// Close marks the sink closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Documents returns the delivered documents in order.
func (s *Sink) Documents() []emit.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs
}

// Document returns the delivered document with the given id.
func (s *Sink) Document(id string) (emit.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return emit.Document{}, sink.ErrNotFound
}

// Get returns the delivered document with the given id. It mirrors the
// read path of the object-store sinks.
func (s *Sink) Get(ctx context.Context, id string) (emit.Document, error) {
	return s.Document(id)
}

// Summary returns the delivered summary, or nil before PutSummary.
func (s *Sink) Summary() *emit.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
