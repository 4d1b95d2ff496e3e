// Package sink defines the destination interface for emitted documents.
// Implementations handle persistence details internally; the emitter only
// sees a finite sequence of Put calls followed by one PutSummary.
package sink

import (
	"context"
	"errors"

	"github.com/discochess/openingtree/internal/emit"
)

// Sentinel errors shared by sink implementations.
var (
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("sink: closed")

	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("sink: document not found")
)

// Sink accepts the documents of one complete pipeline run.
// A write failure leaves previously delivered documents untouched; the
// caller decides whether to retry or abort.
type Sink interface {
	// Put persists one node document.
	Put(ctx context.Context, doc emit.Document) error

	// PutSummary persists the run summary. It is called exactly once,
	// after the last Put; its presence marks the dataset complete.
	PutSummary(ctx context.Context, s emit.Summary) error

	// Close flushes and releases any resources held by the sink.
	Close() error
}
