// Package gcssink implements a Google Cloud Storage sink. Each document
// becomes one compressed JSON object keyed by its identifier.
package gcssink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/openingtree/internal/codec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/sink"
)

// Compile-time check that Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink writes documents to a GCS bucket.
type Sink struct {
	client      *storage.Client
	bucket      *storage.BucketHandle
	prefix      string
	codec       codec.Codec
	strategy    shard.Strategy
	totalShards int
}

// New creates a new GCS sink. The bucket must already exist.
// The codec handles object compression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Sink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Sink{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures a Sink.
type Option func(*Sink)

// WithPrefix sets a key prefix for all objects.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// WithSharding distributes document objects across n shard prefixes.
// Without it, every document lives directly under documents/.
func WithSharding(strategy shard.Strategy, n int) Option {
	return func(s *Sink) {
		if strategy != nil && n > 0 {
			s.strategy = strategy
			s.totalShards = n
		}
	}
}

// Put writes one document object.
func (s *Sink) Put(ctx context.Context, doc emit.Document) error {
	return s.writeObject(ctx, s.documentKey(doc.ID), doc)
}

// PutSummary writes the summary object.
func (s *Sink) PutSummary(ctx context.Context, sum emit.Summary) error {
	return s.writeObject(ctx, s.prefix+"summary.json", sum)
}

// Close releases the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) writeObject(ctx context.Context, key string, v any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx)

	cw, err := s.codec.Writer(w)
	if err != nil {
		w.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}

	if err := json.NewEncoder(cw).Encode(v); err != nil {
		cw.Close()
		w.Close()
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := cw.Close(); err != nil {
		w.Close()
		return fmt.Errorf("closing compressor: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Get reads one document object back by its identifier.
// Returns sink.ErrNotFound for identifiers that were never written.
func (s *Sink) Get(ctx context.Context, id string) (emit.Document, error) {
	var doc emit.Document

	r, err := s.bucket.Object(s.documentKey(id)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return doc, sink.ErrNotFound
		}
		return doc, fmt.Errorf("opening %s: %w", id, err)
	}
	defer r.Close()

	cr, err := s.codec.Reader(r)
	if err != nil {
		return doc, fmt.Errorf("creating decompressor: %w", err)
	}
	defer cr.Close()

	if err := json.NewDecoder(cr).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decoding %s: %w", id, err)
	}
	return doc, nil
}

// documentKey returns the object key for a document ID.
func (s *Sink) documentKey(id string) string {
	key := s.prefix + "documents/"
	if s.strategy != nil {
		key += fmt.Sprintf("%05d/", s.strategy.ShardID(id, s.totalShards))
	}
	key += id + ".json"
	if ext := s.codec.Extension(); ext != "" {
		key += "." + ext
	}
	return key
}
