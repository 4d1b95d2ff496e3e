// Package s3sink implements an AWS S3 sink. Each document becomes one
// compressed JSON object keyed by its identifier.
package s3sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/openingtree/internal/codec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/sink"
)

// Compile-time check that Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink writes documents to an S3 bucket.
type Sink struct {
	client      *s3.Client
	bucket      string
	prefix      string
	codec       codec.Codec
	strategy    shard.Strategy
	totalShards int
}

// New creates a new S3 sink. The bucket must already exist.
// The codec handles object compression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s := &Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucketName,
		codec:  c,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Option configures a Sink.
type Option func(*Sink) error

// WithPrefix sets a key prefix for all objects.
func WithPrefix(prefix string) Option {
	return func(s *Sink) error {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Sink) error {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("loading AWS config with region: %w", err)
		}
		s.client = s3.NewFromConfig(cfg)
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *Sink) error {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return fmt.Errorf("loading AWS config for endpoint: %w", err)
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return nil
	}
}

// WithSharding distributes document objects across n shard prefixes.
// Without it, every document lives directly under documents/.
func WithSharding(strategy shard.Strategy, n int) Option {
	return func(s *Sink) error {
		if strategy != nil && n > 0 {
			s.strategy = strategy
			s.totalShards = n
		}
		return nil
	}
}

// Put writes one document object.
func (s *Sink) Put(ctx context.Context, doc emit.Document) error {
	return s.putObject(ctx, s.documentKey(doc.ID), doc)
}

// PutSummary writes the summary object.
func (s *Sink) PutSummary(ctx context.Context, sum emit.Summary) error {
	return s.putObject(ctx, s.prefix+"summary.json", sum)
}

// Close releases resources held by the sink.
func (s *Sink) Close() error {
	return nil
}

func (s *Sink) putObject(ctx context.Context, key string, v any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var buf bytes.Buffer
	cw, err := s.codec.Writer(&buf)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := json.NewEncoder(cw).Encode(v); err != nil {
		cw.Close()
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("closing compressor: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Get reads one document object back by its identifier.
// Returns sink.ErrNotFound for identifiers that were never written.
func (s *Sink) Get(ctx context.Context, id string) (emit.Document, error) {
	var doc emit.Document

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.documentKey(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return doc, sink.ErrNotFound
		}
		return doc, fmt.Errorf("opening %s: %w", id, err)
	}
	defer out.Body.Close()

	cr, err := s.codec.Reader(out.Body)
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
