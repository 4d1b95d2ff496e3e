// Package disksink implements a filesystem sink. Documents are written
// as compressed JSONL batches under the root directory, with the summary
// and a manifest as plain JSON.
//
// Layout:
//
//	<root>/documents/00000.jsonl.zst
//	<root>/documents/00001.jsonl.zst
//	<root>/summary.json
//	<root>/manifest.json
package disksink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/discochess/openingtree/internal/codec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink"
)

// DefaultBatchSize is the number of documents per batch file.
const DefaultBatchSize = 1000

const (
	documentsDir    = "documents"
	summaryFilename = "summary.json"
)

// Compile-time check that Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink writes documents to a local directory.
type Sink struct {
	root      string
	codec     codec.Codec
	batchSize int

	batch     []emit.Document
	batches   int
	docCount  int64
	summary   *emit.Summary
	closed    bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithBatchSize sets the number of documents per batch file.
func WithBatchSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a disk sink rooted at dir, creating the directory layout
// if needed. The codec handles batch compression.
func New(dir string, c codec.Codec, opts ...Option) (*Sink, error) {
	if err := os.MkdirAll(filepath.Join(dir, documentsDir), 0755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}

	s := &Sink{
		root:      dir,
		codec:     c,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put buffers a document, flushing a batch file when the buffer is full.
func (s *Sink) Put(ctx context.Context, doc emit.Document) error {
	if s.closed {
		return sink.ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.batch = append(s.batch, doc)
	if len(s.batch) >= s.batchSize {
		return s.flush()
	}
	return nil
}

// PutSummary writes the summary document.
func (s *Sink) PutSummary(ctx context.Context, sum emit.Summary) error {
	if s.closed {
		return sink.ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The summary marks a complete run, so every buffered document must
	// be on disk before it appears.
	if len(s.batch) > 0 {
		if err := s.flush(); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	path := filepath.Join(s.root, summaryFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	s.summary = &sum
	return nil
}

// Close flushes the pending batch and writes the manifest.
func (s *Sink) Close() error {
	if s.closed {
		return sink.ErrClosed
	}
	s.closed = true

	if len(s.batch) > 0 {
		if err := s.flush(); err != nil {
			return err
		}
	}

	m := &Manifest{
		Version:       1,
		DocumentCount: s.docCount,
		BatchCount:    s.batches,
		BatchSize:     s.batchSize,
		Compression:   s.codec.Extension(),
		BuiltAt:       time.Now(),
	}
	if s.summary != nil {
		m.MaxDepth = s.summary.MaxDepth
		m.GamesProcessed = s.summary.TotalGames
	}
	if err := WriteManifest(s.root, m); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// flush writes the buffered documents as one batch file.
func (s *Sink) flush() error {
	path := filepath.Join(s.root, documentsDir, s.batchName(s.batches))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating batch file: %w", err)
	}

	writer, err := s.codec.Writer(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}

	enc := json.NewEncoder(writer)
	for _, doc := range s.batch {
		if err := enc.Encode(doc); err != nil {
			writer.Close()
			file.Close()
			return fmt.Errorf("encoding document %s: %w", doc.ID, err)
		}
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("closing compressor: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing batch file: %w", err)
	}

	s.docCount += int64(len(s.batch))
	s.batches++
	s.batch = s.batch[:0]
	return nil
}

// batchName returns the filename for a batch index.
func (s *Sink) batchName(n int) string {
	name := fmt.Sprintf("%05d.jsonl", n)
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return name
}

// Scan reads every document of a built dataset in batch order, calling
// fn for each. The codec must match the one the dataset was built with.
func Scan(dir string, c codec.Codec, fn func(emit.Document) error) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}

	s := &Sink{root: dir, codec: c}
	for i := 0; i < m.BatchCount; i++ {
		path := filepath.Join(dir, documentsDir, s.batchName(i))
		if err := scanBatch(path, c, fn); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
	}
	return nil
}

func scanBatch(path string, c codec.Codec, fn func(emit.Document) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening batch: %w", err)
	}
	defer file.Close()

	reader, err := c.Reader(file)
	if err != nil {
		return fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc emit.Document
		if err := json.Unmarshal(line, &doc); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading batch: %w", err)
	}
	return nil
}

// ReadSummary reads the summary document of a built dataset.
// Returns sink.ErrNotFound if the run never completed.
func ReadSummary(dir string) (*emit.Summary, error) {
	data, err := os.ReadFile(filepath.Join(dir, summaryFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sink.ErrNotFound
		}
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var sum emit.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &sum, nil
}
