// Package openingtree aggregates chess game records into a hierarchical
// opening tree: every distinct move-sequence prefix up to a bounded depth
// accumulates win/draw/loss counts, and the finished tree is emitted as a
// bounded set of self-contained documents plus one summary.
//
// Example usage:
//
//	pipeline, err := openingtree.New(
//	    openingtree.WithMaxDepth(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := source.NewReducedCSV(file, 10)
//	report, err := pipeline.Run(ctx, src, snk)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d games in %d nodes\n", report.GamesProcessed, report.Nodes)
package openingtree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/extract"
	"github.com/discochess/openingtree/internal/sink"
	"github.com/discochess/openingtree/internal/stats"
	"github.com/discochess/openingtree/internal/tree"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidDepth indicates a non-positive max depth.
	ErrInvalidDepth = errors.New("openingtree: max depth must be positive")

	// ErrNoSink indicates Run was called with a nil sink.
	ErrNoSink = errors.New("openingtree: no sink provided")

	// ErrNoSource indicates Run was called with a nil source.
	ErrNoSource = errors.New("openingtree: no source provided")
)

// Source is a forward-only, single-pass stream of extracted game records.
// Next returns io.EOF when the stream ends; a malformed-record error
// (matching extract.ErrMalformed) causes that record to be skipped and
// counted, any other error aborts the run.
type Source interface {
	Next() (extract.Record, error)
}

// Report summarizes one pipeline run.
type Report struct {
	GamesProcessed   int64
	RecordsSkipped   int64
	Nodes            int
	DocumentsEmitted int64
	Elapsed          time.Duration
}

// Pipeline runs the full aggregation: source records accumulate into the
// tree, then documents stream to the sink in deterministic order with
// the summary written last. A Pipeline is reusable across runs; each run
// owns its own tree.
type Pipeline struct {
	maxDepth       int
	reportInterval int64
	stats          stats.Collector
	logger         *zap.Logger
}

// New creates a Pipeline with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, cfg.maxDepth)
	}

	p := &Pipeline{
		maxDepth:       cfg.maxDepth,
		reportInterval: cfg.reportInterval,
		stats:          cfg.stats,
		logger:         cfg.logger,
	}

	p.logger.Debug("pipeline initialized",
		zap.Int("maxDepth", p.maxDepth),
		zap.Int64("reportInterval", p.reportInterval),
	)
	return p, nil
}

// Run consumes the source to completion, then emits every node document
// and the summary to the sink. The absence of a summary in the sink
// marks an incomplete dataset, so a sink error during document emission
// leaves a recognizable partial run behind.
func (p *Pipeline) Run(ctx context.Context, src Source, snk sink.Sink) (*Report, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if snk == nil {
		return nil, ErrNoSink
	}

	start := time.Now()

	acc, err := tree.NewAccumulator(p.maxDepth)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if err := p.accumulate(ctx, src, acc, report); err != nil {
		return nil, err
	}
	report.Nodes = acc.Len()
	p.stats.SetGauge(stats.MetricNodes, int64(report.Nodes))

	p.logger.Info("accumulation complete",
		zap.Int64("games", report.GamesProcessed),
		zap.Int64("skipped", report.RecordsSkipped),
		zap.Int("nodes", report.Nodes),
	)

	if err := p.emit(ctx, acc, snk, report); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	p.logger.Info("run complete",
		zap.Int64("documents", report.DocumentsEmitted),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// accumulate drains the source into the tree, skipping malformed records.
func (p *Pipeline) accumulate(ctx context.Context, src Source, acc *tree.Accumulator, report *Report) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if errors.Is(err, extract.ErrMalformed) {
				report.RecordsSkipped++
				p.stats.IncCounter(stats.MetricRecordsSkipped, 1)
				p.logger.Debug("skipping record", zap.Error(err))
				continue
			}
			return fmt.Errorf("reading source: %w", err)
		}

		if err := acc.Observe(rec); err != nil {
			return fmt.Errorf("observing record: %w", err)
		}

		report.GamesProcessed++
		p.stats.IncCounter(stats.MetricRecords, 1)
		if p.reportInterval > 0 && report.GamesProcessed%p.reportInterval == 0 {
			p.logger.Info("progress",
				zap.Int64("games", report.GamesProcessed),
				zap.Int("nodes", acc.Len()),
			)
		}
	}
}

// emit streams documents and the summary to the sink.
func (p *Pipeline) emit(ctx context.Context, acc *tree.Accumulator, snk sink.Sink, report *Report) error {
	err := emit.Walk(ctx, acc, func(doc emit.Document) error {
		t := time.Now()
		if err := snk.Put(ctx, doc); err != nil {
			p.stats.IncCounter(stats.MetricSinkWriteFailures, 1)
			return err
		}
		p.stats.IncCounter(stats.MetricSinkWrites, 1)
		p.stats.ObserveHistogram(stats.MetricSinkWriteSeconds, time.Since(t).Seconds())
		report.DocumentsEmitted++
		p.stats.IncCounter(stats.MetricDocuments, 1)
		return nil
	})
	if err != nil {
		return err
	}

	summary := emit.BuildSummary(acc)
	if err := snk.PutSummary(ctx, summary); err != nil {
		p.stats.IncCounter(stats.MetricSinkWriteFailures, 1)
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
