// Package openingtreefx provides an fx module for a disk-backed
// opening-tree pipeline.
package openingtreefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/openingtree"
	"github.com/discochess/openingtree/internal/codec/zstdcodec"
	"github.com/discochess/openingtree/internal/sink"
	"github.com/discochess/openingtree/internal/sink/disksink"
	"github.com/discochess/openingtree/internal/stats"
	"github.com/discochess/openingtree/internal/stats/logger"
)

// Config holds configuration for the disk-backed pipeline.
type Config struct {
	// DataDir is the directory the dataset is written to.
	DataDir string

	// MaxDepth is the tree depth bound in plies.
	// Default is openingtree.DefaultMaxDepth.
	MaxDepth int

	// BatchSize is the number of documents per batch file.
	// Default is disksink.DefaultBatchSize.
	BatchSize int
}

// Module provides a disk-backed opening-tree pipeline.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("openingtree",
	fx.Provide(
		newStatsCollector,
		newSink,
		newPipeline,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("openingtree.stats"))
}

// SinkParams holds dependencies for creating the sink.
type SinkParams struct {
	fx.In

	Config    Config
	Lifecycle fx.Lifecycle
}

func newSink(p SinkParams) (sink.Sink, error) {
	snk, err := disksink.New(p.Config.DataDir, zstdcodec.New(),
		disksink.WithBatchSize(p.Config.BatchSize))
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := snk.Close()
			if err == sink.ErrClosed {
				return nil
			}
			return err
		},
	})
	return snk, nil
}

// Params holds dependencies for creating the pipeline.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided pipeline.
type Result struct {
	fx.Out

	Pipeline *openingtree.Pipeline
}

func newPipeline(p Params) (Result, error) {
	maxDepth := p.Config.MaxDepth
	if maxDepth <= 0 {
		maxDepth = openingtree.DefaultMaxDepth
	}

	pipeline, err := openingtree.New(
		openingtree.WithMaxDepth(maxDepth),
		openingtree.WithStats(p.Collector),
		openingtree.WithLogger(p.Logger.Named("openingtree")),
	)
	if err != nil {
		return Result{}, err
	}
	return Result{Pipeline: pipeline}, nil
}
