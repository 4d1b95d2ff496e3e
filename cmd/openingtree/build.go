package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/discochess/openingtree"
	"github.com/discochess/openingtree/internal/codec/zstdcodec"
	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/shard/fnvshard"
	"github.com/discochess/openingtree/internal/shard/openingshard"
	"github.com/discochess/openingtree/internal/sink"
	"github.com/discochess/openingtree/internal/sink/disksink"
	"github.com/discochess/openingtree/internal/sink/gcssink"
	"github.com/discochess/openingtree/internal/sink/s3sink"
	"github.com/discochess/openingtree/internal/source"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an opening-tree dataset from game records",
	Long: `Read game records and build the opening tree, then write one document
per distinct opening sequence plus a summary.

The input may be the reduced two-column CSV (default), the raw
fifteen-column games CSV (--raw), or a PGN stream (--pgn). The output
goes to a local directory by default, or to GCS/S3.

The summary document is written last; a dataset without one is a
partial run and should be rebuilt.

Examples:
  # Build from a reduced CSV into ./data
  openingtree build --input reduced.csv --data-dir ./data

  # Deeper tree, straight from a PGN dump
  openingtree build --input games.pgn --pgn --max-depth 8

  # Write to GCS
  openingtree build --input reduced.csv --output-gcs gs://my-bucket/openings`,
	RunE: runBuild,
}

var (
	buildInput     string
	buildOutputGCS string
	buildOutputS3  string
	buildMaxDepth  int
	buildLimit     int
	buildBatchSize int
	buildInterval  int
	buildRaw       bool
	buildPGN       bool
	buildShards    int
	buildShardBy   string
)

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "input file (required); '-' for stdin")
	buildCmd.Flags().StringVar(&buildOutputGCS, "output-gcs", "", "GCS destination (gs://bucket/prefix)")
	buildCmd.Flags().StringVar(&buildOutputS3, "output-s3", "", "S3 destination (s3://bucket/prefix)")
	buildCmd.Flags().IntVar(&buildMaxDepth, "max-depth", openingtree.DefaultMaxDepth, "tree depth bound in plies")
	buildCmd.Flags().IntVar(&buildLimit, "limit", 0, "plies read per game (0 = depth bound)")
	buildCmd.Flags().IntVar(&buildBatchSize, "batch-size", disksink.DefaultBatchSize, "documents per batch file (disk output)")
	buildCmd.Flags().IntVar(&buildInterval, "report-interval", openingtree.DefaultReportInterval, "progress cadence in games")
	buildCmd.Flags().BoolVar(&buildRaw, "raw", false, "input is the raw fifteen-column games CSV")
	buildCmd.Flags().BoolVar(&buildPGN, "pgn", false, "input is a PGN stream")
	buildCmd.Flags().IntVar(&buildShards, "shards", 0, "shard object-store documents across n prefixes (0 = flat)")
	buildCmd.Flags().StringVar(&buildShardBy, "shard-by", "opening", "sharding strategy: opening or fnv32")
	buildCmd.MarkFlagRequired("input")
	viper.BindPFlag("max-depth", buildCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("report-interval", buildCmd.Flags().Lookup("report-interval"))
	viper.BindPFlag("batch-size", buildCmd.Flags().Lookup("batch-size"))
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, stopping...")
		cancel()
	}()

	in, closeIn, err := openInput(buildInput)
	if err != nil {
		return err
	}
	defer closeIn()

	maxDepth := viper.GetInt("max-depth")
	limit := buildLimit
	if limit <= 0 {
		limit = maxDepth
	}

	var src openingtree.Source
	switch {
	case buildPGN:
		src = source.NewPGN(in, limit)
	case buildRaw:
		src = source.NewGamesCSV(in, limit)
	default:
		src = source.NewReducedCSV(in, limit)
	}

	snk, err := newSink(ctx)
	if err != nil {
		return err
	}
	defer snk.Close()

	pipeline, err := openingtree.New(
		openingtree.WithMaxDepth(maxDepth),
		openingtree.WithReportInterval(viper.GetInt("report-interval")),
		openingtree.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, src, snk)
	if err != nil {
		return err
	}
	if err := snk.Close(); err != nil && err != sink.ErrClosed {
		return fmt.Errorf("closing sink: %w", err)
	}

	fmt.Printf("Built opening tree\n")
	fmt.Printf("  Games:     %d (%d skipped)\n", report.GamesProcessed, report.RecordsSkipped)
	fmt.Printf("  Nodes:     %d\n", report.Nodes)
	fmt.Printf("  Documents: %d\n", report.DocumentsEmitted)
	fmt.Printf("  Elapsed:   %s\n", report.Elapsed.Round(time.Millisecond))
	return nil
}

// openInput opens the input path, transparently ungzipping and treating
// "-" as stdin.
func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("opening gzip input: %w", err)
		}
		return gz, func() error { gz.Close(); return f.Close() }, nil
	}
	return f, f.Close, nil
}

// newSink selects the output sink from the flags.
func newSink(ctx context.Context) (sink.Sink, error) {
	strategy, err := shardStrategy(buildShardBy)
	if err != nil {
		return nil, err
	}

	switch {
	case buildOutputGCS != "":
		bucket, prefix, err := splitBucketURL(buildOutputGCS, "gs://")
		if err != nil {
			return nil, err
		}
		return gcssink.New(ctx, bucket, zstdcodec.New(),
			gcssink.WithPrefix(prefix),
			gcssink.WithSharding(strategy, buildShards))
	case buildOutputS3 != "":
		bucket, prefix, err := splitBucketURL(buildOutputS3, "s3://")
		if err != nil {
			return nil, err
		}
		return s3sink.New(ctx, bucket, zstdcodec.New(),
			s3sink.WithPrefix(prefix),
			s3sink.WithSharding(strategy, buildShards))
	default:
		return disksink.New(viper.GetString("data-dir"), zstdcodec.New(),
			disksink.WithBatchSize(viper.GetInt("batch-size")))
	}
}

// shardStrategy maps the --shard-by flag to a strategy.
func shardStrategy(name string) (shard.Strategy, error) {
	switch name {
	case "opening":
		return openingshard.New(), nil
	case "fnv32":
		return fnvshard.New(), nil
	default:
		return nil, fmt.Errorf("unknown sharding strategy %q", name)
	}
}

// splitBucketURL splits "scheme://bucket/prefix" into bucket and prefix.
func splitBucketURL(url, scheme string) (string, string, error) {
	if !strings.HasPrefix(url, scheme) {
		return "", "", fmt.Errorf("destination must start with %s", scheme)
	}
	rest := strings.TrimPrefix(url, scheme)
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("destination %q has no bucket", url)
	}
	return bucket, prefix, nil
}
