package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/discochess/openingtree/internal/codec"
	"github.com/discochess/openingtree/internal/codec/gzipcodec"
	"github.com/discochess/openingtree/internal/codec/noopcodec"
	"github.com/discochess/openingtree/internal/reduce"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Reduce a raw game dump to the two-column form",
	Long: `Stream a raw per-game CSV (fifteen positional columns, movetext in the
last one) down to the two columns the build step consumes: the result as
-1/0/1 and the opening plies as a compact JSON array.

Rows with an unrecognized result or no plies are skipped and counted;
they never abort the run.

Examples:
  # Reduce a Lichess-style dump, keeping the first 10 plies
  openingtree reduce --input chess_games.csv --output reduced.csv

  # Keep more plies and gzip the output
  openingtree reduce --input chess_games.csv --output reduced.csv.gz --gzip`,
	RunE: runReduce,
}

var (
	reduceInput  string
	reduceOutput string
	reduceLimit  int
	reduceGzip   bool
)

func init() {
	reduceCmd.Flags().StringVarP(&reduceInput, "input", "i", "", "raw games CSV (required)")
	reduceCmd.Flags().StringVarP(&reduceOutput, "output", "o", "reduced.csv", "reduced CSV output path")
	reduceCmd.Flags().IntVar(&reduceLimit, "limit", reduce.DefaultLimit, "opening plies kept per game")
	reduceCmd.Flags().BoolVar(&reduceGzip, "gzip", false, "gzip the output")
	reduceCmd.MarkFlagRequired("input")
	viper.BindPFlag("limit", reduceCmd.Flags().Lookup("limit"))
	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	in, err := os.Open(reduceInput)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	out, err := os.Create(reduceOutput)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	var c codec.Codec = noopcodec.New()
	if reduceGzip {
		c = gzipcodec.New()
	}
	writer, err := c.Writer(out)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	bar := pb.Full.Start64(info.Size())
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", "reduce ")
	reader := bar.NewProxyReader(in)

	reducer := reduce.NewReducer(
		reduce.WithLimit(viper.GetInt("limit")),
		reduce.WithLogger(logger),
	)

	res, err := reducer.Reduce(ctx, reader, writer)
	bar.Finish()
	if err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	fmt.Printf("Reduced %d rows: %d written, %d skipped\n", res.RowsRead, res.Written, res.Skipped)
	return nil
}
