package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/discochess/openingtree/internal/fetch"
)

// DefaultFetchURL is a small monthly Lichess dump, a reasonable corpus
// for a first build.
const DefaultFetchURL = "https://database.lichess.org/standard/lichess_db_standard_rated_2013-01.pgn.zst"

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a game dump",
	Long: `Download a game dump over HTTP. Interrupted downloads resume from the
last byte on disk, so re-running the command continues where it left off.

Examples:
  # Fetch the default Lichess dump
  openingtree fetch

  # Fetch a specific dump
  openingtree fetch --url https://database.lichess.org/standard/lichess_db_standard_rated_2014-07.pgn.zst`,
	RunE: runFetch,
}

var (
	fetchURL    string
	fetchOutput string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", DefaultFetchURL, "dump URL")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "destination file (default: URL basename)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted; rerun to resume.")
		cancel()
	}()

	dest := fetchOutput
	if dest == "" {
		dest = path.Base(fetchURL)
	}

	d := fetch.NewDownloader()

	total, err := d.GetContentLength(ctx, fetchURL)
	if err != nil {
		return fmt.Errorf("checking dump size: %w", err)
	}

	bar := pb.Full.Start64(total)
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", "fetch ")

	err = d.DownloadToFile(ctx, fetchURL, dest, func(downloaded, _ int64) {
		bar.SetCurrent(downloaded)
	})
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %s\n", dest)
	return nil
}
