package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Global flags.
	dataDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "openingtree",
	Short: "Build hierarchical opening statistics from chess game dumps",
	Long: `Openingtree is a CLI tool for turning per-game chess records into a
hierarchical opening tree: for every distinct opening sequence up to a
bounded depth it accumulates win/draw/loss counts and derives win-rate
statistics, then writes the tree as a bounded set of documents.

All flags can also be set through OPENINGTREE_* environment variables
(e.g. OPENINGTREE_MAX_DEPTH=6).

Examples:
  # Reduce a raw game dump to the two-column form
  openingtree reduce --input chess_games.csv --output reduced.csv

  # Build the opening tree from the reduced form
  openingtree build --input reduced.csv --data-dir ./data --max-depth 4

  # Show statistics about a built dataset
  openingtree stats

  # Check the invariants of a built dataset
  openingtree verify

  # Drill into a line of a built dataset
  openingtree lookup e4 e5 Nf3`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "directory containing the built dataset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.SetEnvPrefix("OPENINGTREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// newLogger builds the process logger; verbose switches to the
// development config at debug level.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
