package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/openingtree/internal/codec/zstdcodec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink/disksink"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a built dataset",
	Long: `Display statistics about a built opening-tree dataset: game and node
counts from the summary, the per-depth document breakdown, and the
distribution of games per node.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("data-dir")

	manifest, err := disksink.ReadManifest(dir)
	if err != nil {
		return fmt.Errorf("dataset %q not readable; run 'openingtree build' first: %w", dir, err)
	}

	var (
		byDepth = map[int]int{}
		totals  []float64
	)
	err = disksink.Scan(dir, zstdcodec.New(), func(doc emit.Document) error {
		byDepth[doc.Depth]++
		totals = append(totals, float64(doc.Total))
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning documents: %w", err)
	}

	fmt.Printf("Dataset:    %s\n", dir)
	fmt.Printf("Built at:   %s\n", manifest.BuiltAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Documents:  %d in %d batches\n", manifest.DocumentCount, manifest.BatchCount)

	if summary, err := disksink.ReadSummary(dir); err == nil {
		fmt.Printf("Games:      %d\n", summary.TotalGames)
		fmt.Printf("Max depth:  %d\n", summary.MaxDepth)
		fmt.Printf("First moves (%d):", summary.TotalFirstMoves)
		for _, m := range summary.FirstMoves {
			fmt.Printf(" %s", m)
		}
		fmt.Println()
	} else {
		fmt.Println("Summary:    missing (partial run)")
	}

	if len(totals) == 0 {
		return nil
	}

	fmt.Println("\nDocuments by depth:")
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	for _, d := range depths {
		fmt.Printf("  depth %d: %d\n", d, byDepth[d])
	}

	sort.Float64s(totals)
	fmt.Println("\nGames per node:")
	fmt.Printf("  mean:   %.1f\n", stat.Mean(totals, nil))
	fmt.Printf("  stddev: %.1f\n", stat.StdDev(totals, nil))
	fmt.Printf("  median: %.0f\n", stat.Quantile(0.5, stat.Empirical, totals, nil))
	fmt.Printf("  p90:    %.0f\n", stat.Quantile(0.9, stat.Empirical, totals, nil))
	fmt.Printf("  max:    %.0f\n", totals[len(totals)-1])

	return nil
}
