package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/discochess/openingtree/internal/codec/zstdcodec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink/disksink"
	"github.com/discochess/openingtree/internal/tree"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of a built dataset",
	Long: `Verify that a built opening-tree dataset is internally consistent.

This command checks, for every document:
- the counter identity total = white_win + draw + black_win
- the three rates sum to 100 within rounding tolerance
- the identifier matches the move sequence and the depth matches its length
- next_moves are ordered by descending total, ties by ply

and that the summary's total games equal the sum over first-move nodes.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("data-dir")

	var (
		docs       int
		errCount   int
		rootTotals int64
	)
	report := func(id, format string, a ...any) {
		errCount++
		fmt.Printf("  ERROR: %s: %s\n", id, fmt.Sprintf(format, a...))
	}

	err := disksink.Scan(dir, zstdcodec.New(), func(doc emit.Document) error {
		docs++

		if doc.WhiteWin+doc.Draw+doc.BlackWin != doc.Total {
			report(doc.ID, "counters %d+%d+%d != total %d", doc.WhiteWin, doc.Draw, doc.BlackWin, doc.Total)
		}
		if doc.Total > 0 {
			sum := doc.WhiteWinRate + doc.DrawRate + doc.BlackWinRate
			if math.Abs(sum-100) > 0.02 {
				report(doc.ID, "rates sum to %.2f", sum)
			}
		}
		if tree.Key(doc.MoveSequence) != doc.ID {
			report(doc.ID, "id does not match move sequence %v", doc.MoveSequence)
		}
		if doc.Depth != len(doc.MoveSequence) {
			report(doc.ID, "depth %d != sequence length %d", doc.Depth, len(doc.MoveSequence))
		}
		for i := 1; i < len(doc.NextMoves); i++ {
			prev, cur := doc.NextMoves[i-1], doc.NextMoves[i]
			if cur.Total > prev.Total || (cur.Total == prev.Total && cur.Name < prev.Name) {
				report(doc.ID, "next_moves out of order at %d", i)
			}
		}
		if doc.Depth == 1 {
			rootTotals += doc.Total
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning documents: %w", err)
	}

	summary, err := disksink.ReadSummary(dir)
	if err != nil {
		return fmt.Errorf("dataset has no summary (partial run): %w", err)
	}
	if summary.TotalGames != rootTotals {
		report("summary", "total_games_processed %d != sum of first-move totals %d", summary.TotalGames, rootTotals)
	}
	if summary.TotalFirstMoves != len(summary.FirstMoves) {
		report("summary", "total_first_moves %d != len(first_moves) %d", summary.TotalFirstMoves, len(summary.FirstMoves))
	}

	if errCount > 0 {
		return fmt.Errorf("%d problems found in %d documents", errCount, docs)
	}
	fmt.Printf("Verified %d documents, no problems found.\n", docs)
	return nil
}
