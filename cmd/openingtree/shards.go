package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/discochess/openingtree/internal/codec/zstdcodec"
	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/shard/fnvshard"
	"github.com/discochess/openingtree/internal/shard/openingshard"
	"github.com/discochess/openingtree/internal/shardsim"
	"github.com/discochess/openingtree/internal/sink/disksink"
)

var shardsCmd = &cobra.Command{
	Use:   "shards",
	Short: "Compare sharding strategies against a built dataset",
	Long: `Replay drill-downs through every line of a built dataset against the
available sharding strategies and report locality metrics. Use this to
pick --shards and --shard-by before publishing to an object store.

A drill-down fetches the document of every prefix in a line; fewer
shard switches per drill means cheaper consumer reads.`,
	RunE: runShards,
}

var shardsCount int

func init() {
	shardsCmd.Flags().IntVar(&shardsCount, "shards", 64, "shard count to simulate")
	rootCmd.AddCommand(shardsCmd)
}

func runShards(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("data-dir")

	// Leaf documents carry the full lines; every shorter line is one of
	// their prefixes and gets replayed by the drill.
	var lines [][]string
	err := disksink.Scan(dir, zstdcodec.New(), func(doc emit.Document) error {
		if len(doc.NextMoves) == 0 {
			lines = append(lines, doc.MoveSequence)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("dataset has no lines to replay")
	}

	strategies := []shard.Strategy{openingshard.New(), fnvshard.New()}
	sim := shardsim.NewSimulator(shardsCount, strategies...)
	results := sim.SimulateDrills(lines)

	fmt.Printf("Replayed %d drill-downs across %d shards\n\n", len(lines), shardsCount)
	for _, strategy := range strategies {
		m := shardsim.ComputeMetrics(results[strategy.Name()])
		fmt.Printf("%s\n", strategy.Name())
		fmt.Printf("  lookups            %d\n", m.TotalLookups)
		fmt.Printf("  unique shards      %d\n", m.UniqueShards)
		fmt.Printf("  switches per drill avg %.2f  median %.0f  p90 %.0f  max %d\n",
			m.AvgSwitchesPerDrill, m.MedianSwitchesPerDrill, m.P90SwitchesPerDrill, m.MaxSwitchesPerDrill)
		fmt.Printf("  shard concentration %.3f  top-decile share %.1f%%\n\n",
			m.ShardConcentration, m.TopShardPct)
	}
	return nil
}
