// Package shardsim simulates consumer access patterns against sharding
// strategies. A drill-down through one opening line touches the document
// of every prefix; the simulator counts how often that walk crosses
// shard boundaries, which is the locality cost of a strategy.
package shardsim

import (
	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/tree"
)

// Simulator replays drill-downs against a set of strategies.
type Simulator struct {
	strategies  []shard.Strategy
	totalShards int
}

// NewSimulator creates a new Simulator with the given strategies.
func NewSimulator(totalShards int, strategies ...shard.Strategy) *Simulator {
	return &Simulator{
		strategies:  strategies,
		totalShards: totalShards,
	}
}

// SimulateDrill replays one drill-down: the walk fetches the document of
// every prefix of line in order. Returns the shard access pattern per
// strategy.
func (s *Simulator) SimulateDrill(line []string) map[string]*DrillResult {
	results := make(map[string]*DrillResult, len(s.strategies))

	for _, strategy := range s.strategies {
		result := &DrillResult{
			StrategyName: strategy.Name(),
			ShardAccess:  make([]int, 0, len(line)),
		}

		lastShard := -1
		for i := range line {
			id := tree.Key(line[:i+1])
			shardID := strategy.ShardID(id, s.totalShards)
			result.ShardAccess = append(result.ShardAccess, shardID)

			if shardID != lastShard {
				result.ShardSwitches++
				lastShard = shardID
			}
		}

		results[strategy.Name()] = result
	}

	return results
}

// SimulateDrills replays many drill-downs and aggregates the results.
func (s *Simulator) SimulateDrills(lines [][]string) map[string]*AggregateResult {
	results := make(map[string]*AggregateResult, len(s.strategies))

	for _, strategy := range s.strategies {
		results[strategy.Name()] = &AggregateResult{
			StrategyName:     strategy.Name(),
			ShardHits:        make(map[int]int),
			SwitchesPerDrill: make([]int, 0, len(lines)),
		}
	}

	for _, line := range lines {
		drillResults := s.SimulateDrill(line)
		for name, dr := range drillResults {
			agg := results[name]
			agg.TotalLookups += len(line)
			agg.TotalSwitches += dr.ShardSwitches
			agg.SwitchesPerDrill = append(agg.SwitchesPerDrill, dr.ShardSwitches)

			for _, shardID := range dr.ShardAccess {
				agg.ShardHits[shardID]++
			}
		}
	}

	for _, agg := range results {
		agg.UniqueShards = len(agg.ShardHits)
		if len(lines) > 0 {
			agg.AvgSwitchesPerDrill = float64(agg.TotalSwitches) / float64(len(lines))
		}
	}

	return results
}

// DrillResult contains the shard access pattern for a single drill-down.
type DrillResult struct {
	StrategyName  string
	ShardAccess   []int // Shard IDs accessed in order.
	ShardSwitches int   // Number of times shard changed.
}

// AggregateResult contains aggregated results across many drill-downs.
type AggregateResult struct {
	StrategyName        string
	TotalLookups        int
	TotalSwitches       int
	UniqueShards        int
	AvgSwitchesPerDrill float64
	ShardHits           map[int]int // Shard ID -> hit count.
	SwitchesPerDrill    []int       // Switches per drill for percentile analysis.
}
