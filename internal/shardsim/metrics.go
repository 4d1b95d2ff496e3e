package shardsim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics contains computed metrics from simulation results.
type Metrics struct {
	// Core metrics.
	TotalLookups        int
	TotalSwitches       int
	UniqueShards        int
	AvgSwitchesPerDrill float64

	// Distribution metrics.
	MedianSwitchesPerDrill float64
	P90SwitchesPerDrill    float64
	MinSwitchesPerDrill    int
	MaxSwitchesPerDrill    int

	// Locality metrics.
	ShardConcentration float64 // Gini coefficient of shard usage.
	TopShardPct        float64 // Percentage of lookups in top 10% of shards.
}

// ComputeMetrics computes detailed metrics from aggregate results.
func ComputeMetrics(result *AggregateResult) *Metrics {
	m := &Metrics{
		TotalLookups:        result.TotalLookups,
		TotalSwitches:       result.TotalSwitches,
		UniqueShards:        result.UniqueShards,
		AvgSwitchesPerDrill: result.AvgSwitchesPerDrill,
	}

	if len(result.SwitchesPerDrill) > 0 {
		sorted := make([]float64, len(result.SwitchesPerDrill))
		for i, v := range result.SwitchesPerDrill {
			sorted[i] = float64(v)
		}
		sort.Float64s(sorted)

		m.MinSwitchesPerDrill = int(sorted[0])
		m.MaxSwitchesPerDrill = int(sorted[len(sorted)-1])
		m.MedianSwitchesPerDrill = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		m.P90SwitchesPerDrill = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	if len(result.ShardHits) > 0 {
		m.ShardConcentration = computeGini(result.ShardHits)
		m.TopShardPct = computeTopShardPct(result.ShardHits, result.TotalLookups, 0.1)
	}

	return m
}

func computeGini(hits map[int]int) float64 {
	if len(hits) == 0 {
		return 0
	}

	values := make([]int, 0, len(hits))
	for _, v := range hits {
		values = append(values, v)
	}
	sort.Ints(values)

	n := float64(len(values))
	var sum, cumulativeSum float64
	for i, v := range values {
		sum += float64(v)
		cumulativeSum += float64(i+1) * float64(v)
	}

	if sum == 0 {
		return 0
	}

	return (2*cumulativeSum)/(n*sum) - (n+1)/n
}

func computeTopShardPct(hits map[int]int, total int, topFraction float64) float64 {
	if total == 0 || len(hits) == 0 {
		return 0
	}

	counts := make([]int, 0, len(hits))
	for _, h := range hits {
		counts = append(counts, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	topCount := int(float64(len(counts)) * topFraction)
	if topCount < 1 {
		topCount = 1
	}

	var topHits int
	for i := 0; i < topCount && i < len(counts); i++ {
		topHits += counts[i]
	}

	return float64(topHits) / float64(total) * 100
}
