// Package fnvshard implements FNV-1a hash-based sharding for document
// identifiers.
//
// This provides uniform distribution across shards but no locality
// benefits. Used primarily as a baseline against opening-based sharding.
package fnvshard

import (
	"github.com/discochess/openingtree/internal/shard"
)

// Strategy implements FNV-1a hash-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new FNV-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "fnv32"
}

// ShardID computes a shard ID using the FNV-1a hash of the identifier.
func (s *Strategy) ShardID(id string, totalShards int) int {
	h := fnv1a32(id)
	return int(h % uint32(totalShards))
}

// fnv1a32 computes the FNV-1a 32-bit hash of a string.
func fnv1a32(s string) uint32 {
	var h uint32 = 2166136261 // FNV offset basis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619 // FNV prime
	}
	return h
}
