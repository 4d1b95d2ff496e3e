// Package openingshard implements opening-based sharding for document
// identifiers.
//
// Opening-based sharding groups documents by their root ply, which
// provides better locality for consumers since a drill-down through one
// opening only ever touches a single shard.
package openingshard

import (
	"strings"

	"github.com/discochess/openingtree/internal/shard"
	"github.com/discochess/openingtree/internal/tree"
)

// Strategy implements opening-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new opening-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "opening"
}

// ShardID computes a shard ID from the root ply of the identifier.
// Every document under the same first move maps to the same shard, so
// walking a line never crosses shard boundaries.
func (s *Strategy) ShardID(id string, totalShards int) int {
	root, _, _ := strings.Cut(id, tree.Separator)
	var h uint32 = 2166136261
	for i := 0; i < len(root); i++ {
		h ^= uint32(root[i])
		h *= 16777619
	}
	return int(h % uint32(totalShards))
}
