// Package shard defines the sharding strategy interface for distributing
// emitted documents across object-store prefixes.
package shard

// Strategy defines a sharding algorithm that maps document identifiers to
// shard IDs.
type Strategy interface {
	// Name returns a human-readable name for this strategy.
	Name() string

	// ShardID computes the shard ID for a document identifier.
	// The returned value is in the range [0, totalShards).
	ShardID(id string, totalShards int) int
}
