package openingshard

import (
	"testing"
)

func TestStrategy_Name(t *testing.T) {
	s := New()
	if got := s.Name(); got != "opening" {
		t.Errorf("Name() = %q, want %q", got, "opening")
	}
}

func TestStrategy_ShardID_Range(t *testing.T) {
	s := New()
	totalShards := 64

	for _, id := range []string{"e4", "e4_e5_Nf3", "d4", "Nf3_d5"} {
		got := s.ShardID(id, totalShards)
		if got < 0 || got >= totalShards {
			t.Errorf("ShardID(%q) = %d, want 0 <= id < %d", id, got, totalShards)
		}
	}
}

func TestStrategy_ShardID_SameOpeningSameShard(t *testing.T) {
	s := New()
	totalShards := 64

	// Every prefix of one line must land on the root ply's shard.
	root := s.ShardID("e4", totalShards)
	for _, id := range []string{"e4_e5", "e4_c5", "e4_e5_Nf3", "e4_e5_Nf3_Nc6"} {
		if got := s.ShardID(id, totalShards); got != root {
			t.Errorf("ShardID(%q) = %d, want %d (shard of root ply)", id, got, root)
		}
	}
}
