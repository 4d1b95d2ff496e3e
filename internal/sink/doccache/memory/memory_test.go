package memory

import (
	"testing"

	"github.com/discochess/openingtree/internal/emit"
	"github.com/discochess/openingtree/internal/sink/doccache/cachestrategy/lru"
)

func TestBackend_GetSet(t *testing.T) {
	strategy, err := lru.New(8)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	if _, ok := b.Get("e4"); ok {
		t.Error("Get() on empty cache = true, want false")
	}

	b.Set("e4", emit.Document{ID: "e4", Total: 5})

	doc, ok := b.Get("e4")
	if !ok {
		t.Fatal("Get() after Set = false, want true")
	}
	if doc.Total != 5 {
		t.Errorf("Get().Total = %d, want 5", doc.Total)
	}
}

func TestBackend_Stats(t *testing.T) {
	strategy, err := lru.New(8)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	b.Set("e4", emit.Document{ID: "e4"})
	b.Get("e4")
	b.Get("d4")
	b.Get("d4")

	stats := b.Stats()
	if stats.Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 2 {
		t.Errorf("Stats().Misses = %d, want 2", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Stats().Size = %d, want 1", stats.Size)
	}
	if got := stats.HitRate(); got < 33.3 || got > 33.4 {
		t.Errorf("Stats().HitRate() = %f, want ~33.33", got)
	}
}

func TestBackend_LRUEviction(t *testing.T) {
	strategy, err := lru.New(2)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	b.Set("e4", emit.Document{ID: "e4"})
	b.Set("d4", emit.Document{ID: "d4"})
	b.Set("c4", emit.Document{ID: "c4"})

	if _, ok := b.Get("e4"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := b.Get("c4"); !ok {
		t.Error("newest entry was evicted")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}
