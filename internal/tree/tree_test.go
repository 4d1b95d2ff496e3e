package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discochess/openingtree/internal/extract"
)

func observe(t *testing.T, a *Accumulator, outcome extract.Outcome, moves ...string) {
	t.Helper()
	require.NoError(t, a.Observe(extract.Record{Outcome: outcome, Moves: moves}))
}

func TestNewAccumulator_InvalidDepth(t *testing.T) {
	for _, depth := range []int{0, -1} {
		_, err := NewAccumulator(depth)
		assert.ErrorIs(t, err, ErrInvalidDepth, "depth %d", depth)
	}
}

func TestObserve_EmptySequence(t *testing.T) {
	a, err := NewAccumulator(4)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Observe(extract.Record{Outcome: extract.Draw}), ErrEmptySequence)
	assert.Zero(t, a.Games())
}

func TestObserve_EveryPrefixCounted(t *testing.T) {
	a, err := NewAccumulator(4)
	require.NoError(t, err)
	observe(t, a, extract.WhiteWin, "e4", "e5", "Nf3")

	for _, seq := range [][]string{
		{"e4"},
		{"e4", "e5"},
		{"e4", "e5", "Nf3"},
	} {
		n := a.Node(seq)
		require.NotNil(t, n, "node %v", seq)
		assert.Equal(t, Counts{WhiteWin: 1, Total: 1}, n.Counts, "node %v", seq)
		assert.Equal(t, len(seq), n.Depth, "node %v", seq)
	}
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, int64(1), a.Games())
}

func TestObserve_TruncatesAtMaxDepth(t *testing.T) {
	a, err := NewAccumulator(4)
	require.NoError(t, err)
	observe(t, a, extract.Draw, "e4", "e5", "Nf3", "Nc6", "Bb5")

	// Exactly one node per prefix up to the bound; the fifth ply is gone.
	assert.Equal(t, 4, a.Len())
	assert.Nil(t, a.Node([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"}))

	deepest := a.Node([]string{"e4", "e5", "Nf3", "Nc6"})
	require.NotNil(t, deepest)
	assert.Empty(t, deepest.Children, "truncated continuations must not appear as children")
}

func TestObserve_SharedPrefixesAggregate(t *testing.T) {
	a, err := NewAccumulator(4)
	require.NoError(t, err)
	observe(t, a, extract.WhiteWin, "e4", "e5")
	observe(t, a, extract.Draw, "e4", "e5")
	observe(t, a, extract.BlackWin, "e4", "c5")

	root := a.Node([]string{"e4"})
	require.NotNil(t, root)
	assert.Equal(t, Counts{WhiteWin: 1, Draw: 1, BlackWin: 1, Total: 3}, root.Counts)
	assert.Equal(t, map[string]struct{}{"e5": {}, "c5": {}}, root.Children)

	e5 := a.Node([]string{"e4", "e5"})
	require.NotNil(t, e5)
	assert.Equal(t, Counts{WhiteWin: 1, Draw: 1, Total: 2}, e5.Counts)

	c5 := a.Node([]string{"e4", "c5"})
	require.NotNil(t, c5)
	assert.Equal(t, Counts{BlackWin: 1, Total: 1}, c5.Counts)

	assert.Equal(t, int64(3), a.Games())
	assert.ElementsMatch(t, []string{"e4"}, a.FirstMoves())
}

func TestObserve_DistinctFirstMoves(t *testing.T) {
	a, err := NewAccumulator(2)
	require.NoError(t, err)
	observe(t, a, extract.WhiteWin, "e4", "e5")
	observe(t, a, extract.WhiteWin, "d4", "d5")
	observe(t, a, extract.BlackWin, "e4", "c5")

	assert.ElementsMatch(t, []string{"e4", "d4"}, a.FirstMoves())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "e4", Key([]string{"e4"}))
	assert.Equal(t, "e4_e5_Nf3", Key([]string{"e4", "e5", "Nf3"}))
}

func TestCounts_Rates(t *testing.T) {
	r := Counts{WhiteWin: 1, Draw: 1, BlackWin: 1, Total: 3}.Rates()
	assert.Equal(t, Rates{WhiteWin: 33.33, Draw: 33.33, BlackWin: 33.33}, r)

	// Independently rounded rates may not sum to exactly 100.
	sum := r.WhiteWin + r.Draw + r.BlackWin
	assert.InDelta(t, 100, sum, 0.02)

	assert.Equal(t, Rates{WhiteWin: 50, Draw: 25, BlackWin: 25},
		Counts{WhiteWin: 2, Draw: 1, BlackWin: 1, Total: 4}.Rates())

	assert.Equal(t, Rates{}, Counts{}.Rates())
}

func TestCounts_CounterIdentity(t *testing.T) {
	a, err := NewAccumulator(3)
	require.NoError(t, err)
	observe(t, a, extract.WhiteWin, "e4", "e5", "Nf3")
	observe(t, a, extract.BlackWin, "e4", "e5", "Nf3")
	observe(t, a, extract.Draw, "e4", "e5")
	observe(t, a, extract.Draw, "d4")

	for key, n := range a.Nodes() {
		c := n.Counts
		assert.Equal(t, c.Total, c.WhiteWin+c.Draw+c.BlackWin, "node %s", key)
	}
}
