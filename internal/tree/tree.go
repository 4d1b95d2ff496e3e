// Package tree implements the opening-tree accumulator: a prefix trie over
// ply sequences where every node aggregates game outcomes for the games
// that share its prefix.
package tree

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/discochess/openingtree/internal/extract"
)

// Sentinel errors.
var (
	// ErrInvalidDepth indicates a non-positive depth bound.
	ErrInvalidDepth = errors.New("tree: max depth must be positive")

	// ErrEmptySequence indicates an observation with no plies.
	ErrEmptySequence = errors.New("tree: empty move sequence")
)

// Separator joins plies into canonical node keys. It never occurs inside
// a ply token in algebraic notation.
const Separator = "_"

// Key returns the canonical identifier for a move sequence.
func Key(sequence []string) string {
	return strings.Join(sequence, Separator)
}

// Counts holds the outcome counters for one node.
type Counts struct {
	WhiteWin int64
	Draw     int64
	BlackWin int64
	Total    int64
}

// add applies one game outcome to the counters.
func (c *Counts) add(o extract.Outcome) {
	switch o {
	case extract.WhiteWin:
		c.WhiteWin++
	case extract.BlackWin:
		c.BlackWin++
	default:
		c.Draw++
	}
	c.Total++
}

// Rates holds the derived win/draw/loss percentages of a node.
type Rates struct {
	WhiteWin float64
	Draw     float64
	BlackWin float64
}

// Rates derives percentages from the counters, each rounded to two
// decimal digits. A zero total yields all-zero rates. The three rates
// sum to 100 within independent-rounding tolerance; callers must not
// renormalize.
func (c Counts) Rates() Rates {
	if c.Total == 0 {
		return Rates{}
	}
	return Rates{
		WhiteWin: round2(100 * float64(c.WhiteWin) / float64(c.Total)),
		Draw:     round2(100 * float64(c.Draw) / float64(c.Total)),
		BlackWin: round2(100 * float64(c.BlackWin) / float64(c.Total)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Node is one distinct move-sequence prefix.
type Node struct {
	// Sequence is the prefix this node represents; its length equals Depth.
	Sequence []string

	// Depth is 1..maxDepth.
	Depth int

	// Counts aggregates every observed game that shares this prefix.
	Counts Counts

	// Children is the set of ply tokens observed immediately after this
	// prefix. Child nodes live in the accumulator arena, keyed by the
	// extended sequence.
	Children map[string]struct{}
}

// Accumulator builds the opening tree from a stream of extracted records.
// It is exclusively owned by a single processing pass and is not safe for
// concurrent use.
type Accumulator struct {
	maxDepth int
	nodes    map[string]*Node
	roots    map[string]struct{}
	games    int64
}

// NewAccumulator creates an accumulator bounded at maxDepth plies.
func NewAccumulator(maxDepth int) (*Accumulator, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, maxDepth)
	}
	return &Accumulator{
		maxDepth: maxDepth,
		nodes:    make(map[string]*Node),
		roots:    make(map[string]struct{}),
	}, nil
}

// Observe accumulates one game. Every prefix of moves up to the depth
// bound gets its counters incremented by the outcome, creating nodes
// lazily on first sight. Observing the same record twice doubles every
// counter it touches; deduplication is the caller's concern.
func (a *Accumulator) Observe(rec extract.Record) error {
	if len(rec.Moves) == 0 {
		return ErrEmptySequence
	}

	a.roots[rec.Moves[0]] = struct{}{}

	depth := len(rec.Moves)
	if depth > a.maxDepth {
		depth = a.maxDepth
	}

	for i := 1; i <= depth; i++ {
		prefix := rec.Moves[:i]
		node := a.node(prefix)
		node.Counts.add(rec.Outcome)

		if i < len(rec.Moves) && i < a.maxDepth {
			node.Children[rec.Moves[i]] = struct{}{}
		}
	}

	a.games++
	return nil
}

// node locates or creates the node for a prefix.
func (a *Accumulator) node(prefix []string) *Node {
	key := Key(prefix)
	if n, ok := a.nodes[key]; ok {
		return n
	}

	seq := make([]string, len(prefix))
	copy(seq, prefix)
	n := &Node{
		Sequence: seq,
		Depth:    len(seq),
		Children: make(map[string]struct{}),
	}
	a.nodes[key] = n
	return n
}

// Node returns the node for a move sequence, or nil if that prefix was
// never observed.
func (a *Accumulator) Node(sequence []string) *Node {
	return a.nodes[Key(sequence)]
}

// Len returns the number of materialized nodes.
func (a *Accumulator) Len() int {
	return len(a.nodes)
}

// Games returns the number of games observed.
func (a *Accumulator) Games() int64 {
	return a.games
}

// MaxDepth returns the configured depth bound.
func (a *Accumulator) MaxDepth() int {
	return a.maxDepth
}

// FirstMoves returns the set of distinct root-level plies, unordered.
func (a *Accumulator) FirstMoves() []string {
	moves := make([]string, 0, len(a.roots))
	for m := range a.roots {
		moves = append(moves, m)
	}
	return moves
}

// Nodes returns the arena. The emitter walks it; nothing mutates nodes
// after accumulation finishes.
func (a *Accumulator) Nodes() map[string]*Node {
	return a.nodes
}
