// Package emit walks a finished opening tree and produces self-contained
// documents, one per node plus a global summary, in a deterministic order.
//
// Each document carries one node's counters and one level of child
// summaries. Subtrees are never inlined, so document size is bounded by
// the branching factor regardless of tree depth or game count.
package emit

import (
	"context"
	"fmt"
	"sort"

	"github.com/discochess/openingtree/internal/tree"
)

// SummaryID is the reserved identifier of the summary document.
const SummaryID = "summary"

// NextMove summarizes one immediate child of a node. The child's own
// document can be fetched by ID.
type NextMove struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	WhiteWin int64  `json:"white_win"`
	Draw     int64  `json:"draw"`
	BlackWin int64  `json:"black_win"`
	Total    int64  `json:"total_games"`
}

// Document is the emitted form of one tree node.
type Document struct {
	ID           string     `json:"id"`
	MoveSequence []string   `json:"move_sequence"`
	Depth        int        `json:"depth"`
	WhiteWin     int64      `json:"white_win"`
	Draw         int64      `json:"draw"`
	BlackWin     int64      `json:"black_win"`
	Total        int64      `json:"total_games"`
	WhiteWinRate float64    `json:"white_win_rate"`
	DrawRate     float64    `json:"draw_rate"`
	BlackWinRate float64    `json:"black_win_rate"`
	NextMoves    []NextMove `json:"next_moves"`
}

// Summary is the single per-run aggregate document. Its presence marks a
// complete dataset; consumers treat a sink without a summary as a
// partial run.
type Summary struct {
	ID              string   `json:"id"`
	TotalFirstMoves int      `json:"total_first_moves"`
	TotalGames      int64    `json:"total_games_processed"`
	MaxDepth        int      `json:"max_depth"`
	FirstMoves      []string `json:"first_moves"`
}

// Walk visits every node of the accumulator in emission order and calls
// fn with its document. Documents are built one at a time; the emission
// set is never materialized. Walk stops on the first error from fn or on
// context cancellation, leaving already-visited documents untouched, so
// a caller that retries can resume from the next undelivered document.
//
// Emission order is descending total games, ties broken by ascending
// node identifier. The same ordering applies to each document's
// next_moves list (by child total, then child ply).
func Walk(ctx context.Context, acc *tree.Accumulator, fn func(Document) error) error {
	for _, node := range orderedNodes(acc) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(NodeDocument(acc, node)); err != nil {
			return fmt.Errorf("emitting %s: %w", tree.Key(node.Sequence), err)
		}
	}
	return nil
}

// NodeDocument builds the document for a single node, computing its
// derived rates and child summaries.
func NodeDocument(acc *tree.Accumulator, node *tree.Node) Document {
	rates := node.Counts.Rates()

	doc := Document{
		ID:           tree.Key(node.Sequence),
		MoveSequence: node.Sequence,
		Depth:        node.Depth,
		WhiteWin:     node.Counts.WhiteWin,
		Draw:         node.Counts.Draw,
		BlackWin:     node.Counts.BlackWin,
		Total:        node.Counts.Total,
		WhiteWinRate: rates.WhiteWin,
		DrawRate:     rates.Draw,
		BlackWinRate: rates.BlackWin,
		NextMoves:    make([]NextMove, 0, len(node.Children)),
	}

	for ply := range node.Children {
		childSeq := append(append([]string{}, node.Sequence...), ply)
		child := acc.Node(childSeq)
		if child == nil {
			// A child ply is only recorded when the extended prefix is
			// itself materialized, so this cannot happen on a tree built
			// by the accumulator.
			continue
		}
		doc.NextMoves = append(doc.NextMoves, NextMove{
			ID:       tree.Key(childSeq),
			Name:     ply,
			WhiteWin: child.Counts.WhiteWin,
			Draw:     child.Counts.Draw,
			BlackWin: child.Counts.BlackWin,
			Total:    child.Counts.Total,
		})
	}

	sort.Slice(doc.NextMoves, func(i, j int) bool {
		if doc.NextMoves[i].Total != doc.NextMoves[j].Total {
			return doc.NextMoves[i].Total > doc.NextMoves[j].Total
		}
		return doc.NextMoves[i].Name < doc.NextMoves[j].Name
	})

	return doc
}

// BuildSummary builds the global summary document. First moves follow
// the same ordering as node emission: descending total, then ascending
// ply token.
func BuildSummary(acc *tree.Accumulator) Summary {
	firstMoves := acc.FirstMoves()

	var totalGames int64
	totals := make(map[string]int64, len(firstMoves))
	for _, ply := range firstMoves {
		if n := acc.Node([]string{ply}); n != nil {
			totals[ply] = n.Counts.Total
			totalGames += n.Counts.Total
		}
	}

	sort.Slice(firstMoves, func(i, j int) bool {
		if totals[firstMoves[i]] != totals[firstMoves[j]] {
			return totals[firstMoves[i]] > totals[firstMoves[j]]
		}
		return firstMoves[i] < firstMoves[j]
	})

	return Summary{
		ID:              SummaryID,
		TotalFirstMoves: len(firstMoves),
		TotalGames:      totalGames,
		MaxDepth:        acc.MaxDepth(),
		FirstMoves:      firstMoves,
	}
}

// orderedNodes returns the arena nodes in emission order.
func orderedNodes(acc *tree.Accumulator) []*tree.Node {
	nodes := make([]*tree.Node, 0, acc.Len())
	for _, n := range acc.Nodes() {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Counts.Total != nodes[j].Counts.Total {
			return nodes[i].Counts.Total > nodes[j].Counts.Total
		}
		return tree.Key(nodes[i].Sequence) < tree.Key(nodes[j].Sequence)
	})
	return nodes
}
