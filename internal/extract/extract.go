// Package extract converts raw game records into canonical outcome codes
// and ply sequences suitable for tree accumulation.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for records that must be skipped. ErrBadOutcome and
// ErrNoMoves both match ErrMalformed, so callers can classify any
// skippable record with a single errors.Is check.
var (
	// ErrMalformed indicates an unparseable record; skip and count.
	ErrMalformed = errors.New("extract: malformed record")

	// ErrBadOutcome indicates the result field was not a recognized token.
	ErrBadOutcome = fmt.Errorf("%w: unrecognized outcome", ErrMalformed)

	// ErrNoMoves indicates the record contained no usable ply tokens.
	ErrNoMoves = fmt.Errorf("%w: empty move list", ErrMalformed)
)

// Outcome is the canonical three-way game result.
type Outcome int8

const (
	BlackWin Outcome = -1
	Draw     Outcome = 0
	WhiteWin Outcome = 1
)

// String returns the conventional result notation for the outcome.
func (o Outcome) String() string {
	switch o {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// Record is a single extracted game: a canonical outcome and the opening
// plies in order, already stripped of annotations and move numbers.
type Record struct {
	Outcome Outcome
	Moves   []string
}

// ParseOutcome maps a raw result token to an Outcome.
// Both the PGN result notation ("1-0", "1/2-1/2", "0-1") and the reduced
// numeric form ("1", "0", "-1") are accepted.
func ParseOutcome(raw string) (Outcome, error) {
	switch strings.TrimSpace(raw) {
	case "1-0", "1":
		return WhiteWin, nil
	case "1/2-1/2", "0":
		return Draw, nil
	case "0-1", "-1":
		return BlackWin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadOutcome, raw)
	}
}

// resultTokens are trailing result decorations that may terminate movetext.
var resultTokens = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// isMoveNumber reports whether tok is a move-number marker such as "1."
// or "12..." (black-to-move continuation).
func isMoveNumber(tok string) bool {
	trimmed := strings.TrimRight(tok, ".")
	if trimmed == tok || trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripGlyphs removes evaluation glyphs ("!", "?") from a ply token.
func stripGlyphs(tok string) string {
	return strings.Map(func(r rune) rune {
		if r == '!' || r == '?' {
			return -1
		}
		return r
	}, tok)
}

// TokenizeMovetext splits annotated movetext into ply tokens.
// Move-number markers, comment braces, bracketed annotations, and a
// trailing result token are discarded; evaluation glyphs are stripped.
// At most limit tokens are returned; limit <= 0 means no bound.
func TokenizeMovetext(movetext string, limit int) []string {
	fields := strings.Fields(movetext)

	plies := make([]string, 0, len(fields))
	for _, tok := range fields {
		if isMoveNumber(tok) {
			continue
		}
		if tok == "{" || tok == "}" {
			continue
		}
		if strings.HasPrefix(tok, "[") || strings.HasSuffix(tok, "]") {
			continue
		}
		if resultTokens[tok] {
			continue
		}
		tok = stripGlyphs(tok)
		if tok == "" {
			continue
		}
		plies = append(plies, tok)
	}

	if limit > 0 && len(plies) > limit {
		plies = plies[:limit]
	}
	return plies
}

// ParseMoveArray parses a compact JSON array of ply tokens, the serialized
// form used by the reduced CSV. At most limit tokens are returned.
func ParseMoveArray(raw string, limit int) ([]string, error) {
	var plies []string
	if err := json.Unmarshal([]byte(raw), &plies); err != nil {
		return nil, fmt.Errorf("%w: parsing move array: %v", ErrMalformed, err)
	}
	if limit > 0 && len(plies) > limit {
		plies = plies[:limit]
	}
	return plies, nil
}

// Extract converts a raw outcome token and a raw move source into a Record.
// The move source may be either a JSON array of plies or free-form
// movetext; the form is detected from the leading character.
// Records with an unrecognized outcome or no plies yield an error and
// should be skipped by the caller.
func Extract(rawOutcome, rawMoves string, limit int) (Record, error) {
	outcome, err := ParseOutcome(rawOutcome)
	if err != nil {
		return Record{}, err
	}

	var moves []string
	trimmed := strings.TrimSpace(rawMoves)
	if strings.HasPrefix(trimmed, "[") {
		moves, err = ParseMoveArray(trimmed, limit)
		if err != nil {
			return Record{}, err
		}
	} else {
		moves = TokenizeMovetext(trimmed, limit)
	}

	if len(moves) == 0 {
		return Record{}, ErrNoMoves
	}
	return Record{Outcome: outcome, Moves: moves}, nil
}
