package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"

	"github.com/discochess/openingtree/internal/extract"
)

// PGN reads games from a PGN stream, yielding one record per game with
// plies in standard algebraic notation. Games without a decisive result
// tag (ongoing or abandoned) surface as skippable errors.
type PGN struct {
	scanner *bufio.Scanner
	limit   int
	game    strings.Builder
	inGame  bool
	done    bool
}

// NewPGN creates a source over a PGN stream.
func NewPGN(r io.Reader, limit int) *PGN {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &PGN{scanner: scanner, limit: limit}
}

// Next returns the next game record. io.EOF ends the stream.
func (s *PGN) Next() (extract.Record, error) {
	text, err := s.nextGameText()
	if err != nil {
		return extract.Record{}, err
	}
	return parseGame(text, s.limit)
}

// nextGameText scans forward to the next complete game, delimited by
// [Event tags.
func (s *PGN) nextGameText() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if strings.HasPrefix(line, "[Event ") {
			if s.inGame && s.game.Len() > 0 {
				text := s.game.String()
				s.game.Reset()
				s.game.WriteString(line)
				s.game.WriteString("\n")
				return text, nil
			}
			s.inGame = true
		}

		if s.inGame {
			s.game.WriteString(line)
			s.game.WriteString("\n")
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("source: reading PGN: %w", err)
	}

	s.done = true
	if s.game.Len() > 0 {
		text := s.game.String()
		s.game.Reset()
		return text, nil
	}
	return "", io.EOF
}

// parseGame converts one PGN game into a record.
func parseGame(text string, limit int) (extract.Record, error) {
	pgnFunc, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return extract.Record{}, fmt.Errorf("%w: parsing PGN game: %v", extract.ErrMalformed, err)
	}
	game := chess.NewGame(pgnFunc)

	var outcome extract.Outcome
	switch game.Outcome() {
	case chess.WhiteWon:
		outcome = extract.WhiteWin
	case chess.BlackWon:
		outcome = extract.BlackWin
	case chess.Draw:
		outcome = extract.Draw
	default:
		return extract.Record{}, fmt.Errorf("%w: game has no result", extract.ErrBadOutcome)
	}

	moves := game.Moves()
	positions := game.Positions()
	if len(moves) == 0 {
		return extract.Record{}, extract.ErrNoMoves
	}

	n := len(moves)
	if limit > 0 && n > limit {
		n = limit
	}
	plies := make([]string, 0, n)
	notation := chess.AlgebraicNotation{}
	for i := 0; i < n; i++ {
		plies = append(plies, notation.Encode(positions[i], moves[i]))
	}

	return extract.Record{Outcome: outcome, Moves: plies}, nil
}
