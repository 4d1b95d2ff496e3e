// Package source provides forward-only record sources for the tree
// builder: the reduced two-column CSV, the raw per-game CSV, and PGN
// streams. Sources are single-pass and never materialize their input.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/discochess/openingtree/internal/extract"
)

// Raw CSV column positions, matching the reduction phase.
const (
	colResult   = 3
	colMovetext = 14
)

// ReducedCSV reads the two-column reduced form (result, moves array).
// A leading header row is tolerated and skipped.
type ReducedCSV struct {
	reader *csv.Reader
	limit  int
	first  bool
}

// NewReducedCSV creates a source over a reduced CSV stream. Moves are
// truncated to limit plies; limit <= 0 means no bound.
func NewReducedCSV(r io.Reader, limit int) *ReducedCSV {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return &ReducedCSV{reader: reader, limit: limit, first: true}
}

// Next returns the next record. io.EOF ends the stream; any other error
// marks a malformed row the caller may skip and count.
func (s *ReducedCSV) Next() (extract.Record, error) {
	for {
		row, err := s.reader.Read()
		if err != nil {
			return extract.Record{}, wrapRowError(err)
		}

		if s.first {
			s.first = false
			if len(row) > 0 && row[0] == "result" {
				continue
			}
		}

		if len(row) < 2 {
			return extract.Record{}, fmt.Errorf("%w: row has %d columns, want 2", extract.ErrMalformed, len(row))
		}
		return extract.Extract(row[0], row[1], s.limit)
	}
}

// GamesCSV reads the raw fifteen-column per-game CSV, extracting records
// directly without an intermediate reduction pass.
type GamesCSV struct {
	reader *csv.Reader
	limit  int
}

// NewGamesCSV creates a source over a raw games CSV stream.
func NewGamesCSV(r io.Reader, limit int) *GamesCSV {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return &GamesCSV{reader: reader, limit: limit}
}

// Next returns the next record. io.EOF ends the stream.
func (s *GamesCSV) Next() (extract.Record, error) {
	row, err := s.reader.Read()
	if err != nil {
		return extract.Record{}, wrapRowError(err)
	}
	if len(row) <= colMovetext {
		return extract.Record{}, fmt.Errorf("%w: row has %d columns, want %d", extract.ErrMalformed, len(row), colMovetext+1)
	}
	return extract.Extract(row[colResult], row[colMovetext], s.limit)
}

// wrapRowError classifies a row-level CSV quoting error as malformed so
// callers skip the row instead of aborting; csv.Reader recovers at the
// next record. io.EOF and reader failures pass through unchanged.
func wrapRowError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %v", extract.ErrMalformed, err)
	}
	return err
}
