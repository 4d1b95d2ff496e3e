// Package reduce implements the reduction phase: streaming the raw
// per-game CSV down to the two columns the tree builder consumes.
//
// The raw input is headerless with fifteen positional columns; only the
// result (column 3) and the annotated movetext (column 14) are kept.
// The output is a two-column CSV with a header row: the result as
// -1/0/1 and the opening plies as a compact JSON array.
package reduce

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/openingtree/internal/extract"
)

// Raw CSV column positions.
const (
	colResult   = 3
	colMovetext = 14
)

// DefaultLimit is the number of opening plies kept per game.
const DefaultLimit = 10

// DefaultReportInterval is the progress-reporting cadence in rows.
const DefaultReportInterval = 10000

// Progress tracks reduction progress.
type Progress struct {
	RowsRead  int64
	Written   int64
	Skipped   int64
	StartTime time.Time
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// Result summarizes one reduction run.
type Result struct {
	RowsRead int64
	Written  int64
	Skipped  int64
}

// Reducer streams raw game rows into the reduced form.
type Reducer struct {
	limit    int
	interval int64
	progress ProgressFunc
	logger   *zap.Logger
}

// Option configures the Reducer.
type Option func(*Reducer)

// WithLimit sets the number of plies kept per game.
func WithLimit(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithReportInterval sets the progress cadence in rows.
func WithReportInterval(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.interval = int64(n)
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Reducer) { r.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reducer) { r.logger = l }
}

// NewReducer creates a Reducer with the given options.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		limit:    DefaultLimit,
		interval: DefaultReportInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce streams rows from in and writes reduced rows to out. Rows with
// an unrecognized result or no plies are skipped and counted; they never
// abort the run.
func (r *Reducer) Reduce(ctx context.Context, in io.Reader, out io.Writer) (Result, error) {
	start := time.Now()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"result", "moves"}); err != nil {
		return Result{}, fmt.Errorf("writing header: %w", err)
	}

	var res Result
	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Quoting errors are row-local; the reader recovers at the
			// next record, so count the row and move on.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.RowsRead++
				res.Skipped++
				r.logger.Debug("skipping row",
					zap.Int64("row", res.RowsRead),
					zap.Error(err),
				)
				continue
			}
			return res, fmt.Errorf("reading row %d: %w", res.RowsRead+1, err)
		}
		res.RowsRead++

		reduced, err := r.reduceRow(row)
		if err != nil {
			res.Skipped++
			r.logger.Debug("skipping row",
				zap.Int64("row", res.RowsRead),
				zap.Error(err),
			)
			continue
		}

		if err := writer.Write(reduced); err != nil {
			return res, fmt.Errorf("writing row: %w", err)
		}
		res.Written++

		if r.progress != nil && res.RowsRead%r.interval == 0 {
			r.progress(Progress{
				RowsRead:  res.RowsRead,
				Written:   res.Written,
				Skipped:   res.Skipped,
				StartTime: start,
			})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return res, fmt.Errorf("flushing output: %w", err)
	}

	r.logger.Info("reduction complete",
		zap.Int64("rowsRead", res.RowsRead),
		zap.Int64("written", res.Written),
		zap.Int64("skipped", res.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// reduceRow converts one raw row into the reduced two-column form.
func (r *Reducer) reduceRow(row []string) ([]string, error) {
	if len(row) <= colMovetext {
		return nil, fmt.Errorf("%w: too few columns", extract.ErrMalformed)
	}

	rec, err := extract.Extract(row[colResult], row[colMovetext], r.limit)
	if err != nil {
		return nil, err
	}

	moves, err := json.Marshal(rec.Moves)
	if err != nil {
		return nil, fmt.Errorf("reduce: encoding moves: %w", err)
	}

	return []string{fmt.Sprintf("%d", rec.Outcome), string(moves)}, nil
}
