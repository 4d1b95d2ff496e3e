package reduce

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawRow builds one fifteen-column raw game row with the given result and
// movetext in their positional columns.
func rawRow(result, movetext string) []string {
	row := make([]string, colMovetext+1)
	for i := range row {
		row[i] = "x"
	}
	row[colResult] = result
	row[colMovetext] = movetext
	return row
}

func rawCSV(t *testing.T, rows ...[]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))
	return buf.String()
}

func TestReduce(t *testing.T) {
	in := rawCSV(t,
		rawRow("1-0", "1. e4 e5 2. Nf3 Nc6 3. Bb5 1-0"),
		rawRow("1/2-1/2", "1. d4 d5 1/2-1/2"),
		rawRow("0-1", "1. e4 c5?! 2. Nf3 0-1"),
	)

	var out bytes.Buffer
	res, err := NewReducer().Reduce(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsRead: 3, Written: 3}, res)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"result", "moves"},
		{"1", `["e4","e5","Nf3","Nc6","Bb5"]`},
		{"0", `["d4","d5"]`},
		{"-1", `["e4","c5","Nf3"]`},
	}, rows)
}

func TestReduce_SkipsMalformedRows(t *testing.T) {
	in := rawCSV(t,
		rawRow("1-0", "1. e4 e5 1-0"),
		rawRow("*", "1. e4 e5 *"),                // unrecognized result
		rawRow("0-1", ""),                        // no plies
		[]string{"short", "row"},                 // too few columns
		rawRow("1/2-1/2", "1. Nf3 Nf6 1/2-1/2"),
	)

	var out bytes.Buffer
	res, err := NewReducer().Reduce(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsRead: 5, Written: 2, Skipped: 3}, res)
}

func TestReduce_BareQuoteRowSkipped(t *testing.T) {
	good := rawCSV(t,
		rawRow("1-0", "1. e4 e5 1-0"),
		rawRow("0-1", "1. d4 d5 0-1"),
	)
	lines := strings.SplitN(good, "\n", 2)
	in := lines[0] + "\n" + strings.Repeat("x,", colMovetext) + `bad"quote` + "\n" + lines[1]

	var out bytes.Buffer
	res, err := NewReducer().Reduce(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsRead: 3, Written: 2, Skipped: 1}, res)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"result", "moves"},
		{"1", `["e4","e5"]`},
		{"-1", `["d4","d5"]`},
	}, rows)
}

func TestReduce_PlyLimit(t *testing.T) {
	in := rawCSV(t, rawRow("1-0", "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 1-0"))

	var out bytes.Buffer
	res, err := NewReducer(WithLimit(4)).Reduce(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Written)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", `["e4","e5","Nf3","Nc6"]`}, rows[1])
}

func TestReduce_DefaultLimitIsTenPlies(t *testing.T) {
	in := rawCSV(t, rawRow("1-0", "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 7. Bb3 d6 1-0"))

	var out bytes.Buffer
	_, err := NewReducer().Reduce(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `["e4","e5","Nf3","Nc6","Bb5","a6","Ba4","Nf6","O-O","Be7"]`, rows[1][1])
}

func TestReduce_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	res, err := NewReducer().Reduce(context.Background(), strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, "result,moves\n", out.String())
}

func TestReduce_Progress(t *testing.T) {
	rows := make([][]string, 25)
	for i := range rows {
		rows[i] = rawRow("1-0", "1. e4 e5 1-0")
	}
	in := rawCSV(t, rows...)

	var calls []Progress
	r := NewReducer(
		WithReportInterval(10),
		WithProgress(func(p Progress) { calls = append(calls, p) }),
	)
	_, err := r.Reduce(context.Background(), strings.NewReader(in), &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, int64(10), calls[0].RowsRead)
	assert.Equal(t, int64(20), calls[1].RowsRead)
}

func TestReduce_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := rawCSV(t, rawRow("1-0", "1. e4 e5 1-0"))
	_, err := NewReducer().Reduce(ctx, strings.NewReader(in), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
