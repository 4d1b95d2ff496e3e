package source

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discochess/openingtree/internal/extract"
)

// drain reads a source to exhaustion, collecting good records and
// counting skippable ones.
func drain(t *testing.T, next func() (extract.Record, error)) (recs []extract.Record, skipped int) {
	t.Helper()
	for {
		rec, err := next()
		if err == io.EOF {
			return recs, skipped
		}
		if err != nil {
			require.ErrorIs(t, err, extract.ErrMalformed)
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
}

func TestReducedCSV(t *testing.T) {
	in := strings.Join([]string{
		`result,moves`,
		`1,"[""e4"",""e5""]"`,
		`0,"[""e4"",""e5""]"`,
		`-1,"[""e4"",""c5""]"`,
	}, "\n")

	recs, skipped := drain(t, NewReducedCSV(strings.NewReader(in), 10).Next)
	assert.Zero(t, skipped)
	assert.Equal(t, []extract.Record{
		{Outcome: extract.WhiteWin, Moves: []string{"e4", "e5"}},
		{Outcome: extract.Draw, Moves: []string{"e4", "e5"}},
		{Outcome: extract.BlackWin, Moves: []string{"e4", "c5"}},
	}, recs)
}

func TestReducedCSV_NoHeader(t *testing.T) {
	in := `1,"[""d4"",""d5""]"`
	recs, skipped := drain(t, NewReducedCSV(strings.NewReader(in), 10).Next)
	assert.Zero(t, skipped)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"d4", "d5"}, recs[0].Moves)
}

func TestReducedCSV_SkipsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		`result,moves`,
		`1,"[""e4""]"`,
		`2,"[""e4""]"`, // unrecognized result
		`1,not-json`,
		`1,"[]"`, // no plies
		`0,"[""c4""]"`,
	}, "\n")

	recs, skipped := drain(t, NewReducedCSV(strings.NewReader(in), 10).Next)
	assert.Equal(t, 3, skipped)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"e4"}, recs[0].Moves)
	assert.Equal(t, []string{"c4"}, recs[1].Moves)
}

func TestReducedCSV_BareQuoteRowSkipped(t *testing.T) {
	in := strings.Join([]string{
		`result,moves`,
		`1,"[""e4""]"`,
		`1,bad"quote`, // row-level quoting error
		`0,"[""c4""]"`,
	}, "\n")

	recs, skipped := drain(t, NewReducedCSV(strings.NewReader(in), 10).Next)
	assert.Equal(t, 1, skipped)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"e4"}, recs[0].Moves)
	assert.Equal(t, []string{"c4"}, recs[1].Moves)
}

func TestReducedCSV_Limit(t *testing.T) {
	in := `1,"[""e4"",""e5"",""Nf3"",""Nc6""]"`
	recs, _ := drain(t, NewReducedCSV(strings.NewReader(in), 2).Next)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"e4", "e5"}, recs[0].Moves)
}

func TestGamesCSV(t *testing.T) {
	row := make([]string, colMovetext+1)
	for i := range row {
		row[i] = "x"
	}
	row[colResult] = "1-0"
	row[colMovetext] = "1. e4 e5 2. Nf3 1-0"
	in := strings.Join(row, ",")

	recs, skipped := drain(t, NewGamesCSV(strings.NewReader(in), 10).Next)
	assert.Zero(t, skipped)
	require.Len(t, recs, 1)
	assert.Equal(t, extract.WhiteWin, recs[0].Outcome)
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, recs[0].Moves)
}

func TestGamesCSV_BareQuoteRowSkipped(t *testing.T) {
	gameRow := func(result, movetext string) string {
		row := make([]string, colMovetext+1)
		for i := range row {
			row[i] = "x"
		}
		row[colResult] = result
		row[colMovetext] = movetext
		return strings.Join(row, ",")
	}
	in := strings.Join([]string{
		gameRow("1-0", "1. e4 e5 1-0"),
		gameRow("0-1", `bad"quote`),
		gameRow("0-1", "1. d4 d5 0-1"),
	}, "\n")

	recs, skipped := drain(t, NewGamesCSV(strings.NewReader(in), 10).Next)
	assert.Equal(t, 1, skipped)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"e4", "e5"}, recs[0].Moves)
	assert.Equal(t, []string{"d4", "d5"}, recs[1].Moves)
}

func TestGamesCSV_ShortRow(t *testing.T) {
	recs, skipped := drain(t, NewGamesCSV(strings.NewReader("a,b,c"), 10).Next)
	assert.Empty(t, recs)
	assert.Equal(t, 1, skipped)
}

const samplePGN = `[Event "Casual Game"]
[Site "?"]
[White "A"]
[Black "B"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0

[Event "Casual Game"]
[Site "?"]
[White "C"]
[Black "D"]
[Result "0-1"]

1. d4 Nf6 2. c4 e6 0-1

[Event "Casual Game"]
[Site "?"]
[White "E"]
[Black "F"]
[Result "1/2-1/2"]

1. c4 e5 1/2-1/2
`

func TestPGN(t *testing.T) {
	recs, skipped := drain(t, NewPGN(strings.NewReader(samplePGN), 10).Next)
	assert.Zero(t, skipped)
	assert.Equal(t, []extract.Record{
		{Outcome: extract.WhiteWin, Moves: []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}},
		{Outcome: extract.BlackWin, Moves: []string{"d4", "Nf6", "c4", "e6"}},
		{Outcome: extract.Draw, Moves: []string{"c4", "e5"}},
	}, recs)
}

func TestPGN_Limit(t *testing.T) {
	recs, _ := drain(t, NewPGN(strings.NewReader(samplePGN), 2).Next)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"e4", "e5"}, recs[0].Moves)
	assert.Equal(t, []string{"d4", "Nf6"}, recs[1].Moves)
}

func TestPGN_UnfinishedGameSkipped(t *testing.T) {
	in := `[Event "?"]
[Result "*"]

1. e4 e5 *
`
	recs, skipped := drain(t, NewPGN(strings.NewReader(in), 10).Next)
	assert.Empty(t, recs)
	assert.Equal(t, 1, skipped)
}

func TestPGN_Empty(t *testing.T) {
	recs, skipped := drain(t, NewPGN(strings.NewReader(""), 10).Next)
	assert.Empty(t, recs)
	assert.Zero(t, skipped)
}
