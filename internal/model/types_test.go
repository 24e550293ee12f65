package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAcceptsNumbersAndStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`1700000000`, time.Unix(1700000000, 0).UTC()},
		{`"2024-03-01 12:30:00"`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`""`, time.Time{}},
		{`0`, time.Time{}},
		{`null`, time.Time{}},
	}
	for _, tc := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts), tc.raw)
		assert.True(t, tc.want.Equal(ts.Time), "%s: got %v", tc.raw, ts.Time)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestampMarshalsUnixSeconds(t *testing.T) {
	out, err := json.Marshal(GameRecord{ID: "g1", Timestamp: Timestamp{time.Unix(42, 0)}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"timestamp":42`)

	out, err = json.Marshal(GameRecord{ID: "g2"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"timestamp":0`)
}

func TestPuzzleRecordDecodesAsset(t *testing.T) {
	raw := `{
		"id": "abc",
		"position": "8/8/8/8/8/8/8/K6k w - - 0 1",
		"best_move": "a1a2",
		"turn_color": "white",
		"turn_player": "Meea",
		"game": {"id": "g1", "white": "Meea", "black": "skarlman", "timestamp": 1700000000, "move_number": 12}
	}`
	var rec PuzzleRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, White, rec.TurnColor)
	assert.Equal(t, "Meea", rec.TurnPlayer)
	assert.Equal(t, 12, rec.Game.MoveNumber)
	from, to := rec.BestMoveSquares()
	assert.Equal(t, "a1", from)
	assert.Equal(t, "a2", to)
}

func TestPerformanceModelCloneIsDeep(t *testing.T) {
	m := NewPerformanceModel()
	m.Puzzles["p1"] = PuzzleStat{Correct: 1}
	c := m.Clone()
	c.Puzzles["p1"] = PuzzleStat{Wrong: 5}
	assert.Equal(t, 1, m.Puzzles["p1"].Correct)
	assert.Equal(t, 0, m.Puzzles["p1"].Wrong)
}

func TestColorHelpers(t *testing.T) {
	assert.Equal(t, "White", White.Name())
	assert.False(t, Color("red").Valid())
}
