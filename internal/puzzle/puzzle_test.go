package puzzle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuichess/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func writePuzzle(t *testing.T, dir string, rec model.PuzzleRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, rec.ID+".json"), data, 0o644))
}

func record(id, gameID string, ts int64) model.PuzzleRecord {
	return model.PuzzleRecord{
		ID:         id,
		Position:   startFEN,
		BestMove:   "e2e4",
		TurnColor:  model.White,
		TurnPlayer: "Meea",
		Game: model.GameSummary{
			ID:        gameID,
			White:     "Meea",
			Black:     "skarlman",
			Timestamp: model.Timestamp{Time: time.Unix(ts, 0)},
			PGN:       "1. e4 e5",
		},
	}
}

func TestDirSourceLoadsPuzzle(t *testing.T) {
	dir := t.TempDir()
	writePuzzle(t, dir, record("p1", "g1", 100))

	rec, err := NewDirSource(dir).LoadPuzzle(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ID)
	assert.Equal(t, "e2e4", rec.BestMove)
	assert.Equal(t, "g1", rec.Game.ID)
}

func TestDirSourceMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	src := NewDirSource(dir)
	ctx := context.Background()

	_, err := src.LoadPuzzle(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.LoadPuzzle(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	bad := record("bad", "g1", 1)
	bad.BestMove = "e2"
	writePuzzle(t, dir, bad)
	_, err = src.LoadPuzzle(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644))
	_, err = src.LoadPuzzle(ctx, "junk")
	assert.Error(t, err)
}

func TestDirSourceFillsMissingID(t *testing.T) {
	dir := t.TempDir()
	rec := record("", "g1", 1)
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p9.json"), data, 0o644))

	got, err := NewDirSource(dir).LoadPuzzle(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", got.ID)
}

func TestBuildAndWriteIndex(t *testing.T) {
	dir := t.TempDir()
	writePuzzle(t, dir, record("b", "old", 100))
	writePuzzle(t, dir, record("a", "new", 200))
	writePuzzle(t, dir, record("c", "new", 200))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("nope"), 0o644))

	idx, err := BuildIndex(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, idx.Puzzles)
	require.Len(t, idx.Games, 2)
	assert.Equal(t, "new", idx.Games[0].ID)
	assert.Equal(t, []string{"a", "c"}, idx.Games[0].PuzzleIDs)
	assert.Equal(t, "old", idx.Games[1].ID)

	require.NoError(t, WriteIndex(dir, idx))
	loaded, err := NewDirSource(dir).LoadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, idx.Puzzles, loaded.Puzzles)
	assert.Equal(t, "Meea", loaded.Games[0].White)
	assert.True(t, idx.Games[0].Timestamp.Equal(loaded.Games[0].Timestamp.Time))

	// Rebuilding ignores index.json itself.
	again, err := BuildIndex(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, idx.Puzzles, again.Puzzles)
}

func TestHTTPSource(t *testing.T) {
	idx := model.Index{Puzzles: []string{"p1"}, Games: []model.GameRecord{{ID: "g1", PuzzleIDs: []string{"p1"}}}}
	rec := record("p1", "g1", 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/puzzles/index.json", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(idx)
	})
	mux.HandleFunc("/puzzles/p1.json", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(rec)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	src, err := Open(srv.URL + "/puzzles")
	require.NoError(t, err)
	ctx := context.Background()

	gotIdx, err := src.LoadIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, gotIdx.Puzzles)

	gotRec, err := src.LoadPuzzle(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", gotRec.ID)

	_, err = src.LoadPuzzle(ctx, "p2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPicksDirectory(t *testing.T) {
	src, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)

	_, err = Open("  ")
	assert.Error(t, err)
}

type countingSource struct {
	Source
	loads atomic.Int32
}

func (c *countingSource) LoadPuzzle(ctx context.Context, id string) (model.PuzzleRecord, error) {
	c.loads.Add(1)
	return c.Source.LoadPuzzle(ctx, id)
}

func TestCacheServesRepeatLoads(t *testing.T) {
	dir := t.TempDir()
	writePuzzle(t, dir, record("p1", "g1", 1))
	counting := &countingSource{Source: NewDirSource(dir)}
	cache, err := NewCache(counting, 2)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cache.LoadPuzzle(ctx, "p1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, counting.loads.Load())

	_, err = cache.LoadPuzzle(ctx, "missing")
	assert.Error(t, err)
	_, err = cache.LoadPuzzle(ctx, "missing")
	assert.Error(t, err)
	assert.EqualValues(t, 3, counting.loads.Load())
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Zero(t, cache.Len())
}

func TestWatchIndexReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchIndex(ctx, dir, zerolog.Nop(), func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		require.NoError(t, WriteIndex(dir, model.Index{Puzzles: []string{"p1"}}))
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-ticker.C:
		case <-deadline:
			t.Fatal("index change not reported")
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "White wins", FormatResult("1-0"))
	assert.Equal(t, "Black wins", FormatResult("0-1"))
	assert.Equal(t, "Draw", FormatResult("1/2-1/2"))
	assert.Equal(t, "Unknown", FormatResult(""))
	assert.Equal(t, "*", FormatResult("*"))

	assert.Equal(t, "3 min + 2 sec", FormatTimeControl("180+2"))
	assert.Equal(t, "10 min", FormatTimeControl("600"))
	assert.Equal(t, "30 sec + 1 sec", FormatTimeControl("30+1"))
	assert.Equal(t, "45 sec", FormatTimeControl("45"))
	assert.Equal(t, "Unknown", FormatTimeControl("1/86400"))
	assert.Equal(t, "Unknown", FormatTimeControl(""))
}

func TestGameLabelAndPlayers(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	g := model.GameRecord{White: "Meea", Black: "skarlman", Timestamp: model.Timestamp{Time: now.Add(-72 * time.Hour)}}
	assert.Equal(t, "Meea vs skarlman (3 days ago)", GameLabel(g, now))
	assert.Equal(t, "a vs b (unknown date)", GameLabel(model.GameRecord{White: "a", Black: "b"}, now))

	games := []model.GameRecord{
		{White: "skarlman", Black: "Meea"},
		{White: "Mennborg", Black: "skarlman"},
	}
	assert.Equal(t, []string{"Meea", "Mennborg", "skarlman"}, Players(games))
}
