package tui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/puzzle"
	"github.com/verte-zerg/tuichess/internal/rules"
	"github.com/verte-zerg/tuichess/internal/selection"
	"github.com/verte-zerg/tuichess/internal/store"
	"github.com/verte-zerg/tuichess/internal/trainer"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func writeAsset(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestModel(t *testing.T, opts trainer.Options) *Model {
	t.Helper()
	dir := t.TempDir()
	for _, id := range []string{"p1", "p2"} {
		writeAsset(t, filepath.Join(dir, id+".json"), model.PuzzleRecord{
			ID:         id,
			Position:   startFEN,
			BestMove:   "e2e4",
			TurnColor:  model.White,
			TurnPlayer: "Meea",
			Game: model.GameSummary{
				ID: "g1", White: "Meea", Black: "skarlman", PGN: "1. e4 e5", MoveNumber: 1,
				URL: "https://lichess.org/g1", Result: "0-1", TimeControl: "180+2",
			},
		})
	}
	writeAsset(t, filepath.Join(dir, puzzle.IndexFile), model.Index{
		Puzzles: []string{"p1", "p2"},
		Games:   []model.GameRecord{{ID: "g1", White: "Meea", Black: "skarlman", PuzzleIDs: []string{"p1", "p2"}}},
	})

	ctx := context.Background()
	tracker := store.NewTracker(ctx, store.NewMemory(), zerolog.Nop())
	tr := trainer.New(ctx, puzzle.NewDirSource(dir), tracker, rules.New(), selection.NewWithSeed(3), opts, zerolog.Nop())
	return NewModel(ctx, tr, rules.New(), Options{}, zerolog.Nop())
}

func load(t *testing.T, m *Model, id string) {
	t.Helper()
	msg := m.startLoad(id)()
	m.Update(msg)
}

func TestLoadShowsPuzzle(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	load(t, m, "p1")

	rec, ok := m.trainer.Session().Puzzle()
	if !ok || rec.ID != "p1" {
		t.Fatalf("expected p1 to be active, got %+v", rec)
	}
	if !strings.Contains(m.status, "White") {
		t.Fatalf("unexpected status: %q", m.status)
	}
	view := m.View()
	if !strings.Contains(view, "tuichess --puzzle p1") {
		t.Fatalf("expected reopen command in view")
	}
	for _, want := range []string{"https://lichess.org/g1", "Black wins", "3 min + 2 sec"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}

func TestGameDetailsSkipsMissingFields(t *testing.T) {
	if got := gameDetails(model.GameSummary{}); len(got) != 0 {
		t.Fatalf("expected no details, got %v", got)
	}
	got := gameDetails(model.GameSummary{URL: "https://lichess.org/x"})
	if len(got) != 1 || !strings.Contains(got[0], "https://lichess.org/x") {
		t.Fatalf("unexpected details: %v", got)
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	first := m.startLoad("p1")
	second := m.startLoad("p2")

	m.Update(second())
	m.Update(first())

	rec, _ := m.trainer.Session().Puzzle()
	if rec.ID != "p2" {
		t.Fatalf("expected p2 to stay active, got %s", rec.ID)
	}
}

func TestEnterSubmitsMove(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	load(t, m, "p1")

	m.input.SetValue("e2e3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Wrong move. Try again." {
		t.Fatalf("unexpected status: %q", m.status)
	}

	m.input.SetValue("e2e4")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.status, "Solved.") {
		t.Fatalf("unexpected status: %q", m.status)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared")
	}
	footer := m.renderFooter()
	if !containsAll(footer, []string{"Correct 0", "Wrong 1", "Success 0%"}) {
		t.Fatalf("footer missing expected segments: %s", footer)
	}
}

func TestHintExpires(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	load(t, m, "p1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected a hint timer")
	}
	hint, ok := m.trainer.Session().Hint()
	if !ok {
		t.Fatalf("expected an active hint")
	}
	m.Update(hintExpiredMsg{gen: hint.Gen})
	if _, ok := m.trainer.Session().Hint(); ok {
		t.Fatalf("expected hint to be cleared")
	}
}

func TestClearStatsNeedsConfirmation(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	load(t, m, "p1")
	m.input.SetValue("e2e4")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.trainer.Stats().TotalCorrect != 1 {
		t.Fatalf("stats cleared without confirmation")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if m.trainer.Stats().TotalCorrect != 0 {
		t.Fatalf("expected stats to be cleared")
	}
}

func TestNoPuzzlesMessage(t *testing.T) {
	m := newTestModel(t, trainer.Options{Player: "nobody", MyMovesOnly: true})
	load(t, m, "")
	if m.status != trainer.NoPuzzlesMessage {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestCycleGameAndPlayer(t *testing.T) {
	m := newTestModel(t, trainer.Options{})
	m.cycleGame()
	if g := m.trainer.Filters().Game; g == nil || g.ID != "g1" {
		t.Fatalf("expected g1 to be selected")
	}
	m.cycleGame()
	if m.trainer.Filters().Game != nil {
		t.Fatalf("expected all games after wrapping")
	}
	m.cyclePlayer()
	if m.trainer.Filters().Player != "Meea" {
		t.Fatalf("unexpected player %q", m.trainer.Filters().Player)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
