package statsui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuichess/internal/model"
)

type staticSource struct {
	perf model.PerformanceModel
}

func (s *staticSource) Snapshot() model.PerformanceModel {
	return s.perf.Clone()
}

func TestOverviewShowsTotals(t *testing.T) {
	src := &staticSource{perf: model.PerformanceModel{
		TotalCorrect: 3,
		TotalWrong:   1,
		Puzzles: map[string]model.PuzzleStat{
			"p1": {Correct: 3},
			"p2": {Wrong: 1},
		},
	}}
	m := NewModel(src)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	for _, want := range []string{"Overview", "Success Rate", "75%", "p2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if len(m.table.Rows()) != 2 {
		t.Fatalf("expected 2 table rows, got %d", len(m.table.Rows()))
	}
	if m.table.Rows()[0][0] != "p2" {
		t.Fatalf("expected weakest puzzle first, got %v", m.table.Rows()[0])
	}
}

func TestEmptyStats(t *testing.T) {
	m := NewModel(&staticSource{perf: model.NewPerformanceModel()})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "No attempts recorded.") {
		t.Fatalf("expected empty message")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabPuzzleTable {
		t.Fatalf("expected puzzle tab")
	}
	if !strings.Contains(m.View(), "No puzzle stats found.") {
		t.Fatalf("expected empty table message")
	}
}

func TestRefreshPicksUpChanges(t *testing.T) {
	src := &staticSource{perf: model.NewPerformanceModel()}
	m := NewModel(src)
	src.perf = model.PerformanceModel{TotalCorrect: 1, Puzzles: map[string]model.PuzzleStat{"p1": {Correct: 1}}}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if len(m.table.Rows()) != 1 {
		t.Fatalf("expected refreshed rows")
	}
}
