package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/selection"
)

// PuzzleRow is one puzzle's counters and selection weight.
type PuzzleRow struct {
	ID      string
	Correct int
	Wrong   int
	Weight  float64
}

// Rate returns the puzzle's success rate in whole percent.
func (r PuzzleRow) Rate() int {
	return SuccessRate(r.Correct, r.Wrong)
}

// WeakestPuzzles returns up to n seen puzzles with the highest raw selection
// weight first. n <= 0 returns all.
func WeakestPuzzles(m model.PerformanceModel, n int) []PuzzleRow {
	rows := make([]PuzzleRow, 0, len(m.Puzzles))
	for id, st := range m.Puzzles {
		if st.Total() == 0 {
			continue
		}
		rows = append(rows, PuzzleRow{
			ID:      id,
			Correct: st.Correct,
			Wrong:   st.Wrong,
			Weight:  selection.RawWeight(st),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Weight != rows[j].Weight {
			return rows[i].Weight > rows[j].Weight
		}
		if rows[i].Wrong != rows[j].Wrong {
			return rows[i].Wrong > rows[j].Wrong
		}
		return rows[i].ID < rows[j].ID
	})
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// maxIDWidth caps the puzzle column width.
const maxIDWidth = 28

// RenderTable prints per-puzzle rows.
func RenderTable(w io.Writer, rows []PuzzleRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No puzzle stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Weakest Puzzles"); err != nil {
		return err
	}
	headers := []string{"Puzzle", "Correct", "Wrong", "Success", "Weight"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			truncateCell(r.ID, maxIDWidth),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%d%%", r.Rate()),
			fmt.Sprintf("%.3f", r.Weight),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
