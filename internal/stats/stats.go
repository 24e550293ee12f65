// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/tuichess/internal/model"
)

// Summary aggregates the performance model.
type Summary struct {
	TotalCorrect int
	TotalWrong   int
	// SuccessRate is the whole-number percentage of correct first attempts.
	SuccessRate int
	Seen        int
	Perfect     int
	NeverSolved int
}

// Attempts returns the number of counted first attempts.
func (s Summary) Attempts() int {
	return s.TotalCorrect + s.TotalWrong
}

// SuccessRate returns round(correct / (correct + wrong) * 100), or 0 with no attempts.
func SuccessRate(correct, wrong int) int {
	total := correct + wrong
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Summarize computes totals and per-puzzle counts.
func Summarize(m model.PerformanceModel) Summary {
	s := Summary{
		TotalCorrect: m.TotalCorrect,
		TotalWrong:   m.TotalWrong,
		SuccessRate:  SuccessRate(m.TotalCorrect, m.TotalWrong),
	}
	for _, st := range m.Puzzles {
		if st.Total() == 0 {
			continue
		}
		s.Seen++
		switch {
		case st.Wrong == 0:
			s.Perfect++
		case st.Correct == 0:
			s.NeverSolved++
		}
	}
	return s
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Attempts() == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Correct: %d\n", s.TotalCorrect); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Wrong: %d\n", s.TotalWrong); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Success Rate: %d%%\n", s.SuccessRate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Puzzles Seen: %d (perfect %d, never solved %d)\n", s.Seen, s.Perfect, s.NeverSolved); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
