package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuichess/internal/model"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for unsupported export formats.
var ErrUnknownFormat = errors.New("unknown export format")

type exportPuzzle struct {
	ID      string `json:"id" yaml:"id"`
	Correct int    `json:"correct" yaml:"correct"`
	Wrong   int    `json:"wrong" yaml:"wrong"`
}

type exportDoc struct {
	TotalCorrect int            `json:"totalCorrect" yaml:"totalCorrect"`
	TotalWrong   int            `json:"totalWrong" yaml:"totalWrong"`
	SuccessRate  int            `json:"successRate" yaml:"successRate"`
	Puzzles      []exportPuzzle `json:"puzzles" yaml:"puzzles"`
}

// Export writes the model in format ("json" or "yaml"). Puzzles are sorted by id.
func Export(w io.Writer, m model.PerformanceModel, format string) error {
	doc := exportDoc{
		TotalCorrect: m.TotalCorrect,
		TotalWrong:   m.TotalWrong,
		SuccessRate:  SuccessRate(m.TotalCorrect, m.TotalWrong),
		Puzzles:      make([]exportPuzzle, 0, len(m.Puzzles)),
	}
	for id, st := range m.Puzzles {
		doc.Puzzles = append(doc.Puzzles, exportPuzzle{ID: id, Correct: st.Correct, Wrong: st.Wrong})
	}
	sort.Slice(doc.Puzzles, func(i, j int) bool { return doc.Puzzles[i].ID < doc.Puzzles[j].ID })

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
