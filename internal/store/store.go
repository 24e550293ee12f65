// Package store persists the puzzle performance model.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
)

// Store loads and saves the performance model.
//
// Load never fails: absent or unreadable data yields an all-zero model.
type Store interface {
	Load(ctx context.Context) model.PerformanceModel
	Save(ctx context.Context, m model.PerformanceModel) error
	Clear(ctx context.Context) (model.PerformanceModel, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open returns the store for backend. path is ignored for memory.
func Open(backend, path string, logger zerolog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return OpenSQLite(path, logger)
	case BackendFile:
		return NewFile(path, logger), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// RecordOutcome returns m with the outcome counted for puzzleID, creating
// the per-puzzle entry if needed. m itself is not modified.
func RecordOutcome(m model.PerformanceModel, puzzleID string, outcome model.Outcome) model.PerformanceModel {
	out := m.Clone()
	stat := out.Puzzles[puzzleID]
	switch outcome {
	case model.OutcomeCorrect:
		stat.Correct++
		out.TotalCorrect++
	case model.OutcomeWrong:
		stat.Wrong++
		out.TotalWrong++
	}
	out.Puzzles[puzzleID] = stat
	return out
}
