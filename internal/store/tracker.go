package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
)

// Tracker owns the process-wide performance model and persists every change.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	model  model.PerformanceModel
	logger zerolog.Logger
}

// NewTracker loads the model from st once.
func NewTracker(ctx context.Context, st Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  st,
		model:  st.Load(ctx),
		logger: logger,
	}
}

// Record counts an outcome for puzzleID and saves the model.
// Save failures are logged; the in-memory model still advances.
func (t *Tracker) Record(ctx context.Context, puzzleID string, outcome model.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.model = RecordOutcome(t.model, puzzleID, outcome)
	if err := t.store.Save(ctx, t.model); err != nil {
		t.logger.Error().Err(err).Str("puzzle", puzzleID).Msg("failed to save stats")
		return
	}
	t.logger.Debug().Str("puzzle", puzzleID).Stringer("outcome", outcome).Msg("recorded outcome")
}

// Clear resets the model to zero and persists it.
func (t *Tracker) Clear(ctx context.Context) model.PerformanceModel {
	t.mu.Lock()
	defer t.mu.Unlock()
	cleared, err := t.store.Clear(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to clear stats")
		cleared = model.NewPerformanceModel()
	}
	t.model = cleared
	return t.model.Clone()
}

// Snapshot returns a copy of the current model.
func (t *Tracker) Snapshot() model.PerformanceModel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model.Clone()
}
