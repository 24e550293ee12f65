package store

import (
	"context"
	"sync"

	"github.com/verte-zerg/tuichess/internal/model"
)

// Memory keeps the model in process memory.
type Memory struct {
	mu    sync.Mutex
	model model.PerformanceModel
	saves int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{model: model.NewPerformanceModel()}
}

// Load implements Store.
func (s *Memory) Load(context.Context) model.PerformanceModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Clone()
}

// Save implements Store.
func (s *Memory) Save(_ context.Context, m model.PerformanceModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m.Clone()
	s.saves++
	return nil
}

// Clear implements Store.
func (s *Memory) Clear(ctx context.Context) (model.PerformanceModel, error) {
	cleared := model.NewPerformanceModel()
	if err := s.Save(ctx, cleared); err != nil {
		return model.PerformanceModel{}, err
	}
	return cleared, nil
}

// Saves returns how many times the model was written.
func (s *Memory) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close implements Store.
func (s *Memory) Close() error {
	return nil
}
