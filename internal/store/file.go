package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
)

// File stores the model as a single JSON document.
type File struct {
	path   string
	logger zerolog.Logger
}

// NewFile returns a store backed by the JSON file at path.
func NewFile(path string, logger zerolog.Logger) *File {
	return &File{path: path, logger: logger}
}

// Load implements Store.
func (s *File) Load(context.Context) model.PerformanceModel {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to read stats; starting from zero")
		}
		return model.NewPerformanceModel()
	}
	var m model.PerformanceModel
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("stats file is corrupt; starting from zero")
		return model.NewPerformanceModel()
	}
	if !m.Valid() {
		s.logger.Warn().Str("path", s.path).Msg("stats file has negative counters; starting from zero")
		return model.NewPerformanceModel()
	}
	if m.Puzzles == nil {
		m.Puzzles = map[string]model.PuzzleStat{}
	}
	return m
}

// Save implements Store. The file is replaced via rename so readers never
// observe a partial write.
func (s *File) Save(_ context.Context, m model.PerformanceModel) error {
	if m.Puzzles == nil {
		m.Puzzles = map[string]model.PuzzleStat{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create stats dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "stats-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp stats: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close stats: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace stats: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *File) Clear(ctx context.Context) (model.PerformanceModel, error) {
	cleared := model.NewPerformanceModel()
	if err := s.Save(ctx, cleared); err != nil {
		return model.PerformanceModel{}, err
	}
	return cleared, nil
}

// Close implements Store.
func (s *File) Close() error {
	return nil
}
