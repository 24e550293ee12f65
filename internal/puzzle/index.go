package puzzle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
)

// BuildIndex scans dir for puzzle assets and groups them by game.
// Unreadable or invalid assets are logged and skipped. Puzzle ids are
// sorted; games are ordered newest first.
func BuildIndex(dir string, logger zerolog.Logger) (model.Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Index{}, fmt.Errorf("failed to read puzzle directory: %w", err)
	}
	src := NewDirSource(dir)
	idx := model.Index{Puzzles: []string{}, Games: []model.GameRecord{}}
	games := map[string]*model.GameRecord{}
	var order []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == IndexFile {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		data, err := src.read(name)
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("skipping puzzle")
			continue
		}
		rec, err := decodePuzzle(id, data)
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("skipping puzzle")
			continue
		}
		idx.Puzzles = append(idx.Puzzles, id)

		gameID := rec.Game.ID
		g, ok := games[gameID]
		if !ok {
			g = &model.GameRecord{
				ID:        gameID,
				White:     rec.Game.White,
				Black:     rec.Game.Black,
				Timestamp: rec.Game.Timestamp,
				PGN:       rec.Game.PGN,
				URL:       rec.Game.URL,
			}
			games[gameID] = g
			order = append(order, gameID)
			logger.Debug().Str("game", gameID).Msg("adding game")
		}
		g.PuzzleIDs = append(g.PuzzleIDs, id)
	}

	sort.Strings(idx.Puzzles)
	for _, gameID := range order {
		g := games[gameID]
		sort.Strings(g.PuzzleIDs)
		idx.Games = append(idx.Games, *g)
	}
	sort.SliceStable(idx.Games, func(i, j int) bool {
		ti, tj := idx.Games[i].Timestamp.Time, idx.Games[j].Timestamp.Time
		if ti.Equal(tj) {
			return idx.Games[i].ID < idx.Games[j].ID
		}
		return ti.After(tj)
	})
	return idx, nil
}

// WriteIndex writes idx to dir/index.json atomically.
func WriteIndex(dir string, idx model.Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create puzzle directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, IndexFile)); err != nil {
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}
