// Package filter narrows the puzzle universe before selection.
package filter

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuichess/internal/model"
)

// DefaultWorkers bounds concurrent puzzle loads in the my-moves-only filter.
const DefaultWorkers = 8

// Loader fetches a puzzle record.
type Loader interface {
	LoadPuzzle(ctx context.Context, id string) (model.PuzzleRecord, error)
}

// Request describes the active filters.
type Request struct {
	Universe    []string
	Game        *model.GameRecord
	MyMovesOnly bool
	Player      string
}

// Filter applies game and my-moves-only filters.
type Filter struct {
	loader  Loader
	workers int
	logger  zerolog.Logger
}

// New returns a Filter loading puzzles through loader.
func New(loader Loader, workers int, logger zerolog.Logger) *Filter {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Filter{loader: loader, workers: workers, logger: logger}
}

// BaseSet returns the selected game's puzzles, or the universe if no game is
// selected or the game entry carries no puzzle list.
func BaseSet(req Request) []string {
	if req.Game != nil && req.Game.PuzzleIDs != nil {
		return req.Game.PuzzleIDs
	}
	return req.Universe
}

// Candidates returns the ids passing the filters in input order. Puzzles
// that fail to load are logged and excluded. Only context cancellation is
// returned as an error.
func (f *Filter) Candidates(ctx context.Context, req Request) ([]string, error) {
	base := BaseSet(req)
	if !req.MyMovesOnly || req.Player == "" {
		return append([]string(nil), base...), nil
	}

	keep := make([]bool, len(base))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, id := range base {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := f.loader.LoadPuzzle(gctx, id)
			if err != nil {
				f.logger.Warn().Err(err).Str("puzzle", id).Msg("failed to load puzzle for filter")
				return nil
			}
			keep[i] = rec.TurnPlayer == req.Player
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(base))
	for i, id := range base {
		if keep[i] {
			out = append(out, id)
		}
	}
	return out, nil
}
