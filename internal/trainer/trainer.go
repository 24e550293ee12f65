// Package trainer maps user controls to puzzle selection and session operations.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/filter"
	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/puzzle"
	"github.com/verte-zerg/tuichess/internal/rules"
	"github.com/verte-zerg/tuichess/internal/selection"
	"github.com/verte-zerg/tuichess/internal/session"
	"github.com/verte-zerg/tuichess/internal/store"
)

// NoPuzzlesMessage is shown when the candidate set is empty.
const NoPuzzlesMessage = "No puzzles match the current filters."

// maxLoadAttempts bounds re-selection after puzzle fetch failures.
const maxLoadAttempts = 16

var (
	// ErrNoPuzzles is returned when no puzzle passes the filters.
	ErrNoPuzzles = errors.New("no puzzles match the current filters")
	// ErrUnknownGame is returned when selecting a game missing from the index.
	ErrUnknownGame = errors.New("unknown game")
	// ErrInvalidMove is returned for move text that is not square to square.
	ErrInvalidMove = errors.New("invalid move notation")
)

var moveRe = regexp.MustCompile(`^([a-h][1-8])[\s\-x]*([a-h][1-8])[=]?([qrbn])?$`)

// Options configures filters at startup.
type Options struct {
	Player        string
	MyMovesOnly   bool
	FilterWorkers int
}

// Filters is the current filter selection.
type Filters struct {
	Game        *model.GameRecord
	Player      string
	MyMovesOnly bool
}

// Request is a snapshot of a load request. It is safe to resolve off the UI goroutine.
type Request struct {
	Token    session.LoadToken
	PuzzleID string
	known    bool
	filter   filter.Request
}

// Trainer owns the session and the filter state.
type Trainer struct {
	source  puzzle.Source
	tracker *store.Tracker
	rules   rules.Adapter
	session *session.Session
	filter  *filter.Filter
	logger  zerolog.Logger

	selMu    sync.Mutex
	selector *selection.Selector

	index       model.Index
	game        *model.GameRecord
	player      string
	myMovesOnly bool
}

// New builds a trainer and loads the puzzle index. An index failure is logged
// and leaves the trainer with an empty universe.
func New(ctx context.Context, src puzzle.Source, tracker *store.Tracker, adapter rules.Adapter, selector *selection.Selector, opts Options, logger zerolog.Logger) *Trainer {
	if selector == nil {
		selector = selection.New()
	}
	t := &Trainer{
		source:      src,
		tracker:     tracker,
		rules:       adapter,
		session:     session.New(adapter, tracker),
		filter:      filter.New(src, opts.FilterWorkers, logger),
		logger:      logger,
		selector:    selector,
		player:      opts.Player,
		myMovesOnly: opts.MyMovesOnly,
	}
	if err := t.ReloadIndex(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load puzzle index")
	}
	return t
}

// ReloadIndex loads the index again. The selected game is kept if it still exists.
func (t *Trainer) ReloadIndex(ctx context.Context) error {
	idx, err := t.source.LoadIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	t.index = idx
	if t.game != nil {
		if g, ok := idx.Game(t.game.ID); ok {
			t.game = &g
		} else {
			t.game = nil
		}
	}
	t.logger.Info().Int("puzzles", len(idx.Puzzles)).Int("games", len(idx.Games)).Msg("loaded puzzle index")
	return nil
}

// Session returns the active session.
func (t *Trainer) Session() *session.Session {
	return t.session
}

// Begin starts a load request. An empty id selects a random puzzle.
func (t *Trainer) Begin(id string) Request {
	req := Request{
		Token:    t.session.BeginLoad(),
		PuzzleID: strings.TrimSpace(id),
		filter: filter.Request{
			Universe:    t.index.Puzzles,
			MyMovesOnly: t.myMovesOnly,
			Player:      t.player,
		},
	}
	if t.game != nil {
		g := *t.game
		req.filter.Game = &g
	}
	if req.PuzzleID != "" {
		req.known = t.index.Contains(req.PuzzleID)
	}
	return req
}

// Resolve fetches the puzzle for req. A direct id that is unknown or fails to
// load falls back to weighted random selection. Failed fetches are excluded
// and selection runs again.
func (t *Trainer) Resolve(ctx context.Context, req Request) (model.PuzzleRecord, error) {
	if req.PuzzleID != "" {
		if req.known {
			rec, err := t.fetch(ctx, req.PuzzleID)
			if err == nil {
				return rec, nil
			}
			t.logger.Warn().Err(err).Str("puzzle", req.PuzzleID).Msg("failed to open puzzle, selecting another")
		} else {
			t.logger.Info().Str("puzzle", req.PuzzleID).Msg("unknown puzzle id, selecting another")
		}
	}

	ids, err := t.filter.Candidates(ctx, req.filter)
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	if len(ids) == 0 {
		return model.PuzzleRecord{}, ErrNoPuzzles
	}

	perf := t.tracker.Snapshot()
	var lastErr error
	for attempt := 0; attempt < maxLoadAttempts && len(ids) > 0; attempt++ {
		id, err := t.pick(ids, perf)
		if err != nil {
			return model.PuzzleRecord{}, err
		}
		rec, err := t.fetch(ctx, id)
		if err == nil {
			return rec, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.PuzzleRecord{}, ctxErr
		}
		t.logger.Warn().Err(err).Str("puzzle", id).Msg("failed to load puzzle, selecting another")
		lastErr = err
		ids = without(ids, id)
	}
	return model.PuzzleRecord{}, fmt.Errorf("failed to load a puzzle: %w", lastErr)
}

// fetch loads id and rejects records whose position cannot be played.
func (t *Trainer) fetch(ctx context.Context, id string) (model.PuzzleRecord, error) {
	rec, err := t.source.LoadPuzzle(ctx, id)
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	turn, err := t.rules.TurnOf(rec.Position)
	if err != nil {
		return model.PuzzleRecord{}, fmt.Errorf("%w %s: unreadable position: %v", puzzle.ErrInvalidRecord, id, err)
	}
	if turn != rec.TurnColor {
		return model.PuzzleRecord{}, fmt.Errorf("%w %s: %s to move but turn color is %s", puzzle.ErrInvalidRecord, id, turn, rec.TurnColor)
	}
	return rec, nil
}

// Apply activates rec if req is still the latest request.
func (t *Trainer) Apply(req Request, rec model.PuzzleRecord) bool {
	ok := t.session.CompleteLoad(req.Token, rec)
	if !ok {
		t.logger.Debug().Str("puzzle", rec.ID).Msg("discarded stale puzzle load")
	}
	return ok
}

// Next loads a weighted random puzzle from the filtered candidates.
func (t *Trainer) Next(ctx context.Context) (model.PuzzleRecord, error) {
	return t.load(ctx, "")
}

// Open loads the puzzle with id, falling back to Next behaviour.
func (t *Trainer) Open(ctx context.Context, id string) (model.PuzzleRecord, error) {
	return t.load(ctx, id)
}

func (t *Trainer) load(ctx context.Context, id string) (model.PuzzleRecord, error) {
	req := t.Begin(id)
	rec, err := t.Resolve(ctx, req)
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	t.Apply(req, rec)
	return rec, nil
}

func (t *Trainer) pick(ids []string, perf model.PerformanceModel) (string, error) {
	t.selMu.Lock()
	defer t.selMu.Unlock()
	return t.selector.Pick(ids, perf)
}

// SubmitMove parses text such as "e2e4" or "e7-e8q" and plays it.
func (t *Trainer) SubmitMove(ctx context.Context, text string) (session.MoveResult, error) {
	from, to, err := ParseMove(text)
	if err != nil {
		return session.MoveResult{}, err
	}
	return t.session.SubmitMove(ctx, from, to)
}

// ParseMove splits move text into from and to squares. A promotion suffix is accepted and ignored.
func ParseMove(text string) (from, to string, err error) {
	m := moveRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidMove, text)
	}
	return m[1], m[2], nil
}

// ShowSolution highlights the best move.
func (t *Trainer) ShowSolution() (session.Hint, error) {
	return t.session.ShowHint()
}

// ClearHint clears the hint with generation gen.
func (t *Trainer) ClearHint(gen uint64) bool {
	return t.session.ClearHint(gen)
}

// ClearStats resets and persists the performance model.
func (t *Trainer) ClearStats(ctx context.Context) model.PerformanceModel {
	return t.tracker.Clear(ctx)
}

// Stats returns a snapshot of the performance model.
func (t *Trainer) Stats() model.PerformanceModel {
	return t.tracker.Snapshot()
}

// SelectGame restricts selection to a game. An empty id selects all games.
func (t *Trainer) SelectGame(id string) error {
	if id == "" {
		t.game = nil
		return nil
	}
	g, ok := t.index.Game(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	t.game = &g
	return nil
}

// SelectPlayer sets the player used by the my-moves-only filter.
func (t *Trainer) SelectPlayer(name string) {
	t.player = strings.TrimSpace(name)
}

// SetMyMovesOnly toggles the my-moves-only filter.
func (t *Trainer) SetMyMovesOnly(on bool) {
	t.myMovesOnly = on
}

// Filters returns the current filter selection.
func (t *Trainer) Filters() Filters {
	f := Filters{Player: t.player, MyMovesOnly: t.myMovesOnly}
	if t.game != nil {
		g := *t.game
		f.Game = &g
	}
	return f
}

// Games returns the index games.
func (t *Trainer) Games() []model.GameRecord {
	return t.index.Games
}

// Players returns the sorted player names of the index games.
func (t *Trainer) Players() []string {
	return puzzle.Players(t.index.Games)
}

// PuzzleCount returns the number of puzzles in the index.
func (t *Trainer) PuzzleCount() int {
	return len(t.index.Puzzles)
}

// PGN returns the PGN of the active puzzle's game.
func (t *Trainer) PGN() (string, error) {
	rec, ok := t.session.Puzzle()
	if !ok {
		return "", session.ErrNoPuzzle
	}
	if rec.Game.PGN != "" {
		return rec.Game.PGN, nil
	}
	if g, ok := t.index.Game(rec.Game.ID); ok && g.PGN != "" {
		return g.PGN, nil
	}
	return "", fmt.Errorf("no pgn for puzzle %s", rec.ID)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
