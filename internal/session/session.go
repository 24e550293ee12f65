// Package session runs a single puzzle attempt from load to solve.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/rules"
)

// ErrNoPuzzle is returned by operations that need an active puzzle.
var ErrNoPuzzle = errors.New("no puzzle loaded")

// State is the lifecycle state of the active puzzle.
type State int

// States.
const (
	StateEmpty State = iota
	StateLoaded
	StateSolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateSolved:
		return "solved"
	case StateFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Verdict classifies a submitted move.
type Verdict int

// Verdicts.
const (
	// VerdictRejected: no puzzle, or not the puzzle side's turn (board locked).
	VerdictRejected Verdict = iota
	VerdictIllegal
	VerdictCorrect
	// VerdictWrong: legal but not the best move; the board snaps back.
	VerdictWrong
)

func (v Verdict) String() string {
	switch v {
	case VerdictIllegal:
		return "illegal"
	case VerdictCorrect:
		return "correct"
	case VerdictWrong:
		return "wrong"
	default:
		return "rejected"
	}
}

// MoveResult describes what SubmitMove did.
type MoveResult struct {
	Verdict Verdict
	// Recorded is true when this move was the first attempt and was counted.
	Recorded bool
	// Position is the board after the move (unchanged unless correct).
	Position string
}

// Recorder receives first-attempt outcomes.
type Recorder interface {
	Record(ctx context.Context, puzzleID string, outcome model.Outcome)
}

// LoadToken identifies a load request.
type LoadToken uint64

// Hint highlights the best move's squares until cleared.
type Hint struct {
	From string
	To   string
	Gen  uint64
}

// Session holds the state of the active puzzle.
type Session struct {
	rules    rules.Adapter
	recorder Recorder

	active    *model.PuzzleRecord
	position  string
	attempted bool
	solved    bool
	state     State

	loadSeq LoadToken
	hintGen uint64
	hint    *Hint
}

// New returns an empty session.
func New(adapter rules.Adapter, recorder Recorder) *Session {
	return &Session{rules: adapter, recorder: recorder}
}

// BeginLoad issues a token for a new load request. Any earlier token becomes stale.
func (s *Session) BeginLoad() LoadToken {
	s.loadSeq++
	return s.loadSeq
}

// CompleteLoad activates rec if token is the most recent request.
// It returns false and leaves the session untouched for a stale token.
func (s *Session) CompleteLoad(token LoadToken, rec model.PuzzleRecord) bool {
	if token != s.loadSeq {
		return false
	}
	s.activate(rec)
	return true
}

// LatestToken returns the most recently issued load token.
func (s *Session) LatestToken() LoadToken {
	return s.loadSeq
}

// Load activates rec immediately.
func (s *Session) Load(rec model.PuzzleRecord) {
	s.CompleteLoad(s.BeginLoad(), rec)
}

func (s *Session) activate(rec model.PuzzleRecord) {
	s.active = &rec
	s.position = rec.Position
	s.attempted = false
	s.solved = false
	s.state = StateLoaded
	s.hint = nil
}

// Puzzle returns the active puzzle.
func (s *Session) Puzzle() (model.PuzzleRecord, bool) {
	if s.active == nil {
		return model.PuzzleRecord{}, false
	}
	return *s.active, true
}

// Position returns the current board position.
func (s *Session) Position() string {
	return s.position
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Attempted reports whether the first move outcome has been counted.
func (s *Session) Attempted() bool {
	return s.attempted
}

// Solved reports whether the best move has been played.
func (s *Session) Solved() bool {
	return s.solved
}

// SubmitMove evaluates a move from one square to another.
func (s *Session) SubmitMove(ctx context.Context, from, to string) (MoveResult, error) {
	if s.active == nil {
		return MoveResult{Verdict: VerdictRejected}, nil
	}
	result := MoveResult{Verdict: VerdictRejected, Position: s.position}

	turn, err := s.rules.TurnOf(s.position)
	if err != nil {
		return result, fmt.Errorf("failed to read side to move: %w", err)
	}
	if turn != s.active.TurnColor {
		return result, nil
	}

	next, err := s.rules.ApplyMove(s.position, from, to, rules.Queen)
	if err != nil {
		if errors.Is(err, rules.ErrIllegalMove) {
			result.Verdict = VerdictIllegal
			return result, nil
		}
		return result, fmt.Errorf("failed to apply move: %w", err)
	}

	played := strings.ToLower(from + to)
	expected := strings.ToLower(s.active.BestMove)
	if len(expected) > 4 {
		expected = expected[:4]
	}

	if played == expected {
		s.position = next
		s.solved = true
		s.state = StateSolved
		result.Verdict = VerdictCorrect
		result.Position = next
		result.Recorded = s.recordFirst(ctx, model.OutcomeCorrect)
		return result, nil
	}

	if !s.solved {
		s.state = StateFailed
	}
	result.Verdict = VerdictWrong
	result.Recorded = s.recordFirst(ctx, model.OutcomeWrong)
	return result, nil
}

func (s *Session) recordFirst(ctx context.Context, outcome model.Outcome) bool {
	if s.attempted {
		return false
	}
	s.attempted = true
	if s.recorder != nil {
		s.recorder.Record(ctx, s.active.ID, outcome)
	}
	return true
}

// ShowHint highlights the best move. Each call supersedes the previous hint.
func (s *Session) ShowHint() (Hint, error) {
	if s.active == nil {
		return Hint{}, ErrNoPuzzle
	}
	from, to := s.active.BestMoveSquares()
	s.hintGen++
	h := Hint{From: from, To: to, Gen: s.hintGen}
	s.hint = &h
	return h, nil
}

// ClearHint removes the hint if gen is still the current one.
func (s *Session) ClearHint(gen uint64) bool {
	if s.hint == nil || s.hint.Gen != gen {
		return false
	}
	s.hint = nil
	return true
}

// Hint returns the active hint.
func (s *Session) Hint() (Hint, bool) {
	if s.hint == nil {
		return Hint{}, false
	}
	return *s.hint, true
}
