// Package model defines shared data structures.
package model

import "strings"

// Config defines trainer settings.
type Config struct {
	Puzzles       string
	Store         string
	Player        string
	MyMovesOnly   bool
	HintMs        int
	CacheSize     int
	FilterWorkers int
	Watch         bool
}

// Color is the side a puzzle is played from.
type Color string

// Puzzle colors.
const (
	White Color = "white"
	Black Color = "black"
)

// Valid reports whether c is white or black.
func (c Color) Valid() bool {
	return c == White || c == Black
}

// Name returns the capitalized color name.
func (c Color) Name() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Outcome is the result of the first move on a puzzle load.
type Outcome int

// Outcomes.
const (
	OutcomeCorrect Outcome = iota
	OutcomeWrong
)

func (o Outcome) String() string {
	if o == OutcomeCorrect {
		return "correct"
	}
	return "wrong"
}

// GameSummary is the game information embedded in a puzzle asset.
type GameSummary struct {
	ID         string    `json:"id"`
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Timestamp  Timestamp `json:"timestamp"`
	URL        string    `json:"url"`
	PGN        string    `json:"pgn"`
	MoveNumber int       `json:"move_number"`

	Result      string `json:"result,omitempty"`
	TimeControl string `json:"time_control,omitempty"`
}

// PuzzleRecord is a single position plus the move to find.
type PuzzleRecord struct {
	ID         string      `json:"id"`
	Position   string      `json:"position"`
	BestMove   string      `json:"best_move"`
	PlayedMove string      `json:"played_move,omitempty"`
	EvalDiff   int         `json:"eval_diff,omitempty"`
	Themes     []string    `json:"themes,omitempty"`
	TurnColor  Color       `json:"turn_color"`
	TurnPlayer string      `json:"turn_player"`
	Game       GameSummary `json:"game"`
}

// BestMoveSquares returns the from and to squares of the best move.
func (p PuzzleRecord) BestMoveSquares() (from, to string) {
	if len(p.BestMove) < 4 {
		return "", ""
	}
	return p.BestMove[0:2], p.BestMove[2:4]
}

// GameRecord is a game entry of the puzzle index.
type GameRecord struct {
	ID        string    `json:"id"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Timestamp Timestamp `json:"timestamp"`
	PGN       string    `json:"pgn,omitempty"`
	URL       string    `json:"url,omitempty"`
	PuzzleIDs []string  `json:"puzzles"`
}

// Index is the puzzle index asset.
type Index struct {
	Puzzles []string     `json:"puzzles"`
	Games   []GameRecord `json:"games"`
}

// Contains reports whether the index lists the puzzle id.
func (idx Index) Contains(id string) bool {
	for _, p := range idx.Puzzles {
		if p == id {
			return true
		}
	}
	return false
}

// Game returns the game with the given id.
func (idx Index) Game(id string) (GameRecord, bool) {
	for _, g := range idx.Games {
		if g.ID == id {
			return g, true
		}
	}
	return GameRecord{}, false
}

// PuzzleStat counts first-attempt outcomes for one puzzle.
type PuzzleStat struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Total returns correct plus wrong.
func (s PuzzleStat) Total() int {
	return s.Correct + s.Wrong
}

// PerformanceModel is the persisted performance history.
type PerformanceModel struct {
	TotalCorrect int                   `json:"totalCorrect"`
	TotalWrong   int                   `json:"totalWrong"`
	Puzzles      map[string]PuzzleStat `json:"puzzles"`
}

// NewPerformanceModel returns an all-zero model.
func NewPerformanceModel() PerformanceModel {
	return PerformanceModel{Puzzles: map[string]PuzzleStat{}}
}

// Clone returns a deep copy of the model.
func (m PerformanceModel) Clone() PerformanceModel {
	out := PerformanceModel{
		TotalCorrect: m.TotalCorrect,
		TotalWrong:   m.TotalWrong,
		Puzzles:      make(map[string]PuzzleStat, len(m.Puzzles)),
	}
	for id, st := range m.Puzzles {
		out.Puzzles[id] = st
	}
	return out
}

// Valid reports whether every counter is non-negative.
func (m PerformanceModel) Valid() bool {
	if m.TotalCorrect < 0 || m.TotalWrong < 0 {
		return false
	}
	for _, st := range m.Puzzles {
		if st.Correct < 0 || st.Wrong < 0 {
			return false
		}
	}
	return true
}
