// Package rules adapts a chess rules engine to the puzzle session.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/verte-zerg/tuichess/internal/model"
)

// ErrIllegalMove is returned when a move is not legal in the position.
var ErrIllegalMove = errors.New("illegal move")

// Promotion is the piece a pawn promotes to.
type Promotion byte

// Promotions.
const (
	NoPromotion Promotion = 0
	Queen       Promotion = 'q'
)

// Adapter reports side to move and applies moves to FEN positions.
type Adapter interface {
	TurnOf(position string) (model.Color, error)
	ApplyMove(position, from, to string, promotion Promotion) (string, error)
}

// Chess implements Adapter with github.com/notnil/chess.
type Chess struct{}

// New returns a rules adapter.
func New() Chess {
	return Chess{}
}

// TurnOf returns the side to move in position.
func (Chess) TurnOf(position string) (model.Color, error) {
	pos, err := decode(position)
	if err != nil {
		return "", err
	}
	if pos.Turn() == chess.Black {
		return model.Black, nil
	}
	return model.White, nil
}

// ApplyMove plays from-to in position and returns the resulting FEN.
// A promotion is applied only when the move is a pawn reaching the last rank.
func (Chess) ApplyMove(position, from, to string, promotion Promotion) (string, error) {
	pos, err := decode(position)
	if err != nil {
		return "", err
	}
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	want := promoType(promotion)

	var match *chess.Move
	for _, mv := range pos.ValidMoves() {
		if mv.S1().String() != from || mv.S2().String() != to {
			continue
		}
		if mv.Promo() == chess.NoPieceType || mv.Promo() == want {
			match = mv
			break
		}
	}
	if match == nil {
		return "", fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}
	return pos.Update(match).String(), nil
}

// Pieces returns the occupied squares of position mapped to piece glyphs.
func (Chess) Pieces(position string) (map[string]string, error) {
	pos, err := decode(position)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for sq, piece := range pos.Board().SquareMap() {
		out[sq.String()] = piece.String()
	}
	return out, nil
}

func decode(position string) (*chess.Position, error) {
	opt, err := chess.FEN(strings.TrimSpace(position))
	if err != nil {
		return nil, fmt.Errorf("failed to decode position: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}

func promoType(p Promotion) chess.PieceType {
	switch p {
	case 'q':
		return chess.Queen
	case 'r':
		return chess.Rook
	case 'b':
		return chess.Bishop
	case 'n':
		return chess.Knight
	default:
		return chess.Queen
	}
}
