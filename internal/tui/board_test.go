package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/session"
)

func TestBoardSquaresOrientation(t *testing.T) {
	white := boardSquares(model.White)
	if white[0][0] != "a8" || white[7][7] != "h1" {
		t.Fatalf("unexpected white orientation: %v %v", white[0][0], white[7][7])
	}
	black := boardSquares(model.Black)
	if black[0][0] != "h1" || black[7][7] != "a8" {
		t.Fatalf("unexpected black orientation: %v %v", black[0][0], black[7][7])
	}
}

func TestSquareKind(t *testing.T) {
	if squareKindOf("a1", nil) != darkSquare {
		t.Fatalf("expected a1 to be dark")
	}
	if squareKindOf("h1", nil) != lightSquare {
		t.Fatalf("expected h1 to be light")
	}
	hint := &session.Hint{From: "e2", To: "e4"}
	if squareKindOf("e4", hint) != hintSquare || squareKindOf("e2", hint) != hintSquare {
		t.Fatalf("expected hint squares to be highlighted")
	}
	if squareKindOf("d4", hint) == hintSquare {
		t.Fatalf("unexpected hint on d4")
	}
}

func TestRenderBoardPlacesPieces(t *testing.T) {
	out := renderBoard(map[string]string{"e1": "♔", "e8": "♚"}, model.White, nil)
	lines := strings.Split(out, "\n")
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "♚") || !strings.Contains(lines[7], "♔") {
		t.Fatalf("pieces on wrong ranks:\n%s", out)
	}
	flipped := strings.Split(renderBoard(map[string]string{"e1": "♔"}, model.Black, nil), "\n")
	if !strings.Contains(flipped[0], "♔") {
		t.Fatalf("expected white king on top when viewed from black:\n%s", strings.Join(flipped, "\n"))
	}
}

func TestMovetextTokens(t *testing.T) {
	pgn := "[Event \"Live Chess\"]\n[White \"Meea\"]\n\n1. e4 {book} e5 2.Nf3 $1 Nc6 3. Bb5 a6 1-0"
	got := movetextTokens(pgn)
	want := []string{"1.", "e4", "e5", "2.", "Nf3", "Nc6", "3.", "Bb5", "a6"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestBuildStyledTokensHighlightsMove(t *testing.T) {
	tokens := buildStyledTokens([]string{"1.", "e4", "e5", "2.", "Nf3", "Nc6"}, 2)
	if tokens[1].s != pgnStyle.Render("e4") {
		t.Fatalf("expected plain style before highlighted move")
	}
	if tokens[3].s != pgnHighlightStyle.Render("2.") || tokens[4].s != pgnHighlightStyle.Render("Nf3") {
		t.Fatalf("expected move 2 to be highlighted")
	}
}

func TestWrapTokens(t *testing.T) {
	tokens := []styledToken{
		{s: "1.", width: 2}, {s: "e4", width: 2}, {s: "e5", width: 2},
		{s: "2.", width: 2}, {s: "Nf3", width: 3},
	}
	got := wrapTokens(tokens, 8)
	if got != "1. e4 e5\n2. Nf3" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if wrapTokens(tokens, 0) != "1. e4 e5 2. Nf3" {
		t.Fatalf("expected no wrapping for zero width")
	}
}
