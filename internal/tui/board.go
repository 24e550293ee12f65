package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/session"
)

const files = "abcdefgh"

type squareKind int

const (
	lightSquare squareKind = iota
	darkSquare
	hintSquare
)

var (
	lightSquareStyle = lipgloss.NewStyle().Background(lipgloss.Color("#EEEED2")).Foreground(lipgloss.Color("#1A1A1A"))
	darkSquareStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#769656")).Foreground(lipgloss.Color("#1A1A1A"))
	hintSquareStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#F6F669")).Foreground(lipgloss.Color("#1A1A1A"))
	coordStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// boardSquares lists rank-major squares from the viewer's top-left corner.
func boardSquares(orientation model.Color) [][]string {
	rows := make([][]string, 0, 8)
	for i := 0; i < 8; i++ {
		rank := 8 - i
		if orientation == model.Black {
			rank = i + 1
		}
		row := make([]string, 0, 8)
		for j := 0; j < 8; j++ {
			file := files[j]
			if orientation == model.Black {
				file = files[7-j]
			}
			row = append(row, string([]byte{file, byte('0' + rank)}))
		}
		rows = append(rows, row)
	}
	return rows
}

func squareKindOf(square string, hint *session.Hint) squareKind {
	if hint != nil && (square == hint.From || square == hint.To) {
		return hintSquare
	}
	file := int(square[0] - 'a')
	rank := int(square[1] - '0')
	if (file+rank)%2 == 1 {
		return darkSquare
	}
	return lightSquare
}

func styleFor(kind squareKind) lipgloss.Style {
	switch kind {
	case hintSquare:
		return hintSquareStyle
	case darkSquare:
		return darkSquareStyle
	default:
		return lightSquareStyle
	}
}

// renderBoard draws pieces from the given side's point of view.
func renderBoard(pieces map[string]string, orientation model.Color, hint *session.Hint) string {
	var b strings.Builder
	for _, row := range boardSquares(orientation) {
		b.WriteString(coordStyle.Render(row[0][1:2]))
		b.WriteByte(' ')
		for _, sq := range row {
			glyph := pieces[sq]
			if glyph == "" {
				glyph = " "
			}
			b.WriteString(styleFor(squareKindOf(sq, hint)).Render(" " + glyph + " "))
		}
		b.WriteByte('\n')
	}
	b.WriteString("  ")
	for _, sq := range boardSquares(orientation)[0] {
		b.WriteString(coordStyle.Render(" " + sq[0:1] + " "))
	}
	return b.String()
}
