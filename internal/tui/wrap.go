package tui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	pgnCommentRe = regexp.MustCompile(`\{[^}]*\}|;[^\n]*`)
	moveNumberRe = regexp.MustCompile(`^(\d+)\.+(.*)$`)
)

type styledToken struct {
	s     string
	width int
}

// movetextTokens returns the SAN tokens of a PGN, without tag pairs,
// comments, NAGs or the result marker.
func movetextTokens(pgn string) []string {
	var body strings.Builder
	for _, line := range strings.Split(pgn, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	text := pgnCommentRe.ReplaceAllString(body.String(), " ")

	var out []string
	for _, field := range strings.Fields(text) {
		switch {
		case field == "1-0", field == "0-1", field == "1/2-1/2", field == "*":
			continue
		case strings.HasPrefix(field, "$"):
			continue
		}
		if m := moveNumberRe.FindStringSubmatch(field); m != nil && m[2] != "" {
			out = append(out, field[:len(field)-len(m[2])], m[2])
			continue
		}
		out = append(out, field)
	}
	return out
}

// buildStyledTokens highlights every token of the given full move number.
func buildStyledTokens(tokens []string, highlight int) []styledToken {
	out := make([]styledToken, 0, len(tokens))
	current := 0
	for _, tok := range tokens {
		if m := moveNumberRe.FindStringSubmatch(tok); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				current = n
			}
		}
		style := pgnStyle
		if highlight > 0 && current == highlight {
			style = pgnHighlightStyle
		}
		out = append(out, styledToken{
			s:     style.Render(tok),
			width: runewidth.StringWidth(tok),
		})
	}
	return out
}

func renderTokens(tokens []styledToken) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.s
	}
	return strings.Join(parts, " ")
}

// wrapTokens fills lines up to width display cells. A token wider than width
// gets a line of its own.
func wrapTokens(tokens []styledToken, width int) string {
	if width <= 0 {
		return renderTokens(tokens)
	}
	var out strings.Builder
	line := make([]styledToken, 0, len(tokens))
	lineWidth := 0
	for _, tok := range tokens {
		next := lineWidth + tok.width
		if len(line) > 0 {
			next++
		}
		if next > width && len(line) > 0 {
			out.WriteString(renderTokens(line))
			out.WriteByte('\n')
			line = line[:0]
			lineWidth = 0
			next = tok.width
		}
		line = append(line, tok)
		lineWidth = next
	}
	out.WriteString(renderTokens(line))
	return out.String()
}
