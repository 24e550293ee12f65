package puzzle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/tuichess/internal/model"
)

// FormatResult turns a PGN result tag into words.
func FormatResult(result string) string {
	switch result {
	case "":
		return "Unknown"
	case "1-0":
		return "White wins"
	case "0-1":
		return "Black wins"
	case "1/2-1/2":
		return "Draw"
	default:
		return result
	}
}

// FormatTimeControl renders a "base+increment" time control in seconds.
func FormatTimeControl(tc string) string {
	if tc == "" {
		return "Unknown"
	}
	parts := strings.SplitN(tc, "+", 2)
	base, err := strconv.Atoi(parts[0])
	if err != nil {
		return "Unknown"
	}
	increment := 0
	if len(parts) == 2 {
		increment, _ = strconv.Atoi(parts[1])
	}
	minutes := base / 60
	if minutes == 0 {
		if increment > 0 {
			return fmt.Sprintf("%d sec + %d sec", base, increment)
		}
		return fmt.Sprintf("%d sec", base)
	}
	if increment > 0 {
		return fmt.Sprintf("%d min + %d sec", minutes, increment)
	}
	return fmt.Sprintf("%d min", minutes)
}

// FormatDate renders a game date, or "unknown date" for a zero time.
func FormatDate(ts model.Timestamp) string {
	if ts.IsZero() {
		return "unknown date"
	}
	return ts.Local().Format("2006-01-02")
}

// GameLabel describes a game for selectors, e.g. "a vs b (3 days ago)".
func GameLabel(g model.GameRecord, now time.Time) string {
	when := "unknown date"
	if !g.Timestamp.IsZero() {
		when = humanize.RelTime(g.Timestamp.Time, now, "ago", "from now")
	}
	return fmt.Sprintf("%s vs %s (%s)", g.White, g.Black, when)
}

// Players returns the sorted, de-duplicated player names of games.
func Players(games []model.GameRecord) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range games {
		for _, name := range []string{g.White, g.Black} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
