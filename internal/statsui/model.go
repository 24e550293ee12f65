// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/stats"
)

const (
	tabOverview = iota
	tabPuzzleTable
)

const overviewWeakest = 5

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source provides the current performance model.
type Source interface {
	Snapshot() model.PerformanceModel
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	source Source
	perf   model.PerformanceModel

	tabs      []string
	activeTab int
	overview  viewport.Model
	table     table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src Source) *Model {
	m := &Model{
		source:   src,
		tabs:     []string{"Overview", "Puzzles"},
		overview: viewport.New(0, 0),
		table:    buildPuzzleTable(nil, 80, 10),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "right", "l", "tab":
			m.moveTab()
			return m, tea.ClearScreen
		case "r":
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabPuzzleTable {
				m.table.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabPuzzleTable {
				m.table.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabPuzzleTable {
			m.table, cmd = m.table.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	var body string
	if m.activeTab == tabPuzzleTable {
		if len(m.table.Rows()) == 0 {
			body = "No puzzle stats found."
		} else {
			body = tableMutedStyle.Render(m.table.View())
		}
	} else {
		body = m.overview.View()
	}
	footer := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q")
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), fitLines(footer, m.width, 1)}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	bodyHeight = m.height - headerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight-1))
	m.overview.SetContent(renderOverview(m.perf, m.width))
}

func (m *Model) moveTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	if m.activeTab == tabPuzzleTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) refresh() {
	m.perf = m.source.Snapshot()
	_, rows := buildPuzzleTableData(stats.WeakestPuzzles(m.perf, 0))
	m.table.SetRows(rows)
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.perf, width))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderOverview(perf model.PerformanceModel, width int) string {
	sum := stats.Summarize(perf)
	if sum.Attempts() == 0 {
		return "No attempts recorded."
	}
	cards := []string{
		metricCard("Correct", fmt.Sprintf("%d", sum.TotalCorrect)),
		metricCard("Wrong", fmt.Sprintf("%d", sum.TotalWrong)),
		metricCard("Success Rate", fmt.Sprintf("%d%%", sum.SuccessRate)),
		metricCard("Puzzles Seen", fmt.Sprintf("%d", sum.Seen)),
		metricCard("Never Solved", fmt.Sprintf("%d", sum.NeverSolved)),
	}
	var block string
	if width < 80 {
		block = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		block = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	weakest := stats.WeakestPuzzles(perf, overviewWeakest)
	lines := []string{block, "", cardTitleStyle.Render("Most likely to come up next")}
	for _, r := range weakest {
		lines = append(lines, fmt.Sprintf("  %s  %d/%d correct  weight %.2f", r.ID, r.Correct, r.Correct+r.Wrong, r.Weight))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildPuzzleTable(rows []stats.PuzzleRow, width, height int) table.Model {
	cols, data := buildPuzzleTableData(rows)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(data),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(puzzleTableStyles())
	return t
}

func buildPuzzleTableData(rows []stats.PuzzleRow) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Puzzle", Width: 28},
		{Title: "Correct", Width: 7},
		{Title: "Wrong", Width: 6},
		{Title: "Success", Width: 8},
		{Title: "Weight", Width: 7},
	}
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			runewidth.Truncate(r.ID, columns[0].Width, "…"),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%d%%", r.Rate()),
			fmt.Sprintf("%.3f", r.Weight),
		})
	}
	return columns, out
}

func puzzleTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
