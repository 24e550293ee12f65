// Package tui provides the Bubble Tea puzzle interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/puzzle"
	"github.com/verte-zerg/tuichess/internal/session"
	statsPkg "github.com/verte-zerg/tuichess/internal/stats"
	"github.com/verte-zerg/tuichess/internal/trainer"
)

// DefaultHintDelay is how long a solution hint stays on the board.
const DefaultHintDelay = time.Second

// BoardReader maps a position to occupied squares and piece glyphs.
type BoardReader interface {
	Pieces(position string) (map[string]string, error)
}

// IndexChangedMsg asks the model to reload the puzzle index.
type IndexChangedMsg struct{}

type puzzleLoadedMsg struct {
	req trainer.Request
	rec model.PuzzleRecord
	err error
}

type hintExpiredMsg struct {
	gen uint64
}

// Options configures the play UI.
type Options struct {
	PuzzleID  string
	HintDelay time.Duration
}

// Model implements the Bubble Tea puzzle UI.
type Model struct {
	ctx     context.Context
	trainer *trainer.Trainer
	board   BoardReader
	logger  zerolog.Logger
	opts    Options

	input textinput.Model

	width  int
	height int

	loading      bool
	confirmClear bool
	status       string
	statusStyle  lipgloss.Style
	now          func() time.Time
}

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	infoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	okStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pgnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	pgnHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	panelStyle        = lipgloss.NewStyle().PaddingLeft(3)
)

// NewModel constructs the puzzle UI.
func NewModel(ctx context.Context, tr *trainer.Trainer, board BoardReader, opts Options, logger zerolog.Logger) *Model {
	if opts.HintDelay <= 0 {
		opts.HintDelay = DefaultHintDelay
	}
	in := textinput.New()
	in.Prompt = "move> "
	in.Placeholder = "e2e4"
	in.CharLimit = 12
	in.Focus()
	return &Model{
		ctx:         ctx,
		trainer:     tr,
		board:       board,
		logger:      logger,
		opts:        opts,
		input:       in,
		statusStyle: mutedStyle,
		now:         time.Now,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startLoad(m.opts.PuzzleID))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case puzzleLoadedMsg:
		return m, m.handleLoaded(msg)
	case hintExpiredMsg:
		m.trainer.ClearHint(msg.gen)
		return m, nil
	case IndexChangedMsg:
		if err := m.trainer.ReloadIndex(m.ctx); err != nil {
			m.logger.Error().Err(err).Msg("failed to reload puzzle index")
			m.setError("Failed to reload the puzzle index.")
			return m, nil
		}
		m.setInfo(fmt.Sprintf("Index reloaded: %d puzzles.", m.trainer.PuzzleCount()))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		m.confirmClear = false
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if strings.EqualFold(msg.String(), "y") {
			m.trainer.ClearStats(m.ctx)
			m.setInfo("Statistics cleared.")
			return m, nil
		}
		m.setInfo("Clear cancelled.")
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyCtrlN:
		return m, m.startLoad("")
	case tea.KeyCtrlS:
		return m, m.showSolution()
	case tea.KeyCtrlY:
		m.copyPGN()
		return m, nil
	case tea.KeyCtrlG:
		m.cycleGame()
		return m, m.startLoad("")
	case tea.KeyCtrlP:
		m.cyclePlayer()
		return m, m.startLoad("")
	case tea.KeyCtrlT:
		f := m.trainer.Filters()
		m.trainer.SetMyMovesOnly(!f.MyMovesOnly)
		return m, m.startLoad("")
	case tea.KeyCtrlX:
		m.confirmClear = true
		m.setInfo("Clear all statistics? (y/n)")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startLoad(id string) tea.Cmd {
	req := m.trainer.Begin(id)
	m.loading = true
	ctx := m.ctx
	tr := m.trainer
	return func() tea.Msg {
		rec, err := tr.Resolve(ctx, req)
		return puzzleLoadedMsg{req: req, rec: rec, err: err}
	}
}

func (m *Model) handleLoaded(msg puzzleLoadedMsg) tea.Cmd {
	if msg.err != nil {
		if msg.req.Token != m.trainer.Session().LatestToken() {
			return nil
		}
		m.loading = false
		if errors.Is(msg.err, trainer.ErrNoPuzzles) {
			m.setError(trainer.NoPuzzlesMessage)
			return nil
		}
		m.logger.Error().Err(msg.err).Msg("failed to load puzzle")
		m.setError("Failed to load a puzzle.")
		return nil
	}
	if !m.trainer.Apply(msg.req, msg.rec) {
		return nil
	}
	m.loading = false
	m.input.SetValue("")
	m.setInfo(fmt.Sprintf("Find the best move for %s.", msg.rec.TurnColor.Name()))
	m.logger.Debug().Str("puzzle", msg.rec.ID).Msg("puzzle loaded")
	return nil
}

func (m *Model) submit() {
	text := m.input.Value()
	m.input.SetValue("")
	if strings.TrimSpace(text) == "" {
		return
	}
	res, err := m.trainer.SubmitMove(m.ctx, text)
	if err != nil {
		if errors.Is(err, trainer.ErrInvalidMove) {
			m.setError("Enter a move as from and to squares, e.g. e2e4.")
			return
		}
		m.logger.Error().Err(err).Str("move", text).Msg("failed to submit move")
		m.setError("Could not evaluate the move.")
		return
	}
	m.setVerdict(res)
}

func (m *Model) setVerdict(res session.MoveResult) {
	s := m.trainer.Session()
	switch res.Verdict {
	case session.VerdictCorrect:
		if res.Recorded {
			m.setOK("Correct! Press ctrl+n for the next puzzle.")
		} else {
			m.setOK("Solved. Press ctrl+n for the next puzzle.")
		}
	case session.VerdictWrong:
		m.setError("Wrong move. Try again.")
	case session.VerdictIllegal:
		m.setError("Illegal move.")
	default:
		switch {
		case s.Solved():
			m.setInfo("Already solved. Press ctrl+n for the next puzzle.")
		case s.State() == session.StateEmpty:
			m.setInfo("No puzzle loaded.")
		default:
			m.setInfo("It is not your turn.")
		}
	}
}

func (m *Model) showSolution() tea.Cmd {
	hint, err := m.trainer.ShowSolution()
	if err != nil {
		m.setInfo("No puzzle loaded.")
		return nil
	}
	gen := hint.Gen
	return tea.Tick(m.opts.HintDelay, func(time.Time) tea.Msg {
		return hintExpiredMsg{gen: gen}
	})
}

func (m *Model) copyPGN() {
	pgn, err := m.trainer.PGN()
	if err != nil {
		m.setError("No PGN available.")
		return
	}
	if err := clipboard.WriteAll(pgn); err != nil {
		m.logger.Warn().Err(err).Msg("failed to copy pgn")
		m.setError("Failed to copy PGN.")
		return
	}
	m.setOK("PGN copied!")
}

func (m *Model) cycleGame() {
	games := m.trainer.Games()
	current := ""
	if g := m.trainer.Filters().Game; g != nil {
		current = g.ID
	}
	ids := make([]string, 0, len(games)+1)
	ids = append(ids, "")
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	next := ids[(indexOf(ids, current)+1)%len(ids)]
	if err := m.trainer.SelectGame(next); err != nil {
		m.logger.Warn().Err(err).Msg("failed to select game")
	}
}

func (m *Model) cyclePlayer() {
	names := append([]string{""}, m.trainer.Players()...)
	current := m.trainer.Filters().Player
	m.trainer.SelectPlayer(names[(indexOf(names, current)+1)%len(names)])
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return 0
}

func (m *Model) setInfo(s string) {
	m.status = s
	m.statusStyle = infoStyle
}

func (m *Model) setOK(s string) {
	m.status = s
	m.statusStyle = okStyle
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusStyle = errStyle
}

// View implements tea.Model.
func (m *Model) View() string {
	left := m.renderBoardPanel()
	right := panelStyle.Render(m.renderSidePanel())
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("tuichess")+"  "+mutedStyle.Render(m.renderHeadline()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		"",
		m.input.View(),
		m.statusStyle.Render(m.status),
	)
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeadline() string {
	if m.loading {
		return "Loading puzzle..."
	}
	rec, ok := m.trainer.Session().Puzzle()
	if !ok {
		return "No puzzle"
	}
	g := rec.Game
	label := fmt.Sprintf("%s vs %s", g.White, g.Black)
	if !g.Timestamp.IsZero() {
		label += " · " + puzzle.FormatDate(g.Timestamp)
	}
	if g.MoveNumber > 0 {
		label += fmt.Sprintf(" · move %d", g.MoveNumber)
	}
	return fmt.Sprintf("%s to move · %s", rec.TurnColor.Name(), label)
}

func (m *Model) renderBoardPanel() string {
	s := m.trainer.Session()
	rec, ok := s.Puzzle()
	if !ok {
		return renderBoard(nil, model.White, nil)
	}
	pieces, err := m.board.Pieces(s.Position())
	if err != nil {
		m.logger.Error().Err(err).Str("puzzle", rec.ID).Msg("failed to read position")
		return renderBoard(nil, rec.TurnColor, nil)
	}
	var hint *session.Hint
	if h, ok := s.Hint(); ok {
		hint = &h
	}
	return renderBoard(pieces, rec.TurnColor, hint)
}

func (m *Model) renderSidePanel() string {
	f := m.trainer.Filters()
	game := "All games"
	if f.Game != nil {
		game = puzzle.GameLabel(*f.Game, m.now())
	}
	player := f.Player
	if player == "" {
		player = "Any"
	}
	myMoves := "off"
	if f.MyMovesOnly {
		myMoves = "on"
	}
	lines := []string{
		"Game:   " + game,
		"Player: " + player,
		"Mine:   " + myMoves,
		"",
	}
	if rec, ok := m.trainer.Session().Puzzle(); ok {
		tokens := buildStyledTokens(movetextTokens(rec.Game.PGN), rec.Game.MoveNumber)
		if len(tokens) > 0 {
			lines = append(lines, wrapTokens(tokens, m.sidePanelWidth()), "")
		}
		lines = append(lines, gameDetails(rec.Game)...)
		lines = append(lines, mutedStyle.Render("tuichess --puzzle "+rec.ID))
	}
	return strings.Join(lines, "\n")
}

func gameDetails(g model.GameSummary) []string {
	var lines []string
	if g.Result != "" {
		lines = append(lines, "Result: "+puzzle.FormatResult(g.Result))
	}
	if g.TimeControl != "" {
		lines = append(lines, "Clock:  "+puzzle.FormatTimeControl(g.TimeControl))
	}
	if g.URL != "" {
		lines = append(lines, "Game:   "+g.URL)
	}
	return lines
}

func (m *Model) sidePanelWidth() int {
	const boardWidth = 2 + 8*3
	if m.width == 0 {
		return 40
	}
	w := int(float64(m.width)*0.85) - boardWidth - 3
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderFooter() string {
	sum := statsPkg.Summarize(m.trainer.Stats())
	segments := []string{
		fmt.Sprintf("Correct %d", sum.TotalCorrect),
		fmt.Sprintf("Wrong %d", sum.TotalWrong),
		fmt.Sprintf("Success %d%%", sum.SuccessRate),
		"enter move · ^n next · ^s solution · ^y pgn · ^g game · ^p player · ^t mine · ^x clear · esc quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
