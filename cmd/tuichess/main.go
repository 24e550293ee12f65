// Package main provides the CLI entrypoint for tuichess.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuichess/internal/config"
	"github.com/verte-zerg/tuichess/internal/filter"
	"github.com/verte-zerg/tuichess/internal/logging"
	"github.com/verte-zerg/tuichess/internal/model"
	"github.com/verte-zerg/tuichess/internal/puzzle"
	"github.com/verte-zerg/tuichess/internal/rules"
	"github.com/verte-zerg/tuichess/internal/selection"
	"github.com/verte-zerg/tuichess/internal/stats"
	"github.com/verte-zerg/tuichess/internal/statsui"
	"github.com/verte-zerg/tuichess/internal/store"
	"github.com/verte-zerg/tuichess/internal/trainer"
	"github.com/verte-zerg/tuichess/internal/tui"
)

const (
	defaultStore     = store.BackendSQLite
	defaultHintMs    = 1000
	defaultLogLevel  = "info"
	defaultStatsTop  = 20
	clearStatsPrompt = "Are you sure you want to clear all statistics? [y/N] "
)

var (
	puzzlesFlag  string
	storeFlag    string
	logLevelFlag string

	playPlayer        string
	playMyMovesOnly   bool
	playPuzzle        string
	playHintMs        int
	playCacheSize     int
	playFilterWorkers int
	playWatch         bool

	statsPlain  bool
	statsExport string
	statsTop    int

	clearYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuichess",
		Short:         "TUI chess puzzle trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&puzzlesFlag, "puzzles", config.DefaultPuzzleDir(), "puzzle directory or base URL")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", defaultStore, "stats backend: sqlite, file or memory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&playPlayer, "player", "", "player name for the my-moves-only filter")
	rootCmd.Flags().BoolVar(&playMyMovesOnly, "my-moves-only", false, "only positions where the player was to move")
	rootCmd.Flags().StringVar(&playPuzzle, "puzzle", "", "open a puzzle by id")
	rootCmd.Flags().IntVar(&playHintMs, "hint-ms", defaultHintMs, "how long the solution hint stays visible (ms)")
	rootCmd.Flags().IntVar(&playCacheSize, "cache-size", puzzle.DefaultCacheSize, "number of puzzles kept in memory")
	rootCmd.Flags().IntVar(&playFilterWorkers, "filter-workers", filter.DefaultWorkers, "parallel puzzle loads for the my-moves-only filter")
	rootCmd.Flags().BoolVar(&playWatch, "watch", false, "reload the index when index.json changes")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newClearStatsCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings merges the config file into flags the user did not set.
func loadSettings(cmd *cobra.Command) (model.Config, string, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "puzzles", &puzzlesFlag, fileCfg.Trainer.Puzzles)
	applyStringConfig(cmd, "store", &storeFlag, fileCfg.Trainer.Store)
	applyStringConfig(cmd, "log-level", &logLevelFlag, fileCfg.Log.Level)
	applyStringConfig(cmd, "player", &playPlayer, fileCfg.Trainer.Player)
	applyBoolConfig(cmd, "my-moves-only", &playMyMovesOnly, fileCfg.Trainer.MyMovesOnly)
	applyIntConfig(cmd, "hint-ms", &playHintMs, fileCfg.Trainer.HintMs)
	applyIntConfig(cmd, "cache-size", &playCacheSize, fileCfg.Trainer.CacheSize)
	applyIntConfig(cmd, "filter-workers", &playFilterWorkers, fileCfg.Trainer.FilterWorkers)
	applyBoolConfig(cmd, "watch", &playWatch, fileCfg.Trainer.Watch)

	cfg := model.Config{
		Puzzles:       puzzlesFlag,
		Store:         storeFlag,
		Player:        playPlayer,
		MyMovesOnly:   playMyMovesOnly,
		HintMs:        playHintMs,
		CacheSize:     playCacheSize,
		FilterWorkers: playFilterWorkers,
		Watch:         playWatch,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, "", err
	}
	if _, err := logging.ParseLevel(logLevelFlag); err != nil {
		return model.Config{}, "", err
	}
	return cfg, logLevelFlag, nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, level, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.NewFile(config.DefaultLogPath(), level)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	src, err := puzzle.Open(cfg.Puzzles)
	if err != nil {
		return err
	}
	cache, err := puzzle.NewCache(src, cfg.CacheSize)
	if err != nil {
		return err
	}

	tracker := store.NewTracker(ctx, st, logger)
	tr := trainer.New(ctx, cache, tracker, rules.New(), selection.New(), trainer.Options{
		Player:        cfg.Player,
		MyMovesOnly:   cfg.MyMovesOnly,
		FilterWorkers: cfg.FilterWorkers,
	}, logger)
	if tr.PuzzleCount() == 0 {
		logErrf("no puzzles found at %s (see %s)\n", cfg.Puzzles, config.DefaultLogPath())
	}

	m := tui.NewModel(ctx, tr, rules.New(), tui.Options{
		PuzzleID:  playPuzzle,
		HintDelay: time.Duration(cfg.HintMs) * time.Millisecond,
	}, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())

	if dir, ok := src.(*puzzle.DirSource); ok && cfg.Watch {
		go func() {
			err := puzzle.WatchIndex(ctx, dir.Dir(), logger, func() {
				cache.Purge()
				program.Send(tui.IndexChangedMsg{})
			})
			if err != nil {
				logger.Warn().Err(err).Msg("index watcher stopped")
			}
		}()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print plain text instead of the stats UI")
	cmd.Flags().StringVar(&statsExport, "export", "", "write stats as json or yaml")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of weakest puzzles in plain output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, level, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	interactive := statsExport == "" && !statsPlain && term.IsTerminal(int(os.Stdout.Fd()))

	var logger zerolog.Logger
	if interactive {
		fileLogger, closer, err := logging.NewFile(config.DefaultLogPath(), level)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				logErrf("failed to close log: %v\n", cerr)
			}
		}()
		logger = fileLogger
	} else {
		logger, err = logging.NewConsole(level)
		if err != nil {
			return err
		}
	}

	st, err := openStore(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore(st)
	tracker := store.NewTracker(cmd.Context(), st, logger)

	if statsExport != "" {
		return stats.Export(out, tracker.Snapshot(), statsExport)
	}
	if !interactive {
		return renderPlainStats(out, tracker.Snapshot(), statsTop)
	}

	program := tea.NewProgram(statsui.NewModel(tracker), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, perf model.PerformanceModel, top int) error {
	if err := stats.RenderSummary(w, stats.Summarize(perf)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTable(w, stats.WeakestPuzzles(perf, top)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newClearStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-stats",
		Short: "Reset all puzzle statistics",
		Args:  cobra.NoArgs,
		RunE:  runClearStatsCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runClearStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, level, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.NewConsole(level)
	if err != nil {
		return err
	}
	if !clearYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), clearStatsPrompt)
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return err
		}
	}

	st, err := openStore(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore(st)
	if _, err := st.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear stats: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Statistics cleared.")
	return err
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild index.json from the puzzle directory",
		Args:  cobra.NoArgs,
		RunE:  runIndexCmd,
	}
}

func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, level, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.NewConsole(level)
	if err != nil {
		return err
	}
	src, err := puzzle.Open(cfg.Puzzles)
	if err != nil {
		return err
	}
	dir, ok := src.(*puzzle.DirSource)
	if !ok {
		return fmt.Errorf("index can only be built for a local directory, got %s", cfg.Puzzles)
	}
	idx, err := puzzle.BuildIndex(dir.Dir(), logger)
	if err != nil {
		return err
	}
	if err := puzzle.WriteIndex(dir.Dir(), idx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d puzzles, %d games\n",
		filepath.Join(dir.Dir(), puzzle.IndexFile), len(idx.Puzzles), len(idx.Games))
	return err
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List indexed games",
		Args:  cobra.NoArgs,
		RunE:  runGamesCmd,
	}
}

func runGamesCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := puzzle.Open(cfg.Puzzles)
	if err != nil {
		return err
	}
	idx, err := src.LoadIndex(cmd.Context())
	if err != nil {
		return err
	}
	if len(idx.Games) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No games found.")
		return err
	}
	now := time.Now()
	for _, g := range idx.Games {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d puzzles\n", g.ID, puzzle.GameLabel(g, now), len(g.PuzzleIDs)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore(backend string, logger zerolog.Logger) (store.Store, error) {
	st, err := store.Open(backend, storePath(backend), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats store: %w", err)
	}
	return st, nil
}

func storePath(backend string) string {
	if strings.EqualFold(strings.TrimSpace(backend), store.BackendFile) {
		return config.DefaultStatsFilePath()
	}
	return config.DefaultDBPath()
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close stats store: %v\n", err)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuichess configuration
# Uncomment a value to enable it. CLI flags override config values.

[trainer]
# puzzles = %q            # Puzzle directory or base URL
# store = %q               # Stats backend: sqlite, file or memory
# player = ""                  # Your player name for the my-moves-only filter
# my-moves-only = false        # Only positions where the player was to move
# hint-ms = %d               # How long the solution hint stays visible
# cache-size = %d             # Puzzles kept in memory
# filter-workers = %d           # Parallel loads for the my-moves-only filter
# watch = false                # Reload the index when index.json changes

[log]
# level = %q                # debug, info, warn or error
`,
		config.DefaultPuzzleDir(),
		defaultStore,
		defaultHintMs,
		puzzle.DefaultCacheSize,
		filter.DefaultWorkers,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.Puzzles) == "" {
		return fmt.Errorf("--puzzles must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case store.BackendSQLite, store.BackendFile, store.BackendMemory:
	default:
		return fmt.Errorf("--store must be sqlite, file or memory")
	}
	if cfg.HintMs <= 0 {
		return fmt.Errorf("--hint-ms must be > 0")
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("--cache-size must be >= 0")
	}
	if cfg.FilterWorkers < 0 {
		return fmt.Errorf("--filter-workers must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
