package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/verte-zerg/tuichess/internal/model"
)

// SQLite wraps SQLite access for the performance model.
type SQLite struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
// A file that is not a readable database is moved aside as
// <path>.corrupt-<time> and replaced by an empty one.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	store, err := openSQLite(path, logger)
	if err == nil || !isCorrupt(err) {
		return store, err
	}

	aside := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	logger.Warn().Err(err).Str("moved_to", aside).Msg("stats database is unreadable; starting from zero")
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, fmt.Errorf("failed to move unreadable database aside: %w", rerr)
	}
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if rerr := os.Remove(path + suffix); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			// Best-effort removal of stale sidecar files.
			_ = rerr
		}
	}
	return openSQLite(path, logger)
}

func openSQLite(path string, logger zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

func isCorrupt(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS totals (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS puzzle_stats (
			puzzle_id TEXT PRIMARY KEY,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context) model.PerformanceModel {
	m, err := s.load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load stats; starting from zero")
		return model.NewPerformanceModel()
	}
	if !m.Valid() {
		s.logger.Warn().Msg("stored stats have negative counters; starting from zero")
		return model.NewPerformanceModel()
	}
	return m
}

func (s *SQLite) load(ctx context.Context) (model.PerformanceModel, error) {
	m := model.NewPerformanceModel()
	row := s.db.QueryRowContext(ctx, `SELECT correct, wrong FROM totals WHERE id = 1`)
	if err := row.Scan(&m.TotalCorrect, &m.TotalWrong); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.PerformanceModel{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT puzzle_id, correct, wrong FROM puzzle_stats`)
	if err != nil {
		return model.PerformanceModel{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var id string
		var stat model.PuzzleStat
		if err := rows.Scan(&id, &stat.Correct, &stat.Wrong); err != nil {
			return model.PerformanceModel{}, err
		}
		m.Puzzles[id] = stat
	}
	if err := rows.Err(); err != nil {
		return model.PerformanceModel{}, err
	}
	return m, nil
}

// Save implements Store. All rows are replaced in one transaction.
func (s *SQLite) Save(ctx context.Context, m model.PerformanceModel) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO totals (id, correct, wrong) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET correct = excluded.correct, wrong = excluded.wrong`,
		m.TotalCorrect, m.TotalWrong,
	); err != nil {
		return fmt.Errorf("failed to save totals: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM puzzle_stats`); err != nil {
		return fmt.Errorf("failed to reset puzzle stats: %w", err)
	}
	if len(m.Puzzles) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO puzzle_stats (puzzle_id, correct, wrong) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return fmt.Errorf("failed to prepare puzzle stats: %w", err)
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for id, stat := range m.Puzzles {
			if _, err = stmt.ExecContext(ctx, id, stat.Correct, stat.Wrong); err != nil {
				return fmt.Errorf("failed to save puzzle %s: %w", id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLite) Clear(ctx context.Context) (model.PerformanceModel, error) {
	cleared := model.NewPerformanceModel()
	if err := s.Save(ctx, cleared); err != nil {
		return model.PerformanceModel{}, err
	}
	return cleared, nil
}
