package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// CycleRecord is one finished checker cycle.
type CycleRecord struct {
	CycleID     string
	Trigger     string
	StartedAt   time.Time
	FinishedAt  time.Time
	URLsChecked int
	Changes     int
	Errors      int
}

// Duration returns how long the cycle ran.
func (r CycleRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// History stores finished cycles in SQLite.
type History struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewHistory opens (or creates) the history database at dataSourceName and
// ensures the schema is set up.
func NewHistory(dataSourceName string, logger zerolog.Logger) (*History, error) {
	historyLogger := logger.With().Str("component", "History").Logger()
	historyLogger.Info().Str("db_path", dataSourceName).Msg("Initializing history database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		historyLogger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		historyLogger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// SQLite allows a single writer
	dbInstance.SetMaxOpenConns(1)

	h := &History{
		db:     dbInstance,
		logger: historyLogger,
	}

	if err := h.initSchema(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

func (h *History) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS check_cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT UNIQUE NOT NULL,
		trigger_source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		urls_checked INTEGER NOT NULL DEFAULT 0,
		changes INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := h.db.Exec(query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	h.logger.Debug().Msg("Schema initialized (check_cycles table ensured)")
	return nil
}

// RecordCycle inserts a finished cycle.
func (h *History) RecordCycle(ctx context.Context, record CycleRecord) error {
	query := `INSERT INTO check_cycles (cycle_id, trigger_source, started_at, finished_at, urls_checked, changes, errors) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := h.db.ExecContext(ctx, query,
		record.CycleID,
		record.Trigger,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.FinishedAt.UTC().Format(time.RFC3339Nano),
		record.URLsChecked,
		record.Changes,
		record.Errors,
	)
	if err != nil {
		h.logger.Error().Err(err).Str("cycle_id", record.CycleID).Msg("Failed to record cycle")
		return fmt.Errorf("failed to insert cycle record: %w", err)
	}
	h.logger.Debug().Str("cycle_id", record.CycleID).Str("trigger", record.Trigger).Msg("Recorded cycle")
	return nil
}

// LastCycle returns the most recently finished cycle. found is false when
// no cycle was recorded yet.
func (h *History) LastCycle(ctx context.Context) (CycleRecord, bool, error) {
	query := `SELECT cycle_id, trigger_source, started_at, finished_at, urls_checked, changes, errors FROM check_cycles ORDER BY id DESC LIMIT 1`

	var (
		record     CycleRecord
		startedAt  string
		finishedAt string
	)
	err := h.db.QueryRowContext(ctx, query).Scan(
		&record.CycleID,
		&record.Trigger,
		&startedAt,
		&finishedAt,
		&record.URLsChecked,
		&record.Changes,
		&record.Errors,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CycleRecord{}, false, nil
		}
		h.logger.Error().Err(err).Msg("Failed to query last cycle")
		return CycleRecord{}, false, fmt.Errorf("failed to query last cycle: %w", err)
	}

	if record.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return CycleRecord{}, false, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	if record.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return CycleRecord{}, false, fmt.Errorf("invalid finished_at %q: %w", finishedAt, err)
	}
	return record, true, nil
}

// CountCycles returns how many cycles have been recorded.
func (h *History) CountCycles(ctx context.Context) (int, error) {
	var count int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM check_cycles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cycles: %w", err)
	}
	return count, nil
}
