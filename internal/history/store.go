// Package history records finished runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mortie23/tptload/pkg/tptload"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeFormat keeps fixed-width fractions so text ordering is chronological.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned by Run for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Interrupted bool      `json:"interrupted"`
}

// TableLoadRecord is one row of the table_loads table.
type TableLoadRecord struct {
	Table       string        `json:"table"`
	FilePath    string        `json:"file_path"`
	Success     bool          `json:"success"`
	FailedStage tptload.Stage `json:"failed_stage,omitempty"`
	RowsSent    *int64        `json:"rows_sent,omitempty"`
	RowsApplied *int64        `json:"rows_applied,omitempty"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// Store is a SQLite-backed RunRecorder.
type Store struct {
	db   *sql.DB
	path string
}

var _ tptload.RunRecorder = (*Store)(nil)

// Open opens (creating if needed) the history database at path and applies
// pending migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate runs all pending migrations.
func (s *Store) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores a summary and its per-table outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, summary tptload.RunSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, processed, succeeded, failed, skipped, interrupted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		formatTime(summary.StartedAt),
		formatTime(summary.FinishedAt),
		summary.Processed,
		summary.Succeeded,
		summary.Failed,
		len(summary.Skipped),
		summary.Interrupted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", summary.RunID, err)
	}

	for i, o := range summary.Outcomes {
		var sent, applied *int64
		if o.Metrics != nil {
			sent, applied = o.Metrics.RowsSent, o.Metrics.RowsApplied
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO table_loads (run_id, position, table_name, file_path, success, failed_stage, rows_sent, rows_applied, duration_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID, i, o.Unit.Table, o.Unit.File.Path, o.Success,
			nullString(string(o.FailedStage)), sent, applied, o.Duration.Milliseconds(), nullString(o.Error),
		)
		if err != nil {
			return fmt.Errorf("failed to insert table load %s: %w", o.Unit.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", summary.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, processed, succeeded, failed, skipped, interrupted
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns a single run by ID.
func (s *Store) Run(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, processed, succeeded, failed, skipped, interrupted
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// TableLoads returns the per-table outcomes of a run in processing order.
func (s *Store) TableLoads(ctx context.Context, runID string) ([]TableLoadRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, file_path, success, failed_stage, rows_sent, rows_applied, duration_ms, error
		 FROM table_loads WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query table loads: %w", err)
	}
	defer rows.Close()

	var loads []TableLoadRecord
	for rows.Next() {
		var (
			rec           TableLoadRecord
			failedStage   sql.NullString
			sent, applied sql.NullInt64
			durationMS    int64
			errText       sql.NullString
		)
		if err := rows.Scan(&rec.Table, &rec.FilePath, &rec.Success, &failedStage, &sent, &applied, &durationMS, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan table load: %w", err)
		}
		rec.FailedStage = tptload.Stage(failedStage.String)
		rec.RowsSent = int64Ptr(sent)
		rec.RowsApplied = int64Ptr(applied)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.Error = errText.String
		loads = append(loads, rec)
	}
	return loads, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		r                 RunRecord
		started, finished string
	)
	if err := row.Scan(&r.ID, &started, &finished, &r.Processed, &r.Succeeded, &r.Failed, &r.Skipped, &r.Interrupted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("failed to scan run: %w", err)
	}
	var err error
	if r.StartedAt, err = time.Parse(timeFormat, started); err != nil {
		return RunRecord{}, fmt.Errorf("invalid started_at for run %s: %w", r.ID, err)
	}
	if r.FinishedAt, err = time.Parse(timeFormat, finished); err != nil {
		return RunRecord{}, fmt.Errorf("invalid finished_at for run %s: %w", r.ID, err)
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
