package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"fieldstack/internal/logging"
)

// Store manages report persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open opens (creating if needed) the report database at path and acquires
// its sidecar lock. A second writer on the same file fails fast instead of
// queueing behind SQLite busy timeouts.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("report store requires a path")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire report lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("report database %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open report database: %w", err)
	}

	store := &Store{
		db:     db,
		path:   path,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "report"),
	}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and its lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// BeginRun records the start of a stage run.
func (s *Store) BeginRun(ctx context.Context, runID, stage string) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id cannot be empty")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.execWithRetry(ctx,
		"INSERT INTO runs (id, stage, started_at) VALUES (?, ?, ?)",
		runID, stage, now,
	); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Counters are the per-run totals persisted by FinishRun.
type Counters struct {
	FieldsProcessed    int64
	RegionsCorrected   int64
	RegionsUncorrected int64
	SamplesDropout     int64
	SamplesRecovered   int64
}

// FinishRun records the end of a stage run along with its totals.
func (s *Store) FinishRun(ctx context.Context, runID string, counters Counters) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, fields_processed = ?, regions_corrected = ?,
		 regions_uncorrected = ?, samples_dropout = ?, samples_recovered = ? WHERE id = ?`,
		now, counters.FieldsProcessed, counters.RegionsCorrected,
		counters.RegionsUncorrected, counters.SamplesDropout, counters.SamplesRecovered, runID,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	s.logger.Debug("run recorded",
		logging.String(logging.FieldRunID, runID),
		logging.Int64("fields_processed", counters.FieldsProcessed),
		logging.Int64("regions_uncorrected", counters.RegionsUncorrected))
	return nil
}

// WarningRecord is one unresolved dropout persisted against a run.
type WarningRecord struct {
	FieldID int64
	Channel string
	Line    int
	Start   int
	End     int
	Reason  string
}

// AddWarnings persists a batch of unresolved-dropout warnings for a run.
func (s *Store) AddWarnings(ctx context.Context, runID string, warnings []WarningRecord) error {
	if len(warnings) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin warnings transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO warnings (run_id, field_id, channel, line, start_sample, end_sample, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare warnings insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range warnings {
		if _, err := stmt.ExecContext(ctx, runID, w.FieldID, w.Channel, w.Line, w.Start, w.End, w.Reason, now); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit warnings: %w", err)
	}
	return nil
}

// Run is one recorded stage run.
type Run struct {
	ID         string
	Stage      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Counters   Counters
	Warnings   int64
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.stage, r.started_at, r.finished_at, r.fields_processed,
		        r.regions_corrected, r.regions_uncorrected, r.samples_dropout, r.samples_recovered,
		        (SELECT COUNT(1) FROM warnings w WHERE w.run_id = r.id)
		 FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&run.ID, &run.Stage, &started, &finished,
			&run.Counters.FieldsProcessed, &run.Counters.RegionsCorrected,
			&run.Counters.RegionsUncorrected, &run.Counters.SamplesDropout,
			&run.Counters.SamplesRecovered, &run.Warnings); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunWarnings returns the warnings recorded for one run, in insertion order.
func (s *Store) RunWarnings(ctx context.Context, runID string, limit int) ([]WarningRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT field_id, channel, line, start_sample, end_sample, reason
		 FROM warnings WHERE run_id = ? ORDER BY id LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var warnings []WarningRecord
	for rows.Next() {
		var w WarningRecord
		if err := rows.Scan(&w.FieldID, &w.Channel, &w.Line, &w.Start, &w.End, &w.Reason); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}
