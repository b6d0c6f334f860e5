// Package history persists attendance totals and launch-sequence outcomes
// to a local SQLite database. Per-step launch results stay ephemeral; only
// the aggregate outcome of a run is recorded.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/launcher"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// DBFileName is the database file inside the settings directory.
const DBFileName = "history.db"

// DB wraps the SQLite history database. Thread-safe within one process;
// WAL mode + busy timeout keep a second process from corrupting it.
type DB struct {
	db *sql.DB
}

// AttendanceRecord is one saved attendance calculation.
type AttendanceRecord struct {
	ID         int64
	RecordedAt time.Time
	Counts     attendance.Counts
	Total      int
}

// LaunchRecord is one saved launch-sequence outcome.
type LaunchRecord struct {
	ID         int64
	RecordedAt time.Time
	State      launcher.State
	StepsRun   int
	FailedStep string
}

// Open creates or opens the history database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: foreign keys: %w", err)
	}

	return &DB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (h *DB) Close() error {
	_, _ = h.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return h.db.Close()
}

// Migrate creates tables if they don't exist.
func (h *DB) Migrate() error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("history: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS attendance_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			counts      TEXT NOT NULL DEFAULT '{}',
			total       INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("history: create attendance_records: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS launch_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			state       TEXT NOT NULL,
			steps_run   INTEGER NOT NULL DEFAULT 0,
			failed_step TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("history: create launch_runs: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("history: set schema version: %w", err)
	}

	return tx.Commit()
}

// RecordAttendance saves one attendance calculation.
func (h *DB) RecordAttendance(counts attendance.Counts, total int, at time.Time) error {
	blob, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("history: marshal counts: %w", err)
	}
	_, err = h.db.Exec(`
		INSERT INTO attendance_records (recorded_at, counts, total) VALUES (?, ?, ?)
	`, at.Unix(), string(blob), total)
	return err
}

// RecentAttendance returns the latest n attendance records, newest first.
func (h *DB) RecentAttendance(n int) ([]AttendanceRecord, error) {
	rows, err := h.db.Query(`
		SELECT id, recorded_at, counts, total
		FROM attendance_records ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AttendanceRecord
	for rows.Next() {
		var r AttendanceRecord
		var recordedUnix int64
		var countsBlob string
		if err := rows.Scan(&r.ID, &recordedUnix, &countsBlob, &r.Total); err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(recordedUnix, 0)
		if err := json.Unmarshal([]byte(countsBlob), &r.Counts); err != nil {
			// A damaged blob keeps the row; the total is the useful part.
			r.Counts = attendance.Counts{}
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecordLaunch saves the aggregate outcome of one launch-sequence run.
func (h *DB) RecordLaunch(result *launcher.RunResult, at time.Time) error {
	_, err := h.db.Exec(`
		INSERT INTO launch_runs (recorded_at, state, steps_run, failed_step)
		VALUES (?, ?, ?, ?)
	`, at.Unix(), string(result.State), len(result.Steps), result.FailedStep)
	return err
}

// RecentLaunches returns the latest n launch-run records, newest first.
func (h *DB) RecentLaunches(n int) ([]LaunchRecord, error) {
	rows, err := h.db.Query(`
		SELECT id, recorded_at, state, steps_run, failed_step
		FROM launch_runs ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LaunchRecord
	for rows.Next() {
		var r LaunchRecord
		var recordedUnix int64
		var state string
		if err := rows.Scan(&r.ID, &recordedUnix, &state, &r.StepsRun, &r.FailedStep); err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(recordedUnix, 0)
		r.State = launcher.State(state)
		result = append(result, r)
	}
	return result, rows.Err()
}

// SetMeta sets a key-value pair in the metadata table.
func (h *DB) SetMeta(key, value string) error {
	_, err := h.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (h *DB) GetMeta(key string) (string, error) {
	var value string
	err := h.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
