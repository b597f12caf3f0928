// Package ledger records batches and their runs in a SQLite database so a
// sweep's outcome can be inspected after the process exits.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	batch_id     TEXT PRIMARY KEY,
	template     TEXT,
	outpath      TEXT,
	run_count    INTEGER NOT NULL,
	workers      INTEGER NOT NULL,
	state        TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS runs (
	batch_id     TEXT NOT NULL,
	run_index    INTEGER NOT NULL,
	name         TEXT NOT NULL,
	dir          TEXT NOT NULL,
	status       TEXT NOT NULL,
	message      TEXT,
	started_at   TEXT,
	duration_ms  INTEGER,
	PRIMARY KEY (batch_id, run_index),
	FOREIGN KEY (batch_id) REFERENCES batches(batch_id)
);
`

// Run statuses stored in runs.status.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a batch does not exist.
var ErrNotFound = errors.New("batch not found")

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// Runs report from several goroutines; one connection serializes writes.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BatchRecord is one row of the batches table.
type BatchRecord struct {
	ID         string
	Template   string
	OutputPath string
	RunCount   int
	Workers    int
	State      string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	Index     int
	Name      string
	Dir       string
	Status    string
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// Batch retrieves a batch by ID.
func (s *Store) Batch(id string) (BatchRecord, error) {
	var rec BatchRecord
	var template, outpath, finished sql.NullString
	var created string

	err := s.db.QueryRow(
		`SELECT batch_id, template, outpath, run_count, workers, state, created_at, finished_at
		 FROM batches WHERE batch_id = ?`, id,
	).Scan(&rec.ID, &template, &outpath, &rec.RunCount, &rec.Workers, &rec.State, &created, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return BatchRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return BatchRecord{}, fmt.Errorf("get batch %s: %w", id, err)
	}

	rec.Template = template.String
	rec.OutputPath = outpath.String
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	return rec, nil
}

// Runs returns the runs of a batch in plan order.
func (s *Store) Runs(batchID string) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_index, name, dir, status, message, started_at, duration_ms
		 FROM runs WHERE batch_id = ? ORDER BY run_index`, batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var message, started sql.NullString
		var durationMs sql.NullInt64
		if err := rows.Scan(&rec.Index, &rec.Name, &rec.Dir, &rec.Status, &message, &started, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Message = message.String
		if started.Valid {
			rec.StartedAt, _ = time.Parse(timeLayout, started.String)
		}
		rec.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func newBatchID() string {
	return uuid.New().String()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
