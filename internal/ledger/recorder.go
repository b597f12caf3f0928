package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/virtualphotonics/mcbatch/internal/runner"
)

// Batch describes a batch about to be dispatched.
type Batch struct {
	Template   string
	OutputPath string
	Runs       []string
	Dirs       []string
	Workers    int
}

// Recorder writes the lifecycle of one batch. It implements runner.Observer.
// Write failures inside observer callbacks are kept and reported by Err.
type Recorder struct {
	store *Store
	id    string

	mu  sync.Mutex
	err error
}

var _ runner.Observer = (*Recorder)(nil)

// Begin inserts a batch in state validated together with its pending runs.
func (s *Store) Begin(b Batch) (*Recorder, error) {
	if len(b.Dirs) != 0 && len(b.Dirs) != len(b.Runs) {
		return nil, fmt.Errorf("batch has %d runs but %d directories", len(b.Runs), len(b.Dirs))
	}
	id := newBatchID()
	now := formatTime(time.Now())

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO batches (batch_id, template, outpath, run_count, workers, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nullIfEmpty(b.Template), nullIfEmpty(b.OutputPath), len(b.Runs), b.Workers,
		runner.StateValidated.String(), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	for i, name := range b.Runs {
		dir := name
		if len(b.Dirs) > 0 {
			dir = b.Dirs[i]
		}
		_, err = tx.Exec(
			`INSERT INTO runs (batch_id, run_index, name, dir, status) VALUES (?, ?, ?, ?, ?)`,
			id, i, name, dir, StatusPending,
		)
		if err != nil {
			return nil, fmt.Errorf("insert run %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &Recorder{store: s, id: id}, nil
}

// Record reads the batch row back from the store.
func (r *Recorder) Record() (BatchRecord, error) {
	return r.store.Batch(r.id)
}

// ID returns the batch ID.
func (r *Recorder) ID() string { return r.id }

// SetState moves the batch to state. Terminal states also set finished_at.
func (r *Recorder) SetState(state runner.State) error {
	var finished interface{}
	if state.Terminal() {
		finished = formatTime(time.Now())
	}
	_, err := r.store.db.Exec(
		`UPDATE batches SET state = ?, finished_at = COALESCE(?, finished_at) WHERE batch_id = ?`,
		state.String(), finished, r.id,
	)
	if err != nil {
		return fmt.Errorf("update batch state: %w", err)
	}
	return nil
}

// RunStarted implements runner.Observer.
func (r *Recorder) RunStarted(index int, _, _ string) {
	_, err := r.store.db.Exec(
		`UPDATE runs SET status = ?, started_at = ? WHERE batch_id = ? AND run_index = ?`,
		StatusRunning, formatTime(time.Now()), r.id, index,
	)
	r.keep(err, "mark run started")
}

// RunFinished implements runner.Observer.
func (r *Recorder) RunFinished(res runner.RunResult) {
	status := StatusFailed
	if res.Status.Success {
		status = StatusSucceeded
	}
	var started interface{}
	if !res.Started.IsZero() {
		started = formatTime(res.Started)
	}
	_, err := r.store.db.Exec(
		`UPDATE runs SET status = ?, message = ?, started_at = COALESCE(?, started_at), duration_ms = ?
		 WHERE batch_id = ? AND run_index = ?`,
		status, nullIfEmpty(res.Status.Message), started, res.Duration.Milliseconds(), r.id, res.Index,
	)
	r.keep(err, "record run result")
}

// Err returns the first error from an observer callback.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) keep(err error, what string) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", what, err)
	}
}
