package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/opendata-br/ibgesync/internal/db"
)

// RunEntry represents a row in ibge.pipeline_runs.
type RunEntry struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Fetched     int64      `json:"rows_fetched"`
	Dropped     int64      `json:"rows_dropped"`
	Duplicates  int64      `json:"rows_duplicate"`
	Unmatched   int64      `json:"rows_unmatched"`
	Loaded      int64      `json:"rows_loaded"`
	Pruned      int64      `json:"rows_pruned"`
	Error       string     `json:"error,omitempty"`
}

// RunLog provides read/write access to the ibge.pipeline_runs table.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a run and returns its ID.
func (l *RunLog) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO ibge.pipeline_runs (id, status, started_at)
		 VALUES ($1, 'running', now())`,
		id,
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as successfully completed with its row counts.
func (l *RunLog) Complete(ctx context.Context, runID string, res *Result) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE ibge.pipeline_runs
		 SET status = 'complete', completed_at = now(),
		     rows_fetched = $1, rows_dropped = $2, rows_duplicate = $3,
		     rows_unmatched = $4, rows_loaded = $5, rows_pruned = $6
		 WHERE id = $7`,
		res.Fetched, res.Dropped, res.Duplicates, res.Unmatched, res.Loaded, res.Pruned, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (l *RunLog) Fail(ctx context.Context, runID string, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE ibge.pipeline_runs
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (l *RunLog) List(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at,
		        rows_fetched, rows_dropped, rows_duplicate,
		        rows_unmatched, rows_loaded, rows_pruned, error
		 FROM ibge.pipeline_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var errStr *string
		if err := rows.Scan(&e.ID, &e.Status, &e.StartedAt, &e.CompletedAt,
			&e.Fetched, &e.Dropped, &e.Duplicates, &e.Unmatched, &e.Loaded, &e.Pruned, &errStr); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
