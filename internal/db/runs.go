package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PipelineRun records one per-user pipeline execution. A partial unique
// index on (user_id) WHERE status = 'running' makes the running row itself
// the in-flight guard.
type PipelineRun struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	Fetched     int        `json:"fetched"`
	Matched     int        `json:"matched"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TryStartRun records the start of a run for a user. It returns ok=false
// without error when a run for that user is already in flight.
func (db *DB) TryStartRun(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (user_id, status) VALUES ($1, $2) RETURNING id`,
		userID, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, persistErr("start run", err)
	}
	return id, true, nil
}

// CompleteRun finalizes a run record with its outcome.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, fetched, matched int, runErr error) error {
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, fetched = $2, matched = $3, error = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, fetched, matched, errMsg, runID,
	)
	return persistErr("complete run", err)
}

// LastRun returns a user's most recent run, or nil when none exists.
func (db *DB) LastRun(ctx context.Context, userID uuid.UUID) (*PipelineRun, error) {
	var r PipelineRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, status, fetched, matched, COALESCE(error, ''), started_at, completed_at
		 FROM pipeline_runs WHERE user_id = $1
		 ORDER BY started_at DESC LIMIT 1`,
		userID,
	).Scan(&r.ID, &r.UserID, &r.Status, &r.Fetched, &r.Matched, &r.Error, &r.StartedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("last run", err)
	}
	return &r, nil
}

// ReleaseStaleRuns fails running records older than maxAge. A crashed
// process would otherwise hold its user's guard forever.
func (db *DB) ReleaseStaleRuns(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, error = 'released stale run', completed_at = NOW()
		 WHERE status = $2 AND started_at < NOW() - ($3 * interval '1 second')`,
		RunStatusFailed, RunStatusRunning, maxAge.Seconds(),
	)
	if err != nil {
		return 0, persistErr("release stale runs", err)
	}
	return tag.RowsAffected(), nil
}
