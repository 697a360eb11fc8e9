// Package scheduler wires up the cron job that periodically runs the
// aggregation pipeline for every registered user.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/nexora/opportunity-agent/internal/pipeline"
)

// Store lists the users to run for and clears stale run records.
// *db.DB satisfies it.
type Store interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	ReleaseStaleRuns(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Runner executes a pipeline run for one user. *pipeline.Pipeline
// satisfies it.
type Runner interface {
	RunForUser(ctx context.Context, userID uuid.UUID) (*pipeline.Result, error)
}

// Status describes the scheduler for inspection endpoints.
type Status struct {
	Running    bool       `json:"running"`
	Spec       string     `json:"spec"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	NextRunAt  *time.Time `json:"next_run_at,omitempty"`
	LastErrors int        `json:"last_errors"`
}

// Scheduler wraps robfig/cron and manages the per-user pipeline loop.
// Users run sequentially within one sweep; missed ticks are not backfilled.
type Scheduler struct {
	cron        *cron.Cron
	store       Store
	runner      Runner
	spec        string
	staleRunAge time.Duration
	runOnStart  bool

	mu         sync.Mutex
	entryID    cron.EntryID
	sweeping   bool
	lastRunAt  *time.Time
	lastErrors int
}

// New creates a Scheduler that fires every intervalHours hours.
func New(store Store, runner Runner, intervalHours int, staleRunAge time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:       store,
		runner:      runner,
		spec:        fmt.Sprintf("@every %dh", intervalHours),
		staleRunAge: staleRunAge,
		runOnStart:  runOnStart,
	}
}

// Start registers the job and starts the scheduler. When configured it
// also runs one sweep immediately so new deployments have data without
// waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.spec, func() {
		s.RunAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.mu.Lock()
	s.entryID = entryID
	s.mu.Unlock()

	s.cron.Start()
	log.Printf("[scheduler] cron started, spec: %s", s.spec)

	if s.runOnStart {
		go s.RunAll(ctx)
	}
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] cron stopped")
}

// RunAll executes one sweep over all registered users. Overlapping sweeps
// are skipped rather than queued; a per-user guard inside the store still
// protects individual users from concurrent runs triggered elsewhere.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		log.Println("[scheduler] sweep already in progress, skipping tick")
		return
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	start := time.Now()
	log.Println("[scheduler] sweep started")

	if released, err := s.store.ReleaseStaleRuns(ctx, s.staleRunAge); err != nil {
		log.Printf("[scheduler] failed to release stale runs: %v", err)
	} else if released > 0 {
		log.Printf("[scheduler] released %d stale run(s)", released)
	}

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		log.Printf("[scheduler] failed to list users: %v", err)
		s.recordSweep(start, 1)
		return
	}
	if len(userIDs) == 0 {
		log.Println("[scheduler] no registered users, nothing to run")
		s.recordSweep(start, 0)
		return
	}

	failures := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			log.Printf("[scheduler] sweep cancelled: %v", ctx.Err())
			break
		}
		result, err := s.runner.RunForUser(ctx, userID)
		if err != nil {
			failures++
			log.Printf("[scheduler] run failed for user %s: %v", userID, err)
			continue
		}
		if result.Skipped {
			continue
		}
		log.Printf("[scheduler] run %s for user %s: fetched=%d deduped=%d matched=%d",
			result.RunID, userID, result.Fetched, result.Deduped, result.Matched)
	}

	s.recordSweep(start, failures)
	log.Printf("[scheduler] sweep complete in %s, %d user(s), %d failure(s)",
		time.Since(start).Round(time.Millisecond), len(userIDs), failures)
}

func (s *Scheduler) recordSweep(start time.Time, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := start
	s.lastRunAt = &at
	s.lastErrors = failures
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:    s.sweeping,
		Spec:       s.spec,
		LastRunAt:  s.lastRunAt,
		LastErrors: s.lastErrors,
	}
	if entry := s.cron.Entry(s.entryID); entry.Valid() && !entry.Next.IsZero() {
		next := entry.Next
		status.NextRunAt = &next
	}
	return status
}
