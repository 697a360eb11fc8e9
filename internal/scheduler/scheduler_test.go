package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/pipeline"
)

type fakeStore struct {
	userIDs  []uuid.UUID
	listErr  error
	released int64
}

func (s *fakeStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.userIDs, s.listErr
}

func (s *fakeStore) ReleaseStaleRuns(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.released, nil
}

type fakeRunner struct {
	mu      sync.Mutex
	ran     []uuid.UUID
	failFor map[uuid.UUID]error
	block   chan struct{}
}

func (r *fakeRunner) RunForUser(ctx context.Context, userID uuid.UUID) (*pipeline.Result, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.ran = append(r.ran, userID)
	r.mu.Unlock()
	if err := r.failFor[userID]; err != nil {
		return nil, err
	}
	return &pipeline.Result{RunID: uuid.New(), Fetched: 5, Matched: 2}, nil
}

func TestRunAllSequential(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	store := &fakeStore{userIDs: users}
	runner := &fakeRunner{}

	s := New(store, runner, 1, time.Hour, false)
	s.RunAll(context.Background())

	assert.Equal(t, users, runner.ran, "users run in listing order")

	status := s.Status()
	require.NotNil(t, status.LastRunAt)
	assert.Zero(t, status.LastErrors)
	assert.False(t, status.Running)
}

func TestRunAllOneUserFailureDoesNotStopOthers(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	store := &fakeStore{userIDs: users}
	runner := &fakeRunner{failFor: map[uuid.UUID]error{users[1]: errors.New("db down")}}

	s := New(store, runner, 1, time.Hour, false)
	s.RunAll(context.Background())

	assert.Len(t, runner.ran, 3)
	assert.Equal(t, 1, s.Status().LastErrors)
}

func TestRunAllSkipsOverlappingSweep(t *testing.T) {
	users := []uuid.UUID{uuid.New()}
	store := &fakeStore{userIDs: users}
	runner := &fakeRunner{block: make(chan struct{})}

	s := New(store, runner, 1, time.Hour, false)

	done := make(chan struct{})
	go func() {
		s.RunAll(context.Background())
		close(done)
	}()

	// wait for the first sweep to be marked in progress
	require.Eventually(t, func() bool {
		return s.Status().Running
	}, time.Second, 5*time.Millisecond)

	// second sweep must bail out instead of running users again
	s.RunAll(context.Background())

	close(runner.block)
	<-done

	assert.Len(t, runner.ran, 1)
}

func TestRunAllCancelledContextStopsSweep(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New()}
	store := &fakeStore{userIDs: users}
	runner := &fakeRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(store, runner, 1, time.Hour, false)
	s.RunAll(ctx)

	assert.Empty(t, runner.ran)
}

func TestStartRegistersCronEntry(t *testing.T) {
	store := &fakeStore{}
	runner := &fakeRunner{}

	s := New(store, runner, 2, time.Hour, false)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	status := s.Status()
	assert.Equal(t, "@every 2h", status.Spec)
	require.NotNil(t, status.NextRunAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *status.NextRunAt, time.Minute)
}
