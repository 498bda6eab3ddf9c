package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/coachtaylor/transfit/internal/engine"
	"github.com/coachtaylor/transfit/internal/models"
)

type fakePersister struct {
	mu        sync.Mutex
	failNext  bool
	summaries []*models.SessionSummary
}

func (p *fakePersister) RecordSession(_ context.Context, summary *models.SessionSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return errors.New("connection refused")
	}
	p.summaries = append(p.summaries, summary)
	return nil
}

func (p *fakePersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.summaries)
}

func newRegistrySession(t *testing.T) *engine.Session {
	t.Helper()
	sess, err := engine.New(context.Background(), models.WorkoutPrescription{
		Exercises: []models.ExercisePrescription{
			{ExerciseID: "squat", Sets: 1, TargetReps: 5, Format: models.FormatStraightSets},
		},
	}, engine.ResolverFunc(func(context.Context, string) error { return nil }), engine.Options{UserID: 1})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return sess
}

// completeSession drives a one-set session to Complete.
func completeSession(t *testing.T, sess *engine.Session) {
	t.Helper()
	if err := sess.StartSet(); err != nil {
		t.Fatalf("StartSet: %v", err)
	}
	if err := sess.CompleteSet(5, nil, nil); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if sess.Phase() != models.PhaseComplete {
		t.Fatalf("phase = %q, want complete", sess.Phase())
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

// TestRegistryPersistsOnCompletion verifies the summary is written and the
// session dropped once its tick source exits on Complete.
func TestRegistryPersistsOnCompletion(t *testing.T) {
	store := &fakePersister{}
	reg := NewRegistry(store, slog.Default())
	defer reg.Shutdown()

	sess := newRegistrySession(t)
	reg.Start(context.Background(), sess)
	completeSession(t, sess)

	if !waitFor(t, 3*time.Second, func() bool { return store.count() == 1 }) {
		t.Fatal("summary was not persisted after completion")
	}
	if _, ok := reg.Get(sess.ID()); ok {
		t.Error("completed session still in registry after persist")
	}
}

// TestRegistryRetryPersist verifies a failed write keeps the session live
// for an explicit retry.
func TestRegistryRetryPersist(t *testing.T) {
	store := &fakePersister{failNext: true}
	reg := NewRegistry(store, slog.Default())
	defer reg.Shutdown()

	sess := newRegistrySession(t)
	reg.Start(context.Background(), sess)
	completeSession(t, sess)

	if !waitFor(t, 3*time.Second, func() bool { return reg.PersistError(sess.ID()) != "" }) {
		t.Fatal("persist failure was not recorded")
	}
	if _, ok := reg.Get(sess.ID()); !ok {
		t.Fatal("session dropped despite failed persist")
	}

	if err := reg.RetryPersist(context.Background(), sess.ID()); err != nil {
		t.Fatalf("RetryPersist: %v", err)
	}
	if store.count() != 1 {
		t.Errorf("persisted summaries = %d, want 1", store.count())
	}
	if _, ok := reg.Get(sess.ID()); ok {
		t.Error("session still live after successful retry")
	}
}

// TestRegistryRetryPersistIncomplete verifies retry is rejected before the
// session reaches Complete.
func TestRegistryRetryPersistIncomplete(t *testing.T) {
	reg := NewRegistry(&fakePersister{}, slog.Default())
	defer reg.Shutdown()

	sess := newRegistrySession(t)
	reg.Start(context.Background(), sess)

	if err := reg.RetryPersist(context.Background(), sess.ID()); err == nil {
		t.Error("expected error retrying an incomplete session")
	}
}

// TestRegistryRemove verifies removal cancels the tick source without
// persisting anything.
func TestRegistryRemove(t *testing.T) {
	store := &fakePersister{}
	reg := NewRegistry(store, slog.Default())

	sess := newRegistrySession(t)
	reg.Start(context.Background(), sess)

	if !reg.Remove(sess.ID()) {
		t.Fatal("Remove returned false for a live session")
	}
	if reg.Remove(sess.ID()) {
		t.Error("Remove returned true for an already-removed session")
	}
	if store.count() != 0 {
		t.Errorf("persisted summaries = %d, want 0 after discard", store.count())
	}
}
