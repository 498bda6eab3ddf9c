package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/engine"
	"github.com/coachtaylor/transfit/internal/models"
)

// Persister writes a completed session summary to durable storage.
type Persister interface {
	RecordSession(ctx context.Context, summary *models.SessionSummary) error
}

// Registry tracks live sessions and their tick sources. Each session gets
// one Runner; when the runner exits on Complete, the registry persists the
// summary. A session that persisted cleanly is dropped from the registry;
// history queries take over from there. A failed persist keeps the entry
// around so the client can retry.
type Registry struct {
	mu      sync.Mutex
	store   Persister
	log     *slog.Logger
	entries map[uuid.UUID]*registryEntry
}

type registryEntry struct {
	sess       *engine.Session
	runner     *engine.Runner
	persistErr string
}

// NewRegistry creates an empty registry. store may be nil, in which case
// completed sessions are dropped without persisting (useful in tests).
func NewRegistry(store Persister, log *slog.Logger) *Registry {
	return &Registry{
		store:   store,
		log:     log,
		entries: make(map[uuid.UUID]*registryEntry),
	}
}

// Start registers a session and begins ticking it. The runner inherits ctx,
// so cancelling it stops every live session.
func (r *Registry) Start(ctx context.Context, sess *engine.Session) {
	entry := &registryEntry{
		sess:   sess,
		runner: engine.StartRunner(ctx, sess),
	}

	r.mu.Lock()
	r.entries[sess.ID()] = entry
	r.mu.Unlock()

	go r.watchCompletion(sess.ID(), entry)
}

// watchCompletion waits for the tick source to exit, then persists the
// summary if the session actually completed (as opposed to being cancelled).
func (r *Registry) watchCompletion(id uuid.UUID, entry *registryEntry) {
	<-entry.runner.Done()

	if !entry.sess.Phase().Terminal() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.persist(ctx, id, entry); err != nil {
		r.log.Error("session persist failed", "session_id", id, "error", err)
	}
}

func (r *Registry) persist(ctx context.Context, id uuid.UUID, entry *registryEntry) error {
	summary, err := entry.sess.Summary()
	if err != nil {
		return fmt.Errorf("reading summary: %w", err)
	}

	if r.store != nil {
		if err := r.store.RecordSession(ctx, summary); err != nil {
			r.mu.Lock()
			entry.persistErr = err.Error()
			r.mu.Unlock()
			return err
		}
	}

	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	r.log.Info("session persisted", "session_id", id, "total_sets", summary.Totals.TotalSets)
	return nil
}

// RetryPersist re-attempts the summary write for a completed session that
// failed to persist.
func (r *Registry) RetryPersist(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no live session %s", id)
	}
	if !entry.sess.Phase().Terminal() {
		return fmt.Errorf("session %s has not completed", id)
	}
	return r.persist(ctx, id, entry)
}

// Get returns the live session with the given id.
func (r *Registry) Get(id uuid.UUID) (*engine.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return entry.sess, true
}

// PersistError returns the recorded persist failure for a session, empty
// when none has occurred.
func (r *Registry) PersistError(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[id]; ok {
		return entry.persistErr
	}
	return ""
}

// Snapshots returns a snapshot of every live session.
func (r *Registry) Snapshots() []models.SessionSnapshot {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	snaps := make([]models.SessionSnapshot, 0, len(entries))
	for _, e := range entries {
		snaps = append(snaps, e.sess.Snapshot())
	}
	return snaps
}

// Remove cancels a session's tick source and drops it without persisting.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	entry.runner.Stop()
	return true
}

// Shutdown stops every live session's tick source.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.runner.Stop()
	}
}
