// Package engine drives a lifter through a prescribed workout: phase
// sequencing, per-set timing, rest intervals, safety interrupts, and the
// append-only set ledger.
//
// The engine renders nothing and performs no I/O. Commands flow in,
// snapshots flow out, and all timer-dependent components advance from a
// single one-second tick so they can never race each other.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/models"
)

// Resolver confirms exercise ids against the catalog. A session cannot be
// constructed referencing an id the resolver rejects.
type Resolver interface {
	Resolve(ctx context.Context, exerciseID string) error
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, exerciseID string) error

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, exerciseID string) error {
	return f(ctx, exerciseID)
}

// Options configures session construction.
type Options struct {
	// UserID is carried into the final summary for persistence.
	UserID int
	// Precondition gates safety checkpoints; nil means always fire.
	Precondition Precondition
	// Now overrides the timestamp source. Nil means time.Now.
	Now func() time.Time
}

// Session is the per-workout state machine: WarmUp → Main → CoolDown →
// Complete, with optional phases collapsed. One Session owns its mutable
// state exclusively; the mutex makes command handling safe against the
// concurrent tick source, and snapshots are copies safe to read anywhere.
type Session struct {
	mu sync.Mutex

	id           uuid.UUID
	userID       int
	prescription models.WorkoutPrescription
	startedAt    time.Time
	now          func() time.Time

	phase        models.Phase
	clock        ElapsedClock
	timer        *SetTimer
	rest         *RestController
	safety       *SafetyMonitor
	ledger       Ledger
	exerciseIdx  int
	setNumber    int
	warmUpDone   []bool
	coolDownDone []bool

	// effective holds the exercise id actually performed at each index;
	// it diverges from the prescription only after a swap.
	effective   []string
	skipped     map[string]bool
	flagged     map[string]bool
	swaps       map[string]string
	suggestions map[string]models.RegressionSuggestion

	// restAdvancesExercise marks whether the active rest interval sits
	// between exercises (advance on expiry) or between sets of the same
	// exercise (expiry only unblocks the next set).
	restAdvancesExercise bool

	pendingCheckpoints []models.FiredCheckpoint
	completedAt        time.Time
	summary            *models.SessionSummary
}

// New constructs a session from an immutable prescription, resolving every
// referenced exercise up front. An unresolvable id or an empty exercise
// list is fatal: the session never starts.
//
// The session clock starts immediately; drive it with a Runner or by
// calling Tick once per second.
func New(ctx context.Context, prescription models.WorkoutPrescription, resolver Resolver, opts Options) (*Session, error) {
	if err := prescription.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prescription: %w", err)
	}
	if resolver == nil {
		return nil, fmt.Errorf("invalid prescription: nil catalog resolver")
	}
	for _, ex := range prescription.Exercises {
		if err := resolver.Resolve(ctx, ex.ExerciseID); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnknownExercise, ex.ExerciseID, err)
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		id:           uuid.New(),
		userID:       opts.UserID,
		prescription: prescription,
		startedAt:    now(),
		now:          now,
		timer:        NewSetTimer(prescription.Exercises[0].Format),
		rest:         &RestController{},
		safety:       NewSafetyMonitor(prescription.SafetyCheckpoints, opts.Precondition),
		effective:    make([]string, len(prescription.Exercises)),
		skipped:      make(map[string]bool),
		flagged:      make(map[string]bool),
		swaps:        make(map[string]string),
		suggestions:  make(map[string]models.RegressionSuggestion),
		setNumber:    1,
	}
	for i, ex := range prescription.Exercises {
		s.effective[i] = ex.ExerciseID
	}
	if len(prescription.WarmUp) > 0 {
		s.phase = models.PhaseWarmUp
		s.warmUpDone = make([]bool, len(prescription.WarmUp))
	} else {
		s.phase = models.PhaseMain
	}
	if len(prescription.CoolDown) > 0 {
		s.coolDownDone = make([]bool, len(prescription.CoolDown))
	}
	s.clock.Start()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Tick advances the session by one second. Within a single tick the safety
// monitor runs first, then the set timer's automatic boundary check, then
// the rest countdown, so a checkpoint can never be starved by an EMOM
// boundary landing on the same second.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Terminal() {
		return
	}
	if !s.clock.Running() || s.clock.Paused() {
		return
	}
	s.clock.Tick()

	if s.phase != models.PhaseMain {
		return
	}
	for _, cp := range s.safety.Evaluate(s.clock.ElapsedSeconds()) {
		s.pendingCheckpoints = append(s.pendingCheckpoints, models.FiredCheckpoint{
			Checkpoint: cp,
			FiredAt:    s.now(),
		})
	}
	if boundary := s.timer.Tick(); boundary {
		// EMOM contract: the boundary completes the set silently at the
		// prescribed target, halts the clock, and waits. The next set
		// never starts automatically.
		_, _ = s.timer.finish()
		s.completeSetLocked(s.currentExercise().TargetReps, nil, nil, false)
	}
	if _, expired := s.rest.Tick(); expired {
		s.finishRestLocked()
	}
}

// Pause suspends the session clock and, with it, every dependent timer.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Terminal() {
		return ErrSessionComplete
	}
	s.clock.Pause()
	return nil
}

// Resume continues a paused session.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Terminal() {
		return ErrSessionComplete
	}
	s.clock.Resume()
	return nil
}

// CompleteWarmUpItem marks one warm-up item done. Items can be checked off
// in any order; checking an already-done item is a no-op.
func (s *Session) CompleteWarmUpItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.PhaseWarmUp {
		return fmt.Errorf("%w: not in warm-up", ErrInvalidCommand)
	}
	if index < 0 || index >= len(s.warmUpDone) {
		return fmt.Errorf("%w: warm-up item %d out of range", ErrInvalidCommand, index)
	}
	s.warmUpDone[index] = true
	return nil
}

// FinishWarmUp transitions WarmUp → Main once every item is checked off.
func (s *Session) FinishWarmUp() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.PhaseWarmUp {
		return fmt.Errorf("%w: not in warm-up", ErrInvalidCommand)
	}
	for i, done := range s.warmUpDone {
		if !done {
			return fmt.Errorf("%w: warm-up item %d not complete", ErrInvalidCommand, i)
		}
	}
	s.phase = models.PhaseMain
	return nil
}

// StartSet begins timing the current set. Rejected while resting, while a
// set is already in flight, or outside the Main phase.
func (s *Session) StartSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if s.rest.Active() {
		return fmt.Errorf("%w: rest in progress", ErrInvalidCommand)
	}
	return s.timer.StartSet(s.setNumber)
}

// RestartSet zeroes the in-flight set's elapsed time. Already-committed
// sets in the ledger are never discarded.
func (s *Session) RestartSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	return s.timer.RestartSet()
}

// ContinueSet resumes a halted set clock without resetting, e.g. after an
// EMOM boundary stop or a pause.
func (s *Session) ContinueSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	return s.timer.ContinueSet()
}

// CompleteSet records the in-flight set with the supplied reps, optional
// weight, and optional RPE, then advances toward the next set, rest
// interval, or phase. The next set never starts automatically.
func (s *Session) CompleteSet(reps int, weight *float64, rpe *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if !s.timer.Active() {
		return ErrNoActiveSet
	}
	if reps < 0 {
		return fmt.Errorf("%w: reps must be >= 0, got %d", ErrInvalidCommand, reps)
	}
	if rpe != nil && (*rpe < 1 || *rpe > 10) {
		return fmt.Errorf("%w: rpe must be 1-10, got %d", ErrInvalidCommand, *rpe)
	}
	if _, err := s.timer.CompleteSet(); err != nil {
		return err
	}
	s.completeSetLocked(reps, weight, rpe, false)
	return nil
}

// SkipSet records the in-flight set as skipped. No reps, weight, or RPE are
// required; the skipped entry counts toward no totals.
func (s *Session) SkipSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if !s.timer.Active() {
		return ErrNoActiveSet
	}
	if _, err := s.timer.SkipSet(); err != nil {
		return err
	}
	s.completeSetLocked(0, nil, nil, true)
	return nil
}

// completeSetLocked appends a ledger entry for the current set and walks
// the set/exercise counters forward. Callers hold the mutex and have
// already ended the set timer (or the EMOM boundary has).
func (s *Session) completeSetLocked(reps int, weight *float64, rpe *int, skippedSet bool) {
	set := models.CompletedSet{
		ExerciseIndex: s.exerciseIdx,
		ExerciseID:    s.effective[s.exerciseIdx],
		SetNumber:     s.setNumber,
		CompletedAt:   s.now(),
		Skipped:       skippedSet,
	}
	if !skippedSet {
		set.Reps = reps
		set.Weight = weight
		set.RPE = rpe
	}
	s.ledger.Append(set)

	ex := s.currentExercise()
	if s.setNumber < ex.Sets {
		s.setNumber++
		// Rest between sets, except EMOM where the minute cadence is the
		// rest. Expiry just unblocks the next explicit start.
		if ex.Format != models.FormatEMOM && ex.RestSeconds > 0 {
			// Begin cannot fail here: the rest controller is idle whenever
			// a set is in flight (the two never overlap).
			_ = s.rest.Begin(ex.RestSeconds)
			s.restAdvancesExercise = false
		}
		return
	}
	s.finishExerciseLocked()
}

// finishExerciseLocked handles the moment after an exercise's last set:
// start rest if more exercises remain, otherwise leave Main. No rest is
// started after the final exercise.
func (s *Session) finishExerciseLocked() {
	if s.exerciseIdx+1 < len(s.prescription.Exercises) {
		restSecs := s.currentExercise().RestSeconds
		if restSecs > 0 {
			_ = s.rest.Begin(restSecs)
			s.restAdvancesExercise = true
			return
		}
		s.advanceExerciseLocked()
		return
	}
	s.leaveMainLocked()
}

// finishRestLocked handles rest expiry or skip: between exercises it
// advances the exercise index; between sets it only unblocks StartSet.
func (s *Session) finishRestLocked() {
	s.rest.Clear()
	if s.restAdvancesExercise {
		s.restAdvancesExercise = false
		s.advanceExerciseLocked()
	}
}

// advanceExerciseLocked moves to set 1 of the next exercise after rest
// expires or is skipped.
func (s *Session) advanceExerciseLocked() {
	s.exerciseIdx++
	s.setNumber = 1
	_ = s.timer.SetFormat(s.currentExercise().Format)
}

// leaveMainLocked transitions Main → CoolDown, or straight to Complete when
// no cool-down is prescribed.
func (s *Session) leaveMainLocked() {
	if len(s.prescription.CoolDown) > 0 {
		s.phase = models.PhaseCoolDown
		return
	}
	s.completeLocked()
}

// SkipExercise marks the entire current exercise as skipped and advances
// immediately, bypassing any remaining sets and rest. During the rest that
// follows an exercise's last set, the skip targets the upcoming exercise;
// the finished one already ran to completion.
func (s *Session) SkipExercise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if s.rest.Active() && s.restAdvancesExercise {
		s.rest.Clear()
		s.restAdvancesExercise = false
		s.advanceExerciseLocked()
	}
	s.skipped[s.prescription.Exercises[s.exerciseIdx].ExerciseID] = true
	if s.timer.Active() {
		_, _ = s.timer.SkipSet()
	}
	s.rest.Clear()
	s.restAdvancesExercise = false
	if s.exerciseIdx+1 < len(s.prescription.Exercises) {
		s.advanceExerciseLocked()
		return nil
	}
	s.leaveMainLocked()
	return nil
}

// SwapExercise replaces the current exercise with a catalog-equivalent
// alternative while preserving the prescribed sets, reps, rest, and
// format. The caller resolves newID against the catalog before calling;
// the swap mapping is keyed by the original prescription id.
func (s *Session) SwapExercise(newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if newID == "" {
		return fmt.Errorf("%w: empty replacement id", ErrInvalidCommand)
	}
	if s.timer.Active() {
		return fmt.Errorf("%w: cannot swap mid-set", ErrInvalidCommand)
	}
	original := s.prescription.Exercises[s.exerciseIdx].ExerciseID
	s.swaps[original] = newID
	s.effective[s.exerciseIdx] = newID
	return nil
}

// FlagPain records a pain flag for an exercise in the prescription. The
// engine does not modify the remaining prescription itself; the advisory
// collaborator's suggestion arrives later via RecordSuggestion.
func (s *Session) FlagPain(exerciseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Terminal() {
		return ErrSessionComplete
	}
	if !s.knownExerciseLocked(exerciseID) {
		return fmt.Errorf("%w: %q not in this session", ErrUnknownExercise, exerciseID)
	}
	s.flagged[exerciseID] = true
	return nil
}

// RecordSuggestion attaches an advisory regression suggestion for the UI to
// apply or ignore. Purely advisory; never required to reach Complete.
func (s *Session) RecordSuggestion(sug models.RegressionSuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Terminal() {
		return ErrSessionComplete
	}
	s.suggestions[sug.ExerciseID] = sug
	return nil
}

// SkipRest forces the current rest interval to expire immediately. Between
// exercises this advances to the next exercise; between sets of one
// exercise it only unblocks the next StartSet.
func (s *Session) SkipRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	if err := s.rest.Skip(); err != nil {
		return err
	}
	s.finishRestLocked()
	return nil
}

// ExtendRest adds seconds to the current rest interval.
func (s *Session) ExtendRest(seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireMain(); err != nil {
		return err
	}
	return s.rest.Extend(seconds)
}

// DismissSafetyCheckpoint acknowledges the oldest pending checkpoint.
func (s *Session) DismissSafetyCheckpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pendingCheckpoints) == 0 {
		return fmt.Errorf("%w: no pending safety checkpoint", ErrInvalidCommand)
	}
	s.pendingCheckpoints = s.pendingCheckpoints[1:]
	return nil
}

// CompleteCoolDownItem marks one cool-down item done, mirroring warm-up.
func (s *Session) CompleteCoolDownItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.PhaseCoolDown {
		return fmt.Errorf("%w: not in cool-down", ErrInvalidCommand)
	}
	if index < 0 || index >= len(s.coolDownDone) {
		return fmt.Errorf("%w: cool-down item %d out of range", ErrInvalidCommand, index)
	}
	s.coolDownDone[index] = true
	return nil
}

// FinishCoolDown transitions CoolDown → Complete once every item is
// checked off.
func (s *Session) FinishCoolDown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.PhaseCoolDown {
		return fmt.Errorf("%w: not in cool-down", ErrInvalidCommand)
	}
	for i, done := range s.coolDownDone {
		if !done {
			return fmt.Errorf("%w: cool-down item %d not complete", ErrInvalidCommand, i)
		}
	}
	s.completeLocked()
	return nil
}

// completeLocked freezes the session: clock stopped, ledger frozen, summary
// built. No further mutation is accepted.
func (s *Session) completeLocked() {
	s.clock.Stop()
	s.phase = models.PhaseComplete
	s.completedAt = s.now()
	s.summary = s.buildSummaryLocked()
}

func (s *Session) buildSummaryLocked() *models.SessionSummary {
	sum := &models.SessionSummary{
		SessionID:    s.id,
		UserID:       s.userID,
		StartedAt:    s.startedAt,
		CompletedAt:  s.completedAt,
		TotalSeconds: s.clock.ElapsedSeconds(),
		Totals:       s.ledger.Totals(),
	}
	for i, ex := range s.prescription.Exercises {
		// Collect by slot, not effective id: a mid-exercise swap leaves
		// earlier sets recorded under the original id.
		res := models.ExerciseResult{
			ExerciseID:    ex.ExerciseID,
			Skipped:       s.skipped[ex.ExerciseID],
			PainFlagged:   s.flagged[ex.ExerciseID] || s.flagged[s.effective[i]],
			CompletedSets: s.ledger.ForExerciseIndex(i),
		}
		if to, ok := s.swaps[ex.ExerciseID]; ok {
			res.SwappedTo = to
		}
		sum.Exercises = append(sum.Exercises, res)
	}
	return sum
}

// Summary returns the frozen session summary. Only available after the
// session reaches Complete; the summary stays available for persistence
// retries.
func (s *Session) Summary() (*models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return nil, fmt.Errorf("%w: session not complete", ErrInvalidCommand)
	}
	return s.summary, nil
}

// Phase returns the current phase.
func (s *Session) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns a consistent copy of the session state for rendering.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.SessionSnapshot{
		SessionID:         s.id,
		Phase:             s.phase,
		ElapsedSeconds:    s.clock.ElapsedSeconds(),
		ClockRunning:      s.clock.Running(),
		ClockPaused:       s.clock.Paused(),
		ExerciseIndex:     s.exerciseIdx,
		SetNumber:         s.setNumber,
		SetElapsedSeconds: s.timer.ElapsedSeconds(),
		SetActive:         s.timer.Active(),
		RestActive:        s.rest.Active(),
		RestRemaining:     s.rest.Remaining(),
		Ledger:            s.ledger.All(),
		Totals:            s.ledger.Totals(),
	}
	if s.exerciseIdx < len(s.effective) {
		snap.ExerciseID = s.effective[s.exerciseIdx]
	}
	if len(s.warmUpDone) > 0 {
		snap.WarmUpDone = append([]bool(nil), s.warmUpDone...)
	}
	if len(s.coolDownDone) > 0 {
		snap.CoolDownDone = append([]bool(nil), s.coolDownDone...)
	}
	for id := range s.skipped {
		snap.SkippedExercises = append(snap.SkippedExercises, id)
	}
	for id := range s.flagged {
		snap.FlaggedExercises = append(snap.FlaggedExercises, id)
	}
	if len(s.swaps) > 0 {
		snap.Swaps = make(map[string]string, len(s.swaps))
		for k, v := range s.swaps {
			snap.Swaps[k] = v
		}
	}
	if len(s.suggestions) > 0 {
		snap.Suggestions = make(map[string]models.RegressionSuggestion, len(s.suggestions))
		for k, v := range s.suggestions {
			snap.Suggestions[k] = v
		}
	}
	if len(s.pendingCheckpoints) > 0 {
		cp := s.pendingCheckpoints[0]
		snap.PendingCheckpoint = &cp
	}
	return snap
}

func (s *Session) requireMain() error {
	if s.phase.Terminal() {
		return ErrSessionComplete
	}
	if s.phase != models.PhaseMain {
		return fmt.Errorf("%w: not in main phase (phase=%s)", ErrInvalidCommand, s.phase)
	}
	return nil
}

func (s *Session) currentExercise() models.ExercisePrescription {
	return s.prescription.Exercises[s.exerciseIdx]
}

func (s *Session) knownExerciseLocked(exerciseID string) bool {
	for i, ex := range s.prescription.Exercises {
		if ex.ExerciseID == exerciseID || s.effective[i] == exerciseID {
			return true
		}
	}
	return false
}
