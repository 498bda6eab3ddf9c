package engine

import (
	"fmt"

	"github.com/coachtaylor/transfit/internal/models"
)

// emomBoundarySeconds is the EMOM cycle length: one set is expected to
// start every minute on the minute.
const emomBoundarySeconds = 60

// SetResult reports the outcome of completing or skipping a set.
type SetResult struct {
	SetNumber      int
	ElapsedSeconds int
}

// SetTimer tracks per-set elapsed time for one exercise at a time, wrapping
// an ElapsedClock with format-specific behavior:
//
//   - straight_sets: no automatic advancement; the caller completes or
//     skips explicitly.
//   - emom: Tick reports a boundary at every multiple of 60 elapsed
//     seconds (never at 0). The boundary stops the clock; it does not
//     start the next set.
//   - amrap: open-ended; only the caller ends the set.
type SetTimer struct {
	format    models.TimingFormat
	clock     ElapsedClock
	setNumber int
	active    bool
}

// NewSetTimer creates a timer for the given format.
func NewSetTimer(format models.TimingFormat) *SetTimer {
	return &SetTimer{format: format}
}

// SetFormat switches the timing format. Only valid between sets.
func (t *SetTimer) SetFormat(format models.TimingFormat) error {
	if t.active {
		return fmt.Errorf("%w: cannot change format mid-set", ErrInvalidCommand)
	}
	t.format = format
	return nil
}

// StartSet begins timing the given set from zero.
func (t *SetTimer) StartSet(setNumber int) error {
	if t.active {
		return fmt.Errorf("%w: set %d already in progress", ErrInvalidCommand, t.setNumber)
	}
	t.setNumber = setNumber
	t.clock.Reset()
	t.clock.Start()
	t.active = true
	return nil
}

// CompleteSet ends the in-flight set, returning its number and elapsed
// time. The per-set clock is zeroed and halted.
func (t *SetTimer) CompleteSet() (SetResult, error) {
	return t.finish()
}

// SkipSet abandons the in-flight set. Same clock semantics as CompleteSet.
func (t *SetTimer) SkipSet() (SetResult, error) {
	return t.finish()
}

func (t *SetTimer) finish() (SetResult, error) {
	if !t.active {
		return SetResult{}, ErrNoActiveSet
	}
	res := SetResult{SetNumber: t.setNumber, ElapsedSeconds: t.clock.ElapsedSeconds()}
	t.clock.Reset()
	t.active = false
	return res, nil
}

// RestartSet zeroes the in-flight set's elapsed time and keeps counting the
// same set number. Already-committed sets are unaffected.
func (t *SetTimer) RestartSet() error {
	if !t.active {
		return ErrNoActiveSet
	}
	t.clock.Reset()
	t.clock.Start()
	return nil
}

// ContinueSet resumes a halted set clock from its retained elapsed value,
// without resetting. Used after a pause or an EMOM boundary stop.
func (t *SetTimer) ContinueSet() error {
	if !t.active {
		return ErrNoActiveSet
	}
	t.clock.Start()
	return nil
}

// Tick advances the per-set clock by one second. For EMOM it reports true
// when a 60-second boundary is crossed; the clock is stopped and the
// caller decides what the boundary means. Boundaries never fire at 0.
func (t *SetTimer) Tick() bool {
	if !t.active || !t.clock.Running() {
		return false
	}
	t.clock.Tick()
	if t.format != models.FormatEMOM {
		return false
	}
	elapsed := t.clock.ElapsedSeconds()
	if elapsed > 0 && elapsed%emomBoundarySeconds == 0 {
		t.clock.Stop()
		return true
	}
	return false
}

// Pause suspends the per-set clock.
func (t *SetTimer) Pause() { t.clock.Pause() }

// Resume continues a paused per-set clock.
func (t *SetTimer) Resume() { t.clock.Resume() }

// Active reports whether a set is in flight (its clock may still be
// stopped, e.g. after an EMOM boundary).
func (t *SetTimer) Active() bool { return t.active }

// Running reports whether the per-set clock is counting.
func (t *SetTimer) Running() bool { return t.clock.Running() && !t.clock.Paused() }

// SetNumber returns the in-flight set number; meaningless when not active.
func (t *SetTimer) SetNumber() int { return t.setNumber }

// ElapsedSeconds returns the in-flight set's elapsed time.
func (t *SetTimer) ElapsedSeconds() int { return t.clock.ElapsedSeconds() }

// Format returns the current timing format.
func (t *SetTimer) Format() models.TimingFormat { return t.format }
