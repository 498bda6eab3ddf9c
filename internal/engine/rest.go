package engine

import "fmt"

// RestController counts down the interval between exercises. At most one
// rest interval is active at a time; beginning a second one is an
// integration error, not a silent overwrite.
type RestController struct {
	active    bool
	expired   bool
	remaining int
	elapsed   int
}

// Begin starts a countdown of durationSeconds.
func (r *RestController) Begin(durationSeconds int) error {
	if r.active && !r.expired {
		return fmt.Errorf("%w: %d seconds remaining", ErrRestActive, r.remaining)
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("%w: rest duration must be > 0, got %d", ErrInvalidCommand, durationSeconds)
	}
	r.active = true
	r.expired = false
	r.remaining = durationSeconds
	r.elapsed = 0
	return nil
}

// Tick counts down one second. It returns the remaining seconds and
// whether the interval expired on this exact tick; the expiry signal is
// delivered at most once per interval.
func (r *RestController) Tick() (remaining int, justExpired bool) {
	if !r.active || r.expired {
		return r.remaining, false
	}
	r.remaining--
	r.elapsed++
	if r.remaining <= 0 {
		r.remaining = 0
		r.expired = true
		return 0, true
	}
	return r.remaining, false
}

// Skip forces immediate expiry regardless of remaining time.
func (r *RestController) Skip() error {
	if !r.active || r.expired {
		return ErrNoActiveRest
	}
	r.remaining = 0
	r.expired = true
	return nil
}

// Extend adds seconds to the remaining count. Elapsed history is kept.
func (r *RestController) Extend(seconds int) error {
	if !r.active || r.expired {
		return ErrNoActiveRest
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: extension must be > 0 seconds, got %d", ErrInvalidCommand, seconds)
	}
	r.remaining += seconds
	return nil
}

// Clear returns the controller to idle after the owner has handled expiry.
func (r *RestController) Clear() {
	r.active = false
	r.expired = false
	r.remaining = 0
	r.elapsed = 0
}

// Active reports whether an interval is counting (not yet cleared).
func (r *RestController) Active() bool { return r.active && !r.expired }

// IsExpired reports whether the current interval has run out.
func (r *RestController) IsExpired() bool { return r.expired }

// Remaining returns the seconds left in the current interval.
func (r *RestController) Remaining() int { return r.remaining }

// ElapsedSeconds returns how long the current interval has been counting,
// including time added by Extend.
func (r *RestController) ElapsedSeconds() int { return r.elapsed }
