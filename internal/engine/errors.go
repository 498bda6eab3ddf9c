package engine

import "errors"

// Command and timer errors. Invalid commands are reported to the caller and
// leave session state untouched; timer invariant violations are surfaced
// loudly rather than masked.
var (
	// ErrInvalidCommand is returned when a command arrives in a state that
	// does not accept it.
	ErrInvalidCommand = errors.New("command not valid in current state")
	// ErrSessionComplete is returned for any mutation attempted after the
	// session reached its terminal state.
	ErrSessionComplete = errors.New("session already complete")
	// ErrRestActive is returned when a rest interval is begun while one is
	// already counting. Overwriting an active rest would corrupt
	// elapsed-time accounting, so this is treated as an integration bug.
	ErrRestActive = errors.New("rest interval already active")
	// ErrNoActiveSet is returned when a set-scoped command arrives with no
	// set in flight.
	ErrNoActiveSet = errors.New("no active set")
	// ErrNoActiveRest is returned when a rest-scoped command arrives with
	// no rest interval counting.
	ErrNoActiveRest = errors.New("no active rest interval")
	// ErrUnknownExercise is returned when a prescription or swap references
	// an exercise id the catalog cannot resolve.
	ErrUnknownExercise = errors.New("unknown exercise")
)
