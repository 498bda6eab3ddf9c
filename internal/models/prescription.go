package models

import "fmt"

// TimingFormat controls how a set's clock behaves.
type TimingFormat string

const (
	// FormatStraightSets runs the clock until the lifter explicitly
	// completes or skips the set.
	FormatStraightSets TimingFormat = "straight_sets"
	// FormatEMOM fires a boundary every 60 elapsed seconds; the boundary
	// stops the clock without starting the next set.
	FormatEMOM TimingFormat = "emom"
	// FormatAMRAP is open-ended; only the lifter ends the set.
	FormatAMRAP TimingFormat = "amrap"
)

// Valid reports whether f is a known timing format.
func (f TimingFormat) Valid() bool {
	switch f {
	case FormatStraightSets, FormatEMOM, FormatAMRAP:
		return true
	}
	return false
}

// ExercisePrescription is one prescribed exercise: how many sets, the rep
// target per set, rest between this exercise and the next, and the timing
// format driving the set clock.
type ExercisePrescription struct {
	ExerciseID  string       `json:"exercise_id"`
	Sets        int          `json:"sets"`
	TargetReps  int          `json:"target_reps"`
	RestSeconds int          `json:"rest_seconds"`
	Format      TimingFormat `json:"format"`
}

// MovementPrescription is a warm-up or cool-down item. Either a duration or
// a rep target is set, never both required.
type MovementPrescription struct {
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	TargetReps      int    `json:"target_reps,omitempty"`
}

// SafetyCheckpoint is a one-time interrupt that fires when total session
// elapsed time crosses the trigger, gated by a caller-supplied precondition
// (e.g. the lifter has opted into binder-safety reminders).
type SafetyCheckpoint struct {
	TriggerElapsedSeconds int    `json:"trigger_elapsed_seconds"`
	Message               string `json:"message"`
}

// WorkoutPrescription is the immutable input to a session. Created once at
// session start and never mutated; swaps and skips are recorded in session
// state, not here.
type WorkoutPrescription struct {
	Exercises         []ExercisePrescription `json:"exercises"`
	WarmUp            []MovementPrescription `json:"warm_up,omitempty"`
	CoolDown          []MovementPrescription `json:"cool_down,omitempty"`
	SafetyCheckpoints []SafetyCheckpoint     `json:"safety_checkpoints,omitempty"`
}

// Validate checks the construction-error conditions: a session cannot start
// from an empty exercise list or a malformed exercise entry.
func (p *WorkoutPrescription) Validate() error {
	if len(p.Exercises) == 0 {
		return fmt.Errorf("prescription has no exercises")
	}
	for i, ex := range p.Exercises {
		if ex.ExerciseID == "" {
			return fmt.Errorf("exercise %d: missing exercise id", i)
		}
		if ex.Sets < 1 {
			return fmt.Errorf("exercise %q: sets must be >= 1, got %d", ex.ExerciseID, ex.Sets)
		}
		if ex.TargetReps < 0 {
			return fmt.Errorf("exercise %q: target reps must be >= 0, got %d", ex.ExerciseID, ex.TargetReps)
		}
		if ex.RestSeconds < 0 {
			return fmt.Errorf("exercise %q: rest seconds must be >= 0, got %d", ex.ExerciseID, ex.RestSeconds)
		}
		if !ex.Format.Valid() {
			return fmt.Errorf("exercise %q: unknown timing format %q", ex.ExerciseID, ex.Format)
		}
	}
	for i, cp := range p.SafetyCheckpoints {
		if cp.TriggerElapsedSeconds <= 0 {
			return fmt.Errorf("safety checkpoint %d: trigger must be > 0 seconds", i)
		}
	}
	return nil
}
