package models

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the coarse session state.
type Phase string

const (
	PhaseWarmUp   Phase = "warm_up"
	PhaseMain     Phase = "main"
	PhaseCoolDown Phase = "cool_down"
	PhaseComplete Phase = "complete"
)

// Terminal reports whether the phase accepts no further mutation.
func (p Phase) Terminal() bool { return p == PhaseComplete }

// CompletedSet is one immutable ledger entry. Corrections are new appends
// with a later timestamp, never in-place edits. Weight and RPE are optional;
// a skipped set carries neither.
//
// ExerciseIndex ties the entry to its prescription slot; ExerciseID is the
// id actually performed, which changes mid-exercise after a swap.
type CompletedSet struct {
	ExerciseIndex int       `json:"exercise_index"`
	ExerciseID    string    `json:"exercise_id"`
	SetNumber     int       `json:"set_number"`
	Reps          int       `json:"reps"`
	Weight        *float64  `json:"weight,omitempty"`
	RPE           *int      `json:"rpe,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
	Skipped       bool      `json:"skipped"`
}

// LedgerTotals summarizes the ledger for live display and the final summary.
// AverageRPE covers only non-skipped sets that logged an RPE; zero when none
// did.
type LedgerTotals struct {
	TotalSets  int     `json:"total_sets"`
	TotalReps  int     `json:"total_reps"`
	AverageRPE float64 `json:"average_rpe"`
}

// ExerciseResult annotates one prescribed exercise in the final summary.
type ExerciseResult struct {
	ExerciseID    string         `json:"exercise_id"`
	SwappedTo     string         `json:"swapped_to,omitempty"`
	Skipped       bool           `json:"skipped"`
	PainFlagged   bool           `json:"pain_flagged"`
	CompletedSets []CompletedSet `json:"completed_sets"`
}

// SessionSummary is the frozen hand-off produced once a session reaches
// Complete, passed to the persistence layer exactly once.
type SessionSummary struct {
	SessionID    uuid.UUID        `json:"session_id"`
	UserID       int              `json:"user_id"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  time.Time        `json:"completed_at"`
	TotalSeconds int              `json:"total_seconds"`
	Totals       LedgerTotals     `json:"totals"`
	Exercises    []ExerciseResult `json:"exercises"`
}

// FiredCheckpoint is a safety checkpoint that has triggered and awaits
// dismissal by the lifter.
type FiredCheckpoint struct {
	Checkpoint SafetyCheckpoint `json:"checkpoint"`
	FiredAt    time.Time        `json:"fired_at"`
}

// RegressionSuggestion is the advisory returned by the auto-regression
// collaborator after a pain flag. The engine only stores it; applying it is
// the caller's decision.
type RegressionSuggestion struct {
	ExerciseID          string `json:"exercise_id"`
	SuggestedExerciseID string `json:"suggested_exercise_id"`
	Note                string `json:"note,omitempty"`
}

// SessionSnapshot is the read model handed to renderers. It is a copy;
// mutating it never touches session state.
type SessionSnapshot struct {
	SessionID         uuid.UUID                       `json:"session_id"`
	Phase             Phase                           `json:"phase"`
	ElapsedSeconds    int                             `json:"elapsed_seconds"`
	ClockRunning      bool                            `json:"clock_running"`
	ClockPaused       bool                            `json:"clock_paused"`
	ExerciseIndex     int                             `json:"exercise_index"`
	ExerciseID        string                          `json:"exercise_id,omitempty"`
	SetNumber         int                             `json:"set_number"`
	SetElapsedSeconds int                             `json:"set_elapsed_seconds"`
	SetActive         bool                            `json:"set_active"`
	RestActive        bool                            `json:"rest_active"`
	RestRemaining     int                             `json:"rest_remaining"`
	WarmUpDone        []bool                          `json:"warm_up_done,omitempty"`
	CoolDownDone      []bool                          `json:"cool_down_done,omitempty"`
	SkippedExercises  []string                        `json:"skipped_exercises,omitempty"`
	FlaggedExercises  []string                        `json:"flagged_exercises,omitempty"`
	Swaps             map[string]string               `json:"swaps,omitempty"`
	Suggestions       map[string]RegressionSuggestion `json:"suggestions,omitempty"`
	PendingCheckpoint *FiredCheckpoint                `json:"pending_checkpoint,omitempty"`
	Ledger            []CompletedSet                  `json:"ledger"`
	Totals            LedgerTotals                    `json:"totals"`
}
