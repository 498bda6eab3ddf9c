package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRow is a row ready for insertion into the sessions table.
type SessionRow struct {
	ID           uuid.UUID
	UserID       int
	StartedAt    time.Time
	CompletedAt  time.Time
	TotalSeconds int
	TotalSets    int
	TotalReps    int
	AverageRPE   float64
}

// SessionSetRow is a row for the session_sets table. One row per ledger
// entry; skipped sets carry null reps/weight/rpe.
type SessionSetRow struct {
	SessionID   uuid.UUID
	UserID      int
	ExerciseID  string
	SwappedTo   string
	SetNumber   int
	Reps        int
	Weight      *float64
	RPE         *int
	CompletedAt time.Time
	Skipped     bool
	PainFlagged bool
}
