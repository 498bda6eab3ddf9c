package engine

import (
	"math"

	"github.com/coachtaylor/transfit/internal/models"
)

// Ledger is the append-only log of completed and skipped sets. Entries are
// never edited after append; corrections are modeled as new appends with a
// later timestamp.
type Ledger struct {
	entries []models.CompletedSet
}

// Append adds one entry. O(1).
func (l *Ledger) Append(set models.CompletedSet) {
	l.entries = append(l.entries, set)
}

// All returns every entry in append order. The slice is a copy; mutating it
// never touches the ledger.
func (l *Ledger) All() []models.CompletedSet {
	out := make([]models.CompletedSet, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForExercise returns the entries for one exercise id, in append order.
func (l *Ledger) ForExercise(exerciseID string) []models.CompletedSet {
	var out []models.CompletedSet
	for _, e := range l.entries {
		if e.ExerciseID == exerciseID {
			out = append(out, e)
		}
	}
	return out
}

// ForExerciseIndex returns the entries for one prescription slot, in append
// order. Unlike ForExercise this also finds sets recorded before a
// mid-exercise swap changed the effective id.
func (l *Ledger) ForExerciseIndex(index int) []models.CompletedSet {
	var out []models.CompletedSet
	for _, e := range l.entries {
		if e.ExerciseIndex == index {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Totals aggregates the ledger. Skipped sets count toward nothing; the RPE
// average covers only sets that logged one, rounded to one decimal place.
func (l *Ledger) Totals() models.LedgerTotals {
	var t models.LedgerTotals
	rpeSum, rpeCount := 0, 0
	for _, e := range l.entries {
		if e.Skipped {
			continue
		}
		t.TotalSets++
		t.TotalReps += e.Reps
		if e.RPE != nil {
			rpeSum += *e.RPE
			rpeCount++
		}
	}
	if rpeCount > 0 {
		t.AverageRPE = math.Round(float64(rpeSum)/float64(rpeCount)*10) / 10
	}
	return t
}
