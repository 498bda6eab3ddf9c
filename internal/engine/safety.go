package engine

import (
	"sort"

	"github.com/coachtaylor/transfit/internal/models"
)

// Precondition gates safety checkpoints on user context, e.g. "the lifter
// has opted into binder-safety reminders". Evaluated at fire time, not at
// construction.
type Precondition func() bool

// SafetyMonitor watches total session elapsed time against configured
// checkpoints. Each checkpoint fires at most once per session, no matter
// how many ticks cross its threshold or how often the clock pauses and
// resumes.
type SafetyMonitor struct {
	checkpoints  []models.SafetyCheckpoint
	fired        []bool
	precondition Precondition
}

// NewSafetyMonitor builds a monitor over the given checkpoints, sorted by
// ascending trigger time. A nil precondition always passes.
func NewSafetyMonitor(checkpoints []models.SafetyCheckpoint, precondition Precondition) *SafetyMonitor {
	sorted := make([]models.SafetyCheckpoint, len(checkpoints))
	copy(sorted, checkpoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TriggerElapsedSeconds < sorted[j].TriggerElapsedSeconds
	})
	if precondition == nil {
		precondition = func() bool { return true }
	}
	return &SafetyMonitor{
		checkpoints:  sorted,
		fired:        make([]bool, len(sorted)),
		precondition: precondition,
	}
}

// Evaluate fires every unfired checkpoint whose threshold is at or below
// elapsed, in ascending trigger order. Several checkpoints with close
// thresholds can fire from the same tick; each fires independently.
func (m *SafetyMonitor) Evaluate(elapsed int) []models.SafetyCheckpoint {
	var out []models.SafetyCheckpoint
	for i, cp := range m.checkpoints {
		if m.fired[i] || elapsed < cp.TriggerElapsedSeconds {
			continue
		}
		if !m.precondition() {
			continue
		}
		m.fired[i] = true
		out = append(out, cp)
	}
	return out
}

// FiredCount returns how many checkpoints have fired so far.
func (m *SafetyMonitor) FiredCount() int {
	n := 0
	for _, f := range m.fired {
		if f {
			n++
		}
	}
	return n
}
