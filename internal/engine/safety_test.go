package engine

import (
	"testing"

	"github.com/coachtaylor/transfit/internal/models"
)

// TestSafetyFiresOncePerCheckpoint verifies a checkpoint fires at most once
// per session even when many ticks cross its threshold.
func TestSafetyFiresOncePerCheckpoint(t *testing.T) {
	m := NewSafetyMonitor([]models.SafetyCheckpoint{
		{TriggerElapsedSeconds: 2700, Message: "binder check: consider a breather"},
	}, nil)

	fired := 0
	for elapsed := 2690; elapsed < 2800; elapsed++ {
		fired += len(m.Evaluate(elapsed))
	}
	if fired != 1 {
		t.Errorf("checkpoint fired %d times, want 1", fired)
	}
	if m.FiredCount() != 1 {
		t.Errorf("FiredCount() = %d, want 1", m.FiredCount())
	}
}

// TestSafetyMultipleFireSameTick verifies checkpoints with close thresholds
// each fire independently from one tick, in ascending trigger order.
func TestSafetyMultipleFireSameTick(t *testing.T) {
	m := NewSafetyMonitor([]models.SafetyCheckpoint{
		{TriggerElapsedSeconds: 120, Message: "second"},
		{TriggerElapsedSeconds: 60, Message: "first"},
	}, nil)

	// One big jump past both thresholds (e.g. after a long pause).
	out := m.Evaluate(121)
	if len(out) != 2 {
		t.Fatalf("fired %d checkpoints, want 2", len(out))
	}
	if out[0].TriggerElapsedSeconds != 60 || out[1].TriggerElapsedSeconds != 120 {
		t.Errorf("fire order = %d,%d, want ascending 60,120",
			out[0].TriggerElapsedSeconds, out[1].TriggerElapsedSeconds)
	}
}

// TestSafetyPreconditionGates verifies the caller-supplied precondition is
// consulted at fire time and suppresses firing without consuming the
// checkpoint.
func TestSafetyPreconditionGates(t *testing.T) {
	optedIn := false
	m := NewSafetyMonitor([]models.SafetyCheckpoint{
		{TriggerElapsedSeconds: 10, Message: "check"},
	}, func() bool { return optedIn })

	if out := m.Evaluate(50); len(out) != 0 {
		t.Fatalf("fired %d with false precondition, want 0", len(out))
	}
	optedIn = true
	if out := m.Evaluate(51); len(out) != 1 {
		t.Fatalf("fired %d once precondition holds, want 1", len(out))
	}
	if out := m.Evaluate(52); len(out) != 0 {
		t.Fatalf("re-fired %d, want 0", len(out))
	}
}

// TestSafetyBelowThreshold verifies nothing fires before the trigger.
func TestSafetyBelowThreshold(t *testing.T) {
	m := NewSafetyMonitor([]models.SafetyCheckpoint{
		{TriggerElapsedSeconds: 100, Message: "check"},
	}, nil)
	for elapsed := 0; elapsed < 100; elapsed++ {
		if out := m.Evaluate(elapsed); len(out) != 0 {
			t.Fatalf("fired at %d seconds, before the 100s trigger", elapsed)
		}
	}
}
