package engine

import (
	"errors"
	"testing"
)

// TestRestCountdownExpiresOnce verifies the countdown reaches zero and the
// expiry signal is delivered exactly once.
func TestRestCountdownExpiresOnce(t *testing.T) {
	var r RestController
	if err := r.Begin(3); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	remaining, expired := r.Tick()
	if remaining != 2 || expired {
		t.Errorf("tick 1: remaining=%d expired=%v, want 2 false", remaining, expired)
	}
	r.Tick()
	remaining, expired = r.Tick()
	if remaining != 0 || !expired {
		t.Errorf("tick 3: remaining=%d expired=%v, want 0 true", remaining, expired)
	}
	if !r.IsExpired() {
		t.Error("IsExpired() = false after countdown reached zero")
	}

	// Subsequent ticks never re-deliver the expiry signal.
	for i := 0; i < 5; i++ {
		if _, again := r.Tick(); again {
			t.Fatal("expiry signal delivered more than once")
		}
	}
}

// TestRestSkipForcesExpiry verifies skip expires the interval immediately
// regardless of remaining time.
func TestRestSkipForcesExpiry(t *testing.T) {
	var r RestController
	if err := r.Begin(90); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	r.Tick()
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if !r.IsExpired() || r.Remaining() != 0 {
		t.Errorf("after skip: expired=%v remaining=%d, want true 0", r.IsExpired(), r.Remaining())
	}
	if err := r.Skip(); !errors.Is(err, ErrNoActiveRest) {
		t.Errorf("double skip: err = %v, want ErrNoActiveRest", err)
	}
}

// TestRestExtendNeverShortens verifies extend only adds time: remaining
// never decreases and expiry never arrives earlier than it otherwise would.
func TestRestExtendNeverShortens(t *testing.T) {
	var r RestController
	if err := r.Begin(10); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for i := 0; i < 5; i++ {
		r.Tick()
	}
	before := r.Remaining()
	if err := r.Extend(30); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if r.Remaining() != before+30 {
		t.Errorf("remaining after extend = %d, want %d", r.Remaining(), before+30)
	}
	if r.IsExpired() {
		t.Error("extend made the interval expired")
	}
	if err := r.Extend(0); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Extend(0): err = %v, want ErrInvalidCommand", err)
	}

	// Elapsed history is kept across the extension.
	if r.ElapsedSeconds() != 5 {
		t.Errorf("elapsed after extend = %d, want 5", r.ElapsedSeconds())
	}
}

// TestRestDoubleBeginIsLoud verifies that starting a rest while one is
// active is reported as an error, never silently overwritten.
func TestRestDoubleBeginIsLoud(t *testing.T) {
	var r RestController
	if err := r.Begin(60); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	r.Tick()
	if err := r.Begin(30); !errors.Is(err, ErrRestActive) {
		t.Errorf("double begin: err = %v, want ErrRestActive", err)
	}
	if r.Remaining() != 59 {
		t.Errorf("remaining after rejected begin = %d, want 59 (untouched)", r.Remaining())
	}

	// After expiry and clear, a new interval is allowed.
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	r.Clear()
	if err := r.Begin(30); err != nil {
		t.Errorf("Begin after clear: %v", err)
	}
}
