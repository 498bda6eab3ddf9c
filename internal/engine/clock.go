package engine

// ElapsedClock is a second-granular counter advanced by its owner's tick.
// It holds no mutex and spawns no goroutine: the owning session drives it
// from the single per-session tick source, so all dependent timers observe
// elapsed time consistently.
//
// Every method is a no-op when called in a state it does not apply to; the
// clock never errors.
type ElapsedClock struct {
	running bool
	paused  bool
	elapsed int
}

// Start begins counting. Calling Start while already running is a no-op.
// After a Stop, Start resumes from the retained elapsed value.
func (c *ElapsedClock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.paused = false
}

// Pause suspends counting without losing elapsed time.
func (c *ElapsedClock) Pause() {
	if !c.running || c.paused {
		return
	}
	c.paused = true
}

// Resume continues a paused clock. Resume before any Start is a no-op.
func (c *ElapsedClock) Resume() {
	if !c.running || !c.paused {
		return
	}
	c.paused = false
}

// Stop halts the clock. The elapsed value is retained until Reset.
func (c *ElapsedClock) Stop() {
	c.running = false
	c.paused = false
}

// Reset zeroes the elapsed value and stops the clock.
func (c *ElapsedClock) Reset() {
	c.running = false
	c.paused = false
	c.elapsed = 0
}

// Tick advances the clock by one second if it is running and not paused.
func (c *ElapsedClock) Tick() {
	if c.running && !c.paused {
		c.elapsed++
	}
}

// ElapsedSeconds returns the seconds counted so far.
func (c *ElapsedClock) ElapsedSeconds() int { return c.elapsed }

// Running reports whether the clock is started and not stopped.
func (c *ElapsedClock) Running() bool { return c.running }

// Paused reports whether the clock is paused.
func (c *ElapsedClock) Paused() bool { return c.paused }
