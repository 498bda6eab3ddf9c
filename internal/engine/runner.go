package engine

import (
	"context"
	"time"
)

// Runner is the single tick source for one session: a 1 Hz ticker driving
// Session.Tick until the session completes or the context is cancelled.
// Stopping the runner when a session is abandoned prevents a leaked ticker
// from decrementing rest or set state after the caller has let go of the
// session.
type Runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartRunner launches the tick goroutine for sess.
func StartRunner(ctx context.Context, sess *Session) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sess.Tick()
				if sess.Phase().Terminal() {
					return
				}
			}
		}
	}()
	return r
}

// Stop cancels the tick source and waits for the goroutine to exit.
func (r *Runner) Stop() {
	r.cancel()
	<-r.done
}

// Done returns a channel closed when the tick goroutine has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }
