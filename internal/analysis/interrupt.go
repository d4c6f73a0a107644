package analysis

import (
	"context"
	"sync/atomic"
	"time"
)

// interruptHandle cancels the timer started by spawnInterruptTimer.
type interruptHandle struct {
	cancel context.CancelFunc
}

func (h interruptHandle) stop() {
	if h.cancel != nil {
		h.cancel()
	}
}

// spawnInterruptTimer starts a goroutine that sets interrupted once
// timeLimit has elapsed, unless stopped first. Stopping it early (a
// search that finished, or was already interrupted by something else)
// never touches interrupted itself.
func spawnInterruptTimer(interrupted *atomic.Bool, timeLimit time.Duration) interruptHandle {
	ctx, cancel := context.WithTimeout(context.Background(), timeLimit)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			interrupted.Store(true)
		}
	}()

	return interruptHandle{cancel: cancel}
}
