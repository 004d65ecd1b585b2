package highlight

import (
	"sync"
	"time"
)

// Timer is a single cancellable deferred call. Scheduling a new call stops
// the pending one first.
type Timer struct {
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
}

// Schedule arms fn to run after d, cancelling any pending call. It is a
// no-op once Stop has been called.
func (x *Timer) Schedule(d time.Duration, fn func()) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.stopped {
		return
	}
	if x.t != nil {
		x.t.Stop()
	}
	x.t = time.AfterFunc(d, fn)
}

// Stop cancels the pending call and disables further scheduling.
func (x *Timer) Stop() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.stopped = true
	if x.t != nil {
		x.t.Stop()
		x.t = nil
	}
}
