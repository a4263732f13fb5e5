package dashboard

import (
	"fmt"
	"sync"
	"time"
)

// RefreshIntervals are the selectable auto-refresh cadences in seconds;
// 0 means off.
var RefreshIntervals = []int{0, 10, 30, 60}

// AutoRefresh re-invokes a refresh callback at a user-chosen fixed
// cadence. At most one timer goroutine is ever active: Set cancels the
// previous timer before starting a replacement, so changing the interval
// restarts the countdown from the new value. The remaining-time display is
// derived state; the authoritative trigger is the timer firing.
type AutoRefresh struct {
	fn   func()
	unit time.Duration // second in production, shrunk in tests

	mu       sync.Mutex
	interval int // seconds, 0 = off
	deadline time.Time
	stop     chan struct{}
}

// NewAutoRefresh creates a stopped scheduler around the given callback.
func NewAutoRefresh(fn func()) *AutoRefresh {
	return newAutoRefreshWithUnit(fn, time.Second)
}

func newAutoRefreshWithUnit(fn func(), unit time.Duration) *AutoRefresh {
	return &AutoRefresh{fn: fn, unit: unit}
}

// Set replaces the active cadence. Only 0, 10, 30, and 60 seconds are
// accepted; 0 cancels the timer.
func (a *AutoRefresh) Set(seconds int) error {
	ok := false
	for _, v := range RefreshIntervals {
		if seconds == v {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unsupported refresh interval %ds", seconds)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
	a.interval = seconds
	if seconds == 0 {
		return nil
	}

	d := time.Duration(seconds) * a.unit
	stop := make(chan struct{})
	a.stop = stop
	a.deadline = time.Now().Add(d)
	go a.loop(d, stop)
	return nil
}

// Interval returns the configured cadence in seconds (0 = off).
func (a *AutoRefresh) Interval() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// Remaining returns the time until the next fire, or 0 when off. Display
// only; never used for scheduling.
func (a *AutoRefresh) Remaining() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.interval == 0 {
		return 0
	}
	r := time.Until(a.deadline)
	if r < 0 {
		r = 0
	}
	return r
}

// Stop cancels any active timer.
func (a *AutoRefresh) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.interval = 0
}

// stopLocked must be called with a.mu held.
func (a *AutoRefresh) stopLocked() {
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
}

func (a *AutoRefresh) loop(d time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.mu.Lock()
			// A Set racing with this tick may have replaced the timer;
			// only the current timer advances the deadline.
			if a.stop != stop {
				a.mu.Unlock()
				return
			}
			a.deadline = time.Now().Add(d)
			a.mu.Unlock()
			a.fn()
		case <-stop:
			return
		}
	}
}
