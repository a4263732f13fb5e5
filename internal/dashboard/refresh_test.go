package dashboard

import (
	"testing"
	"time"
)

// Tests shrink the timer unit so a "10 second" cadence runs in 200ms.
const testUnit = 20 * time.Millisecond

func TestSetRejectsUnsupportedInterval(t *testing.T) {
	a := newAutoRefreshWithUnit(func() {}, testUnit)
	defer a.Stop()

	for _, bad := range []int{-1, 5, 7, 15, 45, 120} {
		if err := a.Set(bad); err == nil {
			t.Errorf("Set(%d) accepted an unsupported interval", bad)
		}
	}
	if a.Interval() != 0 {
		t.Errorf("rejected Set changed interval to %d", a.Interval())
	}
}

func TestTimerFiresAtInterval(t *testing.T) {
	fires := make(chan time.Time, 8)
	a := newAutoRefreshWithUnit(func() { fires <- time.Now() }, testUnit)
	defer a.Stop()

	start := time.Now()
	if err := a.Set(10); err != nil {
		t.Fatal(err)
	}

	select {
	case at := <-fires:
		if elapsed := at.Sub(start); elapsed < 8*testUnit {
			t.Errorf("first fire after %v, want about %v", elapsed, 10*testUnit)
		}
	case <-time.After(30 * testUnit):
		t.Fatal("timer never fired")
	}

	// It keeps firing on the same cadence.
	select {
	case <-fires:
	case <-time.After(30 * testUnit):
		t.Fatal("timer did not fire a second time")
	}
}

func TestChangingIntervalRestartsCountdown(t *testing.T) {
	fires := make(chan time.Time, 8)
	a := newAutoRefreshWithUnit(func() { fires <- time.Now() }, testUnit)
	defer a.Stop()

	if err := a.Set(10); err != nil {
		t.Fatal(err)
	}
	// Replace the cadence before the 10-unit timer can fire. The old timer
	// must be cancelled, not left running alongside the new one.
	time.Sleep(3 * testUnit)
	restart := time.Now()
	if err := a.Set(30); err != nil {
		t.Fatal(err)
	}

	select {
	case at := <-fires:
		elapsed := at.Sub(restart)
		if elapsed < 25*testUnit {
			t.Errorf("fired %v after interval change, want about %v; the old timer leaked", elapsed, 30*testUnit)
		}
	case <-time.After(60 * testUnit):
		t.Fatal("timer never fired after interval change")
	}

	// Exactly one fire in the first window: a leaked 10-unit timer would
	// have produced extras by now.
	select {
	case at := <-fires:
		t.Errorf("second fire arrived %v after interval change; two timers active", at.Sub(restart))
	case <-time.After(10 * testUnit):
	}
}

func TestSetZeroCancels(t *testing.T) {
	fires := make(chan time.Time, 8)
	a := newAutoRefreshWithUnit(func() { fires <- time.Now() }, testUnit)

	if err := a.Set(10); err != nil {
		t.Fatal(err)
	}
	if err := a.Set(0); err != nil {
		t.Fatal(err)
	}
	if a.Interval() != 0 {
		t.Errorf("Interval() = %d after Set(0)", a.Interval())
	}

	select {
	case <-fires:
		t.Error("timer fired after being turned off")
	case <-time.After(25 * testUnit):
	}
}

func TestRemaining(t *testing.T) {
	a := newAutoRefreshWithUnit(func() {}, testUnit)
	defer a.Stop()

	if r := a.Remaining(); r != 0 {
		t.Errorf("Remaining() = %v while off, want 0", r)
	}

	if err := a.Set(60); err != nil {
		t.Fatal(err)
	}
	r := a.Remaining()
	if r <= 0 || r > 60*testUnit {
		t.Errorf("Remaining() = %v, want within (0, %v]", r, 60*testUnit)
	}

	a.Stop()
	if r := a.Remaining(); r != 0 {
		t.Errorf("Remaining() = %v after Stop, want 0", r)
	}
}
