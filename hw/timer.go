package hw

import (
	"time"

	"github.com/sarchlab/lifematrix/sim"
)

// WallTimer is a CountDown driven by a clock. It never sleeps.
type WallTimer struct {
	now      func() time.Time
	period   time.Duration
	deadline time.Time
	started  bool
}

// NewWallTimer creates a timer on the system clock.
func NewWallTimer() *WallTimer {
	return NewWallTimerWithClock(time.Now)
}

// NewWallTimerWithClock creates a timer that reads time from now.
func NewWallTimerWithClock(now func() time.Time) *WallTimer {
	return &WallTimer{now: now}
}

// Start arms the timer for one period of freq from now.
func (t *WallTimer) Start(freq sim.Freq) {
	t.period = freq.Duration()
	t.deadline = t.now().Add(t.period)
	t.started = true
}

// Wait reports whether the period has elapsed.
func (t *WallTimer) Wait() error {
	if !t.started {
		return ErrTimerNotStarted
	}

	now := t.now()
	if now.Before(t.deadline) {
		return ErrWouldBlock
	}

	t.deadline = now.Add(t.period)

	return nil
}
