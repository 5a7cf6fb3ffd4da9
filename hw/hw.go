// Package hw defines the peripheral contracts the LED matrix is wired to and
// provides in-memory implementations of them.
//
// The contracts follow the embedded convention of non-blocking calls: an
// operation that cannot complete yet returns ErrWouldBlock and is simply
// retried later.
package hw

import (
	"errors"

	"github.com/sarchlab/lifematrix/sim"
)

// ErrWouldBlock is returned by non-blocking operations that are not ready.
var ErrWouldBlock = errors.New("hw: operation would block")

// ErrTimerNotStarted is returned when waiting on a timer that was never
// started.
var ErrTimerNotStarted = errors.New("hw: timer not started")

// Toggler is an output that can flip its level.
type Toggler interface {
	Toggle()
}

// OutputPin is a digital output.
type OutputPin interface {
	Toggler

	SetHigh()
	SetLow()
	IsHigh() bool
}

// CountDown is a timer that expires once per started period.
type CountDown interface {
	// Start (re)arms the timer to expire after one period of freq.
	Start(freq sim.Freq)

	// Wait returns nil once the period has elapsed and re-arms for the next
	// period. It returns ErrWouldBlock before that.
	Wait() error
}

// Bus writes bytes to a serial peripheral.
type Bus interface {
	Write(data []byte) error
}
