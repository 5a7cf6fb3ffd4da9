package sim

import (
	"log"
	"math"
	"time"
)

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Duration returns the period as a wall-clock duration.
func (f Freq) Duration() time.Duration {
	return time.Duration(math.Round(float64(f.Period()) * float64(time.Second)))
}

// Time returns the time at which the given cycle starts.
func (f Freq) Time(cycle uint64) VTimeInSec {
	return VTimeInSec(float64(cycle) / float64(f))
}

// Shl multiplies the frequency by 2^n, shortening the period accordingly.
func (f Freq) Shl(n uint) Freq {
	return f * Freq(uint64(1)<<n)
}
