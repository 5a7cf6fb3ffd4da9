package scheduler

import (
	"log"

	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/sim"
)

// Defaults taken from the matrix firmware.
const (
	DefaultFrameDuration  = 8
	DefaultInitialTimeout = 100
	DefaultScanFreq       = 1 * sim.KHz
)

// Builder can build schedulers.
type Builder struct {
	fb             *display.Framebuffer
	display        Display
	heartbeat      Heartbeat
	scanFreq       sim.Freq
	loopFreq       sim.Freq
	frameDuration  uint32
	initialTimeout uint32
	maxGenerations uint64
}

// MakeBuilder returns a Builder with the firmware defaults.
func MakeBuilder() Builder {
	return Builder{
		scanFreq:       DefaultScanFreq,
		frameDuration:  DefaultFrameDuration,
		initialTimeout: DefaultInitialTimeout,
	}
}

// WithFramebuffer sets the framebuffer generations are rendered into.
func (b Builder) WithFramebuffer(fb *display.Framebuffer) Builder {
	b.fb = fb
	return b
}

// WithDisplay sets the display that is serviced every iteration.
func (b Builder) WithDisplay(d Display) Builder {
	b.display = d
	return b
}

// WithHeartbeat sets the output toggled every iteration.
func (b Builder) WithHeartbeat(h Heartbeat) Builder {
	b.heartbeat = h
	return b
}

// WithScanFreq sets the frequency passed to every display scan.
func (b Builder) WithScanFreq(f sim.Freq) Builder {
	b.scanFreq = f
	return b
}

// WithLoopFreq paces Run to the given number of iterations per second.
func (b Builder) WithLoopFreq(f sim.Freq) Builder {
	b.loopFreq = f
	return b
}

// WithFrameDuration sets the number of iterations between generations.
func (b Builder) WithFrameDuration(n uint32) Builder {
	b.frameDuration = n
	return b
}

// WithInitialTimeout sets the number of iterations the seed is held before
// the first step.
func (b Builder) WithInitialTimeout(n uint32) Builder {
	b.initialTimeout = n
	return b
}

// WithGenerationLimit makes Run return after n generations. Zero means no
// limit.
func (b Builder) WithGenerationLimit(n uint64) Builder {
	b.maxGenerations = n
	return b
}

// Build creates a scheduler holding the seed pattern and renders the seed
// once.
func (b Builder) Build(name string) *Scheduler {
	if b.fb == nil {
		log.Panic("scheduler: framebuffer is not set")
	}

	if b.display == nil {
		log.Panic("scheduler: display is not set")
	}

	if b.heartbeat == nil {
		log.Panic("scheduler: heartbeat is not set")
	}

	if b.frameDuration == 0 {
		log.Panic("scheduler: frame duration must be at least 1")
	}

	if b.scanFreq <= 0 {
		log.Panic("scheduler: scan frequency must be positive")
	}

	s := &Scheduler{
		HookableBase:   sim.NewHookableBase(),
		name:           name,
		grid:           life.Seed(),
		fb:             b.fb,
		display:        b.display,
		heartbeat:      b.heartbeat,
		scanFreq:       b.scanFreq,
		loopFreq:       b.loopFreq,
		pacedLoop:      b.loopFreq > 0,
		frameDuration:  b.frameDuration,
		frameTimeout:   b.initialTimeout,
		maxGenerations: b.maxGenerations,
	}

	if !s.pacedLoop {
		s.loopFreq = b.scanFreq
	}

	display.Render(&s.grid, s.fb)

	return s
}
