// Package scheduler runs the automaton on the matrix. It is a cooperative
// loop with no preemption: every iteration it may render and step the grid,
// then it always services the display and toggles the heartbeat.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/sim"
)

// Display performs one non-blocking unit of display refresh work.
type Display interface {
	Scan(freq sim.Freq) error
}

// Heartbeat is toggled once per loop iteration.
type Heartbeat interface {
	Toggle()
}

// HookPosFrameRendered fires after a generation is written to the
// framebuffer. The hook item is the *display.Framebuffer.
var HookPosFrameRendered = &sim.HookPos{Name: "FrameRendered"}

// HookPosGenerationStepped fires after the grid advances. The hook item is
// the *life.Grid.
var HookPosGenerationStepped = &sim.HookPos{Name: "GenerationStepped"}

// GenerationInfo is the hook detail of both hook positions.
type GenerationInfo struct {
	// Generation is the number of steps taken so far, counting the one
	// that just happened at HookPosGenerationStepped.
	Generation uint64

	// Iteration is the zero-based loop iteration the hook fired in.
	Iteration uint64

	Now sim.VTimeInSec
}

// Scheduler owns the grid and the frame countdown.
type Scheduler struct {
	*sim.HookableBase

	name string
	grid life.Grid
	fb   *display.Framebuffer

	display   Display
	heartbeat Heartbeat

	scanFreq       sim.Freq
	loopFreq       sim.Freq
	pacedLoop      bool
	frameDuration  uint32
	frameTimeout   uint32
	maxGenerations uint64

	generation uint64
	iteration  uint64
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return s.name
}

// Grid returns the automaton state. It must only be read from the loop's
// own goroutine or from hooks.
func (s *Scheduler) Grid() *life.Grid {
	return &s.grid
}

// Generation returns the number of generations advanced so far.
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// Iteration returns the number of loop iterations run so far.
func (s *Scheduler) Iteration() uint64 {
	return s.iteration
}

// FrameTimeout returns the iterations left before the next step.
func (s *Scheduler) FrameTimeout() uint32 {
	return s.frameTimeout
}

// GenerationLimit returns the generation count at which Run returns, or 0
// if it runs until cancelled.
func (s *Scheduler) GenerationLimit() uint64 {
	return s.maxGenerations
}

// Now returns the virtual time of the current iteration.
func (s *Scheduler) Now() sim.VTimeInSec {
	return s.loopFreq.Time(s.iteration)
}

// Tick runs one loop iteration. It returns true if the grid advanced.
func (s *Scheduler) Tick() bool {
	stepped := false

	if s.frameTimeout == 0 {
		s.renderAndStep()
		s.frameTimeout = s.frameDuration
		stepped = true
	}

	if s.frameTimeout == 0 {
		log.Panic("scheduler: frame timeout underflow")
	}

	s.frameTimeout--

	_ = s.display.Scan(s.scanFreq)
	s.heartbeat.Toggle()

	s.iteration++

	return stepped
}

func (s *Scheduler) renderAndStep() {
	display.Render(&s.grid, s.fb)
	s.invokeHook(HookPosFrameRendered, s.fb)

	life.Step(&s.grid)
	s.generation++
	s.invokeHook(HookPosGenerationStepped, &s.grid)
}

func (s *Scheduler) invokeHook(pos *sim.HookPos, item interface{}) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
		Detail: GenerationInfo{
			Generation: s.generation,
			Iteration:  s.iteration,
			Now:        s.Now(),
		},
	})
}

// RunIterations runs exactly n loop iterations.
func (s *Scheduler) RunIterations(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.Tick()
	}
}

// Run loops until ctx is done or the generation limit is reached. If a loop
// frequency is set, iterations are paced by the wall clock; otherwise the
// loop spins as fast as it can.
func (s *Scheduler) Run(ctx context.Context) error {
	var pace <-chan time.Time

	if s.pacedLoop {
		ticker := time.NewTicker(s.loopFreq.Duration())
		defer ticker.Stop()

		pace = ticker.C
	}

	for !s.reachedLimit() {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		s.Tick()
	}

	return nil
}

func (s *Scheduler) reachedLimit() bool {
	return s.maxGenerations > 0 && s.generation >= s.maxGenerations
}
