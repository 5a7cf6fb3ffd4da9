package scheduler

import (
	"log"

	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/sim"
)

// LogHook writes one line per generation, and optionally the frame itself.
type LogHook struct {
	*log.Logger

	ShowFrame bool
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func logs the generation that was just stepped.
func (h *LogHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosGenerationStepped {
		return
	}

	g := ctx.Item.(*life.Grid)
	info := ctx.Detail.(GenerationInfo)

	h.Printf("generation %d, iteration %d, %.6fs, population %d",
		info.Generation, info.Iteration, info.Now, g.Population())

	if h.ShowFrame {
		h.Print("\n" + g.String())
	}
}
