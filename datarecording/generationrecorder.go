package datarecording

import (
	"context"

	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/scheduler"
	"github.com/sarchlab/lifematrix/sim"
)

// GenerationTable is the table GenerationRecorder writes to.
const GenerationTable = "generations"

// GenerationEntry is one recorded generation.
type GenerationEntry struct {
	RunID      string
	Generation uint64
	Iteration  uint64
	Time       float64
	Population int

	// Cells holds the grid row by row as '0' and '1' characters.
	Cells string
}

// Grid decodes the recorded cells.
func (e GenerationEntry) Grid() life.Grid {
	g := life.Grid{}

	for i := 0; i < len(e.Cells) && i < life.Rows*life.Cols; i++ {
		g.SetAlive(i/life.Cols, i%life.Cols, e.Cells[i] == '1')
	}

	return g
}

// GenerationRecorder is a scheduler hook that records every generation.
type GenerationRecorder struct {
	recorder DataRecorder
	runID    string
}

// NewGenerationRecorder creates the generations table and returns a hook
// that fills it.
func NewGenerationRecorder(
	recorder DataRecorder,
	runID string,
) *GenerationRecorder {
	recorder.CreateTable(GenerationTable, GenerationEntry{})

	return &GenerationRecorder{
		recorder: recorder,
		runID:    runID,
	}
}

// Func records the generation that was just stepped.
func (r *GenerationRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != scheduler.HookPosGenerationStepped {
		return
	}

	g := ctx.Item.(*life.Grid)
	info := ctx.Detail.(scheduler.GenerationInfo)

	r.recorder.InsertData(GenerationTable, GenerationEntry{
		RunID:      r.runID,
		Generation: info.Generation,
		Iteration:  info.Iteration,
		Time:       float64(info.Now),
		Population: g.Population(),
		Cells:      g.Bits(),
	})
}

// ReadGenerations returns the recorded generations of a run in order.
func ReadGenerations(
	ctx context.Context,
	reader DataReader,
	runID string,
) ([]GenerationEntry, error) {
	reader.MapTable(GenerationTable, GenerationEntry{})

	results, _, err := reader.Query(ctx, GenerationTable, QueryParams{
		Where:   "RunID = ?",
		Args:    []any{runID},
		OrderBy: "Generation",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]GenerationEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r.(*GenerationEntry))
	}

	return entries, nil
}

// ListRuns returns the run IDs found in the generations table.
func ListRuns(ctx context.Context, reader DataReader) ([]string, error) {
	reader.MapTable(GenerationTable, GenerationEntry{})

	results, _, err := reader.Query(ctx, GenerationTable, QueryParams{
		Where:   "Generation = 1",
		OrderBy: "rowid",
	})
	if err != nil {
		return nil, err
	}

	runs := make([]string, 0, len(results))
	for _, r := range results {
		runs = append(runs, r.(*GenerationEntry).RunID)
	}

	return runs, nil
}
