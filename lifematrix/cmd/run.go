package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/lifematrix/datarecording"
	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/hw"
	"github.com/sarchlab/lifematrix/monitoring"
	"github.com/sarchlab/lifematrix/scheduler"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the matrix loop.",
		Long: "`run` executes the firmware loop against in-memory peripherals " +
			"until interrupted or until --generations generations are stepped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runMatrix(ctx, cfg, cmd.OutOrStdout())
		},
	}

	addRunFlags(runCmd)

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

// matrixRun is everything wired together for one run.
type matrixRun struct {
	id        string
	cfg       Config
	out       io.Writer
	sched     *scheduler.Scheduler
	matrix    *display.Matrix
	heartbeat *hw.MemPin
	recorder  datarecording.DataRecorder
	monitor   *monitoring.Monitor
}

func newMatrixRun(cfg Config, out io.Writer) *matrixRun {
	r := &matrixRun{
		id:        xid.New().String(),
		cfg:       cfg,
		out:       out,
		heartbeat: hw.NewMemPin(),
	}

	columns := hw.NewShiftRegister(2)
	r.matrix = display.MakeMatrixBuilder().
		WithRowPins([display.RowAddressBits]hw.OutputPin{
			hw.NewMemPin(), hw.NewMemPin(), hw.NewMemPin(),
		}).
		WithLatch(columns.LatchPin()).
		WithOutputDisable(hw.NewMemPin()).
		WithTimer(hw.NewWallTimer()).
		WithBus(columns).
		Build()

	builder := scheduler.MakeBuilder().
		WithFramebuffer(r.matrix.Framebuffer()).
		WithDisplay(r.matrix).
		WithHeartbeat(r.heartbeat).
		WithFrameDuration(cfg.FrameDuration).
		WithInitialTimeout(cfg.InitialTimeout).
		WithScanFreq(cfg.ScanFreq).
		WithGenerationLimit(cfg.Generations)

	if cfg.LoopFreq > 0 {
		builder = builder.WithLoopFreq(cfg.LoopFreq)
	}

	r.sched = builder.Build("Matrix")

	if cfg.Show {
		logHook := scheduler.NewLogHook(log.New(out, "", 0))
		logHook.ShowFrame = true
		r.sched.AcceptHook(logHook)
	}

	if cfg.Record {
		r.recorder = datarecording.New(cfg.RecordFile)
		r.sched.AcceptHook(
			datarecording.NewGenerationRecorder(r.recorder, r.id))
	}

	if cfg.Monitor {
		r.monitor = monitoring.NewMonitor().WithPortNumber(cfg.MonitorPort)
		r.monitor.RegisterScheduler(r.sched)
	}

	return r
}

func (r *matrixRun) start() error {
	if r.monitor == nil {
		return nil
	}

	port, err := r.monitor.StartServer()
	if err != nil {
		return err
	}

	if r.cfg.Open {
		url := fmt.Sprintf("http://localhost:%d", port)
		if err := browser.OpenURL(url); err != nil {
			log.Printf("could not open %s: %v", url, err)
		}
	}

	return nil
}

func (r *matrixRun) stop() error {
	var errs []error

	if r.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		errs = append(errs, r.monitor.StopServer(ctx))
	}

	if r.recorder != nil {
		errs = append(errs, r.recorder.Close())
	}

	return errors.Join(errs...)
}

func (r *matrixRun) summary() {
	fmt.Fprintf(r.out,
		"run %s: %d generations in %d iterations, population %d, "+
			"%d heartbeat toggles\n",
		r.id, r.sched.Generation(), r.sched.Iteration(),
		r.sched.Grid().Population(), r.heartbeat.Toggles())
}

func runMatrix(ctx context.Context, cfg Config, out io.Writer) error {
	r := newMatrixRun(cfg, out)

	if err := r.start(); err != nil {
		return errors.Join(err, r.stop())
	}

	err := r.sched.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	r.summary()

	return errors.Join(err, r.stop())
}
