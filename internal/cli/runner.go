package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexander-akhmetov/devcyclesim/internal/debug"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/metrics"
	"github.com/alexander-akhmetov/devcyclesim/internal/progress"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// Exit reasons reported in the run summary and the progress log.
const (
	ExitReasonCompleted   = "completed"
	ExitReasonInterrupted = "interrupted"
	ExitReasonError       = "error"
)

// Simulation is everything needed to build a process.
type Simulation struct {
	Days       int
	Capacities engine.Capacities
	Plans      []engine.ResourcePlan
	Stories    []*domain.UserStory
}

// Build creates a process with its own copy of the stories, so the same
// Simulation can be run more than once.
func (s Simulation) Build(h event.Handler) (*engine.Process, error) {
	p, err := engine.NewProcess(s.Days,
		engine.WithDefaultCapacities(s.Capacities),
		engine.WithEventHandler(h),
	)
	if err != nil {
		return nil, fmt.Errorf("create process: %w", err)
	}
	for _, plan := range s.Plans {
		if err := p.AddResourcePlan(plan); err != nil {
			return nil, fmt.Errorf("add resource plan: %w", err)
		}
	}
	for _, story := range scenario.CloneStories(s.Stories) {
		if err := p.Add(story); err != nil {
			return nil, fmt.Errorf("add story: %w", err)
		}
	}
	return p, nil
}

// History builds and runs the simulation without any output.
func (s Simulation) History() ([]stats.ProcessStatistic, error) {
	p, err := s.Build(nil)
	if err != nil {
		return nil, err
	}
	if err := p.Start(); err != nil {
		return nil, err
	}
	return p.Statistics(), nil
}

// RunConfig holds the observers attached to a run.
type RunConfig struct {
	Out       io.Writer // event and footer output (default: os.Stderr)
	IsTTY     bool
	TermWidth int
	Verbose   bool // print every engine event
	Logger    *progress.Logger
	Metrics   *metrics.Metrics
}

// Result describes a finished run.
type Result struct {
	ExitReason  string
	ExitMessage string
	Days        int
	Stories     int
	Finished    int
	Duration    time.Duration
	Statistics  []stats.ProcessStatistic
}

// Run simulates day by day, wiring engine events to the writer, the progress
// log and the metrics. SIGINT/SIGTERM stop the run after the current day;
// the days simulated so far are still returned.
func Run(ctx context.Context, sim Simulation, cfg RunConfig) (*Result, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	w := NewWriter(out, cfg.IsTTY, cfg.TermWidth)

	handlers := []event.Handler{debug.EventHandler()}
	if cfg.Verbose {
		handlers = append(handlers, w.Handler())
	}
	if cfg.Logger != nil {
		handlers = append(handlers, cfg.Logger.Handler())
	}
	if cfg.Metrics != nil {
		handlers = append(handlers, cfg.Metrics.Handler())
	}

	p, err := sim.Build(event.Multi(handlers...))
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	result := &Result{ExitReason: ExitReasonCompleted, Stories: len(sim.Stories)}

	var runErr error
	for day := 1; day <= sim.Days; day++ {
		if ctx.Err() != nil {
			result.ExitReason = ExitReasonInterrupted
			result.ExitMessage = fmt.Sprintf("stopped before day %d", day)
			break
		}
		if err := p.ProcessDay(day); err != nil {
			result.ExitReason = ExitReasonError
			result.ExitMessage = err.Error()
			runErr = err
			break
		}
		history := p.Statistics()
		w.UpdateFooter(history[len(history)-1], sim.Days)
	}

	// Always clean up the footer before returning.
	w.ClearFooter()

	result.Statistics = p.Statistics()
	result.Days = len(result.Statistics)
	result.Finished = len(p.FinishedWork())
	result.Duration = time.Since(start)

	if cfg.Metrics != nil {
		cfg.Metrics.ObserveHistory(result.Statistics)
	}
	if cfg.Logger != nil {
		if runErr != nil {
			cfg.Logger.Errorf("%v", runErr)
		}
		cfg.Logger.Exit(progress.Summary{
			Reason:   result.ExitReason,
			Message:  result.ExitMessage,
			Days:     result.Days,
			Stories:  result.Stories,
			Finished: result.Finished,
		})
	}

	if runErr != nil {
		return result, runErr
	}
	if cfg.Verbose {
		printRunSummary(w, result)
	}
	return result, nil
}

// printRunSummary prints a compact summary after the run finishes.
func printRunSummary(w *Writer, result *Result) {
	if result == nil {
		return
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, w.style(colorDim, "────────────────────────────"))

	status := w.styleBold(colorGreen, result.ExitReason)
	if result.ExitReason != ExitReasonCompleted {
		status = w.styleBold(colorRed, result.ExitReason)
	}

	fmt.Fprintf(w.out, "%s %s", w.style(colorDim, "Exit:"), status)
	if result.ExitMessage != "" {
		fmt.Fprintf(w.out, " %s", w.style(colorDim, "("+result.ExitMessage+")"))
	}
	fmt.Fprintln(w.out)

	fmt.Fprintf(w.out, "%s %s  %s %s  %s %s\n",
		w.style(colorDim, "Days:"), w.style(colorWhite, fmt.Sprintf("%d", result.Days)),
		w.style(colorDim, "Finished:"), w.style(colorWhite, fmt.Sprintf("%d/%d", result.Finished, result.Stories)),
		w.style(colorDim, "Duration:"), w.style(colorWhite, formatElapsed(result.Duration)),
	)
}
