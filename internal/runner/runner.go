// Package runner dispatches a validated batch of simulation runs to the
// engine, sequentially or through a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/virtualphotonics/mcbatch/internal/engine"
	"github.com/virtualphotonics/mcbatch/internal/logging"
	"github.com/virtualphotonics/mcbatch/internal/output"
	"github.com/virtualphotonics/mcbatch/internal/sweep"
)

// Observer receives run lifecycle events. Methods may be called from
// several goroutines at once.
type Observer interface {
	RunStarted(index int, name, dir string)
	RunFinished(res RunResult)
}

// Runner dispatches plans to an engine.
type Runner struct {
	engine   engine.Engine
	out      *output.Writer
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets the writer used for progress lines.
func WithOutput(w *output.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithObserver registers an observer for run events.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// New creates a Runner for e.
func New(e engine.Engine, opts ...Option) *Runner {
	r := &Runner{engine: e, out: output.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch executes every run of plan and returns the per-run results in
// plan order. Every run is attempted even after a failure; the returned
// error is non-nil if any run failed.
func (r *Runner) Dispatch(ctx context.Context, plan Plan) (*Report, error) {
	logger := logging.FromContext(ctx)
	if plan.SerializedForDatabase() {
		r.out.Notice("runs write databases; running %d simulations sequentially instead of %d in parallel",
			len(plan.Runs), plan.Requested)
		logger.Info("parallelism disabled", "requested", plan.Requested, "reason", "database output")
	}

	report := &Report{
		Results: make([]RunResult, len(plan.Runs)),
		Workers: plan.Workers,
	}
	start := time.Now()
	logger.Info("dispatching batch", "runs", len(plan.Runs), "workers", plan.Workers, "outpath", plan.OutputPath)

	if plan.Workers <= 1 {
		r.runSequential(ctx, plan, report)
	} else {
		r.runParallel(ctx, plan, report)
	}

	report.Elapsed = time.Since(start)
	logger.Info("batch finished", "succeeded", report.Succeeded(), "failed", report.Failed(), "duration", report.Elapsed)
	return report, report.Err()
}

// runSequential executes runs one at a time in plan order.
func (r *Runner) runSequential(ctx context.Context, plan Plan, report *Report) {
	for i, run := range plan.Runs {
		if err := ctx.Err(); err != nil {
			report.Results[i] = r.notAttempted(plan, i, run, err)
			continue
		}
		report.Results[i] = r.runOne(ctx, plan, i, run)
	}
}

// runParallel executes runs concurrently using a bounded worker pool.
//
// A channel semaphore with plan.Workers slots limits how many runs are in
// flight. A failed run does not cancel the others.
func (r *Runner) runParallel(ctx context.Context, plan Plan, report *Report) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, plan.Workers)

	for i, run := range plan.Runs {
		wg.Add(1)
		go func(i int, run sweep.ExpandedRun) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				// Results[i] is written only by this goroutine.
				report.Results[i] = r.notAttempted(plan, i, run, ctx.Err())
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				report.Results[i] = r.notAttempted(plan, i, run, err)
				return
			}
			report.Results[i] = r.runOne(ctx, plan, i, run)
		}(i, run)
	}

	wg.Wait()
}

// runOne creates the run directory and hands the input to the engine.
func (r *Runner) runOne(ctx context.Context, plan Plan, i int, run sweep.ExpandedRun) RunResult {
	name := run.Name()
	dir := plan.RunDir(run)
	logger := logging.FromContext(ctx).With("run", name, "dir", dir)

	res := RunResult{Index: i, Name: name, Dir: dir, Started: time.Now(), Attempted: true}
	r.out.RunStart(i+1, len(plan.Runs), name)
	if r.observer != nil {
		r.observer.RunStarted(i, name, dir)
	}
	logger.Debug("run started", "suffix", run.Suffix)

	if err := os.MkdirAll(dir, 0755); err != nil {
		res.Status = engine.Failed("create output directory: %v", err)
	} else {
		res.Status = r.engine.RunOne(ctx, run.Input, dir)
	}
	res.Duration = time.Since(res.Started)

	if res.Status.Success {
		r.out.RunSuccess(name, FormatDuration(res.Duration))
		logger.Info("run succeeded", "duration", res.Duration)
	} else {
		r.out.RunFailed(name, res.Status.Message)
		logger.Warn("run failed", "duration", res.Duration, "message", res.Status.Message)
	}
	if r.observer != nil {
		r.observer.RunFinished(res)
	}
	return res
}

func (r *Runner) notAttempted(plan Plan, i int, run sweep.ExpandedRun, err error) RunResult {
	res := RunResult{
		Index:  i,
		Name:   run.Name(),
		Dir:    plan.RunDir(run),
		Status: engine.Failed("not started: %v", err),
	}
	if r.observer != nil {
		r.observer.RunFinished(res)
	}
	return res
}

// FormatDuration renders d for progress and summary lines.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
