package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/virtualphotonics/mcbatch/internal/config"
	"github.com/virtualphotonics/mcbatch/internal/directive"
	"github.com/virtualphotonics/mcbatch/internal/engine"
	mcerrors "github.com/virtualphotonics/mcbatch/internal/errors"
	"github.com/virtualphotonics/mcbatch/internal/ledger"
	"github.com/virtualphotonics/mcbatch/internal/logging"
	"github.com/virtualphotonics/mcbatch/internal/runner"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
	"github.com/virtualphotonics/mcbatch/internal/sweep"
	"github.com/virtualphotonics/mcbatch/internal/validate"
)

// batch is the expanded set of runs together with where it came from.
type batch struct {
	templates []string
	runs      []sweep.ExpandedRun
}

// runBatch drives one batch from template to summary and returns the exit code.
func (a *app) runBatch(ctx context.Context, settings *config.Settings, opts directive.Options) int {
	logger := logging.FromContext(ctx)

	b, err := a.expand(ctx, opts)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return mcerrors.GetExitCode(err)
	}

	verdict := validate.Gate(b.runs, validate.Default())
	if !verdict.Passed() {
		f := verdict.First
		a.out.ErrorPrefix("input %s failed validation", f.Run)
		a.out.Errorln("  rule:    %s", f.Result.Rule)
		a.out.Errorln("  remarks: %s", f.Result.Remarks)
		if verdict.Failed > 1 {
			a.out.Errorln("  %d of %d inputs failed; no simulation was started", verdict.Failed, verdict.Checked)
		}
		logger.Error("batch rejected", "run", f.Run, "rule", f.Result.Rule, "failed", verdict.Failed)
		return mcerrors.GetExitCode(verdict.Err())
	}
	logger.Info("batch validated", "runs", len(b.runs))

	eng, err := engine.New(settings.Engine)
	if err != nil {
		err = mcerrors.Configf("%s: %v", config.EnvEngine, err)
		a.out.ErrorPrefix("%v", err)
		return mcerrors.GetExitCode(err)
	}

	requested := opts.CPUCount()
	if requested > settings.MaxWorkers {
		logger.Debug("cpucount capped", "requested", requested, "max", settings.MaxWorkers)
		requested = settings.MaxWorkers
	}
	plan := runner.NewPlan(b.runs, requested, a.resolve(opts.OutPath()))

	runnerOpts := []runner.Option{runner.WithOutput(a.out)}
	rec, closeLedger := a.openLedger(logger, settings.Ledger, b, plan)
	defer closeLedger()
	if rec != nil {
		ctx = logging.WithLogger(ctx, logger.With("batch", rec.ID()))
		runnerOpts = append(runnerOpts, runner.WithObserver(rec))
		a.recordState(logger, rec, runner.StateDispatched)
		if cmd, ok := eng.(*engine.Command); ok {
			eng = cmd.WithEnv(map[string]string{engine.EnvBatchID: rec.ID()})
		}
	}

	a.out.Section(fmt.Sprintf("Running %d simulations on %d workers", len(plan.Runs), plan.Workers))
	report, err := runner.New(eng, runnerOpts...).Dispatch(ctx, plan)
	var recorded *ledger.BatchRecord
	if rec != nil {
		a.recordState(logger, rec, report.State())
		if rerr := rec.Err(); rerr != nil {
			a.out.Warning("ledger: %v", rerr)
		}
		if br, rerr := rec.Record(); rerr != nil {
			a.out.Warning("ledger: %v", rerr)
		} else {
			recorded = &br
		}
	}

	a.printSummary(report, recorded)
	if err != nil {
		if first := report.FirstFailure(); first != nil {
			a.out.ErrorPrefix("[%s] %s", first.Name, first.Status.Message)
		}
		return mcerrors.GetExitCode(err)
	}
	return mcerrors.ExitSuccess
}

// expand loads the template(s) and produces the ordered runs. A sweep over
// one template takes precedence over infiles.
func (a *app) expand(ctx context.Context, opts directive.Options) (*batch, error) {
	logger := logging.FromContext(ctx)

	if !opts.SweepMode() {
		if opts.OutName() != "" {
			a.out.Warning("outname is ignored when running infiles")
		}
		var inputs []*simulation.Input
		for _, p := range opts.InFiles() {
			in, err := a.loadTemplate(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
		logger.Info("independent inputs loaded", "count", len(inputs))
		return &batch{templates: opts.InFiles(), runs: sweep.Singles(inputs)}, nil
	}

	if opts.InFile() == "" {
		return nil, &mcerrors.Error{
			Kind:    mcerrors.KindMissingTemplate,
			Message: "no input template given; use infile=<path> or geninfiles for samples",
		}
	}
	tmpl, err := a.loadTemplate(opts.InFile())
	if err != nil {
		return nil, err
	}

	acc := simulation.Accessor{}
	var axes []sweep.Axis
	for _, req := range opts.Sweeps() {
		axis, err := sweep.NewAxis(req.Name, req.Spec, tmpl, acc)
		if err != nil {
			a.out.Warning("%s sweep skipped: %v", req.Spec.Mode(), err)
			logger.Warn("sweep skipped", "param", req.Name, "mode", req.Spec.Mode().String(), "error", err)
			continue
		}
		logger.Debug("sweep axis", "axis", axis.String())
		axes = append(axes, axis)
	}

	combos, err := sweep.Expand(axes)
	if err != nil {
		return nil, err
	}
	runs, err := sweep.Materialize(tmpl, combos, opts.OutName(), acc)
	if err != nil {
		return nil, mcerrors.Wrap(err, fmt.Sprintf("expand %s: %v", opts.InFile(), err))
	}
	logger.Info("batch expanded", "axes", len(axes), "runs", len(runs))
	return &batch{templates: []string{opts.InFile()}, runs: runs}, nil
}

func (a *app) loadTemplate(path string) (*simulation.Input, error) {
	in, warnings, err := simulation.Load(a.resolve(path))
	if err != nil {
		return nil, mcerrors.MissingTemplate(path, err)
	}
	for _, w := range warnings {
		a.out.Warning("%s: %s", path, w)
	}
	return in, nil
}

// openLedger records the batch when a ledger path is configured. Ledger
// failures are reported and the batch runs without it.
func (a *app) openLedger(logger *slog.Logger, path string, b *batch, plan runner.Plan) (*ledger.Recorder, func()) {
	noop := func() {}
	if path == "" {
		return nil, noop
	}
	store, err := ledger.Open(a.resolve(path))
	if err != nil {
		a.out.Warning("ledger disabled: %v", err)
		return nil, noop
	}

	names := make([]string, len(plan.Runs))
	dirs := make([]string, len(plan.Runs))
	for i, r := range plan.Runs {
		names[i] = r.Name()
		dirs[i] = plan.RunDir(r)
	}
	rec, err := store.Begin(ledger.Batch{
		Template:   strings.Join(b.templates, ","),
		OutputPath: plan.OutputPath,
		Runs:       names,
		Dirs:       dirs,
		Workers:    plan.Workers,
	})
	if err != nil {
		store.Close()
		a.out.Warning("ledger disabled: %v", err)
		return nil, noop
	}
	logger.Debug("ledger batch opened", "batch", rec.ID(), "path", path)
	return rec, func() { store.Close() }
}

func (a *app) recordState(logger *slog.Logger, rec *ledger.Recorder, state runner.State) {
	if err := rec.SetState(state); err != nil {
		a.out.Warning("ledger: %v", err)
		logger.Warn("ledger state update failed", "state", state.String(), "error", err)
	}
}

func (a *app) printSummary(report *runner.Report, recorded *ledger.BatchRecord) {
	a.out.SummaryHeader("Batch Summary")

	rows := make([][]string, len(report.Results))
	for i, res := range report.Results {
		status := "ok"
		if !res.Status.Success {
			status = "failed"
		}
		duration := "-"
		if res.Attempted {
			duration = runner.FormatDuration(res.Duration)
		}
		rows[i] = []string{res.Name, status, duration}
	}
	a.out.Table([]string{"RUN", "STATUS", "DURATION"}, rows)
	a.out.Println("")

	a.out.SummaryItem("Workers", fmt.Sprintf("%d", report.Workers))
	a.out.SummaryItem("Elapsed", runner.FormatDuration(report.Elapsed))
	if recorded != nil {
		a.out.SummaryItem("Ledger", fmt.Sprintf("%s (%s)", recorded.ID, recorded.State))
	}
	a.out.SummaryPassed("Succeeded", fmt.Sprintf("%d", report.Succeeded()))
	if failed := report.Failed(); failed > 0 {
		a.out.SummaryFailed("Failed", fmt.Sprintf("%d", failed))
		a.out.FinalFailure("%d of %d simulations failed.", failed, len(report.Results))
		a.out.Hint("Engine output of each run is in <run>/<run>%s.", engine.LogExt)
		return
	}
	a.out.FinalSuccess("Simulations complete.")
}
