package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/events"
	"github.com/vk/buildgridgo/internal/executor"
	"github.com/vk/buildgridgo/internal/report"
	"github.com/vk/buildgridgo/internal/runner"
)

// ErrRunFailed reports that the pipeline ran to completion and at least one
// environment did not pass. The CLI maps it to exit code 1; the detail lives
// in the rendered report, not the error.
var ErrRunFailed = errors.New("one or more environments failed")

// Run executes the pipeline once (or repeatedly, in watch mode) and renders
// the report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.Watch {
		return a.watch(ctx)
	}

	rep, err := a.RunOnce(ctx, uuid.NewString())
	if err != nil {
		return err
	}
	if !rep.Success {
		return ErrRunFailed
	}
	return nil
}

// RunOnce performs one full run under the given run ID and returns its
// report. The error is non-nil only when no meaningful report could be
// produced (definition errors, artifact write failures); a run whose
// environments failed returns a report with Success=false and a nil error.
func (a *App) RunOnce(ctx context.Context, runID string) (*report.PipelineReport, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	pipeline, plans, err := a.preparePlans(ctx)
	if err != nil {
		return nil, err
	}

	var emitter events.Emitter = events.Nop{}
	if a.config.EventsURL != "" {
		sio, err := events.NewSocketIO(ctx, a.config.EventsURL)
		if err != nil {
			a.logger.Warn("Event emitter unavailable, continuing without it.", "error", err)
		} else {
			emitter = sio
			defer sio.Close()
		}
	}

	run := runner.New(runner.Options{
		BaseEnv:        a.baseEnv(),
		KeepWorkspaces: a.config.KeepWorkspaces,
		RunID:          runID,
		Pipeline:       pipeline.Name,
		Emitter:        emitter,
	})
	exec := executor.New(run, plans, executor.Options{
		Concurrency:     a.config.Concurrency,
		FailFast:        a.config.FailFast,
		FailFastOnInfra: a.config.FailFastOnInfra,
	})

	a.logger.Info("🚀 Starting matrix execution...",
		"pipeline", pipeline.Name,
		"run_id", runID,
		"environments", len(plans),
	)
	emitter.PipelineStarted(ctx, runID, pipeline.Name, len(plans))
	started := time.Now()

	results := exec.Run(ctx)

	rep := report.Aggregate(runID, pipeline.Name, results, started, time.Now())
	emitter.PipelineFinished(ctx, rep)
	a.logger.Info("🏁 Execution finished.", "run_id", runID, "success", rep.Success)

	report.Render(a.outW, rep, a.config.Verbose)

	if a.config.ReportFile != "" {
		if err := report.WriteFile(a.config.ReportFile, rep); err != nil {
			return rep, err
		}
		a.logger.Info("Report artifact written.", "path", a.config.ReportFile)
	}
	return rep, nil
}

// baseEnv assembles the host variables passed to every step. Steps never
// inherit os.Environ() implicitly; without --inherit-env only the handful of
// variables a child process cannot reasonably live without are forwarded.
func (a *App) baseEnv() map[string]string {
	out := map[string]string{}
	if a.config.InheritEnv {
		for _, entry := range os.Environ() {
			for i := 0; i < len(entry); i++ {
				if entry[i] == '=' {
					out[entry[:i]] = entry[i+1:]
					break
				}
			}
		}
		return out
	}
	for _, key := range []string{"PATH", "HOME", "TMPDIR"} {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = v
		}
	}
	return out
}
