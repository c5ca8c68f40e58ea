package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/events"
	"github.com/vk/buildgridgo/internal/plan"
	"github.com/vk/buildgridgo/internal/report"
)

// ErrStepTimeout marks a step that exceeded its allotted duration. It
// propagates exactly like a step failure.
var ErrStepTimeout = errors.New("step exceeded its timeout")

// DefaultOutputLimit caps the captured combined output of one step.
const DefaultOutputLimit = 1 << 20

// Options configures a Runner. There is deliberately no way to inherit
// ambient host state implicitly; BaseEnv is the only channel for it.
type Options struct {
	// BaseEnv is the set of host variables every step process receives.
	BaseEnv map[string]string

	// WorkspaceRoot is where per-environment workspaces are created.
	// Empty means the system temp directory.
	WorkspaceRoot string

	// KeepWorkspaces retains workspaces after the run for debugging.
	KeepWorkspaces bool

	// OutputLimit caps captured bytes per step; 0 means DefaultOutputLimit.
	OutputLimit int64

	RunID    string
	Pipeline string

	Emitter events.Emitter
}

// Runner executes resolved plans, one environment at a time.
type Runner struct {
	opts    Options
	emitter events.Emitter
}

// New creates a Runner with the given options.
func New(opts Options) *Runner {
	if opts.OutputLimit <= 0 {
		opts.OutputLimit = DefaultOutputLimit
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Runner{opts: opts, emitter: emitter}
}

// Run executes the plan's steps sequentially inside a fresh workspace.
//
// Two contexts govern cancellation: ctx is the hard context (user abort); it
// kills an in-flight process. softCtx is the fail-fast context; it is only
// checked between steps, so an in-flight step always runs to completion and
// the remaining steps are recorded as skipped.
func (r *Runner) Run(ctx, softCtx context.Context, index int, pl *plan.Plan) report.EnvironmentResult {
	envID := pl.Environment.ID()
	logger := ctxlog.FromContext(ctx).With("environment", envID)
	started := time.Now()

	result := report.EnvironmentResult{
		Index:  index,
		ID:     envID,
		Axes:   pl.Environment.Values(),
		Status: report.EnvPassed,
	}

	workspace, err := os.MkdirTemp(r.opts.WorkspaceRoot, "buildgrid-")
	if err != nil {
		logger.Error("Failed to provision workspace.", "error", err)
		result.Status = report.EnvInfraFailed
		result.Error = fmt.Sprintf("failed to provision workspace: %v", err)
		result.Duration = time.Since(started)
		return result
	}
	if r.opts.KeepWorkspaces {
		logger.Info("Keeping workspace after run.", "workspace", workspace)
	} else {
		defer os.RemoveAll(workspace)
	}

	r.emitter.EnvironmentStarted(ctx, envID)
	logger.Debug("Environment runner started.", "workspace", workspace, "steps", len(pl.Steps))

	injected := pl.Environment.InjectedEnv()

	failed := false
	cancelled := false
	for i := 0; i < len(pl.Steps); i++ {
		if ctx.Err() != nil || softCtx.Err() != nil {
			logger.Info("⏭️ Cancellation requested, skipping remaining steps.", "skipped_from", pl.Steps[i].Name)
			for ; i < len(pl.Steps); i++ {
				result.Steps = append(result.Steps, report.StepOutcome{
					Name:   pl.Steps[i].Name,
					Status: report.StepSkipped,
				})
			}
			cancelled = true
			break
		}

		outcome := r.runStep(ctx, pl.Steps[i], workspace, envID, injected)
		result.Steps = append(result.Steps, outcome)

		if outcome.Status == report.StepFailed || outcome.Status == report.StepTimedOut {
			failed = true
			if !pl.Steps[i].ContinueOnError {
				// Short-circuit: remaining steps are never executed and
				// do not appear in the result.
				logger.Debug("Step failed, short-circuiting environment.", "step", pl.Steps[i].Name)
				break
			}
			logger.Debug("Step failed but continue_on_error is set.", "step", pl.Steps[i].Name)
		}
	}

	switch {
	case failed:
		result.Status = report.EnvFailed
	case cancelled:
		result.Status = report.EnvCancelled
	}
	result.Duration = time.Since(started)

	r.emitter.EnvironmentFinished(ctx, result)
	logger.Debug("Environment runner finished.", "status", result.Status, "duration", result.Duration)
	return result
}
