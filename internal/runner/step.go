package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/plan"
	"github.com/vk/buildgridgo/internal/report"
)

// killWaitDelay bounds how long a cancelled step may keep its output pipe
// open before Wait gives up on it. The process-group kill below normally
// closes the pipe immediately; the delay is the backstop for descendants
// that ignored the kill.
const killWaitDelay = 2 * time.Second

// runStep launches one step as an external process and turns its result into
// a StepOutcome. The step context enforces the per-step timeout on top of
// the hard context, so a user abort kills the process while a fail-fast
// cancel never does.
func (r *Runner) runStep(ctx context.Context, step plan.Step, workspace, envID string, injected map[string]string) report.StepOutcome {
	logger := ctxlog.FromContext(ctx).With("environment", envID, "step", step.Name)
	logger.Info("▶️ Starting step")
	r.emitter.StepStarted(ctx, envID, step.Name)

	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(stepCtx, step.Argv[0], step.Argv[1:]...)
	cmd.Dir = workspace
	cmd.Env = r.processEnv(step, workspace, envID, injected)

	// The step runs in its own process group so that a timeout or user abort
	// kills the whole tree, not just the direct child. Killing only the child
	// would leave grandchildren holding the output pipe open and cmd.Run
	// would block until they exit on their own.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = killWaitDelay

	// Stdout and Stderr share one capped writer; os/exec serializes the
	// writes when both streams use the same Writer value.
	output := newLimitWriter(r.opts.OutputLimit)
	cmd.Stdout = output
	cmd.Stderr = output

	started := time.Now()
	err := cmd.Run()

	outcome := report.StepOutcome{
		Name:     step.Name,
		Status:   report.StepPassed,
		Output:   output.String(),
		Duration: time.Since(started),
	}

	if err != nil {
		outcome.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
		}

		if stepCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			outcome.Status = report.StepTimedOut
			outcome.Error = fmt.Sprintf("%v (%s)", ErrStepTimeout, step.Timeout)
			logger.Warn("⏱️ Step timed out.", "timeout", step.Timeout)
		} else {
			outcome.Status = report.StepFailed
			outcome.Error = err.Error()
			logger.Warn("❌ Step failed.", "exit_code", outcome.ExitCode, "error", err)
		}
	} else {
		logger.Info("✅ Finished step", "duration", outcome.Duration)
	}

	r.emitter.StepFinished(ctx, envID, outcome)
	return outcome
}

// processEnv assembles the step's process environment. Precedence, lowest
// first: base env, resolved step env (pipeline globals already merged in by
// the planner), MATRIX_* axis injection, BUILDGRID_* run metadata.
func (r *Runner) processEnv(step plan.Step, workspace, envID string, injected map[string]string) []string {
	merged := make(map[string]string, len(r.opts.BaseEnv)+len(step.Env)+len(injected)+4)
	for k, v := range r.opts.BaseEnv {
		merged[k] = v
	}
	for k, v := range step.Env {
		merged[k] = v
	}
	for k, v := range injected {
		merged[k] = v
	}
	merged["BUILDGRID_RUN_ID"] = r.opts.RunID
	merged["BUILDGRID_PIPELINE"] = r.opts.Pipeline
	merged["BUILDGRID_ENVIRONMENT"] = envID
	merged["BUILDGRID_WORKSPACE"] = workspace

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
