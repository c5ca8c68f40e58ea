// Package executor orchestrates a run: it dispatches one runner goroutine
// per environment, bounds their parallelism, implements fail-fast soft
// cancellation across environments, and joins on all of them before handing
// the results to the report aggregator. Environments are independent; only
// steps within one environment are ordered.
package executor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/plan"
	"github.com/vk/buildgridgo/internal/report"
	"github.com/vk/buildgridgo/internal/runner"
)

// Options configures a run.
type Options struct {
	// Concurrency bounds the number of environments running at once.
	// Zero means unbounded, the default.
	Concurrency int64

	// FailFast cancels still-running environments once one fails. The
	// cancellation is cooperative: runners check it between steps only.
	FailFast bool

	// FailFastOnInfra extends fail-fast to infra-failed environments.
	// By default a provisioning failure never cancels other environments.
	FailFastOnInfra bool
}

// Executor drives one pipeline run across all expanded environments.
type Executor struct {
	runner *runner.Runner
	plans  []*plan.Plan
	opts   Options
}

// New creates an Executor over pre-resolved per-environment plans.
func New(r *runner.Runner, plans []*plan.Plan, opts Options) *Executor {
	return &Executor{runner: r, plans: plans, opts: opts}
}

// Run executes every environment and returns all results. It returns only
// after every runner goroutine has finished; completion order between
// environments carries no meaning, each result keeps its matrix index.
func (e *Executor) Run(ctx context.Context) []report.EnvironmentResult {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting.", "environments", len(e.plans), "concurrency", e.opts.Concurrency, "fail_fast", e.opts.FailFast)

	// The soft context carries only fail-fast cancellation. It is kept
	// separate from the hard context so a user abort can still kill an
	// in-flight process while fail-fast never does.
	softCtx, softCancel := context.WithCancel(context.Background())
	defer softCancel()

	var sem *semaphore.Weighted
	if e.opts.Concurrency > 0 {
		sem = semaphore.NewWeighted(e.opts.Concurrency)
	}

	results := make([]report.EnvironmentResult, len(e.plans))
	var wg sync.WaitGroup
	for i, pl := range e.plans {
		wg.Add(1)
		go func(i int, pl *plan.Plan) {
			defer wg.Done()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					results[i] = cancelledResult(i, pl)
					return
				}
				defer sem.Release(1)
			}
			if softCtx.Err() != nil {
				results[i] = cancelledResult(i, pl)
				return
			}

			results[i] = e.runner.Run(ctx, softCtx, i, pl)

			if e.opts.FailFast && e.triggersFailFast(results[i].Status) {
				logger.Warn("🛑 Fail-fast triggered, cancelling remaining environments.", "environment", results[i].ID)
				softCancel()
			}
		}(i, pl)
	}
	wg.Wait()

	logger.Debug("Executor finished.", "environments", len(results))
	return results
}

func (e *Executor) triggersFailFast(status report.EnvStatus) bool {
	if status == report.EnvFailed {
		return true
	}
	return status == report.EnvInfraFailed && e.opts.FailFastOnInfra
}

// cancelledResult reports an environment that never started: every step is
// skipped and no workspace was provisioned.
func cancelledResult(index int, pl *plan.Plan) report.EnvironmentResult {
	result := report.EnvironmentResult{
		Index:  index,
		ID:     pl.Environment.ID(),
		Axes:   pl.Environment.Values(),
		Status: report.EnvCancelled,
	}
	for _, step := range pl.Steps {
		result.Steps = append(result.Steps, report.StepOutcome{
			Name:   step.Name,
			Status: report.StepSkipped,
		})
	}
	return result
}
