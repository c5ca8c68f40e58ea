package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vk/buildgridgo/internal/matrix"
	"github.com/vk/buildgridgo/internal/plan"
	"github.com/vk/buildgridgo/internal/report"
	"github.com/vk/buildgridgo/internal/runner"
)

func TestMain(m *testing.M) {
	// The socket.io transport stack reached through internal/events spawns
	// long-lived goroutines from package init (signal handling and an
	// interval timer); they are process-wide, not per-test leaks.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/zishang520/engine.io-client-go/engine.setupSignalHandling.func1"),
		goleak.IgnoreTopFunction("github.com/zishang520/engine.io/v2/utils.SetInterval.func1"),
		goleak.IgnoreTopFunction("os/signal.NotifyContext.func1"),
	)
}

func newTestRunner() *runner.Runner {
	return runner.New(runner.Options{
		BaseEnv:  map[string]string{"PATH": os.Getenv("PATH")},
		RunID:    "test-run",
		Pipeline: "ci",
	})
}

func envPlan(id string, steps ...plan.Step) *plan.Plan {
	return &plan.Plan{
		Environment: matrix.NewEnvironment([]string{"target"}, map[string]string{"target": id}),
		Steps:       steps,
	}
}

func shStep(name, script string) plan.Step {
	return plan.Step{Name: name, Argv: []string{"sh", "-c", script}}
}

func TestRun_AllEnvironmentsCompleteIndependently(t *testing.T) {
	t.Parallel()

	// Arrange: one failing environment among passing ones, no fail-fast.
	plans := []*plan.Plan{
		envPlan("alpha", shStep("work", "true")),
		envPlan("beta", shStep("work", "exit 1")),
		envPlan("gamma", shStep("work", "true")),
	}
	exec := New(newTestRunner(), plans, Options{})

	// Act
	results := exec.Run(context.Background())

	// Assert: every environment ran to completion, results ordered by index.
	require.Len(t, results, 3)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, []string{results[0].ID, results[1].ID, results[2].ID})
	require.Equal(t, report.EnvPassed, results[0].Status)
	require.Equal(t, report.EnvFailed, results[1].Status)
	require.Equal(t, report.EnvPassed, results[2].Status)
}

func TestRun_FailFastCancelsSlowerEnvironments(t *testing.T) {
	t.Parallel()

	// Arrange: the fast environment fails immediately; the slow one has a
	// long first step followed by more steps that should be skipped.
	plans := []*plan.Plan{
		envPlan("fast", shStep("boom", "exit 1")),
		envPlan("slow",
			shStep("warmup", "sleep 1"),
			shStep("build", "true"),
			shStep("test", "true"),
		),
	}
	exec := New(newTestRunner(), plans, Options{FailFast: true})

	// Act
	results := exec.Run(context.Background())

	// Assert: the in-flight warmup step finished, the rest were skipped.
	require.Equal(t, report.EnvFailed, results[0].Status)

	slow := results[1]
	require.Equal(t, report.EnvCancelled, slow.Status)
	require.Len(t, slow.Steps, 3)
	require.Equal(t, report.StepPassed, slow.Steps[0].Status, "in-flight step must run to completion")
	require.Equal(t, report.StepSkipped, slow.Steps[1].Status)
	require.Equal(t, report.StepSkipped, slow.Steps[2].Status)
}

func TestRun_WithoutFailFastEverythingRuns(t *testing.T) {
	t.Parallel()

	plans := []*plan.Plan{
		envPlan("fast", shStep("boom", "exit 1")),
		envPlan("slow", shStep("warmup", "sleep 0.3"), shStep("test", "true")),
	}
	exec := New(newTestRunner(), plans, Options{FailFast: false})

	results := exec.Run(context.Background())

	require.Equal(t, report.EnvFailed, results[0].Status)
	require.Equal(t, report.EnvPassed, results[1].Status)
	for _, step := range results[1].Steps {
		require.Equal(t, report.StepPassed, step.Status)
	}
}

func TestRun_ConcurrencyBoundsParallelism(t *testing.T) {
	t.Parallel()

	// Arrange: each environment appends a start marker to a shared file,
	// waits for a beat, then appends an end marker. With concurrency 1 the
	// markers must never interleave.
	markerFile := filepath.Join(t.TempDir(), "markers")
	var plans []*plan.Plan
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("env%d", i)
		script := fmt.Sprintf("echo start >> %s; sleep 0.1; echo end >> %s", markerFile, markerFile)
		plans = append(plans, envPlan(id, shStep("work", script)))
	}
	exec := New(newTestRunner(), plans, Options{Concurrency: 1})

	// Act
	results := exec.Run(context.Background())

	// Assert
	for _, result := range results {
		require.Equal(t, report.EnvPassed, result.Status)
	}
	data, err := os.ReadFile(markerFile)
	require.NoError(t, err)
	require.Equal(t, "start\nend\nstart\nend\nstart\nend\n", string(data))
}

func TestRun_HardCancelAbortsQueuedEnvironments(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plans := []*plan.Plan{
		envPlan("alpha", shStep("work", "true")),
		envPlan("beta", shStep("work", "true")),
	}
	exec := New(newTestRunner(), plans, Options{Concurrency: 1})

	start := time.Now()
	results := exec.Run(ctx)

	require.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, results, 2)
	for _, result := range results {
		require.Equal(t, report.EnvCancelled, result.Status)
		for _, step := range result.Steps {
			require.Equal(t, report.StepSkipped, step.Status)
		}
	}
}
