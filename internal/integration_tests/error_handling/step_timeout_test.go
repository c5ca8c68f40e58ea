package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/app"
	"github.com/vk/buildgridgo/internal/report"
	"github.com/vk/buildgridgo/internal/testutil"
)

// A per-step timeout kills the process and records a timed-out outcome,
// which fails the environment like any other step failure.
func TestErrorHandling_StepTimeoutFailsEnvironment(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipelineHCL := `
		pipeline {
			name = "ci"
		}

		axis "os" {
			values = ["linux"]
		}

		step "hang" {
			run     = "sleep 10"
			timeout = "200ms"
		}

		step "after" {
			run = "echo never reached"
		}
	`

	// --- Act ---
	start := time.Now()
	res := testutil.RunPipeline(t, map[string]string{"ci.hcl": pipelineHCL}, nil)

	// --- Assert ---
	require.NoError(t, res.Err)
	require.Less(t, time.Since(start), 5*time.Second, "the hanging step must be cut short")
	require.False(t, res.Report.Success)

	env := testutil.EnvResult(t, res.Report, "linux")
	require.Equal(t, report.EnvFailed, env.Status)
	require.Equal(t, []string{"hang"}, testutil.StepNames(env))
	require.Equal(t, report.StepTimedOut, testutil.Outcome(t, env, "hang").Status)
}

// The pipeline-level default timeout applies to steps without their own, and
// a per-step timeout overrides it.
func TestErrorHandling_DefaultStepTimeoutApplies(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipelineHCL := `
		pipeline {
			name = "ci"

			defaults {
				step_timeout = "200ms"
			}
		}

		axis "os" {
			values = ["linux"]
		}

		step "quick-enough" {
			run     = "sleep 0.1"
			timeout = "30s"
		}

		step "hang" {
			run = "sleep 10"
		}
	`

	// --- Act ---
	res := testutil.RunPipeline(t, map[string]string{"ci.hcl": pipelineHCL}, nil)

	// --- Assert ---
	require.NoError(t, res.Err)
	require.False(t, res.Report.Success)

	env := testutil.EnvResult(t, res.Report, "linux")
	require.Equal(t, report.StepPassed, testutil.Outcome(t, env, "quick-enough").Status)
	require.Equal(t, report.StepTimedOut, testutil.Outcome(t, env, "hang").Status)
}

// The --timeout flag overrides the pipeline's default step timeout.
func TestErrorHandling_CLITimeoutOverridesPipelineDefault(t *testing.T) {
	t.Parallel()

	// --- Arrange: the pipeline default would let the step pass.
	pipelineHCL := `
		pipeline {
			name = "ci"

			defaults {
				step_timeout = "1m"
			}
		}

		axis "os" {
			values = ["linux"]
		}

		step "hang" {
			run = "sleep 10"
		}
	`

	// --- Act ---
	res := testutil.RunPipeline(t, map[string]string{"ci.hcl": pipelineHCL}, func(cfg *app.Config) {
		cfg.StepTimeout = 200 * time.Millisecond
	})

	// --- Assert ---
	require.NoError(t, res.Err)
	require.False(t, res.Report.Success)
	env := testutil.EnvResult(t, res.Report, "linux")
	require.Equal(t, report.StepTimedOut, testutil.Outcome(t, env, "hang").Status)
}
