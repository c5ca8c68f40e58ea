package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/report"
	"github.com/vk/buildgridgo/internal/testutil"
)

// continue_on_error lets later steps run after a failure, but the environment
// and the run still fail overall.
func TestErrorHandling_ContinueOnErrorRunsRemainingSteps(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipelineHCL := `
		pipeline {
			name = "ci"
		}

		axis "os" {
			values = ["linux"]
		}

		step "lint" {
			run               = "echo lint problems; exit 1"
			continue_on_error = true
		}

		step "test" {
			run = "echo tests pass"
		}
	`

	// --- Act ---
	res := testutil.RunPipeline(t, map[string]string{"ci.hcl": pipelineHCL}, nil)

	// --- Assert ---
	require.NoError(t, res.Err)
	require.False(t, res.Report.Success, "a tolerated failure still fails the run")

	env := testutil.EnvResult(t, res.Report, "linux")
	require.Equal(t, report.EnvFailed, env.Status)
	require.Equal(t, []string{"lint", "test"}, testutil.StepNames(env))
	require.Equal(t, report.StepFailed, testutil.Outcome(t, env, "lint").Status)
	require.Equal(t, report.StepPassed, testutil.Outcome(t, env, "test").Status)
}
