package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/report"
)

// EnvResult finds one environment's result by its ID and fails the test if
// it is absent.
func EnvResult(t *testing.T, rep *report.PipelineReport, envID string) report.EnvironmentResult {
	t.Helper()
	require.NotNil(t, rep, "expected a pipeline report")
	for _, env := range rep.Environments {
		if env.ID == envID {
			return env
		}
	}
	t.Fatalf("environment %q not found in report", envID)
	return report.EnvironmentResult{}
}

// Outcome finds one step's outcome within an environment result and fails
// the test if the step was never recorded.
func Outcome(t *testing.T, env report.EnvironmentResult, stepName string) report.StepOutcome {
	t.Helper()
	for _, step := range env.Steps {
		if step.Name == stepName {
			return step
		}
	}
	t.Fatalf("step %q not recorded for environment %q", stepName, env.ID)
	return report.StepOutcome{}
}

// StepNames lists the recorded step names in order.
func StepNames(env report.EnvironmentResult) []string {
	names := make([]string, len(env.Steps))
	for i, step := range env.Steps {
		names[i] = step.Name
	}
	return names
}
