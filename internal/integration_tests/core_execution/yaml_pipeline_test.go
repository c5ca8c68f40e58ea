package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/testutil"
)

// The YAML front end drives the same engine as HCL: a .yaml pipeline expands,
// interpolates and executes identically.
func TestCoreExecution_YAMLPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipelineYAML := `
pipeline:
  name: ci
  env:
    CI: "true"

axes:
  os: [linux, windows]
  go: ["1.23", "1.24"]

actions:
  greet:
    command: [sh, -c, "echo hello from ${axis.os} on go ${axis.go}"]

steps:
  - name: greet
    uses: greet
  - name: verify
    run: echo verify ci=$CI os=$MATRIX_OS go=$MATRIX_GO
`

	// --- Act ---
	res := testutil.RunPipeline(t, map[string]string{"ci.yaml": pipelineYAML}, nil)

	// --- Assert ---
	require.NoError(t, res.Err)
	require.True(t, res.Report.Success)
	require.Len(t, res.Report.Environments, 4)

	env := testutil.EnvResult(t, res.Report, "windows/1.24")
	require.Contains(t, testutil.Outcome(t, env, "greet").Output, "hello from windows on go 1.24")

	verify := testutil.Outcome(t, env, "verify")
	require.Contains(t, verify.Output, "ci=true")
	require.Contains(t, verify.Output, "os=windows")
	require.Contains(t, verify.Output, "go=1.24")
}
