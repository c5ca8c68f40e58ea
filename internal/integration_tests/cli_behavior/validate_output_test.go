package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/testutil"
)

// validate prints the expanded environments and their resolved step plans
// without executing anything.
func TestCLI_ValidatePrintsResolvedPlan(t *testing.T) {
	t.Parallel()

	// --- Arrange: the marker file proves nothing executed.
	marker := t.TempDir() + "/executed"
	dir := testutil.WriteFiles(t, map[string]string{"ci.hcl": `
		pipeline {
			name = "ci"
		}

		axis "os" {
			values = ["linux", "windows"]
		}

		step "build" {
			run = "touch ` + marker + `"
		}

		step "slow-check" {
			run               = "echo check ${axis.os}"
			timeout           = "30s"
			continue_on_error = true
		}
	`})

	// --- Act ---
	code, out := runCLI(t, "validate", dir)

	// --- Assert ---
	require.Equal(t, 0, code)
	require.Contains(t, out, `pipeline "ci": 2 environment(s), 2 step(s)`)
	require.Contains(t, out, "environment linux")
	require.Contains(t, out, "environment windows")
	require.Contains(t, out, "echo check windows")
	require.Contains(t, out, "[continue-on-error]")
	require.Contains(t, out, "[timeout 30s]")
	require.NoFileExists(t, marker, "validate must not execute steps")
}

func TestCLI_ValidateRejectsBrokenPipeline(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"ci.hcl": `
		axis "os" { values = ["linux"] }
		step "build" { uses = "missing" }
	`})

	code, _ := runCLI(t, "validate", dir)

	require.Equal(t, 2, code)
}
