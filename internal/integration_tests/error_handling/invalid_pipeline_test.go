package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/app"
	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/testutil"
)

// Definition problems surface as typed configuration errors before anything
// executes, and no report is produced.
func TestErrorHandling_InvalidPipelinesAreRejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		files       map[string]string
		mutate      func(*app.Config)
		errContains string
	}{
		{
			name: "no axes",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				step "build" { run = "true" }
			`},
			errContains: "at least one axis",
		},
		{
			name: "no steps",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
			`},
			errContains: "at least one step",
		},
		{
			name: "axis with no values",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = [] }
				step "build" { run = "true" }
			`},
		},
		{
			name: "duplicate axis",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				axis "os" { values = ["windows"] }
				step "build" { run = "true" }
			`},
			errContains: "os",
		},
		{
			name: "step with both run and command",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "build" {
					run     = "true"
					command = ["true"]
				}
			`},
		},
		{
			name: "step uses unknown action",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "build" { uses = "no-such-action" }
			`},
			errContains: "no-such-action",
		},
		{
			name: "unknown variable in step template",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "build" { run = "echo ${axis.arch}" }
			`},
		},
		{
			name: "malformed hcl",
			files: map[string]string{"ci.hcl": `
				pipeline { name =
			`},
		},
		{
			name: "unknown yaml field",
			files: map[string]string{"ci.yaml": `
pipeline:
  name: ci
axes:
  os: [linux]
steps:
  - name: build
    run: "true"
    retries: 3
`},
		},
		{
			name: "selector names unknown axis",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "build" { run = "true" }
			`},
			mutate:      func(cfg *app.Config) { cfg.OnlyEnv = []string{"cpu=arm64"} },
			errContains: "cpu",
		},
		{
			name: "selector matches nothing",
			files: map[string]string{"ci.hcl": `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "build" { run = "true" }
			`},
			mutate:      func(cfg *app.Config) { cfg.OnlyEnv = []string{"os=plan9"} },
			errContains: "matched nothing",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			res := testutil.RunPipeline(t, tc.files, tc.mutate)

			// --- Assert ---
			require.Error(t, res.Err)
			require.Nil(t, res.Report, "definition errors must abort before execution")

			var cfgErr *config.ConfigError
			require.True(t, errors.As(res.Err, &cfgErr), "expected a config error, got %T: %v", res.Err, res.Err)
			if tc.errContains != "" {
				require.Contains(t, res.Err.Error(), tc.errContains)
			}
		})
	}
}
