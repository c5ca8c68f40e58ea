package yamlcfg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/hcl"
	"github.com/vk/buildgridgo/internal/matrix"
	"github.com/vk/buildgridgo/internal/plan"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullPipeline(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeYAML(t, `
pipeline:
  name: ci
  env:
    CARGO_TERM_COLOR: always
  defaults:
    step_timeout: 10m
axes:
  os: [linux, windows, macos]
  toolchain: [stable]
actions:
  checkout:
    command: [git, clone, ".", src]
steps:
  - name: checkout
    uses: checkout
  - name: test
    run: cargo test --target ${axis.os}
    timeout: 5m
  - name: lint
    run: cargo clippy
    continue_on_error: true
    env:
      RUSTFLAGS: -D warnings
`)

	// --- Act ---
	pipeline, err := NewLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "ci", pipeline.Name)
	require.Equal(t, "always", pipeline.Env["CARGO_TERM_COLOR"])
	require.Equal(t, 10*time.Minute, pipeline.Defaults.StepTimeout)

	require.Len(t, pipeline.Axes, 2)
	require.Equal(t, "os", pipeline.Axes[0].Name, "axes mapping order must survive decoding")
	require.Equal(t, "toolchain", pipeline.Axes[1].Name)

	require.Len(t, pipeline.Steps, 3)
	require.Equal(t, "checkout", pipeline.Steps[0].Uses)
	require.NotNil(t, pipeline.Steps[1].Run)
	require.Equal(t, 5*time.Minute, pipeline.Steps[1].Timeout)
	require.True(t, pipeline.Steps[2].ContinueOnError)

	require.NoError(t, config.Validate(pipeline))
}

func TestLoad_UnknownFieldIsConfigError(t *testing.T) {
	t.Parallel()

	path := writeYAML(t, `
steps:
  - name: test
    runn: true
`)

	_, err := NewLoader().Load(context.Background(), path)

	require.Error(t, err)
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected a ConfigError, got %T", err)
}

func TestLoad_BadTemplateIsConfigError(t *testing.T) {
	t.Parallel()

	path := writeYAML(t, `
axes:
  os: [linux]
steps:
  - name: test
    run: "echo ${axis.os"
`)

	_, err := NewLoader().Load(context.Background(), path)

	require.Error(t, err)
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected a ConfigError, got %T", err)
}

// The two formats share one expression engine, so the same pipeline written
// in HCL and YAML must resolve to identical step plans.
func TestLoad_EquivalentToHCL(t *testing.T) {
	t.Parallel()

	yamlPath := writeYAML(t, `
pipeline:
  name: ci
  env:
    COLOR: always
axes:
  os: [linux, macos]
steps:
  - name: test
    run: go test ./... --target=${axis.os}
    env:
      TARGET: ${axis.os}-${env.COLOR}
`)
	hclPath := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`
		pipeline {
			name = "ci"
			env = {
				COLOR = "always"
			}
		}
		axis "os" {
			values = ["linux", "macos"]
		}
		step "test" {
			run = "go test ./... --target=${axis.os}"
			env = {
				TARGET = "${axis.os}-${env.COLOR}"
			}
		}
	`), 0o644))

	ctx := context.Background()
	fromYAML, err := NewLoader().Load(ctx, yamlPath)
	require.NoError(t, err)
	fromHCL, err := hcl.NewLoader().Load(ctx, hclPath)
	require.NoError(t, err)

	for _, pipeline := range []*config.Pipeline{fromYAML, fromHCL} {
		require.NoError(t, config.Validate(pipeline))
	}

	environments, err := matrix.Expand(fromYAML.Axes)
	require.NoError(t, err)

	for _, env := range environments {
		yamlPlan, err := plan.Resolve(fromYAML, env)
		require.NoError(t, err)
		hclPlan, err := plan.Resolve(fromHCL, env)
		require.NoError(t, err)

		if diff := cmp.Diff(hclPlan.Steps, yamlPlan.Steps); diff != "" {
			t.Errorf("plans for %s differ between formats (-hcl +yaml):\n%s", env.ID(), diff)
		}
	}
}
