package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgridgo/internal/app"
	"github.com/vk/buildgridgo/internal/report"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Report is the produced pipeline report, nil when Err is a
	// definition error.
	Report *report.PipelineReport
	// Summary is the rendered human-readable report.
	Summary string
	// LogOutput captures the app's structured logs.
	LogOutput string
	Err       error
}

// WriteFiles materializes pipeline fixture files under a fresh temp
// directory and returns its path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return tmpDir
}

// RunPipeline provides a standardized harness for running integration tests
// using a default background context. The files map holds pipeline fixtures
// by relative path; mutate may adjust the app config before the run.
func RunPipeline(t *testing.T, files map[string]string, mutate func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunPipelineWithContext(context.Background(), t, files, mutate)
}

// RunPipelineWithContext is RunPipeline with a caller-provided context.
func RunPipelineWithContext(ctx context.Context, t *testing.T, files map[string]string, mutate func(*app.Config)) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	cfg := app.Config{
		PipelinePath: dir,
		LogLevel:     "debug",
		LogFormat:    "text",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	// Fixture paths are relative to the temp dir.
	if !filepath.IsAbs(cfg.PipelinePath) {
		cfg.PipelinePath = filepath.Join(dir, cfg.PipelinePath)
	}

	validated, err := app.NewConfig(cfg)
	require.NoError(t, err, "harness config must be valid")

	logBuf := &SafeBuffer{}
	outBuf := &SafeBuffer{}
	testApp := app.NewApp(outBuf, logBuf, validated)

	rep, runErr := testApp.RunOnce(ctx, uuid.NewString())

	if os.Getenv("BGGO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuf.String())
	}

	return &HarnessResult{
		Report:    rep,
		Summary:   outBuf.String(),
		LogOutput: logBuf.String(),
		Err:       runErr,
	}
}
