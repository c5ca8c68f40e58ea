package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pipeline string
		wantCode int
	}{
		{
			name: "passing run exits zero",
			pipeline: `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "ok" { run = "true" }
			`,
			wantCode: 0,
		},
		{
			name: "failing run exits one",
			pipeline: `
				pipeline { name = "ci" }
				axis "os" { values = ["linux"] }
				step "boom" { run = "exit 1" }
			`,
			wantCode: 1,
		},
		{
			name: "broken definition exits two",
			pipeline: `
				pipeline { name =
			`,
			wantCode: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			path := writePipeline(t, tc.pipeline)
			args := []string{"buildgridgo", "run", path}

			// --- Act ---
			code := run(context.Background(), args)

			// --- Assert ---
			require.Equal(t, tc.wantCode, code)
		})
	}
}

func TestRun_HelpExitsZero(t *testing.T) {
	t.Parallel()

	code := run(context.Background(), []string{"buildgridgo", "--help"})

	require.Equal(t, 0, code)
}
