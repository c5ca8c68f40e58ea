package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// excerptLimit bounds the failing-step output shown inline in the summary.
const excerptLimit = 512

// Render writes a human-readable run summary: one line per environment with
// a status glyph, the first failing step and an output excerpt on failures,
// and aggregate counts at the bottom. Verbose mode adds per-step lines.
func Render(w io.Writer, rep *PipelineReport, verbose bool) {
	fmt.Fprintf(w, "Pipeline %q run %s\n", rep.Pipeline, rep.RunID)

	counts := map[EnvStatus]int{}
	for _, env := range rep.Environments {
		counts[env.Status]++
		fmt.Fprintf(w, "%s %-30s %s (%s)\n", glyph(env.Status), env.ID, env.Status, env.Duration.Round(time.Millisecond))

		if verbose {
			for _, step := range env.Steps {
				fmt.Fprintf(w, "    %s %-26s %s (%s)\n", glyph(step.Status), step.Name, step.Status, step.Duration.Round(time.Millisecond))
			}
		}

		if env.Status == EnvInfraFailed {
			fmt.Fprintf(w, "    provisioning: %s\n", env.Error)
			continue
		}
		if failure := env.FirstFailure(); failure != nil {
			fmt.Fprintf(w, "    first failure: step %q (exit %d)\n", failure.Name, failure.ExitCode)
			if excerpt := excerpt(failure.Output); excerpt != "" {
				for _, line := range strings.Split(excerpt, "\n") {
					fmt.Fprintf(w, "    | %s\n", line)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed, %d cancelled, %d infra-failed, %d total\n",
		counts[EnvPassed], counts[EnvFailed], counts[EnvCancelled], counts[EnvInfraFailed],
		len(rep.Environments),
	)
	if rep.Success {
		fmt.Fprintln(w, "Result: PASS")
	} else {
		fmt.Fprintln(w, "Result: FAIL")
	}
}

func glyph(status any) string {
	switch status {
	case StepPassed, EnvPassed:
		return "✅"
	case StepFailed, EnvFailed:
		return "❌"
	case StepTimedOut:
		return "⏱️"
	case StepSkipped, EnvCancelled:
		return "⏭️"
	case EnvInfraFailed:
		return "🚧"
	}
	return "•"
}

func excerpt(output string) string {
	trimmed := strings.TrimSpace(output)
	if len(trimmed) <= excerptLimit {
		return trimmed
	}
	return trimmed[:excerptLimit] + " [...]"
}
