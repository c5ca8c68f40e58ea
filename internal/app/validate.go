package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/buildgridgo/internal/ctxlog"
)

// Validate parses, validates and expands the pipeline without executing
// anything, and prints the environment list with each environment's resolved
// step plan.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	pipeline, plans, err := a.preparePlans(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "pipeline %q: %d environment(s), %d step(s)\n",
		pipeline.Name, len(plans), len(pipeline.Steps))

	for _, pl := range plans {
		fmt.Fprintf(a.outW, "\nenvironment %s\n", pl.Environment.ID())
		for _, step := range pl.Steps {
			flags := ""
			if step.ContinueOnError {
				flags += " [continue-on-error]"
			}
			if step.Timeout > 0 {
				flags += fmt.Sprintf(" [timeout %s]", step.Timeout)
			}
			fmt.Fprintf(a.outW, "  %-24s %s%s\n", step.Name, strings.Join(step.Argv, " "), flags)
		}
	}
	return nil
}
