// Package events defines lifecycle hooks fired as a run progresses, and an
// optional socket.io implementation that pushes them to an external
// dashboard. Emitters are advisory: failures are logged and never change a
// run's outcome.
package events

import (
	"context"

	"github.com/vk/buildgridgo/internal/report"
)

// Emitter receives run lifecycle notifications.
type Emitter interface {
	PipelineStarted(ctx context.Context, runID, pipeline string, environments int)
	EnvironmentStarted(ctx context.Context, envID string)
	StepStarted(ctx context.Context, envID, stepName string)
	StepFinished(ctx context.Context, envID string, outcome report.StepOutcome)
	EnvironmentFinished(ctx context.Context, result report.EnvironmentResult)
	PipelineFinished(ctx context.Context, rep *report.PipelineReport)
}

// Nop is the default emitter; it discards every event.
type Nop struct{}

func (Nop) PipelineStarted(context.Context, string, string, int)          {}
func (Nop) EnvironmentStarted(context.Context, string)                    {}
func (Nop) StepStarted(context.Context, string, string)                   {}
func (Nop) StepFinished(context.Context, string, report.StepOutcome)      {}
func (Nop) EnvironmentFinished(context.Context, report.EnvironmentResult) {}
func (Nop) PipelineFinished(context.Context, *report.PipelineReport)      {}
