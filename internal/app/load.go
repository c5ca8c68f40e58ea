package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/fsutil"
	"github.com/vk/buildgridgo/internal/matrix"
	"github.com/vk/buildgridgo/internal/plan"
)

// loadPipeline discovers, parses, merges and validates the pipeline
// definition at the configured path. A directory loads every pipeline file
// in it, sorted, merged into one pipeline.
func (a *App) loadPipeline(ctx context.Context) (*config.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	path := a.config.PipelinePath

	info, err := os.Stat(path)
	if err != nil {
		return nil, config.WrapConfigError(err, "cannot read pipeline path %q", path)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtensions(path, ".hcl", ".yaml", ".yml")
		if err != nil {
			return nil, config.WrapConfigError(err, "failed to scan pipeline directory %q", path)
		}
	}
	if len(files) == 0 {
		return nil, config.NewConfigError("no pipeline files found under %q", path)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	parts := make([]*config.Pipeline, 0, len(files))
	for _, file := range files {
		loader := a.loaderFor(file)
		if loader == nil {
			return nil, config.NewConfigError("unsupported pipeline file extension: %s", file)
		}
		part, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	pipeline := config.Merge(parts...)
	if pipeline.Name == "" {
		base := filepath.Base(path)
		pipeline.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if a.config.StepTimeout > 0 {
		pipeline.Defaults.StepTimeout = a.config.StepTimeout
	}

	if err := config.Validate(pipeline); err != nil {
		return nil, err
	}
	logger.Debug("Pipeline loaded and validated.",
		"pipeline", pipeline.Name,
		"axes", len(pipeline.Axes),
		"steps", len(pipeline.Steps),
	)
	return pipeline, nil
}

func (a *App) loaderFor(path string) config.Loader {
	ext := filepath.Ext(path)
	for _, loader := range a.loaders {
		for _, known := range loader.Extensions() {
			if ext == known {
				return loader
			}
		}
	}
	return nil
}

// preparePlans expands the matrix, applies --only-env selectors, and
// resolves every surviving environment's step plan. Any error here is a
// definition problem; nothing has executed yet.
func (a *App) preparePlans(ctx context.Context) (*config.Pipeline, []*plan.Plan, error) {
	pipeline, err := a.loadPipeline(ctx)
	if err != nil {
		return nil, nil, err
	}

	environments, err := matrix.Expand(pipeline.Axes)
	if err != nil {
		return nil, nil, err
	}

	selectors, err := matrix.ParseSelectors(a.config.OnlyEnv, pipeline.Axes)
	if err != nil {
		return nil, nil, err
	}
	environments = matrix.Filter(environments, selectors)
	if len(environments) == 0 {
		return nil, nil, config.NewConfigError("environment selectors matched nothing")
	}

	plans := make([]*plan.Plan, 0, len(environments))
	for _, env := range environments {
		resolved, err := plan.Resolve(pipeline, env)
		if err != nil {
			return nil, nil, err
		}
		plans = append(plans, resolved)
	}

	return pipeline, plans, nil
}
