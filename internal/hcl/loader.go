package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// Load parses one HCL pipeline file into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "failed to parse %s", path)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "failed to decode %s", path)
	}

	pipeline := &config.Pipeline{Env: map[string]string{}}
	for _, block := range content.Blocks {
		var err error
		switch block.Type {
		case "pipeline":
			err = l.translatePipeline(block, pipeline)
		case "axis":
			err = l.translateAxis(block, pipeline)
		case "action":
			err = l.translateAction(block, pipeline)
		case "step":
			err = l.translateStep(block, pipeline)
		}
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"path", path,
		"axes", len(pipeline.Axes),
		"actions", len(pipeline.Actions),
		"steps", len(pipeline.Steps),
	)
	return pipeline, nil
}

// attrsOf decodes a block body against a schema and reports diagnostics as a
// ConfigError mentioning the block.
func attrsOf(block *hcl.Block, schema *hcl.BodySchema) (*hcl.BodyContent, error) {
	content, diags := block.Body.Content(schema)
	if diags.HasErrors() {
		label := block.Type
		if len(block.Labels) > 0 {
			label += " " + block.Labels[0]
		}
		return nil, config.WrapConfigError(diags, "invalid %s block", label)
	}
	return content, nil
}
