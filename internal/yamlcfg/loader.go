// Package yamlcfg provides the YAML implementation of the pipeline Loader
// interface. It mirrors the HCL pipeline model one-to-one: string values may
// interpolate `${axis.*}` and `${env.*}` and are parsed with the HCL
// template engine, so both formats share a single expression evaluator.
package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"gopkg.in/yaml.v3"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/ctxlog"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// fileRoot is the YAML document shape. Axes and actions are decoded via
// yaml.Node to preserve their declaration order, which a plain map loses.
type fileRoot struct {
	Pipeline *pipelineDoc `yaml:"pipeline"`
	Axes     yaml.Node    `yaml:"axes"`
	Actions  yaml.Node    `yaml:"actions"`
	Steps    []stepDoc    `yaml:"steps"`
}

type pipelineDoc struct {
	Name     string            `yaml:"name"`
	Env      map[string]string `yaml:"env"`
	Defaults defaultsDoc       `yaml:"defaults"`
}

type defaultsDoc struct {
	StepTimeout string `yaml:"step_timeout"`
	Shell       string `yaml:"shell"`
}

type actionDoc struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env"`
}

type stepDoc struct {
	Name            string            `yaml:"name"`
	Run             string            `yaml:"run"`
	Command         []string          `yaml:"command"`
	Uses            string            `yaml:"uses"`
	Env             map[string]string `yaml:"env"`
	Timeout         string            `yaml:"timeout"`
	ContinueOnError bool              `yaml:"continue_on_error"`
}

// Load parses one YAML pipeline file into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var root fileRoot
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, config.WrapConfigError(err, "failed to parse %s", path)
	}

	pipeline := &config.Pipeline{Env: map[string]string{}}
	if root.Pipeline != nil {
		pipeline.Name = root.Pipeline.Name
		for k, v := range root.Pipeline.Env {
			pipeline.Env[k] = v
		}
		pipeline.Defaults.Shell = root.Pipeline.Defaults.Shell
		if root.Pipeline.Defaults.StepTimeout != "" {
			d, err := time.ParseDuration(root.Pipeline.Defaults.StepTimeout)
			if err != nil {
				return nil, config.WrapConfigError(err, "invalid defaults step_timeout")
			}
			pipeline.Defaults.StepTimeout = d
		}
	}

	if err := l.translateAxes(&root.Axes, pipeline); err != nil {
		return nil, err
	}
	if err := l.translateActions(&root.Actions, pipeline); err != nil {
		return nil, err
	}
	for i := range root.Steps {
		step, err := l.translateStep(&root.Steps[i])
		if err != nil {
			return nil, err
		}
		pipeline.Steps = append(pipeline.Steps, step)
	}

	logger.Debug("YAML loading complete.",
		"path", path,
		"axes", len(pipeline.Axes),
		"actions", len(pipeline.Actions),
		"steps", len(pipeline.Steps),
	)
	return pipeline, nil
}

// translateAxes walks the ordered `axes` mapping node.
func (l *Loader) translateAxes(node *yaml.Node, p *config.Pipeline) error {
	if node.Kind == 0 || node.IsZero() {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return config.NewConfigError("axes must be a mapping of axis name to value list")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var values []string
		if err := valNode.Decode(&values); err != nil {
			return config.WrapConfigError(err, "axis %q values must be a list of strings", keyNode.Value)
		}
		p.Axes = append(p.Axes, config.Axis{Name: keyNode.Value, Values: values})
	}
	return nil
}

// translateActions walks the ordered `actions` mapping node.
func (l *Loader) translateActions(node *yaml.Node, p *config.Pipeline) error {
	if node.Kind == 0 || node.IsZero() {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return config.NewConfigError("actions must be a mapping of action name to definition")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var doc actionDoc
		if err := valNode.Decode(&doc); err != nil {
			return config.WrapConfigError(err, "invalid action %q", keyNode.Value)
		}
		what := "action " + keyNode.Value
		command, err := parseTemplateList(doc.Command, what+" command")
		if err != nil {
			return err
		}
		env, err := parseTemplateMap(doc.Env, what+" env")
		if err != nil {
			return err
		}
		p.Actions = append(p.Actions, &config.Action{
			Name:    keyNode.Value,
			Command: command,
			Env:     env,
		})
	}
	return nil
}

// translateStep converts one steps[] entry.
func (l *Loader) translateStep(doc *stepDoc) (*config.Step, error) {
	step := &config.Step{
		Name:            doc.Name,
		Uses:            doc.Uses,
		ContinueOnError: doc.ContinueOnError,
	}
	what := "step " + doc.Name

	if doc.Run != "" {
		expr, err := parseTemplate(doc.Run, what+" run")
		if err != nil {
			return nil, err
		}
		step.Run = expr
	}
	if doc.Command != nil {
		expr, err := parseTemplateList(doc.Command, what+" command")
		if err != nil {
			return nil, err
		}
		step.Command = expr
	}
	env, err := parseTemplateMap(doc.Env, what+" env")
	if err != nil {
		return nil, err
	}
	step.Env = env

	if doc.Timeout != "" {
		d, err := time.ParseDuration(doc.Timeout)
		if err != nil {
			return nil, config.WrapConfigError(err, "invalid %s timeout", what)
		}
		step.Timeout = d
	}
	return step, nil
}

// parseTemplate turns a YAML string into an HCL template expression so that
// `${axis.*}` and `${env.*}` interpolation works identically in both formats.
func parseTemplate(s, what string) (hcl.Expression, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(s), what, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "invalid template in %s", what)
	}
	return expr, nil
}

func parseTemplateList(items []string, what string) (hcl.Expression, error) {
	if items == nil {
		return nil, nil
	}
	exprs := make([]hclsyntax.Expression, 0, len(items))
	for _, item := range items {
		expr, err := parseTemplate(item, what)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr.(hclsyntax.Expression))
	}
	return &hclsyntax.TupleConsExpr{Exprs: exprs}, nil
}

func parseTemplateMap(m map[string]string, what string) (map[string]hcl.Expression, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]hcl.Expression, len(m))
	for k, v := range m {
		expr, err := parseTemplate(v, what+" value for "+k)
		if err != nil {
			return nil, err
		}
		out[k] = expr
	}
	return out, nil
}
