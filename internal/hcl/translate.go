package hcl

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/buildgridgo/internal/config"
)

// translatePipeline merges a `pipeline` block into the model.
func (l *Loader) translatePipeline(block *hcl.Block, p *config.Pipeline) error {
	content, err := attrsOf(block, pipelineSchema)
	if err != nil {
		return err
	}

	if attr, ok := content.Attributes["name"]; ok {
		if p.Name, err = evalString(attr.Expr, "pipeline name"); err != nil {
			return err
		}
	}
	if attr, ok := content.Attributes["env"]; ok {
		env, err := literalEnvMap(attr.Expr, "pipeline env")
		if err != nil {
			return err
		}
		for k, v := range env {
			p.Env[k] = v
		}
	}

	for _, inner := range content.Blocks {
		defaults, err := attrsOf(inner, defaultsSchema)
		if err != nil {
			return err
		}
		if attr, ok := defaults.Attributes["step_timeout"]; ok {
			if p.Defaults.StepTimeout, err = evalDuration(attr.Expr, "defaults step_timeout"); err != nil {
				return err
			}
		}
		if attr, ok := defaults.Attributes["shell"]; ok {
			if p.Defaults.Shell, err = evalString(attr.Expr, "defaults shell"); err != nil {
				return err
			}
		}
	}
	return nil
}

// translateAxis appends an `axis` block to the model.
func (l *Loader) translateAxis(block *hcl.Block, p *config.Pipeline) error {
	content, err := attrsOf(block, axisSchema)
	if err != nil {
		return err
	}
	values, err := evalStringList(content.Attributes["values"].Expr, "axis "+block.Labels[0])
	if err != nil {
		return err
	}
	p.Axes = append(p.Axes, config.Axis{Name: block.Labels[0], Values: values})
	return nil
}

// translateAction appends an `action` block to the model. The command
// expression is kept unevaluated for per-environment resolution.
func (l *Loader) translateAction(block *hcl.Block, p *config.Pipeline) error {
	content, err := attrsOf(block, actionSchema)
	if err != nil {
		return err
	}
	action := &config.Action{
		Name:    block.Labels[0],
		Command: content.Attributes["command"].Expr,
	}
	if attr, ok := content.Attributes["env"]; ok {
		if action.Env, err = exprEnvMap(attr.Expr, "action "+action.Name); err != nil {
			return err
		}
	}
	p.Actions = append(p.Actions, action)
	return nil
}

// translateStep appends a `step` block to the model.
func (l *Loader) translateStep(block *hcl.Block, p *config.Pipeline) error {
	content, err := attrsOf(block, stepSchema)
	if err != nil {
		return err
	}
	step := &config.Step{Name: block.Labels[0]}

	if attr, ok := content.Attributes["run"]; ok {
		step.Run = attr.Expr
	}
	if attr, ok := content.Attributes["command"]; ok {
		step.Command = attr.Expr
	}
	if attr, ok := content.Attributes["uses"]; ok {
		if step.Uses, err = evalString(attr.Expr, "step "+step.Name+" uses"); err != nil {
			return err
		}
	}
	if attr, ok := content.Attributes["env"]; ok {
		if step.Env, err = exprEnvMap(attr.Expr, "step "+step.Name); err != nil {
			return err
		}
	}
	if attr, ok := content.Attributes["timeout"]; ok {
		if step.Timeout, err = evalDuration(attr.Expr, "step "+step.Name+" timeout"); err != nil {
			return err
		}
	}
	if attr, ok := content.Attributes["continue_on_error"]; ok {
		if step.ContinueOnError, err = evalBool(attr.Expr, "step "+step.Name+" continue_on_error"); err != nil {
			return err
		}
	}

	p.Steps = append(p.Steps, step)
	return nil
}

// --- static expression helpers ---
//
// These evaluate attributes that must be resolvable at load time, with no
// axis or env variables in scope.

func evalString(expr hcl.Expression, what string) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", config.WrapConfigError(diags, "invalid %s", what)
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil || converted.IsNull() {
		return "", config.NewConfigError("%s must be a string", what)
	}
	return converted.AsString(), nil
}

func evalBool(expr hcl.Expression, what string) (bool, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return false, config.WrapConfigError(diags, "invalid %s", what)
	}
	converted, err := convert.Convert(val, cty.Bool)
	if err != nil || converted.IsNull() {
		return false, config.NewConfigError("%s must be a boolean", what)
	}
	return converted.True(), nil
}

func evalDuration(expr hcl.Expression, what string) (time.Duration, error) {
	raw, err := evalString(expr, what)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, config.WrapConfigError(err, "invalid %s", what)
	}
	return d, nil
}

func evalStringList(expr hcl.Expression, what string) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "invalid %s values", what)
	}
	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil || converted.IsNull() {
		return nil, config.NewConfigError("%s values must be a list of strings", what)
	}
	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() {
			return nil, config.NewConfigError("%s values must not contain null", what)
		}
		out = append(out, v.AsString())
	}
	return out, nil
}

// exprEnvMap splits an env attribute into per-key expressions, keeping the
// values unevaluated for per-environment resolution.
func exprEnvMap(expr hcl.Expression, what string) (map[string]hcl.Expression, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "%s env must be a map", what)
	}
	out := make(map[string]hcl.Expression, len(pairs))
	for _, pair := range pairs {
		key, err := evalString(pair.Key, what+" env key")
		if err != nil {
			return nil, err
		}
		out[key] = pair.Value
	}
	return out, nil
}

// literalEnvMap fully evaluates an env attribute at load time.
func literalEnvMap(expr hcl.Expression, what string) (map[string]string, error) {
	pairs, err := exprEnvMap(expr, what)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pairs))
	for key, valExpr := range pairs {
		v, err := evalString(valExpr, what+" value for "+key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}
