// Package plan resolves the deferred step expressions of a pipeline against
// one concrete environment, producing the exact argv, env and timeout for
// every step. Resolution happens for all environments before anything
// executes, so a bad expression surfaces as a ConfigError rather than a
// mid-run failure.
package plan

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/matrix"
)

// Step is one fully resolved unit of work: an argv ready for exec, its
// process environment additions, and its failure policy.
type Step struct {
	Name            string
	Argv            []string
	Env             map[string]string
	Timeout         time.Duration
	ContinueOnError bool
}

// Plan is the resolved step sequence for one environment.
type Plan struct {
	Environment matrix.Environment
	Steps       []Step
}

// Resolve evaluates every step of the pipeline for the given environment.
func Resolve(p *config.Pipeline, env matrix.Environment) (*Plan, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"axis": env.Variables(),
			"env":  envVariables(p.Env),
		},
	}

	resolved := &Plan{Environment: env}
	for _, step := range p.Steps {
		rs, err := resolveStep(p, step, evalCtx)
		if err != nil {
			return nil, err
		}
		resolved.Steps = append(resolved.Steps, rs)
	}
	return resolved, nil
}

func resolveStep(p *config.Pipeline, step *config.Step, evalCtx *hcl.EvalContext) (Step, error) {
	rs := Step{
		Name:            step.Name,
		ContinueOnError: step.ContinueOnError,
		Timeout:         step.Timeout,
	}
	if rs.Timeout == 0 {
		rs.Timeout = p.Defaults.StepTimeout
	}

	// Process environment: pipeline globals first, then action env, then
	// the step's own entries.
	stepEnv := make(map[string]string, len(p.Env)+len(step.Env))
	for k, v := range p.Env {
		stepEnv[k] = v
	}

	switch {
	case step.Run != nil:
		line, err := evalString(step.Run, evalCtx, "step "+step.Name+" run")
		if err != nil {
			return Step{}, err
		}
		rs.Argv = []string{p.Shell(), "-c", line}

	case step.Command != nil:
		argv, err := evalStringList(step.Command, evalCtx, "step "+step.Name+" command")
		if err != nil {
			return Step{}, err
		}
		if len(argv) == 0 {
			return Step{}, config.NewConfigError("step %q command is empty", step.Name)
		}
		rs.Argv = argv

	case step.Uses != "":
		action := p.Action(step.Uses)
		if action == nil {
			return Step{}, config.NewConfigError("step %q uses unknown action %q", step.Name, step.Uses)
		}
		argv, err := evalStringList(action.Command, evalCtx, "action "+action.Name+" command")
		if err != nil {
			return Step{}, err
		}
		if len(argv) == 0 {
			return Step{}, config.NewConfigError("action %q command is empty", action.Name)
		}
		rs.Argv = argv
		if err := evalEnvInto(stepEnv, action.Env, evalCtx, "action "+action.Name); err != nil {
			return Step{}, err
		}

	default:
		return Step{}, config.NewConfigError("step %q has no run, command or uses", step.Name)
	}

	if err := evalEnvInto(stepEnv, step.Env, evalCtx, "step "+step.Name); err != nil {
		return Step{}, err
	}
	rs.Env = stepEnv

	return rs, nil
}

func envVariables(env map[string]string) cty.Value {
	if len(env) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(env))
	for k, v := range env {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}

func evalString(expr hcl.Expression, evalCtx *hcl.EvalContext, what string) (string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", config.WrapConfigError(diags, "failed to evaluate %s", what)
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil || converted.IsNull() {
		return "", config.NewConfigError("%s must evaluate to a string", what)
	}
	return converted.AsString(), nil
}

func evalStringList(expr hcl.Expression, evalCtx *hcl.EvalContext, what string) ([]string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, config.WrapConfigError(diags, "failed to evaluate %s", what)
	}
	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil || converted.IsNull() {
		return nil, config.NewConfigError("%s must evaluate to a list of strings", what)
	}
	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() {
			return nil, config.NewConfigError("%s must not contain null", what)
		}
		out = append(out, v.AsString())
	}
	return out, nil
}

func evalEnvInto(dst map[string]string, src map[string]hcl.Expression, evalCtx *hcl.EvalContext, what string) error {
	for k, expr := range src {
		v, err := evalString(expr, evalCtx, what+" env "+k)
		if err != nil {
			return err
		}
		dst[k] = v
	}
	return nil
}
