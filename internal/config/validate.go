package config

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Validate checks the structural invariants of a loaded pipeline. It returns
// a *ConfigError describing the first violation found, or nil. A pipeline
// that passes Validate can be expanded and planned without further
// definition-level errors.
func Validate(p *Pipeline) error {
	if len(p.Axes) == 0 {
		return NewConfigError("pipeline declares no axes; at least one axis block is required")
	}
	if len(p.Steps) == 0 {
		return NewConfigError("pipeline declares no steps; at least one step block is required")
	}

	seenAxes := make(map[string]bool, len(p.Axes))
	for _, axis := range p.Axes {
		if !hclsyntax.ValidIdentifier(axis.Name) {
			return NewConfigError("axis name %q is not a valid identifier", axis.Name)
		}
		if seenAxes[axis.Name] {
			return NewConfigError("duplicate axis %q", axis.Name)
		}
		seenAxes[axis.Name] = true

		if len(axis.Values) == 0 {
			return NewConfigError("axis %q has no values", axis.Name)
		}
		seenValues := make(map[string]bool, len(axis.Values))
		for _, v := range axis.Values {
			if v == "" {
				return NewConfigError("axis %q contains an empty value", axis.Name)
			}
			if seenValues[v] {
				return NewConfigError("axis %q repeats value %q", axis.Name, v)
			}
			seenValues[v] = true
		}
	}

	seenActions := make(map[string]bool, len(p.Actions))
	for _, action := range p.Actions {
		if action.Name == "" {
			return NewConfigError("action with empty name")
		}
		if seenActions[action.Name] {
			return NewConfigError("duplicate action %q", action.Name)
		}
		seenActions[action.Name] = true
		if action.Command == nil {
			return NewConfigError("action %q has no command", action.Name)
		}
	}

	seenSteps := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.Name == "" {
			return NewConfigError("step with empty name")
		}
		if seenSteps[step.Name] {
			return NewConfigError("duplicate step %q", step.Name)
		}
		seenSteps[step.Name] = true

		sources := 0
		if step.Run != nil {
			sources++
		}
		if step.Command != nil {
			sources++
		}
		if step.Uses != "" {
			sources++
		}
		if sources != 1 {
			return NewConfigError("step %q must set exactly one of run, command or uses", step.Name)
		}
		if step.Uses != "" && !seenActions[step.Uses] {
			return NewConfigError("step %q uses unknown action %q", step.Name, step.Uses)
		}
		if step.Timeout < 0 {
			return NewConfigError("step %q has a negative timeout", step.Name)
		}
	}

	return nil
}
