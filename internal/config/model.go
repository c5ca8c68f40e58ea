package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Pipeline is the unified, format-agnostic representation of one pipeline
// definition: the axis set, the reusable actions, and the ordered step list.
type Pipeline struct {
	Name string

	// Env holds pipeline-global environment variables, resolved at load
	// time. They are visible to every step and addressable in step
	// expressions as `env.<NAME>`.
	Env map[string]string

	Defaults Defaults
	Axes     []Axis
	Actions  []*Action
	Steps    []*Step
}

// Defaults carries pipeline-wide fallbacks applied to steps that do not
// override them.
type Defaults struct {
	// StepTimeout bounds the wall-clock duration of a single step.
	// Zero means no timeout.
	StepTimeout time.Duration

	// Shell is the interpreter used for `run` steps. Defaults to "sh".
	Shell string
}

// Axis is one named dimension of the build matrix with its ordered set of
// permissible values.
type Axis struct {
	Name   string
	Values []string
}

// Action is a named, reusable command template referenced by `step.uses`.
// Its command expression is evaluated once per environment, like a step's.
type Action struct {
	Name    string
	Command hcl.Expression
	Env     map[string]hcl.Expression
}

// Step is the format-agnostic representation of a `step` block. Exactly one
// of Run, Command, or Uses must be set. String-valued fields hold deferred
// expressions evaluated per environment against `axis.*` and `env.*`.
type Step struct {
	Name string

	// Run is a shell command line, executed through the pipeline shell.
	Run hcl.Expression

	// Command is an argv list, executed directly without a shell.
	Command hcl.Expression

	// Uses names an Action whose command template this step executes.
	Uses string

	Env             map[string]hcl.Expression
	Timeout         time.Duration
	ContinueOnError bool
}

// Action returns the action a `uses` step refers to, or nil.
func (p *Pipeline) Action(name string) *Action {
	for _, a := range p.Actions {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Shell returns the configured step shell, falling back to "sh".
func (p *Pipeline) Shell() string {
	if p.Defaults.Shell != "" {
		return p.Defaults.Shell
	}
	return "sh"
}
