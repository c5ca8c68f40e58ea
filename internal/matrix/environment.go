package matrix

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Environment is one concrete combination of axis values. It is created by
// Expand and never mutated afterwards.
type Environment struct {
	axes   []string
	values map[string]string
}

// NewEnvironment builds an environment from axis names in declaration order
// and their chosen values. The axes slice and values map are copied.
func NewEnvironment(axes []string, values map[string]string) Environment {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Environment{
		axes:   append([]string(nil), axes...),
		values: copied,
	}
}

// ID returns the stable human-readable identity of the environment: axis
// values joined by "/" in axis declaration order, e.g. "linux/stable".
func (e Environment) ID() string {
	parts := make([]string, len(e.axes))
	for i, axis := range e.axes {
		parts[i] = e.values[axis]
	}
	return strings.Join(parts, "/")
}

// Axes returns the axis names in declaration order.
func (e Environment) Axes() []string {
	return append([]string(nil), e.axes...)
}

// Value reports the chosen value for one axis.
func (e Environment) Value(axis string) (string, bool) {
	v, ok := e.values[axis]
	return v, ok
}

// Values returns a copy of the axis-to-value mapping.
func (e Environment) Values() map[string]string {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Variables returns the environment as a cty object for use as the `axis`
// variable in step expressions.
func (e Environment) Variables() cty.Value {
	attrs := make(map[string]cty.Value, len(e.values))
	for k, v := range e.values {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}

// InjectedEnv returns the MATRIX_* process environment variables carrying
// this environment's axis values into every step.
func (e Environment) InjectedEnv() map[string]string {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out["MATRIX_"+strings.ToUpper(k)] = v
	}
	return out
}
