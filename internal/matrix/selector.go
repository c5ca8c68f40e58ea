package matrix

import (
	"strings"

	"github.com/vk/buildgridgo/internal/config"
)

// Selector is one --only-env filter: a conjunction of axis=value pairs. An
// environment matches a selector when every pair matches.
type Selector map[string]string

// ParseSelectors parses raw --only-env flag values ("AXIS=VALUE,...") and
// checks each axis name against the declared axis set. Within a flag the
// pairs AND together; multiple flags OR together.
func ParseSelectors(raw []string, axes []config.Axis) ([]Selector, error) {
	known := make(map[string]bool, len(axes))
	for _, axis := range axes {
		known[axis.Name] = true
	}

	var selectors []Selector
	for _, entry := range raw {
		selector := Selector{}
		for _, pair := range strings.Split(entry, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, value, found := strings.Cut(pair, "=")
			if !found || name == "" || value == "" {
				return nil, config.NewConfigError("malformed environment selector %q, want AXIS=VALUE", pair)
			}
			if !known[name] {
				return nil, config.NewConfigError("environment selector references unknown axis %q", name)
			}
			selector[name] = value
		}
		if len(selector) > 0 {
			selectors = append(selectors, selector)
		}
	}
	return selectors, nil
}

// Matches reports whether the environment satisfies the selector.
func (s Selector) Matches(env Environment) bool {
	for axis, want := range s {
		got, ok := env.Value(axis)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Filter keeps the environments matching at least one selector. With no
// selectors it returns the input unchanged.
func Filter(environments []Environment, selectors []Selector) []Environment {
	if len(selectors) == 0 {
		return environments
	}
	var out []Environment
	for _, env := range environments {
		for _, selector := range selectors {
			if selector.Matches(env) {
				out = append(out, env)
				break
			}
		}
	}
	return out
}
