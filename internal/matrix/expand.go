package matrix

import (
	"github.com/vk/buildgridgo/internal/config"
)

// Expand computes the cross product of all axis values. The result is
// deterministic: environments are ordered lexicographically by axis
// declaration order, with the first axis varying slowest. Expansion has no
// side effects and fails only on an empty or degenerate axis set.
func Expand(axes []config.Axis) ([]Environment, error) {
	if len(axes) == 0 {
		return nil, config.NewConfigError("cannot expand an empty axis set")
	}

	total := 1
	names := make([]string, len(axes))
	for i, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, config.NewConfigError("axis %q has no values", axis.Name)
		}
		names[i] = axis.Name
		total *= len(axis.Values)
	}

	environments := make([]Environment, 0, total)
	indices := make([]int, len(axes))
	for {
		values := make(map[string]string, len(axes))
		for i, axis := range axes {
			values[axis.Name] = axis.Values[indices[i]]
		}
		environments = append(environments, NewEnvironment(names, values))

		// Advance the odometer, last axis fastest.
		pos := len(axes) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(axes[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	return environments, nil
}
