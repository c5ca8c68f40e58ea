package config

// Merge combines pipelines loaded from multiple files into one. Blocks are
// appended in file order; the first non-empty name, shell and timeout win;
// later env entries override earlier ones. Duplicate axis, action or step
// names surface during Validate, not here.
func Merge(pipelines ...*Pipeline) *Pipeline {
	merged := &Pipeline{Env: map[string]string{}}
	for _, p := range pipelines {
		if p == nil {
			continue
		}
		if merged.Name == "" {
			merged.Name = p.Name
		}
		if merged.Defaults.Shell == "" {
			merged.Defaults.Shell = p.Defaults.Shell
		}
		if merged.Defaults.StepTimeout == 0 {
			merged.Defaults.StepTimeout = p.Defaults.StepTimeout
		}
		for k, v := range p.Env {
			merged.Env[k] = v
		}
		merged.Axes = append(merged.Axes, p.Axes...)
		merged.Actions = append(merged.Actions, p.Actions...)
		merged.Steps = append(merged.Steps, p.Steps...)
	}
	return merged
}
