package report

import "time"

// StepStatus classifies a single step outcome.
type StepStatus string

const (
	StepPassed   StepStatus = "passed"
	StepFailed   StepStatus = "failed"
	StepTimedOut StepStatus = "timed-out"
	StepSkipped  StepStatus = "skipped"
)

// EnvStatus classifies a whole environment's result.
type EnvStatus string

const (
	EnvPassed EnvStatus = "passed"
	EnvFailed EnvStatus = "failed"

	// EnvCancelled means fail-fast stopped the environment before all of
	// its steps ran. Distinct from a genuine failure.
	EnvCancelled EnvStatus = "cancelled"

	// EnvInfraFailed means the environment could not be provisioned at
	// all; no step verdict exists.
	EnvInfraFailed EnvStatus = "infra-failed"
)

// StepOutcome records what happened to one step in one environment.
type StepOutcome struct {
	Name     string        `json:"name" yaml:"name"`
	Status   StepStatus    `json:"status" yaml:"status"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Output   string        `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// EnvironmentResult is the ordered step outcome sequence of one environment.
// Index preserves the environment's position in the expanded matrix so the
// report stays in declaration order regardless of completion order.
type EnvironmentResult struct {
	Index    int               `json:"-" yaml:"-"`
	ID       string            `json:"id" yaml:"id"`
	Axes     map[string]string `json:"axes" yaml:"axes"`
	Status   EnvStatus         `json:"status" yaml:"status"`
	Steps    []StepOutcome     `json:"steps" yaml:"steps"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration     `json:"duration" yaml:"duration"`
}

// Passed reports whether the environment finished with every recorded step
// succeeding or explicitly allowed to fail.
func (r EnvironmentResult) Passed() bool {
	return r.Status == EnvPassed
}

// FirstFailure returns the first failed or timed-out step, or nil.
func (r EnvironmentResult) FirstFailure() *StepOutcome {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed || r.Steps[i].Status == StepTimedOut {
			return &r.Steps[i]
		}
	}
	return nil
}

// PipelineReport is the write-once summary of one full run.
type PipelineReport struct {
	RunID        string              `json:"run_id" yaml:"run_id"`
	Pipeline     string              `json:"pipeline" yaml:"pipeline"`
	StartedAt    time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time           `json:"finished_at" yaml:"finished_at"`
	Environments []EnvironmentResult `json:"environments" yaml:"environments"`
	Success      bool                `json:"success" yaml:"success"`
}
