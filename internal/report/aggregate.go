package report

import (
	"sort"
	"time"
)

// Aggregate folds per-environment results into the final report. It is a
// pure function: the input slice is not mutated, results are re-ordered by
// matrix declaration order, and two calls with identical inputs yield
// identical reports. Overall success requires every environment to have
// passed; cancelled and infra-failed environments count as not-passed but
// keep their distinct status in the report body.
func Aggregate(runID, pipeline string, results []EnvironmentResult, started, finished time.Time) *PipelineReport {
	ordered := make([]EnvironmentResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	success := true
	for _, r := range ordered {
		if !r.Passed() {
			success = false
			break
		}
	}

	return &PipelineReport{
		RunID:        runID,
		Pipeline:     pipeline,
		StartedAt:    started,
		FinishedAt:   finished,
		Environments: ordered,
		Success:      success,
	}
}
