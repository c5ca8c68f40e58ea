// Package report defines the outcome model of a pipeline run and the pure
// aggregation that folds per-environment results into the final verdict.
// Aggregation happens once, after every runner has finished; the resulting
// PipelineReport is never mutated afterwards.
package report
