// Package trigger exposes pipeline execution to external event sources over
// HTTP. It decouples scheduling-on-event from execution: the server owns no
// pipeline logic, it just calls the single execute entry point it was handed
// and stores the resulting reports for later inspection.
package trigger

import (
	"sync"
	"sync/atomic"

	"github.com/vk/buildgridgo/internal/report"
)

// Store is an ephemeral, thread-safe archive of completed run reports keyed
// by run ID. It uses sync.Map because runs are written once and then read
// many times by status requests, with no key ever updated in place.
type Store struct {
	runs   sync.Map // run ID -> *report.PipelineReport
	latest atomic.Pointer[report.PipelineReport]
}

// NewStore creates an empty run store.
func NewStore() *Store {
	return &Store{}
}

// Put archives a finished run and marks it as the latest.
func (s *Store) Put(rep *report.PipelineReport) {
	s.runs.Store(rep.RunID, rep)
	s.latest.Store(rep)
}

// Get returns the report for a run ID, if one has finished.
func (s *Store) Get(runID string) (*report.PipelineReport, bool) {
	v, ok := s.runs.Load(runID)
	if !ok {
		return nil, false
	}
	return v.(*report.PipelineReport), true
}

// Latest returns the most recently archived report, if any.
func (s *Store) Latest() (*report.PipelineReport, bool) {
	rep := s.latest.Load()
	return rep, rep != nil
}
