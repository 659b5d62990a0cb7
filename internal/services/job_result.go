/**
 * @description
 * Shared job run bookkeeping for the ingestion, risk, and summary jobs.
 * Every scheduled or on-demand run produces one JobResult: per-symbol failures are
 * collected here instead of aborting sibling work.
 *
 * @dependencies
 * - github.com/google/uuid
 */

package services

import (
	"time"

	"github.com/google/uuid"
)

// SymbolError records one isolated per-symbol (or per-series) failure inside a job run
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// JobResult summarizes one run of a background job
type JobResult struct {
	RunID      string        `json:"run_id"`
	Job        string        `json:"job"`
	Succeeded  int           `json:"succeeded"`
	Skipped    int           `json:"skipped"`
	DataPoints int           `json:"data_points,omitempty"`
	Errors     []SymbolError `json:"errors"`
	StartedAt  int64         `json:"started_at"`  // ms epoch
	FinishedAt int64         `json:"finished_at"` // ms epoch
}

func newJobResult(job string) *JobResult {
	return &JobResult{
		RunID:     uuid.NewString(),
		Job:       job,
		Errors:    []SymbolError{},
		StartedAt: time.Now().UnixMilli(),
	}
}

func (r *JobResult) fail(symbol string, err error) {
	r.Errors = append(r.Errors, SymbolError{Symbol: symbol, Error: err.Error()})
}

func (r *JobResult) finish() *JobResult {
	r.FinishedAt = time.Now().UnixMilli()
	return r
}

// Failed reports the number of per-symbol errors collected during the run
func (r *JobResult) Failed() int {
	return len(r.Errors)
}
