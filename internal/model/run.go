package model

import "time"

// RunStatus represents the final state of a crawl run.
type RunStatus string

const (
	RunStatusComplete  RunStatus = "complete"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// RunResult summarizes one pass over the source list.
type RunResult struct {
	RunID         string    `json:"run_id"`
	Status        RunStatus `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Sources       int       `json:"sources"`
	Fetched       int       `json:"fetched"`
	Skipped       int       `json:"skipped"`
	ModelFailures int       `json:"model_failures"`
	Written       int       `json:"written"`
	SkippedLinks  []string  `json:"skipped_links,omitempty"`
}

// Duration returns the wall-clock length of the run.
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
