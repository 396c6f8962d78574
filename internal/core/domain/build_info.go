package domain

import "time"

// BuildInfo is the record of a task's last successful execution.
// The scheduler compares it against fresh hashes to decide whether a task is up to date.
type BuildInfo struct {
	TaskName   string    `json:"task_name,omitzero"`
	InputHash  string    `json:"input_hash,omitzero"`
	OutputHash string    `json:"output_hash,omitzero"`
	InputCount int       `json:"input_count,omitzero"`
	RunID      string    `json:"run_id,omitzero"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}
