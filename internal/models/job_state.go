package models

import "time"

// JobStatus is the outcome of the last run of a scheduled job
type JobStatus string

const (
	JobStatusNeverRun  JobStatus = "NEVER_RUN"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// JobState is the single scheduler record per job. The lease columns
// (LockedBy, LockedUntil) are only written through conditional updates.
type JobState struct {
	Name           string     `gorm:"primaryKey" json:"name"`
	LockedBy       string     `json:"locked_by,omitempty"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastStartedAt  *time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LastStatus     JobStatus  `gorm:"not null;default:NEVER_RUN" json:"last_status"`
	LastResult     string     `json:"last_result,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
