package model

import "time"

type RunStatus string

const (
	RunStatusPending      RunStatus = "pending"
	RunStatusRunning      RunStatus = "running"
	RunStatusSucceeded    RunStatus = "succeeded"
	RunStatusDeployFailed RunStatus = "deploy_failed"
	RunStatusFailed       RunStatus = "failed"
)

// Terminal reports whether no further transition is expected.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusDeployFailed, RunStatusFailed:
		return true
	}
	return false
}

// Run is the persisted record of one pipeline invocation.
type Run struct {
	ID          int64      `json:"id"`
	Requirement string     `json:"requirement"`
	Status      RunStatus  `json:"status"`
	State       *State     `json:"state,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// StatusFor maps a finished state to its run status.
func StatusFor(s *State) RunStatus {
	if s == nil || s.DeployStatus == nil {
		return RunStatusFailed
	}
	if !s.DeployStatus.Success {
		return RunStatusDeployFailed
	}
	return RunStatusSucceeded
}
