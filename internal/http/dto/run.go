package dto

import (
	"strconv"
	"time"

	"instaforce.app/engine/internal/model"
)

type CreateRunRequest struct {
	Requirement string `json:"requirement" binding:"required"`
}

// RunResponse renders IDs as strings; snowflakes overflow JavaScript numbers.
type RunResponse struct {
	ID          string          `json:"id"`
	Requirement string          `json:"requirement"`
	Status      model.RunStatus `json:"status"`
	Error       *string         `json:"error,omitempty"`
	State       *model.State    `json:"state,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

func ToRunResponse(run *model.Run, withState bool) RunResponse {
	resp := RunResponse{
		ID:          strconv.FormatInt(run.ID, 10),
		Requirement: run.Requirement,
		Status:      run.Status,
		Error:       run.Error,
		CreatedAt:   run.CreatedAt,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
	if withState {
		resp.State = run.State
	}
	return resp
}
