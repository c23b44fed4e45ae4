package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Key names one slot of the pipeline state.
type Key string

const (
	KeyRequirement  Key = "requirement"
	KeyBreakdown    Key = "breakdown"
	KeyComponents   Key = "components"
	KeyFiles        Key = "files"
	KeyDeployStatus Key = "deployStatus"
)

var ErrKeyWritten = errors.New("state key already written")

// State accumulates the output of each stage for one run. Keys are only
// ever added; Apply refuses to overwrite a key that is already present.
type State struct {
	RunID        string
	Requirement  string
	Breakdown    *RequirementBreakdown
	Components   *DesignOutput
	Files        []GeneratedFile
	DeployStatus *DeployStatus

	hasFiles bool
}

// NewState starts a state holding only the requirement.
func NewState(runID, requirement string) *State {
	return &State{RunID: runID, Requirement: requirement}
}

// Update is the partial state a stage returns. Exactly one key is set.
type Update struct {
	Key          Key
	Breakdown    *RequirementBreakdown
	Components   *DesignOutput
	Files        []GeneratedFile
	DeployStatus *DeployStatus
}

func BreakdownUpdate(b RequirementBreakdown) Update {
	return Update{Key: KeyBreakdown, Breakdown: &b}
}

func ComponentsUpdate(d DesignOutput) Update {
	return Update{Key: KeyComponents, Components: &d}
}

func FilesUpdate(files []GeneratedFile) Update {
	if files == nil {
		files = []GeneratedFile{}
	}
	return Update{Key: KeyFiles, Files: files}
}

func DeployStatusUpdate(s DeployStatus) Update {
	return Update{Key: KeyDeployStatus, DeployStatus: &s}
}

// Has reports whether key has been written.
func (s *State) Has(key Key) bool {
	switch key {
	case KeyRequirement:
		return s.Requirement != ""
	case KeyBreakdown:
		return s.Breakdown != nil
	case KeyComponents:
		return s.Components != nil
	case KeyFiles:
		return s.hasFiles
	case KeyDeployStatus:
		return s.DeployStatus != nil
	}
	return false
}

// Apply merges u into s.
func (s *State) Apply(u Update) error {
	if s.Has(u.Key) {
		return fmt.Errorf("%w: %s", ErrKeyWritten, u.Key)
	}

	switch u.Key {
	case KeyBreakdown:
		if u.Breakdown == nil {
			return fmt.Errorf("update for %s carries no value", u.Key)
		}
		s.Breakdown = u.Breakdown
	case KeyComponents:
		if u.Components == nil {
			return fmt.Errorf("update for %s carries no value", u.Key)
		}
		s.Components = u.Components
	case KeyFiles:
		s.Files = u.Files
		if s.Files == nil {
			s.Files = []GeneratedFile{}
		}
		s.hasFiles = true
	case KeyDeployStatus:
		if u.DeployStatus == nil {
			return fmt.Errorf("update for %s carries no value", u.Key)
		}
		s.DeployStatus = u.DeployStatus
	default:
		return fmt.Errorf("unknown state key: %q", u.Key)
	}
	return nil
}

type stateSnapshot struct {
	RunID        string                `json:"runId,omitempty"`
	Requirement  string                `json:"requirement,omitempty"`
	Breakdown    *RequirementBreakdown `json:"breakdown,omitempty"`
	Components   *DesignOutput         `json:"components,omitempty"`
	Files        *[]GeneratedFile      `json:"files,omitempty"`
	DeployStatus *DeployStatus         `json:"deployStatus,omitempty"`
}

// MarshalJSON renders only the keys that have been written.
func (s State) MarshalJSON() ([]byte, error) {
	snap := stateSnapshot{
		RunID:        s.RunID,
		Requirement:  s.Requirement,
		Breakdown:    s.Breakdown,
		Components:   s.Components,
		DeployStatus: s.DeployStatus,
	}
	if s.hasFiles {
		files := s.Files
		snap.Files = &files
	}
	return json.Marshal(snap)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	*s = State{
		RunID:        snap.RunID,
		Requirement:  snap.Requirement,
		Breakdown:    snap.Breakdown,
		Components:   snap.Components,
		DeployStatus: snap.DeployStatus,
	}
	if snap.Files != nil {
		s.Files = *snap.Files
		if s.Files == nil {
			s.Files = []GeneratedFile{}
		}
		s.hasFiles = true
	}
	return nil
}

// ErrMissingInput is returned when a stage runs before the key it reads is written.
var ErrMissingInput = errors.New("stage input missing")
