package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"instaforce.app/engine/common/id"
	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/internal/brain"
	"instaforce.app/engine/internal/deploy"
	"instaforce.app/engine/internal/model"
)

var ErrEmptyRequirement = errors.New("requirement is empty")

// Stage consumes the state built so far and returns the one key it owns.
type Stage interface {
	Name() string
	Process(ctx context.Context, state *model.State) (model.Update, error)
}

// StageError wraps the failure of a named stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Request starts one run. RunID is allocated when empty.
type Request struct {
	RunID       string
	Requirement string
}

// Pipeline applies its stages in order, one at a time.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Default wires requirement analysis, design, code generation and deployment.
func Default(gateway llm.Gateway, deployer *deploy.Deployer) *Pipeline {
	return New(
		brain.NewRequirementAnalyst(gateway),
		brain.NewDesigner(gateway),
		brain.NewCodeGenerator(gateway),
		deployer,
	)
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage against a fresh state. On a stage failure it stops
// and returns the state built so far together with a *StageError.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.State, error) {
	if strings.TrimSpace(req.Requirement) == "" {
		return nil, ErrEmptyRequirement
	}
	if req.RunID == "" {
		req.RunID = id.NewString()
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(req.RunID),
		Component: "instaforce.pipeline",
	})
	state := model.NewState(req.RunID, req.Requirement)
	start := time.Now()

	slog.InfoContext(ctx, "pipeline starting", "stages", len(p.stages))

	for _, stage := range p.stages {
		if err := p.runStage(ctx, stage, state); err != nil {
			slog.ErrorContext(ctx, "pipeline stopped",
				"stage", stage.Name(),
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			return state, &StageError{Stage: stage.Name(), Err: err}
		}
	}

	slog.InfoContext(ctx, "pipeline completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"success", state.DeployStatus != nil && state.DeployStatus.Success)

	return state, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, state *model.State) error {
	sc := logger.StartStageSpan(ctx, state.RunID, stage.Name())
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	slog.DebugContext(ctx, "stage starting")

	update, err := stage.Process(ctx, state)
	if err == nil {
		err = state.Apply(update)
	}
	if err != nil {
		sc.Fail(err)
		return err
	}

	slog.DebugContext(ctx, "stage finished", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
