package brain

import (
	"context"
	"log/slog"
	"time"

	"instaforce.app/engine/common/jsonx"
	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/internal/model"
)

// RequirementAnalyst turns free-text requirements into a RequirementBreakdown.
type RequirementAnalyst struct {
	llm llm.Gateway
}

func NewRequirementAnalyst(gateway llm.Gateway) *RequirementAnalyst {
	return &RequirementAnalyst{llm: gateway}
}

func (a *RequirementAnalyst) Name() string { return "requirement" }

// Analyze asks the model for a breakdown of requirement. Output that is not
// a JSON object degrades to the empty breakdown.
func (a *RequirementAnalyst) Analyze(ctx context.Context, requirement string) (Outcome[model.RequirementBreakdown], error) {
	text, err := complete(ctx, a.llm, requirementPrompt, requirement)
	if err != nil {
		return Outcome[model.RequirementBreakdown]{}, err
	}

	raw, err := jsonx.ExtractObject(text)
	if err != nil {
		return degraded(model.EmptyBreakdown(), err.Error()), nil
	}
	return parsed(model.NormalizeBreakdown(raw, requirement)), nil
}

func (a *RequirementAnalyst) Process(ctx context.Context, state *model.State) (model.Update, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "instaforce.brain.requirement",
	})
	start := time.Now()

	out, err := a.Analyze(ctx, state.Requirement)
	if err != nil {
		return model.Update{}, err
	}
	if out.Degraded {
		slog.WarnContext(ctx, "requirement breakdown degraded to empty", "reason", out.Reason)
	}

	slog.InfoContext(ctx, "requirement analyzed",
		"duration_ms", time.Since(start).Milliseconds(),
		"objects", len(out.Value.Objects),
		"actions", len(out.Value.Actions),
		"degraded", out.Degraded)

	return model.BreakdownUpdate(out.Value), nil
}
