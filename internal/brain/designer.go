package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"instaforce.app/engine/common/jsonx"
	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/internal/model"
)

// Designer plans the metadata components for a breakdown.
type Designer struct {
	llm llm.Gateway
}

func NewDesigner(gateway llm.Gateway) *Designer {
	return &Designer{llm: gateway}
}

func (d *Designer) Name() string { return "design" }

// Design sends breakdown to the model and normalizes whatever comes back.
// requirement fills businessRequirement on components that omit it.
func (d *Designer) Design(ctx context.Context, breakdown model.RequirementBreakdown, requirement string) (Outcome[model.DesignOutput], error) {
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return Outcome[model.DesignOutput]{}, fmt.Errorf("encoding breakdown: %w", err)
	}

	text, err := complete(ctx, d.llm, designPrompt, string(payload))
	if err != nil {
		return Outcome[model.DesignOutput]{}, err
	}

	raw, err := jsonx.Extract(text)
	if err != nil {
		return degraded(model.EmptyDesign(), err.Error()), nil
	}
	if !model.IsDesignPayload(raw) {
		return degraded(model.EmptyDesign(), "output has no components"), nil
	}
	return parsed(model.NormalizeDesign(raw, requirement)), nil
}

func (d *Designer) Process(ctx context.Context, state *model.State) (model.Update, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "instaforce.brain.designer",
	})
	if state.Breakdown == nil {
		return model.Update{}, fmt.Errorf("%w: %s", model.ErrMissingInput, model.KeyBreakdown)
	}
	start := time.Now()

	out, err := d.Design(ctx, *state.Breakdown, state.Requirement)
	if err != nil {
		return model.Update{}, err
	}
	if out.Degraded {
		slog.WarnContext(ctx, "design degraded to no components", "reason", out.Reason)
	}

	for _, c := range out.Value.Components {
		if !c.Type.Valid() {
			slog.WarnContext(ctx, "component has unknown type",
				"type", c.Type,
				"api_name", c.APIName)
		}
	}

	slog.InfoContext(ctx, "design completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"components", len(out.Value.Components),
		"estimated_hours", out.Value.Summary.TotalEstimatedHours,
		"degraded", out.Degraded)

	return model.ComponentsUpdate(out.Value), nil
}
