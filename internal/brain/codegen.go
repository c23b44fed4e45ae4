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

// CodeGenerator turns a design into SFDX source files. Paths and contents
// are not checked here; the deploy stage validates them.
type CodeGenerator struct {
	llm llm.Gateway
}

func NewCodeGenerator(gateway llm.Gateway) *CodeGenerator {
	return &CodeGenerator{llm: gateway}
}

func (g *CodeGenerator) Name() string { return "codegen" }

func (g *CodeGenerator) Generate(ctx context.Context, design model.DesignOutput) (Outcome[[]model.GeneratedFile], error) {
	payload, err := json.Marshal(design)
	if err != nil {
		return Outcome[[]model.GeneratedFile]{}, fmt.Errorf("encoding design: %w", err)
	}

	text, err := complete(ctx, g.llm, codegenPrompt, string(payload))
	if err != nil {
		return Outcome[[]model.GeneratedFile]{}, err
	}

	raw, err := jsonx.Extract(text)
	if err != nil {
		return degraded([]model.GeneratedFile{}, err.Error()), nil
	}

	files := model.NormalizeFiles(raw)
	if obj, ok := raw.(map[string]any); ok {
		if _, isList := obj["files"].([]any); !isList {
			return degraded(files, "response has no files list"), nil
		}
	}
	return parsed(files), nil
}

func (g *CodeGenerator) Process(ctx context.Context, state *model.State) (model.Update, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "instaforce.brain.codegen",
	})
	if state.Components == nil {
		return model.Update{}, fmt.Errorf("%w: %s", model.ErrMissingInput, model.KeyComponents)
	}
	start := time.Now()

	out, err := g.Generate(ctx, *state.Components)
	if err != nil {
		return model.Update{}, err
	}
	if out.Degraded {
		slog.WarnContext(ctx, "code generation degraded", "reason", out.Reason, "files", len(out.Value))
	}

	slog.InfoContext(ctx, "code generated",
		"duration_ms", time.Since(start).Milliseconds(),
		"files", len(out.Value),
		"degraded", out.Degraded)

	return model.FilesUpdate(out.Value), nil
}
