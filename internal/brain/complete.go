package brain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/common/logger"
)

const maxLoggedOutput = 500

// complete sends one system+user exchange and returns the response text.
// Transport errors are returned as-is; nothing is retried.
func complete(ctx context.Context, gateway llm.Gateway, system, user string) (string, error) {
	start := time.Now()

	resp, err := gateway.Complete(ctx, []llm.Message{
		llm.System(system),
		llm.User(user),
	})
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	text := resp.Text()
	slog.DebugContext(ctx, "model responded",
		"model", gateway.Model(),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"finish_reason", resp.FinishReason,
		"output", logger.Truncate(text, maxLoggedOutput))

	return text, nil
}
