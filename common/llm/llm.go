package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message roles accepted by the gateway.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds LLM client configuration.
type Config struct {
	Provider    string   // "openai" or "anthropic"
	APIKey      string   // Required: API key for the provider
	BaseURL     string   // Optional: custom API endpoint
	Model       string   // Model name (e.g., "gpt-4o", "claude-sonnet-4-5-20250514")
	MaxTokens   int      // 0 = provider default
	Temperature *float64 // nil = model default, explicit 0 = deterministic
}

// Gateway is the boundary around the hosted chat model. It sends an ordered
// conversation and returns the model's text without enforcing any schema on it.
type Gateway interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
	Model() string
}

// Message represents a conversation message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string // Text content
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Completion is a single model response.
type Completion struct {
	Content          string // Concatenated text content
	Raw              any    // Provider response, kept for Text() fallback
	FinishReason     string // "stop", "length", ...
	PromptTokens     int
	CompletionTokens int
}

// Text returns the response text. When the provider produced no text content
// the whole raw response is rendered instead, so callers always get something
// to feed the JSON extractor.
func (c *Completion) Text() string {
	if c == nil {
		return ""
	}
	if c.Content != "" || c.Raw == nil {
		return c.Content
	}
	if s, ok := c.Raw.(string); ok {
		return s
	}
	if data, err := json.Marshal(c.Raw); err == nil {
		return string(data)
	}
	return fmt.Sprint(c.Raw)
}

// New creates a Gateway for cfg.Provider. Defaults to OpenAI if no provider is specified.
func New(cfg Config) (Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GenerateSchema generates a JSON schema for T.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// SchemaJSON renders the JSON schema for T as indented text, suitable for
// embedding in a prompt.
func SchemaJSON[T any]() string {
	data, err := json.MarshalIndent(GenerateSchema[T](), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Temp returns a pointer to t, for Config.Temperature.
func Temp(t float64) *float64 {
	return &t
}
