package llm

import (
	"context"
	"encoding/json"
)

// Provider is a single blocking call to a hosted text-generation model.
// Implementations never retry; callers decide what a failure means.
type Provider interface {
	// Generate sends one prompt pair and returns the model's raw output.
	// When req.Schema is set the provider asks for native structured
	// output and validates the result before returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system instruction text.
	System string

	// Messages is the conversation history. Quiz generation is single-turn,
	// so this holds one user message.
	Messages []Message

	// Schema, when non-nil, requests native structured output.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Nil leaves the provider default; zero is greedy decoding.
	Temperature *float64

	// TopK restricts sampling to the K most likely tokens. Zero leaves the
	// provider default. Ignored by providers without top-k support.
	TopK int
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema (OpenAI schema name, validation cache key).
	// Kebab-case, e.g. "trivia-quiz".
	Name string

	// Description is sent to providers that accept one.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the model's text output exactly as returned. It is only
	// guaranteed to be JSON when the request carried a Schema.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Float64 returns a pointer to v, for Request.Temperature.
func Float64(v float64) *float64 {
	return &v
}

// UserRequest builds the single-turn request used by quiz generation.
func UserRequest(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}
