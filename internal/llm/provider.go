package llm

import "context"

// Provider is the boundary to a generative model service.
// Responses are untrusted free-form text; callers parse and validate them.
type Provider interface {
	// Generate sends one request and returns the model's text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Messages is the conversation. Question generation sends a single
	// user message.
	Messages []Message

	// JSON asks the provider to use its native JSON response mode when it
	// has one. It is a hint only; the response is still free text.
	JSON bool

	// Schema constrains the response to a JSON Schema through the
	// provider's structured output mode. It implies JSON. Providers do not
	// validate against it; callers still parse and check the text.
	Schema *Schema

	// MaxTokens caps the response length. Zero leaves the provider default.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Schema is a JSON Schema handed to a provider's structured output mode.
type Schema struct {
	// Name identifies the schema, e.g. "quiz-batch". OpenAI requires it.
	Name string

	Description string

	// Definition is the schema document. Its root must be an object for
	// OpenAI and Anthropic to accept it.
	Definition map[string]any
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

// Response holds the model's output.
type Response struct {
	// Text is the raw completion text.
	Text string

	Usage Usage

	// Model is the model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest builds the common single-prompt request.
func UserRequest(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}
