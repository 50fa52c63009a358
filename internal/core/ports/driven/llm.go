package driven

import "context"

// LLMService generates answer text from a system and a user prompt.
// It may return empty text; the validator turns that into a refusal.
//
// Implementations may include:
//   - OpenAI (and compatible endpoints such as Groq)
//   - Anthropic
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion for the given prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
