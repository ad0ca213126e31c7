package driven

import "context"

// LLMService generates answer text from a prompt.
// This is an optional service - when nil, answers fall back to the retrieved context.
//
// Implementations may include:
//   - OpenAI and OpenAI-compatible APIs (Groq)
//   - Anthropic (Claude)
//   - Google Gemini
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// These are the only recognised options; zero values mean provider defaults.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus sampling threshold.
	TopP float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
