package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator checks provider settings by connecting to the provider.
type AIConfigValidator interface {
	// ValidateEmbedding creates the embedding provider and pings it.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM creates the LLM provider and pings it.
	ValidateLLM(settings *domain.LLMSettings) error
}
