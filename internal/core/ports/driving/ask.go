package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskService answers questions from the ingested documents.
type AskService interface {
	// Ask detects the question's language, retrieves similar chunks and produces an answer.
	// Only a failure to embed the question is returned as an error; generation
	// failures fall back to the retrieved context.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error)

	// Search returns the chunks most similar to the question without generating an answer.
	Search(ctx context.Context, question string, topK int) ([]domain.SimilarityResult, error)
}
