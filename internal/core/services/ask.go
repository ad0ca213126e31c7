package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/langdetect"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// chunkSeparator joins chunk texts in prompts and fallback answers.
const chunkSeparator = "\n\n"

// AskService answers questions from the ingested documents.
//
// Retrieval always runs first. With a language model the top chunks are sent
// as context; without one, or when generation fails, the best chunks are
// returned verbatim. Only retrieval (embedding) errors reach the caller.
type AskService struct {
	store      driven.VectorStore
	llm        driven.LLMService
	prompts    driven.PromptStore
	retrieval  domain.RetrievalSettings
	generation domain.GenerationSettings
}

// NewAskService creates a new ask service.
// The llm and prompts parameters are optional (can be nil).
func NewAskService(
	store driven.VectorStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	retrieval domain.RetrievalSettings,
	generation domain.GenerationSettings,
) *AskService {
	defaults := domain.DefaultAppSettings()
	if retrieval.TopK <= 0 {
		retrieval.TopK = defaults.Retrieval.TopK
	}
	if retrieval.ContextChunks <= 0 {
		retrieval.ContextChunks = defaults.Retrieval.ContextChunks
	}
	if retrieval.FallbackChunks <= 0 {
		retrieval.FallbackChunks = defaults.Retrieval.FallbackChunks
	}
	if generation.MaxTokens <= 0 {
		generation.MaxTokens = defaults.Generation.MaxTokens
	}

	return &AskService{
		store:      store,
		llm:        llm,
		prompts:    prompts,
		retrieval:  retrieval,
		generation: generation,
	}
}

// Ask answers a question.
func (s *AskService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	logger.Section("Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	lang := langdetect.Detect(question)
	useLLM := s.llm != nil && !opts.DisableLLM
	logger.Debug("Question: %q (language=%s, llm=%t)", question, lang, useLLM)

	answer := &domain.Answer{
		Question: question,
		Language: lang,
		Chunks:   []domain.SimilarityResult{},
	}

	if s.store.Stats().TotalChunks == 0 {
		logger.Debug("Store is empty")
		if useLLM {
			if text, ok := s.generate(ctx, question); ok {
				answer.Text = text
				answer.Source = domain.SourceLLMDirect
				return answer, nil
			}
		}
		// A context-only query gets the same reply as a search with no hits.
		kind := driven.PromptNoDocuments
		if opts.DisableLLM {
			kind = driven.PromptNoMatch
		}
		answer.Text = s.prompt(kind, lang)
		answer.Source = domain.SourceNoMatch
		return answer, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.retrieval.TopK
	}

	done := logger.Timed("retrieval")
	results, err := s.store.Query(ctx, question, topK)
	done()
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved %d chunks (topK=%d)", len(results), topK)

	if len(results) == 0 {
		answer.Text = s.prompt(driven.PromptNoMatch, lang)
		answer.Source = domain.SourceNoMatch
		return answer, nil
	}
	answer.Chunks = results

	if useLLM {
		excerpt := joinChunks(results, s.retrieval.ContextChunks)
		prompt := fmt.Sprintf(s.prompt(driven.PromptRAG, lang), excerpt, question)
		if text, ok := s.generate(ctx, prompt); ok {
			answer.Text = text
			answer.Source = domain.SourceLLMRAG
			return answer, nil
		}
	}

	answer.Text = fmt.Sprintf(s.prompt(driven.PromptFallback, lang), joinChunks(results, s.retrieval.FallbackChunks))
	answer.Source = domain.SourceFallbackContext
	return answer, nil
}

// Search returns the chunks most similar to query.
func (s *AskService) Search(ctx context.Context, query string, topK int) ([]domain.SimilarityResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SimilarityResult{}, nil
	}
	if topK <= 0 {
		topK = s.retrieval.TopK
	}
	return s.store.Query(ctx, query, topK)
}

// generate calls the LLM and reports whether it produced a usable answer.
// Failures are logged, never returned.
func (s *AskService) generate(ctx context.Context, prompt string) (string, bool) {
	defer logger.Timed("generation")()

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.generation.MaxTokens,
		Temperature: s.generation.Temperature,
		TopP:        s.generation.TopP,
	})
	if err != nil {
		logger.Error("%v", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err))
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("%v: empty response from %s", domain.ErrGenerationFailed, s.llm.ModelName())
		return "", false
	}
	return text, true
}

// prompt loads the localised template for name, falling back to the built-in default.
func (s *AskService) prompt(name string, lang domain.Language) string {
	key := driven.PromptName(name, promptLang(lang))

	if s.prompts != nil {
		if tmpl, err := s.prompts.Load(key); err == nil && tmpl != "" {
			return tmpl
		} else if err != nil {
			logger.Warn("loading prompt %s: %v", key, err)
		}
	}
	return driven.DefaultPrompts()[key]
}

// promptLang selects the prompt variant; only Hindi has its own prompts.
func promptLang(lang domain.Language) string {
	if lang == domain.LanguageHindi {
		return driven.PromptLangHindi
	}
	return driven.PromptLangEnglish
}

func joinChunks(results []domain.SimilarityResult, n int) string {
	n = min(n, len(results))
	texts := make([]string, 0, n)
	for _, r := range results[:n] {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, chunkSeparator)
}
