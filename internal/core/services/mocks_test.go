package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// testVocabulary gives each keyword its own embedding dimension.
var testVocabulary = []string{"cat", "dog", "fish", "बिल्ली"}

// keywordVector counts vocabulary hits in text. The final component is a
// constant so no vector is ever zero.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(testVocabulary)+1)
	for i, word := range testVocabulary {
		vec[i] = float32(strings.Count(lower, word))
	}
	vec[len(testVocabulary)] = 0.1
	return vec
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu       sync.Mutex
	embedErr error
	failOn   string
	empty    bool
	calls    int
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("provider rejected input")
	}
	if m.empty {
		return []float32{}, nil
	}
	return keywordVector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(testVocabulary) + 1
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.embedErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	prompts     []string
	opts        []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockExtractorRegistry implements driven.ExtractorRegistry for testing.
// Text is looked up by path; .doc and image files are unsupported.
type mockExtractorRegistry struct {
	texts      map[string]string
	extractErr error
}

func (m *mockExtractorRegistry) FileType(name string) (domain.FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return domain.FileTypeTXT, nil
	case ".pdf":
		return domain.FileTypePDF, nil
	case ".docx":
		return domain.FileTypeDOCX, nil
	default:
		return "", domain.ErrUnsupportedFileType
	}
}

func (m *mockExtractorRegistry) Extract(_ context.Context, path string, _ domain.FileType) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.texts[path], nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// stubVectorStore wraps a real store and overrides Query.
type stubVectorStore struct {
	*memory.VectorStore
	results  []domain.SimilarityResult
	queryErr error
}

func (s *stubVectorStore) Query(_ context.Context, _ string, _ int) ([]domain.SimilarityResult, error) {
	return s.results, s.queryErr
}

// newTestVectorStore returns an in-memory vector store that embeds queries with embedder.
func newTestVectorStore(embedder driven.EmbeddingService) *memory.VectorStore {
	return memory.NewVectorStore(memory.WithQueryEmbedder(NewEmbeddingClient(embedder)))
}

// addTestDocument embeds chunks with keywordVector and adds them under docID.
func addTestDocument(store driven.VectorStore, docID string, chunks ...string) error {
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vectors[i] = keywordVector(c)
	}
	return store.AddDocument(docID, chunks, vectors, domain.DocumentMetadata{
		FileName: docID + ".txt",
		FileType: domain.FileTypeTXT,
		Language: domain.LanguageEnglish,
	})
}
