package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAskService implements driving.AskService for CLI tests.
type mockAskService struct {
	AskFunc    func(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error)
	SearchFunc func(ctx context.Context, question string, topK int) ([]domain.SimilarityResult, error)

	lastQuestion string
	lastOptions  domain.AskOptions
	lastTopK     int
}

func (m *mockAskService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastOptions = opts
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, opts)
	}
	return &domain.Answer{Text: "answer", Language: domain.LanguageEnglish, Source: domain.SourceFallbackContext}, nil
}

func (m *mockAskService) Search(ctx context.Context, question string, topK int) ([]domain.SimilarityResult, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, question, topK)
	}
	return nil, nil
}

// mockIngestService implements driving.IngestService for CLI tests.
type mockIngestService struct {
	IngestFileFunc func(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error)

	paths []string
}

func (m *mockIngestService) Submit(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	return m.IngestFile(ctx, path, fileName)
}

func (m *mockIngestService) IngestFile(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	m.paths = append(m.paths, path)
	if m.IngestFileFunc != nil {
		return m.IngestFileFunc(ctx, path, fileName)
	}
	return &domain.IngestionRecord{
		ID:         "doc-1",
		FileName:   fileName,
		FileType:   domain.FileTypeTXT,
		Status:     domain.IngestionCompleted,
		Language:   domain.LanguageEnglish,
		ChunkCount: 3,
	}, nil
}

func (m *mockIngestService) Wait() {}

// mockDocumentService implements driving.DocumentService for CLI tests.
type mockDocumentService struct {
	ListFunc   func(ctx context.Context) ([]domain.IngestionRecord, error)
	GetFunc    func(ctx context.Context, id string) (*domain.IngestionRecord, error)
	DeleteFunc func(ctx context.Context, id string) (int, error)
	OpenFunc   func(ctx context.Context, id string) error
	StatsValue domain.StoreStats
}

func (m *mockDocumentService) List(ctx context.Context) ([]domain.IngestionRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*domain.IngestionRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentService) GetByPath(_ context.Context, _ string) (*domain.IngestionRecord, error) {
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) (int, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return 0, nil
}

func (m *mockDocumentService) Stats(_ context.Context) domain.StoreStats {
	return m.StatsValue
}

func (m *mockDocumentService) Open(ctx context.Context, id string) error {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, id)
	}
	return nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	values      map[string]string
	validateErr error
	setErr      error

	embeddingProvider domain.AIProvider
	embeddingModel    string
	llmProvider       domain.AIProvider
	llmModel          string
	apiKey            string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.model", "retrieval.top_k"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Display() (map[string]string, error) {
	return m.values, nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embeddingProvider, m.embeddingModel, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices groups the mocks installed by setupTestServices.
type testServices struct {
	ask      *mockAskService
	ingest   *mockIngestService
	docs     *mockDocumentService
	settings *mockSettingsService
}

// setupTestServices installs mock services and restores the previous ones,
// along with every command flag, when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	svcs := &testServices{
		ask:      &mockAskService{},
		ingest:   &mockIngestService{},
		docs:     &mockDocumentService{},
		settings: &mockSettingsService{},
	}

	prevAsk, prevIngest, prevDocs, prevSettings := askService, ingestService, documentService, settingsService
	prevAppSettings, prevUploadDir, prevFactory := appSettings, uploadDir, factory

	askService = svcs.ask
	ingestService = svcs.ingest
	documentService = svcs.docs
	settingsService = svcs.settings
	appSettings = nil
	uploadDir = ""
	factory = nil

	t.Cleanup(func() {
		askService, ingestService, documentService, settingsService = prevAsk, prevIngest, prevDocs, prevSettings
		appSettings, uploadDir, factory = prevAppSettings, prevUploadDir, prevFactory
		resetFlags()
	})
	return svcs
}

// resetFlags restores flag variables, which outlive a single Execute.
func resetFlags() {
	askTopK, askNoLLM, askJSON = 0, false, false
	searchLimit, searchJSON = 5, false
	documentJSON = false
	ingestJSON = false
	servePort, serveWatchDir = 0, ""
	tuiTopK = 0
	watchNoScan, watchDebounce = false, watcher.DefaultDebounce
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
