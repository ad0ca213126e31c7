// Package bootstrap wires the driven adapters and core services into a
// ready-to-use application for the command line, HTTP and MCP front ends.
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Layout of the configuration directory.
const (
	DefaultDirName = ".docqa"
	dataDirName    = "data"
	promptDirName  = "prompts"
	uploadDirName  = "uploads"
	snapshotName   = "vector_store.json"
)

// DefaultConfigDir returns ~/.docqa.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Settings opens the settings service for configDir without contacting any provider.
// An empty configDir uses DefaultConfigDir.
func Settings(configDir string) (*services.SettingsService, error) {
	dir, err := resolveConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// App holds the wired services and the resources they depend on.
type App struct {
	Ask       *services.AskService
	Ingest    *services.IngestService
	Documents *services.DocumentService
	Settings  *services.SettingsService

	// AppSettings are the effective settings the services were built from.
	AppSettings *domain.AppSettings

	// Paths resolved from the settings.
	ConfigDir    string
	DataDir      string
	UploadDir    string
	SnapshotPath string

	// Warnings are non-fatal provider problems found while starting.
	Warnings []string

	store *sqlite.Store
	ai    *ai.InitResult
}

// Open builds the application for configDir.
//
// An unreachable embedding provider does not fail Open: documents can still
// be listed and deleted, while ingestion and questions report
// domain.ErrEmbeddingUnavailable until the provider is fixed.
func Open(configDir string) (*App, error) {
	dir, err := resolveConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	settingsService, err := Settings(dir)
	if err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	app := &App{
		Settings:    settingsService,
		AppSettings: settings,
		ConfigDir:   dir,
	}
	app.resolvePaths()

	if err := os.MkdirAll(app.UploadDir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	store, err := sqlite.NewStore(app.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open ingestion store: %w", err)
	}
	app.store = store

	aiResult, err := ai.Init(settings)
	if err != nil {
		logger.Warn("%v", err)
		app.Warnings = append(app.Warnings, err.Error())
		aiResult = &ai.InitResult{}
	}
	app.ai = aiResult
	app.Warnings = append(app.Warnings, aiResult.Warnings...)

	embedder := services.NewEmbeddingClient(aiResult.EmbeddingService,
		services.WithRateLimit(settings.Embedding.RequestsPerSecond),
		services.WithEmbedTimeout(settings.Embedding.Timeout),
	)

	vectors := memory.NewVectorStore(memory.WithQueryEmbedder(embedder))
	vectors.LoadSnapshot(app.SnapshotPath)

	prompts, err := file.NewPromptStore(filepath.Join(dir, promptDirName))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	chunk := chunker.New(
		chunker.WithStrategy(chunker.Strategy(settings.Chunking.Strategy)),
		chunker.WithMaxTokens(settings.Chunking.MaxTokens),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	records := store.IngestionStore()
	app.Ask = services.NewAskService(vectors, aiResult.LLMService, prompts, settings.Retrieval, settings.Generation)
	app.Ingest = services.NewIngestService(extractors.NewDefaultRegistry(), embedder, chunk, vectors, records, app.SnapshotPath)
	app.Documents = services.NewDocumentService(vectors, records, app.SnapshotPath, app.UploadDir)

	return app, nil
}

// Close waits for background ingestions and releases providers and the database.
func (a *App) Close() error {
	if a.Ingest != nil {
		a.Ingest.Wait()
	}
	if a.ai != nil {
		a.ai.Close()
	}
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	return err
}

// LLMAvailable reports whether answers can be generated by an LLM.
func (a *App) LLMAvailable() bool {
	return a.ai != nil && a.ai.LLMService != nil
}

func (a *App) resolvePaths() {
	a.DataDir = a.AppSettings.Storage.DataDir
	if a.DataDir == "" {
		a.DataDir = filepath.Join(a.ConfigDir, dataDirName)
	}
	a.SnapshotPath = a.AppSettings.Storage.SnapshotPath
	if a.SnapshotPath == "" {
		a.SnapshotPath = filepath.Join(a.DataDir, snapshotName)
	}
	a.UploadDir = filepath.Join(a.DataDir, uploadDirName)
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return DefaultConfigDir()
}
