package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedTimeout     = "embedding.timeout_seconds"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyChunkMaxTokens   = "chunking.max_tokens"
	keyChunkOverlap     = "chunking.overlap"
	keyChunkStrategy    = "chunking.strategy"
	keyTopK             = "retrieval.top_k"
	keyContextChunks    = "retrieval.context_chunks"
	keyFallbackChunks   = "retrieval.fallback_chunks"
	keyGenMaxTokens     = "generation.max_tokens"
	keyGenTemperature   = "generation.temperature"
	keyGenTopP          = "generation.top_p"
	keyDataDir          = "storage.data_dir"
	keySnapshotPath     = "storage.snapshot_path"
	keyServerPort       = "server.port"
	keyAllowedOrigins   = "server.allowed_origins"
	keyMaxUploadMB      = "server.max_upload_mb"
	defaultOllamaURL    = "http://localhost:11434"
	bytesPerMB          = 1 << 20
	envGroqAPIKey       = "GROQ_API_KEY"
	envOpenAIAPIKey     = "OPENAI_API_KEY"
	envAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	envGeminiAPIKey     = "GEMINI_API_KEY"
	envOllamaURL        = "OLLAMA_URL"
	envEmbeddingModel   = "EMBEDDING_MODEL"
	envVectorStorePath  = "VECTOR_STORE_PATH"
	envPort             = "PORT"
	maxTemperature      = 2.0
	secretMask          = "********"
	settingKindString   = "string"
	settingKindInt      = "int"
	settingKindFloat    = "float"
	settingKindList     = "list"
	settingKindProvider = "provider"
	settingKindStrategy = "strategy"
)

// settingKinds maps every recognised key to its value type.
var settingKinds = map[string]string{
	keyEmbedProvider:  settingKindProvider,
	keyEmbedModel:     settingKindString,
	keyEmbedBaseURL:   settingKindString,
	keyEmbedAPIKey:    settingKindString,
	keyEmbedTimeout:   settingKindInt,
	keyEmbedRPS:       settingKindFloat,
	keyLLMProvider:    settingKindProvider,
	keyLLMModel:       settingKindString,
	keyLLMBaseURL:     settingKindString,
	keyLLMAPIKey:      settingKindString,
	keyChunkMaxTokens: settingKindInt,
	keyChunkOverlap:   settingKindInt,
	keyChunkStrategy:  settingKindStrategy,
	keyTopK:           settingKindInt,
	keyContextChunks:  settingKindInt,
	keyFallbackChunks: settingKindInt,
	keyGenMaxTokens:   settingKindInt,
	keyGenTemperature: settingKindFloat,
	keyGenTopP:        settingKindFloat,
	keyDataDir:        settingKindString,
	keySnapshotPath:   settingKindString,
	keyServerPort:     settingKindInt,
	keyAllowedOrigins: settingKindList,
	keyMaxUploadMB:    settingKindInt,
}

// SettingsService manages application settings stored in a ConfigStore.
// Environment variables override stored values when settings are read but
// are never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store, filling gaps with defaults.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Timeout:           time.Duration(s.getInt(keyEmbedTimeout, int(defaults.Embedding.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			MaxTokens: s.getInt(keyChunkMaxTokens, defaults.Chunking.MaxTokens),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
			Strategy:  s.getString(keyChunkStrategy, defaults.Chunking.Strategy),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:           s.getInt(keyTopK, defaults.Retrieval.TopK),
			ContextChunks:  s.getInt(keyContextChunks, defaults.Retrieval.ContextChunks),
			FallbackChunks: s.getInt(keyFallbackChunks, defaults.Retrieval.FallbackChunks),
		},
		Generation: domain.GenerationSettings{
			MaxTokens:   s.getInt(keyGenMaxTokens, defaults.Generation.MaxTokens),
			Temperature: s.getFloat(keyGenTemperature, defaults.Generation.Temperature),
			TopP:        s.getFloat(keyGenTopP, defaults.Generation.TopP),
		},
		Storage: domain.StorageSettings{
			DataDir:      s.configStore.GetString(keyDataDir),
			SnapshotPath: s.configStore.GetString(keySnapshotPath),
		},
		Server: domain.ServerSettings{
			Port:           s.getInt(keyServerPort, defaults.Server.Port),
			AllowedOrigins: s.configStore.GetStringSlice(keyAllowedOrigins),
			MaxUploadBytes: int64(s.getInt(keyMaxUploadMB, int(defaults.Server.MaxUploadBytes/bytesPerMB))) * bytesPerMB,
		},
	}

	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider != "" && settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings
}

// applyEnv overlays environment variables on settings.
// With no LLM configured, GROQ_API_KEY selects Groq.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if url := s.getenv(envOllamaURL); url != "" {
		if settings.Embedding.Provider.IsLocal() {
			settings.Embedding.BaseURL = url
		}
		if settings.LLM.Provider.IsLocal() {
			settings.LLM.BaseURL = url
		}
	}
	if model := s.getenv(envEmbeddingModel); model != "" {
		settings.Embedding.Model = model
	}
	if path := s.getenv(envVectorStorePath); path != "" {
		settings.Storage.SnapshotPath = path
	}
	if port, err := strconv.Atoi(s.getenv(envPort)); err == nil && port > 0 {
		settings.Server.Port = port
	}

	if settings.LLM.Provider == "" && s.getenv(envGroqAPIKey) != "" {
		settings.LLM.Provider = domain.AIProviderGroq
		settings.LLM.Model = domain.DefaultLLMModels()[domain.AIProviderGroq]
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.apiKeyFromEnv(settings.LLM.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.apiKeyFromEnv(settings.Embedding.Provider)
	}
}

func (s *SettingsService) apiKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGroq:
		return s.getenv(envGroqAPIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicAPIKey)
	case domain.AIProviderGemini:
		return s.getenv(envGeminiAPIKey)
	default:
		return ""
	}
}

// Save persists application settings. Empty API keys are not written so
// keys supplied by the environment never end up in the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedTimeout, int(settings.Embedding.Timeout / time.Second)},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkMaxTokens, settings.Chunking.MaxTokens},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyChunkStrategy, settings.Chunking.Strategy},
		{keyTopK, settings.Retrieval.TopK},
		{keyContextChunks, settings.Retrieval.ContextChunks},
		{keyFallbackChunks, settings.Retrieval.FallbackChunks},
		{keyGenMaxTokens, settings.Generation.MaxTokens},
		{keyGenTemperature, settings.Generation.Temperature},
		{keyGenTopP, settings.Generation.TopP},
		{keyServerPort, settings.Server.Port},
		{keyMaxUploadMB, int(settings.Server.MaxUploadBytes / bytesPerMB)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	optional := []struct {
		key   string
		value string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyDataDir, settings.Storage.DataDir},
		{keySnapshotPath, settings.Storage.SnapshotPath},
	}
	for _, v := range optional {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if len(settings.Server.AllowedOrigins) > 0 {
		if err := s.configStore.Set(keyAllowedOrigins, settings.Server.AllowedOrigins); err != nil {
			return fmt.Errorf("save %s: %w", keyAllowedOrigins, err)
		}
	}

	return nil
}

// Set parses value for key and stores it. Unknown keys are rejected here;
// unknown keys already present in the config file are ignored when reading.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case settingKindString:
		parsed = value
	case settingKindProvider:
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !slices.Contains(domain.AllEmbeddingProviders(), provider) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
		}
		parsed = provider.String()
	case settingKindStrategy:
		strategy := chunker.Strategy(strings.ToLower(value))
		if !strategy.IsValid() {
			return fmt.Errorf("%w: invalid chunking strategy %q", domain.ErrInvalidInput, value)
		}
		parsed = string(strategy)
	case settingKindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case settingKindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case settingKindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	}

	return s.configStore.Set(key, parsed)
}

// Keys returns the recognised setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Display returns every setting as a display string, with API keys masked.
func (s *SettingsService) Display() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		keyEmbedProvider:  settings.Embedding.Provider.String(),
		keyEmbedModel:     settings.Embedding.Model,
		keyEmbedBaseURL:   settings.Embedding.BaseURL,
		keyEmbedAPIKey:    mask(settings.Embedding.APIKey),
		keyEmbedTimeout:   strconv.Itoa(int(settings.Embedding.Timeout / time.Second)),
		keyEmbedRPS:       strconv.FormatFloat(settings.Embedding.RequestsPerSecond, 'g', -1, 64),
		keyLLMProvider:    settings.LLM.Provider.String(),
		keyLLMModel:       settings.LLM.Model,
		keyLLMBaseURL:     settings.LLM.BaseURL,
		keyLLMAPIKey:      mask(settings.LLM.APIKey),
		keyChunkMaxTokens: strconv.Itoa(settings.Chunking.MaxTokens),
		keyChunkOverlap:   strconv.Itoa(settings.Chunking.Overlap),
		keyChunkStrategy:  settings.Chunking.Strategy,
		keyTopK:           strconv.Itoa(settings.Retrieval.TopK),
		keyContextChunks:  strconv.Itoa(settings.Retrieval.ContextChunks),
		keyFallbackChunks: strconv.Itoa(settings.Retrieval.FallbackChunks),
		keyGenMaxTokens:   strconv.Itoa(settings.Generation.MaxTokens),
		keyGenTemperature: strconv.FormatFloat(settings.Generation.Temperature, 'g', -1, 64),
		keyGenTopP:        strconv.FormatFloat(settings.Generation.TopP, 'g', -1, 64),
		keyDataDir:        settings.Storage.DataDir,
		keySnapshotPath:   settings.Storage.SnapshotPath,
		keyServerPort:     strconv.Itoa(settings.Server.Port),
		keyAllowedOrigins: strings.Join(settings.Server.AllowedOrigins, ","),
		keyMaxUploadMB:    strconv.Itoa(int(settings.Server.MaxUploadBytes / bytesPerMB)),
	}, nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.apiKeyFromEnv(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	if provider.IsLocal() {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.apiKeyFromEnv(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = ""
	if provider.IsLocal() {
		settings.LLM.BaseURL = defaultOllamaURL
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks provider names and numeric ranges.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %q", settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %q", settings.LLM.Provider)
	}
	if settings.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("%s must be positive", keyChunkMaxTokens)
	}
	if settings.Chunking.Overlap >= settings.Chunking.MaxTokens {
		return fmt.Errorf("%s must be smaller than %s", keyChunkOverlap, keyChunkMaxTokens)
	}
	if !chunker.Strategy(settings.Chunking.Strategy).IsValid() {
		return fmt.Errorf("invalid %s: %q", keyChunkStrategy, settings.Chunking.Strategy)
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%s must be positive", keyTopK)
	}
	if settings.Generation.Temperature < 0 || settings.Generation.Temperature > maxTemperature {
		return fmt.Errorf("%s must be between 0 and %g", keyGenTemperature, maxTemperature)
	}
	if settings.Generation.TopP < 0 || settings.Generation.TopP > 1 {
		return fmt.Errorf("%s must be between 0 and 1", keyGenTopP)
	}
	if settings.Server.Port <= 0 || settings.Server.Port > 65535 {
		return fmt.Errorf("%s must be a valid port", keyServerPort)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return secretMask
}
