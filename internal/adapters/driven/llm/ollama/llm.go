// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig overrides the server address, model or timeout.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService answers prompts through /api/generate without streaming.
type LLMService struct {
	http  *httpjson.Client
	model string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMService{
		http:  httpjson.New("ollama", baseURL, timeout, nil),
		model: model,
	}
}

// generationOptions returns nil when every option is unset, leaving the
// model's own defaults in force.
func generationOptions(opts driven.GenerateOptions) *options {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && opts.TopP <= 0 && len(opts.StopWords) == 0 {
		return nil
	}
	return &options{
		NumPredict:  opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Stop:        opts.StopWords,
	}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.http.Do(ctx, http.MethodPost, "/api/generate", generateRequest{
		Model:   s.model,
		Prompt:  prompt,
		Options: generationOptions(opts),
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", s.http.StatusError(resp)
	}

	var reply generateResponse
	if err := httpjson.Decode(resp, &reply); err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", s.http.ProviderError(reply.Error)
	}
	return reply.Response, nil
}

// ListModels returns the names of the installed models.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	resp, err := s.http.Do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("ollama: list models failed: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("ollama: API returned status %d: %s", resp.Status, strings.TrimSpace(string(resp.Body)))
	}

	var tags tagsResponse
	if err := httpjson.Decode(resp, &tags); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that the server answers and the model is installed. An
// untagged model name matches its ":latest" variant.
func (s *LLMService) Ping(ctx context.Context) error {
	models, err := s.ListModels(ctx)
	if err != nil {
		return err
	}

	tagged := s.model
	if !strings.Contains(tagged, ":") {
		tagged += ":latest"
	}
	if slices.Contains(models, s.model) || slices.Contains(models, tagged) {
		return nil
	}
	return fmt.Errorf("ollama: model %q is not installed (run `ollama pull %s`)", s.model, s.model)
}

func (s *LLMService) Close() error {
	s.http.Close()
	return nil
}
