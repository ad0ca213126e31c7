// Package openai generates answers with the OpenAI chat completions API and
// compatible services such as Groq.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultLLMModel    = "gpt-4o-mini"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultLLMTimeout  = 120 * time.Second
)

// LLMConfig selects the endpoint. Name labels errors ("openai" by default)
// so a Groq failure reads as one.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Name    string
}

// NewGroqConfig points the adapter at Groq's OpenAI-compatible endpoint.
func NewGroqConfig(apiKey, model string) LLMConfig {
	if model == "" {
		model = DefaultGroqModel
	}
	return LLMConfig{
		APIKey:  apiKey,
		BaseURL: DefaultGroqBaseURL,
		Model:   model,
		Name:    "groq",
	}
}

// LLMService answers prompts through /chat/completions.
type LLMService struct {
	http  *httpjson.Client
	model string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService requires an API key; other fields fall back to the OpenAI
// defaults.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", name)
	}
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

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &LLMService{
		http:  httpjson.New(name, baseURL, timeout, header),
		model: model,
	}, nil
}

// Generate sends prompt as one user message and returns the first choice.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.http.Do(ctx, http.MethodPost, "/chat/completions", chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Stop:        opts.StopWords,
	})
	if err != nil {
		return "", err
	}

	var reply chatResponse
	if err := httpjson.Decode(resp, &reply); err != nil {
		if !resp.OK() {
			return "", s.http.StatusError(resp)
		}
		return "", err
	}
	if reply.Error != nil {
		return "", s.http.ProviderError(reply.Error.Message)
	}
	if !resp.OK() {
		return "", s.http.StatusError(resp)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.http.Name())
	}
	return reply.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.http.Ping(ctx, "/models")
}

func (s *LLMService) Close() error {
	s.http.Close()
	return nil
}
