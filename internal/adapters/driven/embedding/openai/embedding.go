// Package openai embeds text through the OpenAI embeddings endpoint, or any
// service that speaks the same wire format.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults applied by NewEmbeddingService.
const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "text-embedding-3-small"
	DefaultTimeout      = 60 * time.Second
	DefaultBatchSize    = 256
	DefaultMaxRetries   = 2
	DefaultRetryBackoff = time.Second
)

// fallbackDimensions is assumed for models missing from the known-model table.
const fallbackDimensions = 1536

// errRateLimited marks a 429 response so the caller can retry it.
var errRateLimited = errors.New("openai: rate limited")

// Config holds connection and batching settings. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string // Azure OpenAI and compatible gateways override this.
	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3-* vectors. Zero keeps the model size.
	Dimensions int

	// BatchSize caps the inputs sent in one request.
	BatchSize int

	// MaxRetries bounds retries of rate-limited requests. RetryBackoff is the
	// first wait when the response carries no Retry-After header; it doubles.
	MaxRetries   int
	RetryBackoff time.Duration
}

// EmbeddingService calls the embeddings endpoint.
type EmbeddingService struct {
	http       *httpjson.Client
	model      string
	dimensions int
	batchSize  int
	maxRetries int
	backoff    time.Duration
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService applies defaults to cfg and resolves the vector size
// from the known-model table.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	auth := http.Header{"Authorization": {"Bearer " + cfg.APIKey}}

	s := &EmbeddingService{
		http:       httpjson.New("openai", orDefault(cfg.BaseURL, DefaultBaseURL), timeout, auth),
		model:      orDefault(cfg.Model, DefaultModel),
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}

	if s.dimensions <= 0 {
		dims, ok := domain.EmbeddingDimensions()[s.model]
		if !ok {
			dims = fallbackDimensions
		}
		s.dimensions = dims
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.maxRetries < 0 {
		s.maxRetries = 0
	} else if s.maxRetries == 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.backoff <= 0 {
		s.backoff = DefaultRetryBackoff
	}
	return s, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in request-sized slices and returns the vectors in
// input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		vecs, err := s.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	wait := s.backoff
	for attempt := 0; ; attempt++ {
		vecs, retryAfter, err := s.embed(ctx, texts)
		if err == nil || !errors.Is(err, errRateLimited) || attempt >= s.maxRetries {
			return vecs, err
		}

		if retryAfter < 0 {
			retryAfter = wait
			wait *= 2
		}
		logger.Debug("openai: rate limited, retrying in %s (attempt %d/%d)", retryAfter, attempt+1, s.maxRetries)

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// embed sends one request. retryAfter is negative unless the server sent a
// usable Retry-After header.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) (vecs [][]float32, retryAfter time.Duration, err error) {
	retryAfter = -1

	input := make([]string, len(texts))
	for i, t := range texts {
		// The endpoint rejects empty strings.
		if strings.TrimSpace(t) == "" {
			t = " "
		}
		input[i] = t
	}

	reqBody := embeddingRequest{Model: s.model, Input: input}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		reqBody.Dimensions = s.dimensions
	}
	resp, err := s.http.Do(ctx, http.MethodPost, "/embeddings", reqBody)
	if err != nil {
		return nil, retryAfter, err
	}

	if resp.Status == http.StatusTooManyRequests {
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs >= 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		return nil, retryAfter, fmt.Errorf("%w: %s", errRateLimited, strings.TrimSpace(string(resp.Body)))
	}

	var decoded embeddingResponse
	if err := httpjson.Decode(resp, &decoded); err != nil {
		if !resp.OK() {
			return nil, retryAfter, s.http.StatusError(resp)
		}
		return nil, retryAfter, err
	}
	if decoded.Error != nil {
		return nil, retryAfter, s.http.ProviderError(decoded.Error.Message)
	}
	if !resp.OK() {
		return nil, retryAfter, s.http.StatusError(resp)
	}

	vecs, err = orderByIndex(decoded, len(texts))
	if err != nil {
		return nil, retryAfter, err
	}
	logger.Debug("openai: embedded %d inputs (%d tokens)", len(texts), decoded.Usage.TotalTokens)
	return vecs, retryAfter, nil
}

// orderByIndex places each returned vector at its input position; the API
// does not promise response order.
func orderByIndex(resp embeddingResponse, n int) ([][]float32, error) {
	vecs := make([][]float32, n)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= n {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vecs[d.Index] = v
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	return vecs, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.http.Ping(ctx, "/models")
}

func (s *EmbeddingService) Close() error {
	s.http.Close()
	return nil
}
