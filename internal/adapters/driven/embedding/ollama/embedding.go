// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "nomic-embed-text"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 64
)

// Config overrides the server, model and request shape.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// BatchSize caps the inputs sent per /api/embed call.
	BatchSize int

	// KeepAlive is how long Ollama keeps the model loaded after a call, in
	// its duration syntax ("5m", "-1"). Empty leaves the server default.
	KeepAlive string
}

// EmbeddingService calls /api/embed.
type EmbeddingService struct {
	http      *httpjson.Client
	model     string
	batchSize int
	keepAlive string

	// dimensions starts from the known-model table and follows responses.
	dimensions atomic.Int64
}

// embedRequest sends Input as a string for one text and a list otherwise.
// Truncate asks the server to cut inputs longer than the model context
// instead of failing the whole batch.
type embedRequest struct {
	Model     string `json:"model"`
	Input     any    `json:"input"`
	Truncate  bool   `json:"truncate"`
	KeepAlive string `json:"keep_alive,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	s := &EmbeddingService{
		http:      httpjson.New("ollama", baseURL, timeout, nil),
		model:     model,
		batchSize: batch,
		keepAlive: cfg.KeepAlive,
	}
	s.dimensions.Store(int64(domain.EmbeddingDimensions()[model]))
	return s
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embed(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts BatchSize at a time, preserving order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		part := texts[start:min(start+s.batchSize, len(texts))]
		vecs, err := s.embed(ctx, part, len(part))
		if err != nil {
			return nil, fmt.Errorf("batch at %d: %w", start, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, input any, want int) ([][]float32, error) {
	resp, err := s.http.Do(ctx, http.MethodPost, "/api/embed", embedRequest{
		Model:     s.model,
		Input:     input,
		Truncate:  true,
		KeepAlive: s.keepAlive,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, s.http.StatusError(resp)
	}

	var reply embedResponse
	if err := httpjson.Decode(resp, &reply); err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, s.http.ProviderError(reply.Error)
	}
	if len(reply.Embeddings) != want {
		return nil, fmt.Errorf("ollama: expected %d embeddings, got %d", want, len(reply.Embeddings))
	}
	for i, e := range reply.Embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding at index %d", i)
		}
	}

	s.dimensions.Store(int64(len(reply.Embeddings[0])))
	return reply.Embeddings, nil
}

// Dimensions returns the vector size, or 0 for an unknown model that has not
// produced an embedding yet.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists installed models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.http.Ping(ctx, "/api/tags")
}

func (s *EmbeddingService) Close() error {
	s.http.Close()
	return nil
}
