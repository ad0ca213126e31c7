package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// EmbeddingClient turns text into vectors through an embedding provider.
// It normalises provider failures to domain.ErrEmbedding and never touches
// the vector store.
type EmbeddingClient struct {
	provider driven.EmbeddingService
	limiter  *rate.Limiter
	timeout  time.Duration
}

// EmbeddingOption configures an EmbeddingClient.
type EmbeddingOption func(*EmbeddingClient)

// WithRateLimit limits provider calls to rps per second. Zero or less disables limiting.
func WithRateLimit(rps float64) EmbeddingOption {
	return func(c *EmbeddingClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithEmbedTimeout bounds each provider call.
func WithEmbedTimeout(d time.Duration) EmbeddingOption {
	return func(c *EmbeddingClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewEmbeddingClient creates an embedding client. provider may be nil, in which
// case every call fails with domain.ErrEmbeddingUnavailable.
func NewEmbeddingClient(provider driven.EmbeddingService, opts ...EmbeddingOption) *EmbeddingClient {
	c := &EmbeddingClient{provider: provider}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelName returns the provider's model id, or "" without a provider.
func (c *EmbeddingClient) ModelName() string {
	if c.provider == nil {
		return ""
	}
	return c.provider.ModelName()
}

// EmbedOne embeds a single text. Provider errors, timeouts and empty vectors
// are returned wrapped in domain.ErrEmbedding.
func (c *EmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty vector", domain.ErrEmbedding)
	}
	return vec, nil
}

// EmbedBatch embeds texts one at a time. A failed item is logged and left nil
// at its index; the batch itself never fails. Once ctx is done the remaining
// items stay nil.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))

	for i, text := range texts {
		if ctx.Err() != nil {
			logger.Warn("embedding batch cancelled at %d/%d: %v", i, len(texts), ctx.Err())
			break
		}

		vec, err := c.EmbedOne(ctx, text)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("embedding chunk %d/%d failed: %v", i+1, len(texts), err)
			}
			continue
		}
		vectors[i] = vec
	}

	return vectors
}
