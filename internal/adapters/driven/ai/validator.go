package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded when probing is enabled. It mixes both supported
// scripts so a model that cannot tokenise Devanagari fails here rather than
// on the first Hindi upload.
const probeText = "नमस्ते, hello"

// ConfigValidator checks provider settings before they are saved.
type ConfigValidator struct {
	timeout time.Duration
	probe   bool
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithValidationTimeout bounds each provider round trip.
func WithValidationTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithEmbeddingProbe makes ValidateEmbedding embed a short bilingual text
// and compare the vector size against the model's known dimensions.
func WithEmbeddingProbe(enabled bool) ValidatorOption {
	return func(v *ConfigValidator) {
		v.probe = enabled
	}
}

// NewConfigValidator creates a validator. Probing is on by default.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout, probe: true}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding pings the embedding provider and, when probing, checks
// that it produces vectors of the expected size. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := pingWithin(v.timeout, svc.Ping); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	if !v.probe {
		return nil
	}

	want := svc.Dimensions()
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: probe embedding with %s failed: %w", domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			domain.ErrEmbeddingUnavailable, svc.ModelName(), len(vec), want)
	}

	logger.Debug("embedding provider %s validated (%s, %d dims)", settings.Provider, svc.ModelName(), len(vec))
	return nil
}

// ValidateLLM pings the LLM provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := pingWithin(v.timeout, svc.Ping); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, settings.Provider, err)
	}
	logger.Debug("LLM provider %s validated (%s)", settings.Provider, svc.ModelName())
	return nil
}

// ValidateEmbeddingConfig validates embedding settings with a default validator.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return NewConfigValidator(WithEmbeddingProbe(false)).ValidateEmbedding(settings)
}

// ValidateLLMConfig validates LLM settings with a default validator.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return NewConfigValidator().ValidateLLM(settings)
}
