package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// newOllamaEmbedServer fakes the two Ollama endpoints the validator touches.
func newOllamaEmbedServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
		case "/api/embed":
			vec := make([]float32, dims)
			for i := range vec {
				vec[i] = 0.1
			}
			body := map[string]any{"embeddings": [][]float32{vec}}
			w.Header().Set("Content-Type", "application/json")
			assert.NoError(t, json.NewEncoder(w).Encode(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewConfigValidator_Options(t *testing.T) {
	v := NewConfigValidator()
	assert.Equal(t, pingTimeout, v.timeout)
	assert.True(t, v.probe)

	v = NewConfigValidator(WithValidationTimeout(time.Second), WithEmbeddingProbe(false))
	assert.Equal(t, time.Second, v.timeout)
	assert.False(t, v.probe)

	v = NewConfigValidator(WithValidationTimeout(0))
	assert.Equal(t, pingTimeout, v.timeout, "non-positive timeouts are ignored")
}

func TestConfigValidator_SkipsUnconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "nomic-embed-text"}))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderGroq}))
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		dims    int
		probe   bool
		wantErr string
	}{
		{name: "matching dimensions", dims: 768, probe: true},
		{name: "wrong dimensions", dims: 3, probe: true, wantErr: "returned 3 dimensions, expected 768"},
		{name: "probe disabled", dims: 3, probe: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOllamaEmbedServer(t, tt.dims)
			v := NewConfigValidator(WithEmbeddingProbe(tt.probe))

			err := v.ValidateEmbedding(&domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				Model:    "nomic-embed-text",
				BaseURL:  srv.URL,
			})

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidator_ValidateEmbedding_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := NewConfigValidator(WithValidationTimeout(time.Second)).ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  srv.URL,
	})

	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "ollama unreachable")
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	srv := newOllamaEmbedServer(t, 0)
	v := NewConfigValidator()

	err := v.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)

	err = v.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "qwen2.5",
		BaseURL:  srv.URL,
	})
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "not installed")
}
