package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func newTestServer(t *testing.T, models []string, generate http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		var resp tagsResponse
		for _, name := range models {
			resp.Models = append(resp.Models, struct {
				Name string `json:"name"`
			}{Name: name})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	if generate != nil {
		mux.HandleFunc("/api/generate", generate)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultBaseURL, s.http.BaseURL())
	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, DefaultLLMTimeout, s.http.Timeout())
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.Equal(t, "Why is the sky blue?", req.Prompt)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 128, req.Options.NumPredict)
		assert.InDelta(t, 0.5, req.Options.Temperature, 1e-9)
		assert.InDelta(t, 0.9, req.Options.TopP, 1e-9)

		_, _ = w.Write([]byte(`{"response":"Rayleigh scattering.","done":true}`))
	})
	s := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "mistral"})

	text, err := s.Generate(context.Background(), "Why is the sky blue?", driven.GenerateOptions{
		MaxTokens:   128,
		Temperature: 0.5,
		TopP:        0.9,
	})

	require.NoError(t, err)
	assert.Equal(t, "Rayleigh scattering.", text)
}

func TestGenerate_NoOptions(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "options")
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.NoError(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, `{"error":"model 'x' not found"}`, "status 404"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "out of memory"},
		{"bad json", http.StatusOK, `nope`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi", driven.GenerateOptions{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t, []string{"llama3.2:latest", "mistral:7b"}, nil)

	tests := []struct {
		model   string
		wantErr bool
	}{
		{model: "llama3.2"},
		{model: "llama3.2:latest"},
		{model: "mistral:7b"},
		{model: "mistral", wantErr: true},
		{model: "gemma", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			err := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: tt.model}).Ping(context.Background())

			if tt.wantErr {
				assert.ErrorContains(t, err, "not installed")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestListModels(t *testing.T) {
	srv := newTestServer(t, []string{"a", "b"}, nil)

	models, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, models)
}
