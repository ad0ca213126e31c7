package httpjson

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"prompt":"नमस्ते"}`, string(body))
		w.Header().Set("X-Request-Id", "req-1")
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL+"/", time.Second, http.Header{"X-Key": {"secret"}})
	assert.Equal(t, srv.URL, c.BaseURL())

	resp, err := c.Do(context.Background(), http.MethodPost, "/v1/chat", map[string]string{"prompt": "नमस्ते"})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.Equal(t, "req-1", resp.Header.Get("X-Request-Id"))

	var out struct{ Text string }
	require.NoError(t, Decode(resp, &out))
	assert.Equal(t, "ok", out.Text)
}

func TestClient_Errors(t *testing.T) {
	c := New("groq", "http://unused", time.Second, nil)

	err := c.StatusError(&Response{Status: 502, Body: []byte(" <html>bad gateway</html>\n")})
	assert.EqualError(t, err, "groq error (status 502): <html>bad gateway</html>")

	assert.EqualError(t, c.ProviderError("rate limit reached"), "groq error: rate limit reached")

	err = c.StatusError(&Response{Status: 500, Body: []byte(strings.Repeat("x", 3*maxErrorBody))})
	assert.Len(t, err.Error(), len("groq error (status 500): ")+maxErrorBody)

	err = Decode(&Response{Body: []byte("{")}, &struct{}{})
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		if r.URL.Path == "/models" {
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	}))
	defer srv.Close()
	c := New("openai", srv.URL, time.Second, nil)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background(), "/models"))
	assert.EqualError(t, c.Ping(context.Background(), "/other"), "openai: API returned status 401: invalid key")
}

func TestClient_PingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := New("ollama", srv.URL, time.Second, nil).Ping(context.Background(), "/api/tags")

	assert.ErrorContains(t, err, "ollama: ping failed")
}
