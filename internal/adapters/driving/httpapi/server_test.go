package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var testChunks = []domain.SimilarityResult{
	{ChunkID: "doc-1:0", DocumentID: "doc-1", Text: "The cat sat on the mat.", Similarity: 0.93},
}

type testAPI struct {
	server    *Server
	ask       *mockAskService
	ingest    *mockIngestService
	documents *mockDocumentService
	uploadDir string
}

func newTestAPI(t *testing.T, cfg Config) *testAPI {
	t.Helper()

	api := &testAPI{
		ask: &mockAskService{answer: &domain.Answer{
			Text:     "On the mat.",
			Language: domain.LanguageEnglish,
			Chunks:   testChunks,
			Source:   domain.SourceLLMRAG,
		}},
		ingest: &mockIngestService{},
		documents: &mockDocumentService{
			records: []domain.IngestionRecord{
				{ID: "doc-1", FileName: "notes.txt", FileType: domain.FileTypeTXT, Status: domain.IngestionCompleted, ChunkCount: 3},
			},
			stats: domain.StoreStats{TotalDocuments: 1, TotalChunks: 3, EmbeddingModel: "nomic-embed-text"},
		},
		uploadDir: t.TempDir(),
	}

	cfg.UploadDir = api.uploadDir
	server, err := NewServer(cfg, &Ports{Ask: api.ask, Ingest: api.ingest, Document: api.documents})
	require.NoError(t, err)
	server.now = func() time.Time { return fixedNow }
	api.server = server
	return api
}

func (a *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func multipartUpload(t *testing.T, field, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(Config{UploadDir: t.TempDir()}, &Ports{})
	assert.ErrorIs(t, err, ErrMissingPorts)

	_, err = NewServer(Config{}, &Ports{Ask: &mockAskService{}, Ingest: &mockIngestService{}, Document: &mockDocumentService{}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, Config{Version: "1.2.3"})

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestAPIHealth(t *testing.T) {
	api := newTestAPI(t, Config{LLMProvider: "groq", LLMModel: "llama-3.3-70b-versatile"})

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	llm := body["llm"].(map[string]any)
	assert.Equal(t, true, llm["available"])
	assert.Equal(t, "groq", llm["provider"])
	store := body["vectorStore"].(map[string]any)
	assert.InDelta(t, 1, store["documents"], 0)
	assert.InDelta(t, 3, store["chunks"], 0)
}

func TestConfig(t *testing.T) {
	api := newTestAPI(t, Config{MaxUploadBytes: 500 << 20, EmbeddingModel: "nomic-embed-text"})

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.InDelta(t, 500, body["maxFileSize"], 0)
	assert.Equal(t, "nomic-embed-text", body["embeddingModel"])
	assert.Equal(t, "none", body["llmProvider"])
	assert.Equal(t, []any{"PDF", "DOCX", "TXT"}, body["supportedFormats"])
}

func TestModels(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantIDs     []string
		wantDefault string
	}{
		{
			name:        "with llm",
			cfg:         Config{LLMProvider: "groq", LLMModel: "llama-3.3-70b-versatile"},
			wantIDs:     []string{"groq-llama-3.3-70b-versatile", "docqa-rag"},
			wantDefault: "groq-llama-3.3-70b-versatile",
		},
		{
			name:        "without llm",
			wantIDs:     []string{"docqa-rag"},
			wantDefault: "docqa-rag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.cfg)

			rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/models", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Models  []ModelInfo `json:"models"`
				Default string      `json:"default"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			ids := make([]string, 0, len(body.Models))
			for _, m := range body.Models {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantDefault, body.Default)
		})
	}
}

func TestUpload(t *testing.T) {
	api := newTestAPI(t, Config{})

	rec := api.do(t, multipartUpload(t, "file", "notes.txt", "The cat sat on the mat."))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, "doc-new", resp.DocID)
	assert.Equal(t, "notes.txt", resp.FileName)
	assert.Equal(t, int64(23), resp.FileSize)
	assert.Equal(t, domain.FileTypeTXT, resp.FileType)

	require.Len(t, api.ingest.submitted, 1)
	stored := api.ingest.submitted[0]
	assert.Equal(t, api.uploadDir, filepath.Dir(stored))
	assert.Equal(t, ".txt", filepath.Ext(stored))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "The cat sat on the mat.", string(data))
}

func TestUpload_Errors(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		api := newTestAPI(t, Config{})

		rec := api.do(t, multipartUpload(t, "document", "notes.txt", "text"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded", decode(t, rec)["error"])
	})

	t.Run("unsupported type removes stored file", func(t *testing.T) {
		api := newTestAPI(t, Config{})

		rec := api.do(t, multipartUpload(t, "file", "photo.png", "png bytes"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		entries, err := os.ReadDir(api.uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("too large", func(t *testing.T) {
		api := newTestAPI(t, Config{MaxUploadBytes: 512})

		rec := api.do(t, multipartUpload(t, "file", "big.txt", strings.Repeat("x", 4096)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, api.ingest.submitted)
	})
}

func TestDocuments(t *testing.T) {
	api := newTestAPI(t, Config{})

	t.Run("list", func(t *testing.T) {
		rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.InDelta(t, 1, body["totalDocuments"], 0)
		docs := body["documents"].([]any)
		assert.Equal(t, "doc-1", docs[0].(map[string]any)["docId"])
		assert.Contains(t, body, "vectorStats")
	})

	t.Run("get", func(t *testing.T) {
		rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "completed", decode(t, rec)["status"])
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := api.do(t, httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.InDelta(t, 3, body["chunksRemoved"], 0)
		assert.Equal(t, []string{"doc-1"}, api.documents.deleted)
	})

	t.Run("delete unknown", func(t *testing.T) {
		rec := api.do(t, httptest.NewRequest(http.MethodDelete, "/api/documents/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantOptions domain.AskOptions
	}{
		{"defaults", `{"question":"Where did the cat sit?"}`, http.StatusOK, domain.AskOptions{}},
		{"top k and llm disabled", `{"question":"cat?","topK":2,"useLLM":false}`, http.StatusOK, domain.AskOptions{TopK: 2, DisableLLM: true}},
		{"unknown fields ignored", `{"question":"cat?","temperature":3}`, http.StatusOK, domain.AskOptions{}},
		{"use ollama alias", `{"question":"cat?","useOllama":false}`, http.StatusOK, domain.AskOptions{DisableLLM: true}},
		{"use llm wins over alias", `{"question":"cat?","useLLM":true,"useOllama":false}`, http.StatusOK, domain.AskOptions{}},
		{"empty question", `{"question":"   "}`, http.StatusBadRequest, domain.AskOptions{}},
		{"malformed body", `{"question":`, http.StatusBadRequest, domain.AskOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, Config{})

			rec := api.postJSON(t, "/api/query", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, decode(t, rec), "error")
				return
			}
			body := decode(t, rec)
			assert.Equal(t, "On the mat.", body["answer"])
			assert.Equal(t, "llm_rag", body["source"])
			assert.Equal(t, "en", body["language"])
			assert.Len(t, body["relevantChunks"], 1)
			assert.Equal(t, tt.wantOptions, api.ask.lastOpts)
		})
	}
}

func TestQuery_ErrorStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: timeout", domain.ErrEmbedding), http.StatusBadGateway},
		{domain.ErrDocumentNotFound, http.StatusNotFound},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			api := newTestAPI(t, Config{})
			api.ask.err = tt.err

			rec := api.postJSON(t, "/api/query", `{"question":"cat?"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAsk(t *testing.T) {
	t.Run("message field", func(t *testing.T) {
		api := newTestAPI(t, Config{})

		rec := api.postJSON(t, "/api/ask", `{"message":"Where did the cat sit?"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "On the mat.", resp.Content)
		assert.Equal(t, resp.Content, resp.Message)
		assert.Equal(t, resp.Content, resp.Answer)
		assert.Equal(t, "assistant", resp.Role)
		assert.Equal(t, fixedNow, resp.Timestamp)
		assert.Equal(t, domain.SourceLLMRAG, resp.Source)
		assert.Len(t, resp.RelevantChunks, 1)
		assert.Equal(t, "Where did the cat sit?", api.ask.lastQuestion)
	})

	t.Run("last message of history", func(t *testing.T) {
		api := newTestAPI(t, Config{})

		rec := api.postJSON(t, "/api/ask", `{"messages":[{"role":"user","content":"hi"},{"role":"user","content":"बिल्ली कहाँ है?"}],"model":"groq"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "बिल्ली कहाँ है?", api.ask.lastQuestion)
	})

	t.Run("empty message", func(t *testing.T) {
		api := newTestAPI(t, Config{})

		rec := api.postJSON(t, "/api/ask", `{"messages":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Message is required", decode(t, rec)["error"])
	})
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		api := newTestAPI(t, Config{})
		req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
		req.Header.Set("Origin", "http://example.com")

		rec := api.do(t, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted origins", func(t *testing.T) {
		api := newTestAPI(t, Config{AllowedOrigins: []string{"http://app.local"}})

		allowed := httptest.NewRequest(http.MethodGet, "/health", nil)
		allowed.Header.Set("Origin", "http://app.local")
		assert.Equal(t, "http://app.local", api.do(t, allowed).Header().Get("Access-Control-Allow-Origin"))

		denied := httptest.NewRequest(http.MethodGet, "/health", nil)
		denied.Header.Set("Origin", "http://evil.example")
		assert.Empty(t, api.do(t, denied).Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNoRoute(t *testing.T) {
	api := newTestAPI(t, Config{})

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode(t, rec)["error"])
}
