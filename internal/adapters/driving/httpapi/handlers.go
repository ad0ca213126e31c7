package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// bytesPerMB converts the upload limit for /api/config.
const bytesPerMB = 1 << 20

// QueryRequest is the body of POST /api/query. Unknown fields are ignored.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`

	// UseLLM defaults to true when omitted. UseOllama is the older name of
	// the same switch and is read only when UseLLM is absent.
	UseLLM    *bool `json:"useLLM"`
	UseOllama *bool `json:"useOllama"`
}

// disableLLM reports whether the caller asked for a context-only answer.
func (r QueryRequest) disableLLM() bool {
	switch {
	case r.UseLLM != nil:
		return !*r.UseLLM
	case r.UseOllama != nil:
		return !*r.UseOllama
	}
	return false
}

// ModelInfo describes one entry of GET /api/models.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Type     string `json:"type"`
}

// ragModelID names the retrieval-augmented answer mode in /api/models.
const ragModelID = "docqa-rag"

// AskRequest is the body of POST /api/ask. The question is Message, or the
// content of the last entry in Messages.
type AskRequest struct {
	Message  string       `json:"message"`
	Messages []AskMessage `json:"messages"`
}

// AskMessage is one chat message.
type AskMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// question returns the question carried by the request.
func (r AskRequest) question() string {
	if r.Message != "" {
		return r.Message
	}
	if n := len(r.Messages); n > 0 {
		return r.Messages[n-1].Content
	}
	return ""
}

// AskResponse is the chat-style answer of POST /api/ask.
type AskResponse struct {
	Content        string                    `json:"content"`
	Message        string                    `json:"message"`
	Answer         string                    `json:"answer"`
	Role           string                    `json:"role"`
	Timestamp      time.Time                 `json:"timestamp"`
	Source         domain.AnswerSource       `json:"source"`
	Language       domain.Language           `json:"language"`
	RelevantChunks []domain.SimilarityResult `json:"relevantChunks"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Status   string          `json:"status"`
	DocID    string          `json:"docId"`
	FileName string          `json:"fileName"`
	FileSize int64           `json:"fileSize"`
	FileType domain.FileType `json:"fileType"`
	Message  string          `json:"message"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC(),
		"uptime":    s.now().Sub(s.started).Seconds(),
		"version":   s.cfg.Version,
	})
}

func (s *Server) apiHealth(c *gin.Context) {
	stats := s.ports.Document.Stats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC(),
		"llm": gin.H{
			"available": s.cfg.LLMProvider != "",
			"provider":  s.cfg.LLMProvider,
			"model":     s.cfg.LLMModel,
		},
		"vectorStore": gin.H{
			"documents":      stats.TotalDocuments,
			"chunks":         stats.TotalChunks,
			"embeddingModel": stats.EmbeddingModel,
		},
	})
}

func (s *Server) config(c *gin.Context) {
	llm := "none"
	if s.cfg.LLMProvider != "" {
		llm = s.cfg.LLMProvider + " (" + s.cfg.LLMModel + ")"
	}
	c.JSON(http.StatusOK, gin.H{
		"apiUrl":           "http://" + c.Request.Host,
		"supportedFormats": []domain.FileType{domain.FileTypePDF, domain.FileTypeDOCX, domain.FileTypeTXT},
		"maxFileSize":      s.cfg.MaxUploadBytes / bytesPerMB,
		"embeddingModel":   s.cfg.EmbeddingModel,
		"llmProvider":      llm,
		"version":          s.cfg.Version,
	})
}

// models lists the configured LLM and the document-QA mode built on it.
// Without an LLM only the context-only mode is listed.
func (s *Server) models(c *gin.Context) {
	provider := s.cfg.LLMProvider
	if provider == "" {
		provider = "none"
	}
	rag := ModelInfo{ID: ragModelID, Name: "Document Q&A", Provider: provider, Type: "document-qa"}

	if s.cfg.LLMProvider == "" {
		c.JSON(http.StatusOK, gin.H{"models": []ModelInfo{rag}, "default": rag.ID})
		return
	}

	llm := ModelInfo{
		ID:       s.cfg.LLMProvider + "-" + s.cfg.LLMModel,
		Name:     s.cfg.LLMModel,
		Provider: s.cfg.LLMProvider,
		Type:     "text-generation",
	}
	c.JSON(http.StatusOK, gin.H{"models": []ModelInfo{llm, rag}, "default": llm.ID})
}

func (s *Server) upload(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o700); err != nil {
		respondError(c, err)
		return
	}

	stored := filepath.Join(s.cfg.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	if err := c.SaveUploadedFile(header, stored); err != nil {
		respondError(c, err)
		return
	}

	rec, err := s.ports.Ingest.Submit(c.Request.Context(), stored, filepath.Base(header.Filename))
	if err != nil {
		if rmErr := os.Remove(stored); rmErr != nil {
			logger.Warn("remove rejected upload %s: %v", stored, rmErr)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, UploadResponse{
		Status:   "processing",
		DocID:    rec.ID,
		FileName: rec.FileName,
		FileSize: rec.FileSize,
		FileType: rec.FileType,
		Message:  "File uploaded. Processing text extraction...",
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := s.ports.Document.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []domain.IngestionRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalDocuments": len(records),
		"documents":      records,
		"vectorStats":    s.ports.Document.Stats(ctx),
	})
}

func (s *Server) getDocument(c *gin.Context) {
	rec, err := s.ports.Document.Get(c.Request.Context(), c.Param("docId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteDocument(c *gin.Context) {
	removed, err := s.ports.Document.Delete(c.Request.Context(), c.Param("docId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Document deleted",
		"chunksRemoved": removed,
	})
}

func (s *Server) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	answer, err := s.ports.Ask.Ask(c.Request.Context(), req.Question, domain.AskOptions{
		TopK:       req.TopK,
		DisableLLM: req.disableLLM(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if answer.Chunks == nil {
		answer.Chunks = []domain.SimilarityResult{}
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	question := req.question()
	if strings.TrimSpace(question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	answer, err := s.ports.Ask.Ask(c.Request.Context(), question, domain.AskOptions{})
	if err != nil {
		respondError(c, err)
		return
	}

	chunks := answer.Chunks
	if chunks == nil {
		chunks = []domain.SimilarityResult{}
	}
	c.JSON(http.StatusOK, AskResponse{
		Content:        answer.Text,
		Message:        answer.Text,
		Answer:         answer.Text,
		Role:           "assistant",
		Timestamp:      s.now().UTC(),
		Source:         answer.Source,
		Language:       answer.Language,
		RelevantChunks: chunks,
	})
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
