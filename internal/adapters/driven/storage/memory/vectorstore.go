package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// QueryEmbedder embeds question text for Query.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// VectorStore is an in-memory vector index with brute-force cosine search.
//
// Writers serialise on mu and publish a new immutable state; readers load the
// current state without locking.
type VectorStore struct {
	mu       sync.Mutex
	state    atomic.Pointer[vectorState]
	embedder QueryEmbedder
	now      func() time.Time
}

// vectorState is never mutated after it is published.
type vectorState struct {
	// chunks in insertion order.
	chunks []domain.Chunk

	// documents keyed by document ID.
	documents map[string]domain.DocumentMetadata

	// docOrder is the insertion order of documents.
	docOrder []string

	embeddingModel string
}

// VectorStoreOption configures a VectorStore.
type VectorStoreOption func(*VectorStore)

// WithQueryEmbedder sets the embedder used by Query.
func WithQueryEmbedder(e QueryEmbedder) VectorStoreOption {
	return func(s *VectorStore) {
		s.embedder = e
	}
}

// WithClock overrides the clock used for CreatedAt timestamps.
func WithClock(now func() time.Time) VectorStoreOption {
	return func(s *VectorStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewVectorStore creates an empty vector store.
func NewVectorStore(opts ...VectorStoreOption) *VectorStore {
	s := &VectorStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	initial := &vectorState{documents: make(map[string]domain.DocumentMetadata)}
	if s.embedder != nil {
		initial.embeddingModel = s.embedder.ModelName()
	}
	s.state.Store(initial)
	return s
}

// AddDocument registers a document and its chunks in one step.
// Re-adding an existing document replaces its previous chunks.
func (s *VectorStore) AddDocument(
	docID string,
	chunks []string,
	embeddings [][]float32,
	meta domain.DocumentMetadata,
) error {
	if docID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			domain.ErrDimensionMismatch, len(chunks), len(embeddings))
	}
	if err := checkEmbeddings(embeddings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	next := cur.withoutDocument(docID)

	for i, text := range chunks {
		next.chunks = append(next.chunks, domain.Chunk{
			ID:         domain.ChunkID(docID, i),
			DocumentID: docID,
			Index:      i,
			Text:       text,
			Embedding:  slices.Clone(embeddings[i]),
		})
	}

	meta.ID = docID
	meta.ChunkCount = len(chunks)
	meta.CreatedAt = s.now()
	next.documents[docID] = meta
	next.docOrder = append(next.docOrder, docID)

	s.state.Store(next)
	logger.Debug("vector store: added %s with %d chunks", docID, len(chunks))
	return nil
}

// checkEmbeddings rejects empty vectors and vectors whose size differs from
// the first one.
func checkEmbeddings(embeddings [][]float32) error {
	for i, e := range embeddings {
		if len(e) == 0 {
			return fmt.Errorf("%w: embedding %d is empty", domain.ErrDimensionMismatch, i)
		}
		if len(e) != len(embeddings[0]) {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(e), len(embeddings[0]))
		}
	}
	return nil
}

// SimilaritySearch scans every chunk and returns the topK most similar to query.
// Equal similarities keep insertion order.
func (s *VectorStore) SimilaritySearch(query []float32, topK int) []domain.SimilarityResult {
	st := s.state.Load()
	if topK <= 0 || len(st.chunks) == 0 {
		return []domain.SimilarityResult{}
	}

	results := make([]domain.SimilarityResult, 0, len(st.chunks))
	for _, c := range st.chunks {
		results = append(results, domain.SimilarityResult{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Text:       c.Text,
			Similarity: CosineSimilarity(query, c.Embedding),
		})
	}

	slices.SortStableFunc(results, func(a, b domain.SimilarityResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Query embeds question and returns its topK most similar chunks.
func (s *VectorStore) Query(ctx context.Context, question string, topK int) ([]domain.SimilarityResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := s.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.SimilaritySearch(vec, topK), nil
}

// DeleteDocument removes the document's metadata and every chunk whose ID starts
// with "{docID}:". Returns the number of chunks removed; unknown IDs remove nothing.
func (s *VectorStore) DeleteDocument(docID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	next := cur.withoutDocument(docID)
	removed := len(cur.chunks) - len(next.chunks)

	if removed == 0 && len(next.documents) == len(cur.documents) {
		return 0
	}

	s.state.Store(next)
	logger.Debug("vector store: deleted %s (%d chunks)", docID, removed)
	return removed
}

// Document returns a copy of the document's metadata.
func (s *VectorStore) Document(docID string) (*domain.DocumentMetadata, error) {
	meta, ok := s.state.Load().documents[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, docID)
	}
	return &meta, nil
}

// Stats returns totals and the metadata of every document in insertion order.
func (s *VectorStore) Stats() domain.StoreStats {
	st := s.state.Load()

	docs := make([]domain.DocumentMetadata, 0, len(st.docOrder))
	for _, id := range st.docOrder {
		docs = append(docs, st.documents[id])
	}

	return domain.StoreStats{
		TotalDocuments: len(st.documents),
		TotalChunks:    len(st.chunks),
		Documents:      docs,
		EmbeddingModel: st.embeddingModel,
	}
}

// withoutDocument returns a copy of st without docID and its chunks. Chunks
// are matched on their owner, never on a key prefix, since ids may contain ':'.
// Chunk values are shared; they are immutable.
func (st *vectorState) withoutDocument(docID string) *vectorState {
	next := &vectorState{
		chunks:         make([]domain.Chunk, 0, len(st.chunks)),
		documents:      maps.Clone(st.documents),
		docOrder:       make([]string, 0, len(st.docOrder)),
		embeddingModel: st.embeddingModel,
	}
	if next.documents == nil {
		next.documents = make(map[string]domain.DocumentMetadata)
	}

	for _, c := range st.chunks {
		if c.DocumentID != docID {
			next.chunks = append(next.chunks, c)
		}
	}
	for _, id := range st.docOrder {
		if id != docID {
			next.docOrder = append(next.docOrder, id)
		}
	}
	delete(next.documents, docID)
	return next
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It is 0 for empty vectors,
// vectors of different lengths and zero-magnitude vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim))
}
