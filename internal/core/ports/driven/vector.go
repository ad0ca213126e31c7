package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore owns chunk vectors and document metadata and answers similarity queries.
// Mutations are serialised per store; reads never observe a partial write.
type VectorStore interface {
	// AddDocument registers a document and one chunk per (text, embedding) pair.
	// Returns domain.ErrDimensionMismatch, leaving the store unchanged, when the lengths differ.
	AddDocument(docID string, chunks []string, embeddings [][]float32, meta domain.DocumentMetadata) error

	// SimilaritySearch returns up to topK chunks by descending cosine similarity.
	SimilaritySearch(query []float32, topK int) []domain.SimilarityResult

	// Query embeds the question and runs SimilaritySearch.
	Query(ctx context.Context, question string, topK int) ([]domain.SimilarityResult, error)

	// DeleteDocument removes a document and its chunks, returning the number of chunks removed.
	DeleteDocument(docID string) int

	// Document returns the metadata of a document or domain.ErrDocumentNotFound.
	Document(docID string) (*domain.DocumentMetadata, error)

	// Stats returns document and chunk totals plus all document metadata.
	Stats() domain.StoreStats

	// SaveSnapshot writes the whole store to path.
	SaveSnapshot(path string) error

	// LoadSnapshot replaces the store with the snapshot at path.
	// A missing or unreadable snapshot leaves the store unchanged and returns false.
	LoadSnapshot(path string) bool
}
