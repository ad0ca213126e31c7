package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns every ingestion record, oldest first.
	List(ctx context.Context) ([]domain.IngestionRecord, error)

	// Get retrieves an ingestion record, or domain.ErrDocumentNotFound.
	Get(ctx context.Context, documentID string) (*domain.IngestionRecord, error)

	// GetByPath retrieves the latest record for a stored file path, or domain.ErrDocumentNotFound.
	GetByPath(ctx context.Context, path string) (*domain.IngestionRecord, error)

	// Delete removes a document from the vector store, its record and its stored upload.
	// Returns the number of chunks removed, or domain.ErrDocumentNotFound.
	Delete(ctx context.Context, documentID string) (int, error)

	// Stats returns the vector store statistics.
	Stats(ctx context.Context) domain.StoreStats

	// Open opens the document's stored file with the system default application.
	Open(ctx context.Context, documentID string) error
}
