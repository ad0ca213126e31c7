package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestionStore persists ingestion records.
type IngestionStore interface {
	// Save stores or updates a record.
	Save(ctx context.Context, record *domain.IngestionRecord) error

	// Get retrieves a record by document id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.IngestionRecord, error)

	// GetByPath retrieves the most recent record for a stored file path, or domain.ErrNotFound.
	GetByPath(ctx context.Context, path string) (*domain.IngestionRecord, error)

	// List returns all records, oldest first.
	List(ctx context.Context) ([]domain.IngestionRecord, error)

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
