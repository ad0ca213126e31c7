package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService runs files through extraction, chunking, embedding and storage.
type IngestService interface {
	// Submit records a pending ingestion and processes it in the background.
	// Unsupported file types are rejected before anything is recorded.
	Submit(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error)

	// IngestFile processes a file synchronously and returns its final record.
	// The record is persisted even when an error is returned.
	IngestFile(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error)

	// Wait blocks until all background ingestions have finished.
	Wait()
}
