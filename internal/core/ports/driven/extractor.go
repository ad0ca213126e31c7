package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor turns a stored file into raw text.
// Each extractor handles specific file types (e.g., PDF, DOCX).
type Extractor interface {
	// SupportedFileTypes returns the file types this extractor handles.
	SupportedFileTypes() []domain.FileType

	// Extract reads the file at path and returns its text.
	// Failures wrap domain.ErrExtractionFailed.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects an extractor by file name.
type ExtractorRegistry interface {
	// FileType classifies a file name by extension.
	// Returns domain.ErrUnsupportedFileType for unknown or unextractable types.
	FileType(name string) (domain.FileType, error)

	// Extract dispatches to the extractor registered for fileType.
	Extract(ctx context.Context, path string, fileType domain.FileType) (string, error)
}
