// Package plaintext extracts text files as UTF-8.
package plaintext

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads plain text files. A UTF-8 or UTF-16 byte order mark selects
// the decoding; anything else is read as UTF-8 with invalid bytes replaced.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedFileTypes returns the file types this extractor handles.
func (e *Extractor) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeTXT}
}

// Extract returns the decoded contents of the file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: TXT: %w", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	content, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return "", fmt.Errorf("%w: TXT: %w", domain.ErrExtractionFailed, err)
	}

	return string(content), nil
}
