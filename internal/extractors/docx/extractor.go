// Package docx extracts the body text of Office Open XML word documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// documentPart is the archive entry holding the main document body.
const documentPart = "word/document.xml"

// errNoDocumentPart reports an archive without word/document.xml.
var errNoDocumentPart = errors.New("missing " + documentPart)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedFileTypes returns the file types this extractor handles.
func (e *Extractor) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeDOCX}
}

// Extract returns the document text with one line per paragraph. Table cells
// are paragraphs too, so their text is kept.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: DOCX: %w", domain.ErrExtractionFailed, err)
	}
	defer reader.Close()

	text, err := extractDocumentText(&reader.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: DOCX: %w", domain.ErrExtractionFailed, err)
	}
	return text, nil
}

// extractDocumentText reads word/document.xml from the archive.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		return parseDocumentXML(rc)
	}
	return "", errNoDocumentPart
}

// parseDocumentXML streams the document XML and collects w:t runs.
// Elements are matched by local name so the namespace prefix does not matter.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		result     strings.Builder
		paragraphs int
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				if paragraphs > 0 {
					result.WriteString("\n")
				}
				paragraphs++
			case "t":
				inText = true
			case "tab":
				result.WriteString("\t")
			case "br", "cr":
				result.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				result.Write(el)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
