package extractors

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/docx"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// extensionTypes classifies file extensions. DOC and IMAGE are recognised so
// they can be rejected with a clear error.
var extensionTypes = map[string]domain.FileType{
	".pdf":  domain.FileTypePDF,
	".docx": domain.FileTypeDOCX,
	".doc":  domain.FileTypeDOC,
	".txt":  domain.FileTypeTXT,
	".jpg":  domain.FileTypeImage,
	".jpeg": domain.FileTypeImage,
	".png":  domain.FileTypeImage,
	".tif":  domain.FileTypeImage,
	".tiff": domain.FileTypeImage,
	".webp": domain.FileTypeImage,
}

// docxMIME is the content type of Office Open XML word documents.
const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// mimeTypes classifies upload content types.
var mimeTypes = map[string]domain.FileType{
	"application/pdf":    domain.FileTypePDF,
	docxMIME:             domain.FileTypeDOCX,
	"application/msword": domain.FileTypeDOC,
	"text/plain":         domain.FileTypeTXT,
	"image/jpeg":         domain.FileTypeImage,
	"image/jpg":          domain.FileTypeImage,
	"image/png":          domain.FileTypeImage,
	"image/tiff":         domain.FileTypeImage,
	"image/webp":         domain.FileTypeImage,
}

// Registry maps file types to extractors.
type Registry struct {
	extractors map[domain.FileType]driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
// Later extractors replace earlier ones for the same file type.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[domain.FileType]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// NewDefaultRegistry creates a registry with the TXT, DOCX and PDF extractors.
func NewDefaultRegistry() *Registry {
	return NewRegistry(plaintext.New(), docx.New(), pdf.New())
}

// Register adds an extractor for each file type it supports.
func (r *Registry) Register(e driven.Extractor) {
	for _, ft := range e.SupportedFileTypes() {
		r.extractors[ft] = e
	}
}

// FileType classifies name by its extension. Known types without an
// extractor, such as DOC and images, are unsupported.
func (r *Registry) FileType(name string) (domain.FileType, error) {
	ext := strings.ToLower(filepath.Ext(name))
	ft, ok := extensionTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ext)
	}
	if _, ok := r.extractors[ft]; !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, ft)
	}
	return ft, nil
}

// FileTypeForMIME classifies an upload content type, ignoring parameters
// such as charset.
func (r *Registry) FileTypeForMIME(contentType string) (domain.FileType, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	ft, ok := mimeTypes[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}
	if _, ok := r.extractors[ft]; !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, ft)
	}
	return ft, nil
}

// Extract runs the extractor registered for fileType.
func (r *Registry) Extract(ctx context.Context, path string, fileType domain.FileType) (string, error) {
	e, ok := r.extractors[fileType]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fileType)
	}
	return e.Extract(ctx, path)
}

// SupportedExtensions returns the extensions that have an extractor, sorted.
func (r *Registry) SupportedExtensions() []string {
	var exts []string
	for ext, ft := range extensionTypes {
		if _, ok := r.extractors[ft]; ok {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}
