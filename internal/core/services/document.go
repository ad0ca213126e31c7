package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents across the vector store and the
// ingestion record store.
type DocumentService struct {
	store        driven.VectorStore
	records      driven.IngestionStore
	snapshotPath string
	uploadDir    string
	opener       func(path string) error
}

// NewDocumentService creates a new document service.
// Stored files are only removed on delete when they live under uploadDir.
func NewDocumentService(
	store driven.VectorStore,
	records driven.IngestionStore,
	snapshotPath string,
	uploadDir string,
) *DocumentService {
	return &DocumentService{
		store:        store,
		records:      records,
		snapshotPath: snapshotPath,
		uploadDir:    uploadDir,
		opener:       openFile,
	}
}

// List returns every ingestion record, oldest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.IngestionRecord, error) {
	return s.records.List(ctx)
}

// Get retrieves the ingestion record of a document. Documents restored from a
// snapshot without a record are described from their vector store metadata.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.IngestionRecord, error) {
	rec, err := s.records.Get(ctx, documentID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	meta, err := s.store.Document(documentID)
	if err != nil {
		return nil, err
	}
	return &domain.IngestionRecord{
		ID:                 meta.ID,
		FileName:           meta.FileName,
		FileSize:           meta.FileSize,
		FileType:           meta.FileType,
		Status:             domain.IngestionCompleted,
		Language:           meta.Language,
		LanguageConfidence: meta.LanguageConfidence,
		ChunkCount:         meta.ChunkCount,
		CreatedAt:          meta.CreatedAt,
		ProcessedAt:        meta.CreatedAt,
	}, nil
}

// GetByPath returns the most recent ingestion record for a stored file path,
// or domain.ErrDocumentNotFound.
func (s *DocumentService) GetByPath(ctx context.Context, path string) (*domain.IngestionRecord, error) {
	rec, err := s.records.GetByPath(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
	}
	return rec, err
}

// Delete removes a document's chunks, its record and its stored upload, then
// saves the vector store snapshot.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (int, error) {
	rec, recErr := s.records.Get(ctx, documentID)
	if recErr != nil && !errors.Is(recErr, domain.ErrNotFound) {
		return 0, recErr
	}

	_, metaErr := s.store.Document(documentID)
	if recErr != nil && metaErr != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
	}

	removed := s.store.DeleteDocument(documentID)
	logger.Info("Deleted document %s (%d chunks)", documentID, removed)

	if rec != nil {
		if err := s.records.Delete(ctx, documentID); err != nil {
			return removed, err
		}
		s.removeUpload(rec.StoredPath)
	}

	if s.snapshotPath != "" {
		if err := s.store.SaveSnapshot(s.snapshotPath); err != nil {
			logger.Warn("saving vector store snapshot: %v", err)
		}
	}
	return removed, nil
}

// Stats returns the vector store statistics.
func (s *DocumentService) Stats(_ context.Context) domain.StoreStats {
	return s.store.Stats()
}

// Open opens a document's stored file with the system default application.
func (s *DocumentService) Open(ctx context.Context, documentID string) error {
	rec, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if rec.StoredPath == "" {
		return fmt.Errorf("%w: %s has no stored file", domain.ErrNotFound, documentID)
	}
	if _, err := os.Stat(rec.StoredPath); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return s.opener(rec.StoredPath)
}

// removeUpload deletes a stored file when it is inside the upload directory.
func (s *DocumentService) removeUpload(path string) {
	if path == "" || s.uploadDir == "" {
		return
	}
	rel, err := filepath.Rel(s.uploadDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing upload %s: %v", path, err)
	}
}

// openFile opens a file using the OS-specific command.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
