package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/langdetect"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs files through extraction, language detection, chunking,
// embedding and the vector store. Every outcome is recorded on an
// ingestion record; failures mark the record failed.
type IngestService struct {
	extractors   driven.ExtractorRegistry
	embedder     *EmbeddingClient
	chunker      *chunker.Chunker
	store        driven.VectorStore
	records      driven.IngestionStore
	snapshotPath string

	newID func() string
	now   func() time.Time

	wg sync.WaitGroup
}

// NewIngestService creates a new ingestion service.
// snapshotPath may be empty to skip saving the vector store after each ingestion.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	embedder *EmbeddingClient,
	chunk *chunker.Chunker,
	store driven.VectorStore,
	records driven.IngestionStore,
	snapshotPath string,
) *IngestService {
	if chunk == nil {
		chunk = chunker.New()
	}
	return &IngestService{
		extractors:   extractors,
		embedder:     embedder,
		chunker:      chunk,
		store:        store,
		records:      records,
		snapshotPath: snapshotPath,
		newID:        uuid.NewString,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the file type, records a pending ingestion and processes
// the file in the background. The background work is not tied to ctx's
// cancellation so it outlives the request that submitted it.
func (s *IngestService) Submit(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	rec, err := s.newRecord(ctx, path, fileName)
	if err != nil {
		return nil, err
	}

	submitted := *rec
	bg := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.process(bg, rec); err != nil {
			logger.Warn("ingestion of %s failed: %v", fileName, err)
		}
	}()

	return &submitted, nil
}

// IngestFile processes a file synchronously. The returned record reflects the
// final state and is non-nil whenever the file type was accepted.
func (s *IngestService) IngestFile(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	rec, err := s.newRecord(ctx, path, fileName)
	if err != nil {
		return nil, err
	}
	err = s.process(ctx, rec)
	return rec, err
}

// Wait blocks until all background ingestions have finished.
func (s *IngestService) Wait() {
	s.wg.Wait()
}

func (s *IngestService) newRecord(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	if fileName == "" {
		fileName = path
	}

	fileType, err := s.extractors.FileType(fileName)
	if err != nil {
		return nil, err
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	rec := &domain.IngestionRecord{
		ID:         s.newID(),
		FileName:   fileName,
		FileSize:   size,
		FileType:   fileType,
		StoredPath: path,
		Status:     domain.IngestionPending,
		CreatedAt:  s.now(),
	}
	if err := s.records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save ingestion record: %w", err)
	}
	return rec, nil
}

// process runs the pipeline for rec and persists the outcome on it.
func (s *IngestService) process(ctx context.Context, rec *domain.IngestionRecord) error {
	logger.Section("Ingest " + rec.FileName)
	defer logger.Timed("ingest " + rec.FileName)()

	rec.Status = domain.IngestionProcessing
	s.saveRecord(ctx, rec)

	text, err := s.extractors.Extract(ctx, rec.StoredPath, rec.FileType)
	if err != nil {
		return s.fail(ctx, rec, err)
	}
	if strings.TrimSpace(text) == "" {
		return s.fail(ctx, rec, domain.ErrNoTextExtracted)
	}

	rec.TextLength = utf8.RuneCountInString(text)
	rec.Preview = preview(text, domain.PreviewLength)

	detected := langdetect.DetectWithConfidence(text)
	rec.Language = detected.Language
	rec.LanguageConfidence = detected.Confidence
	logger.Debug("Extracted %d characters, language=%s (%.2f)", rec.TextLength, detected.Language, detected.Confidence)

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return s.fail(ctx, rec, domain.ErrNoTextExtracted)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	vectors := s.embedder.EmbedBatch(ctx, chunks)

	keptChunks := make([]string, 0, len(chunks))
	keptVectors := make([][]float32, 0, len(chunks))
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		keptChunks = append(keptChunks, chunks[i])
		keptVectors = append(keptVectors, vec)
	}
	if len(keptChunks) == 0 {
		return s.fail(ctx, rec, fmt.Errorf("%w: all %d chunks failed to embed", domain.ErrEmbedding, len(chunks)))
	}
	if skipped := len(chunks) - len(keptChunks); skipped > 0 {
		logger.Warn("%s: %d of %d chunks could not be embedded and were skipped", rec.FileName, skipped, len(chunks))
	}

	meta := domain.DocumentMetadata{
		FileName:           rec.FileName,
		FileSize:           rec.FileSize,
		FileType:           rec.FileType,
		Language:           rec.Language,
		LanguageConfidence: rec.LanguageConfidence,
	}
	if err := s.store.AddDocument(rec.ID, keptChunks, keptVectors, meta); err != nil {
		return s.fail(ctx, rec, err)
	}

	if s.snapshotPath != "" {
		if err := s.store.SaveSnapshot(s.snapshotPath); err != nil {
			logger.Warn("saving vector store snapshot: %v", err)
		}
	}

	rec.Status = domain.IngestionCompleted
	rec.ChunkCount = len(keptChunks)
	rec.Error = ""
	rec.ProcessedAt = s.now()
	s.saveRecord(ctx, rec)

	logger.Info("Ingested %s as %s (%d chunks)", rec.FileName, rec.ID, rec.ChunkCount)
	return nil
}

// fail marks rec failed with err and returns err.
func (s *IngestService) fail(ctx context.Context, rec *domain.IngestionRecord, err error) error {
	rec.Status = domain.IngestionFailed
	rec.Error = err.Error()
	rec.ProcessedAt = s.now()
	s.saveRecord(ctx, rec)
	return err
}

// saveRecord persists rec. The pipeline keeps going when the record store fails.
func (s *IngestService) saveRecord(ctx context.Context, rec *domain.IngestionRecord) {
	if err := s.records.Save(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("saving ingestion record %s: %v", rec.ID, err)
	}
}

// preview returns the first n characters of text.
func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
