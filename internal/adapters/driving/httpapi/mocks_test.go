package httpapi

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type mockAskService struct {
	answer *domain.Answer
	err    error

	mu           sync.Mutex
	lastQuestion string
	lastOpts     domain.AskOptions
}

func (m *mockAskService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuestion = question
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	answer := *m.answer
	answer.Question = question
	return &answer, nil
}

func (m *mockAskService) Search(_ context.Context, _ string, _ int) ([]domain.SimilarityResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answer.Chunks, nil
}

// mockIngestService accepts .txt and .pdf files, like a registry with two extractors.
type mockIngestService struct {
	err error

	mu        sync.Mutex
	submitted []string
}

func (m *mockIngestService) Submit(_ context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var fileType domain.FileType
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt":
		fileType = domain.FileTypeTXT
	case ".pdf":
		fileType = domain.FileTypePDF
	default:
		return nil, domain.ErrUnsupportedFileType
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.submitted = append(m.submitted, path)
	m.mu.Unlock()

	return &domain.IngestionRecord{
		ID:         "doc-new",
		FileName:   fileName,
		FileSize:   info.Size(),
		FileType:   fileType,
		StoredPath: path,
		Status:     domain.IngestionPending,
	}, nil
}

func (m *mockIngestService) IngestFile(ctx context.Context, path, fileName string) (*domain.IngestionRecord, error) {
	return m.Submit(ctx, path, fileName)
}

func (m *mockIngestService) Wait() {}

type mockDocumentService struct {
	records []domain.IngestionRecord
	stats   domain.StoreStats
	err     error
	deleted []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.IngestionRecord, error) {
	return m.records, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.IngestionRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentService) GetByPath(_ context.Context, path string) (*domain.IngestionRecord, error) {
	for i := range m.records {
		if m.records[i].StoredPath == path {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (int, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			m.deleted = append(m.deleted, id)
			return m.records[i].ChunkCount, nil
		}
	}
	return 0, domain.ErrDocumentNotFound
}

func (m *mockDocumentService) Stats(_ context.Context) domain.StoreStats {
	return m.stats
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}
