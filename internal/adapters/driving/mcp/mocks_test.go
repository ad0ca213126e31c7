package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer  *domain.Answer
	results []domain.SimilarityResult
	err     error

	lastQuestion string
	lastOpts     domain.AskOptions
	lastTopK     int
}

func (m *mockAskService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockAskService) Search(_ context.Context, question string, topK int) ([]domain.SimilarityResult, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	records []domain.IngestionRecord
	err     error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.IngestionRecord, error) {
	return m.records, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.IngestionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
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

func (m *mockDocumentService) Delete(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) domain.StoreStats {
	return domain.StoreStats{TotalDocuments: len(m.records)}
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}

var testRecords = []domain.IngestionRecord{
	{
		ID:         "doc-1",
		FileName:   "notes.txt",
		FileType:   domain.FileTypeTXT,
		Status:     domain.IngestionCompleted,
		Language:   domain.LanguageEnglish,
		ChunkCount: 3,
		Preview:    "The cat sat on the mat.",
	},
	{
		ID:       "doc-2",
		FileName: "scan.pdf",
		FileType: domain.FileTypePDF,
		Status:   domain.IngestionFailed,
		Error:    "no text extracted from document",
	},
}
