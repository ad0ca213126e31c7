package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

type ingestFixture struct {
	service  *IngestService
	store    *memory.VectorStore
	records  *memory.IngestionStore
	registry *mockExtractorRegistry
	embedder *mockEmbeddingService
	snapshot string
	dir      string
}

// newIngestFixture wires an ingest service that chunks one sentence per chunk.
func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	dir := t.TempDir()
	f := &ingestFixture{
		store:    memory.NewVectorStore(),
		records:  memory.NewIngestionStore(),
		registry: &mockExtractorRegistry{texts: map[string]string{}},
		embedder: &mockEmbeddingService{},
		snapshot: filepath.Join(dir, "vector_store.json"),
		dir:      dir,
	}
	f.service = NewIngestService(
		f.registry,
		NewEmbeddingClient(f.embedder),
		chunker.New(chunker.WithStrategy(chunker.StrategySentences), chunker.WithSentences(1, 0)),
		f.store,
		f.records,
		f.snapshot,
	)
	ids := 0
	f.service.newID = func() string {
		ids++
		return "doc-" + string(rune('0'+ids))
	}
	f.service.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return f
}

// file writes content to a temp file and registers text as its extraction.
func (f *ingestFixture) file(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("raw bytes"), 0o600))
	f.registry.texts[path] = text
	return path
}

func TestIngestService_IngestFile(t *testing.T) {
	f := newIngestFixture(t)
	path := f.file(t, "animals.txt", "The cat sat on the mat. A dog barked loudly. Fish swim in water.")

	rec, err := f.service.IngestFile(context.Background(), path, "animals.txt")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", rec.ID)
	assert.Equal(t, domain.IngestionCompleted, rec.Status)
	assert.Equal(t, domain.FileTypeTXT, rec.FileType)
	assert.Equal(t, int64(len("raw bytes")), rec.FileSize)
	assert.Equal(t, 3, rec.ChunkCount)
	assert.Equal(t, domain.LanguageEnglish, rec.Language)
	assert.Equal(t, 64, rec.TextLength)
	assert.Equal(t, "The cat sat on the mat. A dog barked loudly. Fish swim in water.", rec.Preview)
	assert.Empty(t, rec.Error)
	assert.False(t, rec.ProcessedAt.IsZero())

	meta, err := f.store.Document("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "animals.txt", meta.FileName)
	assert.Equal(t, 3, meta.ChunkCount)

	stored, err := f.records.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, *rec, *stored)

	assert.FileExists(t, f.snapshot)
	restored := memory.NewVectorStore()
	require.True(t, restored.LoadSnapshot(f.snapshot))
	assert.Equal(t, 3, restored.Stats().TotalChunks)
}

func TestIngestService_IngestFile_Hindi(t *testing.T) {
	f := newIngestFixture(t)
	path := f.file(t, "hindi.txt", "यह एक परीक्षण है। बिल्ली चटाई पर बैठी है।")

	rec, err := f.service.IngestFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHindi, rec.Language)
	assert.Greater(t, rec.LanguageConfidence, 0.5)
	assert.Equal(t, path, rec.FileName, "file name defaults to path")
}

func TestIngestService_IngestFile_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		setup   func(f *ingestFixture)
		wantErr error
	}{
		{
			name:    "whitespace only",
			text:    " \n\t ",
			wantErr: domain.ErrNoTextExtracted,
		},
		{
			name:    "extractor error",
			text:    "ignored",
			setup:   func(f *ingestFixture) { f.registry.extractErr = domain.ErrExtractionFailed },
			wantErr: domain.ErrExtractionFailed,
		},
		{
			name:    "every chunk fails to embed",
			text:    "The cat sat.",
			setup:   func(f *ingestFixture) { f.embedder.embedErr = errors.New("model not found") },
			wantErr: domain.ErrEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			path := f.file(t, "file.txt", tt.text)

			rec, err := f.service.IngestFile(context.Background(), path, "file.txt")

			require.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, rec)
			assert.Equal(t, domain.IngestionFailed, rec.Status)
			assert.Equal(t, err.Error(), rec.Error)

			stored, getErr := f.records.Get(context.Background(), rec.ID)
			require.NoError(t, getErr)
			assert.Equal(t, domain.IngestionFailed, stored.Status)
			assert.Zero(t, f.store.Stats().TotalDocuments)
		})
	}
}

func TestIngestService_IngestFile_SkipsFailedChunks(t *testing.T) {
	f := newIngestFixture(t)
	f.embedder.failOn = "dog"
	path := f.file(t, "animals.txt", "The cat sat. A dog barked. Fish swim.")

	rec, err := f.service.IngestFile(context.Background(), path, "animals.txt")

	require.NoError(t, err)
	assert.Equal(t, 2, rec.ChunkCount)

	results := f.store.SimilaritySearch(keywordVector("fish"), 5)
	require.Len(t, results, 2)
	assert.Equal(t, "Fish swim.", results[0].Text)
	assert.Equal(t, domain.ChunkID("doc-1", 1), results[0].ChunkID, "indexes are contiguous")
}

func TestIngestService_UnsupportedType(t *testing.T) {
	f := newIngestFixture(t)
	path := f.file(t, "scan.png", "text")

	rec, err := f.service.IngestFile(context.Background(), path, "scan.png")

	require.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Nil(t, rec)
	records, listErr := f.records.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, records, "nothing is recorded for rejected files")

	_, err = f.service.Submit(context.Background(), path, "legacy.doc")
	require.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestIngestService_Submit(t *testing.T) {
	f := newIngestFixture(t)
	path := f.file(t, "animals.txt", "The cat sat on the mat.")
	ctx, cancel := context.WithCancel(context.Background())

	rec, err := f.service.Submit(ctx, path, "animals.txt")
	cancel()

	require.NoError(t, err)
	assert.Equal(t, domain.IngestionPending, rec.Status)
	assert.Equal(t, "doc-1", rec.ID)

	f.service.Wait()

	stored, err := f.records.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionCompleted, stored.Status, "processing outlives the submitting request")
	assert.Equal(t, 1, f.store.Stats().TotalChunks)
}

func TestIngestService_NoSnapshotPath(t *testing.T) {
	f := newIngestFixture(t)
	f.service.snapshotPath = ""
	path := f.file(t, "animals.txt", "The cat sat.")

	_, err := f.service.IngestFile(context.Background(), path, "animals.txt")

	require.NoError(t, err)
	assert.NoFileExists(t, f.snapshot)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "यह ए", preview("यह एक परीक्षण", 4))
}
