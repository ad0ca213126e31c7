package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

type documentFixture struct {
	service   *DocumentService
	store     *memory.VectorStore
	records   *memory.IngestionStore
	uploadDir string
	snapshot  string
	opened    []string
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	dir := t.TempDir()
	f := &documentFixture{
		store:     memory.NewVectorStore(),
		records:   memory.NewIngestionStore(),
		uploadDir: filepath.Join(dir, "uploads"),
		snapshot:  filepath.Join(dir, "vector_store.json"),
	}
	require.NoError(t, os.MkdirAll(f.uploadDir, 0o750))
	f.service = NewDocumentService(f.store, f.records, f.snapshot, f.uploadDir)
	f.service.opener = func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	}
	return f
}

// ingest adds a document to the store and records it with a stored file at path.
func (f *documentFixture) ingest(t *testing.T, id, path string, chunks ...string) {
	t.Helper()
	require.NoError(t, addTestDocument(f.store, id, chunks...))
	if path != "" {
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
	}
	require.NoError(t, f.records.Save(context.Background(), &domain.IngestionRecord{
		ID:         id,
		FileName:   filepath.Base(path),
		StoredPath: path,
		Status:     domain.IngestionCompleted,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now().UTC(),
	}))
}

func TestDocumentService_List(t *testing.T) {
	f := newDocumentFixture(t)
	f.ingest(t, "a", filepath.Join(f.uploadDir, "a.txt"), "cat")
	f.ingest(t, "b", filepath.Join(f.uploadDir, "b.txt"), "dog")

	records, err := f.service.List(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestDocumentService_Get(t *testing.T) {
	f := newDocumentFixture(t)
	f.ingest(t, "a", filepath.Join(f.uploadDir, "a.txt"), "cat")

	t.Run("from record", func(t *testing.T) {
		rec, err := f.service.Get(context.Background(), "a")

		require.NoError(t, err)
		assert.Equal(t, "a.txt", rec.FileName)
	})

	t.Run("from snapshot metadata", func(t *testing.T) {
		require.NoError(t, addTestDocument(f.store, "restored", "fish", "dog"))

		rec, err := f.service.Get(context.Background(), "restored")

		require.NoError(t, err)
		assert.Equal(t, "restored", rec.ID)
		assert.Equal(t, "restored.txt", rec.FileName)
		assert.Equal(t, domain.IngestionCompleted, rec.Status)
		assert.Equal(t, 2, rec.ChunkCount)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := f.service.Get(context.Background(), "missing")

		require.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}

func TestDocumentService_GetByPath(t *testing.T) {
	f := newDocumentFixture(t)
	path := filepath.Join(f.uploadDir, "a.txt")
	f.ingest(t, "a", path, "cat")

	rec, err := f.service.GetByPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ID)

	_, err = f.service.GetByPath(context.Background(), filepath.Join(f.uploadDir, "missing.txt"))
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocumentFixture(t)
	upload := filepath.Join(f.uploadDir, "a.txt")
	f.ingest(t, "a", upload, "cat", "dog", "fish")
	f.ingest(t, "b", filepath.Join(f.uploadDir, "b.txt"), "cat")

	removed, err := f.service.Delete(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoFileExists(t, upload)

	_, err = f.records.Get(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrNotFound)

	stats := f.service.Stats(context.Background())
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 1, stats.TotalChunks)

	restored := memory.NewVectorStore()
	require.True(t, restored.LoadSnapshot(f.snapshot))
	assert.Equal(t, 1, restored.Stats().TotalChunks, "snapshot reflects the delete")
}

func TestDocumentService_Delete_KeepsFilesOutsideUploads(t *testing.T) {
	f := newDocumentFixture(t)
	outside := filepath.Join(t.TempDir(), "notes.txt")
	f.ingest(t, "a", outside, "cat")

	_, err := f.service.Delete(context.Background(), "a")

	require.NoError(t, err)
	assert.FileExists(t, outside)
}

func TestDocumentService_Delete_SnapshotOnlyDocument(t *testing.T) {
	f := newDocumentFixture(t)
	require.NoError(t, addTestDocument(f.store, "restored", "cat", "dog"))

	removed, err := f.service.Delete(context.Background(), "restored")

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestDocumentService_Delete_FailedIngestion(t *testing.T) {
	f := newDocumentFixture(t)
	require.NoError(t, f.records.Save(context.Background(), &domain.IngestionRecord{
		ID:     "failed",
		Status: domain.IngestionFailed,
	}))

	removed, err := f.service.Delete(context.Background(), "failed")

	require.NoError(t, err)
	assert.Zero(t, removed)
	_, err = f.records.Get(context.Background(), "failed")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete_Unknown(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Delete(context.Background(), "missing")

	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.NoFileExists(t, f.snapshot)
}

func TestDocumentService_Open(t *testing.T) {
	f := newDocumentFixture(t)
	path := filepath.Join(f.uploadDir, "a.txt")
	f.ingest(t, "a", path, "cat")
	f.ingest(t, "gone", filepath.Join(f.uploadDir, "gone.txt"), "dog")
	require.NoError(t, os.Remove(filepath.Join(f.uploadDir, "gone.txt")))
	require.NoError(t, addTestDocument(f.store, "restored", "fish"))

	require.NoError(t, f.service.Open(context.Background(), "a"))
	assert.Equal(t, []string{path}, f.opened)

	require.ErrorIs(t, f.service.Open(context.Background(), "gone"), domain.ErrNotFound)
	require.ErrorIs(t, f.service.Open(context.Background(), "restored"), domain.ErrNotFound)
	require.ErrorIs(t, f.service.Open(context.Background(), "missing"), domain.ErrDocumentNotFound)
	assert.Len(t, f.opened, 1)
}
