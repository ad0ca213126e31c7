package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRecord(id string, created time.Time) *domain.IngestionRecord {
	return &domain.IngestionRecord{
		ID:         id,
		FileName:   id + ".pdf",
		FileSize:   2048,
		FileType:   domain.FileTypePDF,
		StoredPath: "/uploads/" + id + ".pdf",
		Status:     domain.IngestionPending,
		CreatedAt:  created,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.IngestionStore().Save(ctx, testRecord("doc-1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.IngestionStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.pdf", rec.FileName)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.migrate(migrations.FS))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestIngestionStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := testRecord("doc-1", created)
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.Equal(t, domain.FileTypePDF, got.FileType)
	assert.Equal(t, domain.IngestionPending, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, got.ProcessedAt.IsZero())
}

func TestIngestionStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := testRecord("doc-1", created)
	require.NoError(t, store.Save(ctx, rec))

	rec.Status = domain.IngestionCompleted
	rec.Language = domain.LanguageHindi
	rec.LanguageConfidence = 0.92
	rec.ChunkCount = 7
	rec.TextLength = 1234
	rec.Preview = "यह एक परीक्षण है"
	rec.ProcessedAt = created.Add(time.Minute)
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionCompleted, got.Status)
	assert.Equal(t, domain.LanguageHindi, got.Language)
	assert.InDelta(t, 0.92, got.LanguageConfidence, 1e-9)
	assert.Equal(t, 7, got.ChunkCount)
	assert.Equal(t, 1234, got.TextLength)
	assert.Equal(t, "यह एक परीक्षण है", got.Preview)
	assert.True(t, rec.ProcessedAt.Equal(got.ProcessedAt))
}

func TestIngestionStore_FailedRecord(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()

	rec := testRecord("doc-1", time.Now())
	rec.Status = domain.IngestionFailed
	rec.Error = "no text extracted from document"
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IngestionFailed, got.Status)
	assert.Equal(t, "no text extracted from document", got.Error)
}

func TestIngestionStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t).IngestionStore()

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestionStore_GetByPath(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	older := testRecord("old", base)
	older.StoredPath = "/watched/report.pdf"
	newer := testRecord("new", base.Add(time.Hour))
	newer.StoredPath = "/watched/report.pdf"
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	got, err := store.GetByPath(ctx, "/watched/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = store.GetByPath(ctx, "/watched/other.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestionStore_ListOldestFirst(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testRecord("b", base.Add(2*time.Minute))))
	require.NoError(t, store.Save(ctx, testRecord("a", base)))
	require.NoError(t, store.Save(ctx, testRecord("c", base.Add(time.Minute))))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
	assert.Equal(t, "b", records[2].ID)
}

func TestIngestionStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t).IngestionStore()

	records, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIngestionStore_Delete(t *testing.T) {
	store := setupTestStore(t).IngestionStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRecord("doc-1", time.Now())))

	require.NoError(t, store.Delete(ctx, "doc-1"))
	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err := store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
