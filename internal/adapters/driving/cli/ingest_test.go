package cli

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestIngest(t *testing.T) {
	svcs := setupTestServices(t)

	out, err := execute(t, "ingest", "notes.txt")

	require.NoError(t, err)
	require.Len(t, svcs.ingest.paths, 1)
	assert.True(t, filepath.IsAbs(svcs.ingest.paths[0]))
	assert.Equal(t, "notes.txt", filepath.Base(svcs.ingest.paths[0]))
	assert.Contains(t, out, "notes.txt: completed")
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Chunks:   3")
}

func TestIngest_PartialFailure(t *testing.T) {
	svcs := setupTestServices(t)
	svcs.ingest.IngestFileFunc = func(_ context.Context, _, name string) (*domain.IngestionRecord, error) {
		switch name {
		case "empty.pdf":
			return &domain.IngestionRecord{
				ID:       "doc-2",
				FileName: name,
				Status:   domain.IngestionFailed,
				Error:    "no text could be extracted",
			}, domain.ErrNoTextExtracted
		case "photo.png":
			return nil, domain.ErrUnsupportedFileType
		default:
			return &domain.IngestionRecord{ID: "doc-1", FileName: name, Status: domain.IngestionCompleted}, nil
		}
	}

	out, err := execute(t, "ingest", "ok.txt", "empty.pdf", "photo.png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed")
	assert.Contains(t, out, "ok.txt: completed")
	assert.Contains(t, out, "empty.pdf: failed: no text could be extracted")
	assert.Contains(t, out, "photo.png: unsupported file type")
}

func TestIngest_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ingest", "a.txt", "b.txt", "--json")

	require.NoError(t, err)
	var records []domain.IngestionRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "b.txt", records[1].FileName)
}

func TestIngest_NotConfigured(t *testing.T) {
	setupTestServices(t)
	ingestService = nil

	_, err := execute(t, "ingest", "a.txt")

	require.True(t, errors.Is(err, errNotConfigured))
}
