package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "docqa://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "docqa://documents/doc-456/chunks",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		server := newTestServer(t, &mockAskService{}, &mockDocumentService{records: testRecords})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var docs []DocumentOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
		require.Len(t, docs, 2)
		assert.Equal(t, "notes.txt", docs[0].FileName)
	})

	t.Run("empty list", func(t *testing.T) {
		server := newTestServer(t, &mockAskService{}, &mockDocumentService{})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &mockAskService{}, &mockDocumentService{err: errors.New("db closed")})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockAskService{}, &mockDocumentService{records: testRecords})

	t.Run("returns record", func(t *testing.T) {
		result, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/doc-1"))

		require.NoError(t, err)
		var rec domain.IngestionRecord
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &rec))
		assert.Equal(t, "doc-1", rec.ID)
		assert.Equal(t, "The cat sat on the mat.", rec.Preview)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/missing"))

		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/"))

		assert.Error(t, err)
	})
}
