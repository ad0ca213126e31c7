package domain

import "time"

// IngestionStatus is the state of one upload in the ingestion pipeline.
type IngestionStatus string

// Ingestion statuses.
const (
	IngestionPending    IngestionStatus = "pending"
	IngestionProcessing IngestionStatus = "processing"
	IngestionCompleted  IngestionStatus = "completed"
	IngestionFailed     IngestionStatus = "failed"
)

// IsTerminal returns true once the pipeline has finished with the record.
func (s IngestionStatus) IsTerminal() bool {
	return s == IngestionCompleted || s == IngestionFailed
}

// PreviewLength is the number of characters of extracted text kept on a record.
const PreviewLength = 500

// IngestionRecord tracks one uploaded file through extraction, chunking and embedding.
// Failures are recorded here instead of being returned to a long-lived caller.
type IngestionRecord struct {
	// ID is the document id the file is stored under.
	ID string `json:"docId"`

	// FileName is the original file name.
	FileName string `json:"fileName"`

	// FileSize is the file size in bytes.
	FileSize int64 `json:"fileSize"`

	// FileType is the detected file category.
	FileType FileType `json:"fileType"`

	// StoredPath is where the file was read from (uploads are copied here).
	StoredPath string `json:"storedPath,omitempty"`

	// Status is the pipeline state.
	Status IngestionStatus `json:"status"`

	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty"`

	// Language is the detected language of the extracted text.
	Language Language `json:"language,omitempty"`

	// LanguageConfidence is the detection confidence in [0,1].
	LanguageConfidence float64 `json:"languageConfidence,omitempty"`

	// ChunkCount is the number of chunks added to the vector store.
	ChunkCount int `json:"chunkCount"`

	// TextLength is the extracted text length in characters.
	TextLength int `json:"extractedTextLength,omitempty"`

	// Preview is the start of the extracted text.
	Preview string `json:"extractedTextPreview,omitempty"`

	// CreatedAt is when the file was submitted.
	CreatedAt time.Time `json:"createdAt"`

	// ProcessedAt is when the pipeline finished, zero until then.
	ProcessedAt time.Time `json:"processedAt,omitempty"`
}
