package domain

import (
	"strconv"
	"time"
)

// DocumentMetadata describes one ingested document held by the vector store.
type DocumentMetadata struct {
	// ID is the unique document identifier (a UUID per ingestion).
	ID string `json:"docId"`

	// FileName is the original name of the uploaded file.
	FileName string `json:"fileName"`

	// FileSize is the size of the uploaded file in bytes.
	FileSize int64 `json:"fileSize"`

	// FileType is the detected file category.
	FileType FileType `json:"fileType"`

	// Language is the detected language of the extracted text.
	Language Language `json:"language"`

	// LanguageConfidence is the heuristic detection confidence in [0,1].
	LanguageConfidence float64 `json:"languageConfidence"`

	// ChunkCount is the number of live chunks owned by the document.
	ChunkCount int `json:"chunkCount"`

	// CreatedAt is when the document was added to the store.
	CreatedAt time.Time `json:"createdAt"`
}

// Chunk is an embedded slice of a document's text.
// Chunks are owned by the vector store and immutable once added.
type Chunk struct {
	// ID is derived from the document id and index, see ChunkID.
	ID string `json:"id"`

	// DocumentID links to the owning document.
	DocumentID string `json:"docId"`

	// Index is the ordinal position within the document.
	Index int `json:"chunkIndex"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Embedding is the vector representation of Text.
	Embedding []float32 `json:"embedding"`
}

// ChunkID returns the key of the index-th chunk of a document.
func ChunkID(docID string, index int) string {
	return docID + ":" + strconv.Itoa(index)
}

// FileType is the category of an ingested file.
type FileType string

// Recognised file types.
const (
	FileTypePDF   FileType = "PDF"
	FileTypeDOCX  FileType = "DOCX"
	FileTypeDOC   FileType = "DOC"
	FileTypeTXT   FileType = "TXT"
	FileTypeImage FileType = "IMAGE"
)

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}
