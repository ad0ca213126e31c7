package domain

// SimilarityResult is a single ranked hit from similarity search.
// It is produced transiently and never persisted.
type SimilarityResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string `json:"chunkId"`

	// DocumentID is the document owning the chunk.
	DocumentID string `json:"docId"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Similarity is the cosine similarity in [-1,1].
	Similarity float64 `json:"similarity"`
}

// StoreStats summarises the vector store contents.
type StoreStats struct {
	// TotalDocuments is the number of document metadata records.
	TotalDocuments int `json:"totalDocuments"`

	// TotalChunks is the number of stored chunks.
	TotalChunks int `json:"totalChunks"`

	// Documents lists every document in insertion order.
	Documents []DocumentMetadata `json:"documents"`

	// EmbeddingModel is the model id the stored vectors were produced with.
	EmbeddingModel string `json:"embeddingModel,omitempty"`
}
