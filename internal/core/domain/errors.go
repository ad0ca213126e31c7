package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answers degrade to the retrieved context without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrUnsupportedFileType indicates a file whose type has no extractor.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionFailed indicates an extractor could not read a supported file.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrNoTextExtracted indicates extraction succeeded but produced only whitespace.
	ErrNoTextExtracted = errors.New("no text extracted from document")

	// ErrEmbedding indicates the embedding provider failed, timed out or returned an empty vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates chunk and embedding lists of different lengths.
	ErrDimensionMismatch = errors.New("chunks and embeddings length mismatch")

	// ErrDocumentNotFound indicates a lookup or delete of an unknown document id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrGenerationFailed indicates the LLM call failed.
	// It is recovered by the context fallback and never returned from Ask.
	ErrGenerationFailed = errors.New("generation failed")
)
