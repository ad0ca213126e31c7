// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentMetadata: One ingested document as known to the vector store
//   - Chunk: An embedded slice of a document's text
//   - SimilarityResult: A ranked chunk returned by similarity search
//   - Answer: The outcome of a question, tagged with the path that produced it
//   - IngestionRecord: The status of one upload through the ingestion pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
