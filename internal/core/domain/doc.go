// Package domain defines the core business entities for Veritas.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ParsedDocument: Pages of text and table grids produced by a parser
//   - Block: A structural unit (narrative paragraph or table row)
//   - Chunk: A retrieval-atomic unit derived from one Block
//   - EvidenceRecord: A persisted Chunk plus its embedding
//   - Candidate: An EvidenceRecord scored during one retrieval episode
//   - QueryClass: The routing class of a question
//   - Answer: The validated result of a question
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
