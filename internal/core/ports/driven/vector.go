package driven

import "github.com/custodia-labs/veritas/internal/core/domain"

// VectorIndex is an append-only flat cosine-similarity store over chunk
// embeddings with metadata co-stored per vector.
//
// Implementations are not required to be safe for concurrent use;
// services.Session serialises every call behind one exclusive lock.
type VectorIndex interface {
	// Add appends vectors with their records. It fails with ErrShapeMismatch
	// when lengths differ and ErrDimensionMismatch when any vector has the
	// wrong size; in both cases nothing is inserted.
	Add(vectors [][]float32, records []domain.EvidenceRecord) error

	// Search returns the top-k records by descending cosine similarity.
	// Ties keep insertion order. An empty index yields an empty slice.
	Search(query []float32, k int) ([]domain.Candidate, error)

	// Count returns the number of stored records.
	Count() int

	// Dimensions returns the fixed vector size.
	Dimensions() int

	// Truncate drops every record at position >= n. It exists so a failed
	// commit can restore the last persisted state.
	Truncate(n int) error

	// Save writes the index and metadata artifacts as one pair.
	Save(prefix string) error

	// Load replaces the contents with the pair stored at prefix. Any failure
	// returns ErrPersistence and leaves the index unchanged.
	Load(prefix string) error
}
