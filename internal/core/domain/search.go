package domain

// EvidenceRecord is a Chunk plus its embedding, owned by the vector index.
type EvidenceRecord struct {
	// Position is the insertion position inside the index.
	Position int

	// ChunkID is the id of the chunk the record was built from.
	ChunkID string

	Text     string
	Type     BlockType
	Source   string
	Page     int
	DocLevel bool
	Table    *TableRef

	// Vector is the L2-normalised embedding.
	Vector []float32
}

// IsTableRow reports whether the record is a table row.
func (r EvidenceRecord) IsTableRow() bool {
	return r.Type == BlockTableRow
}

// RecordFromChunk builds the metadata part of an EvidenceRecord.
// Position and Vector are assigned by the index.
func RecordFromChunk(c Chunk) EvidenceRecord {
	return EvidenceRecord{
		ChunkID:  c.ID,
		Text:     c.Text,
		Type:     c.Type,
		Source:   c.Source,
		Page:     c.Page,
		DocLevel: c.DocLevel,
		Table:    c.Table,
	}
}

// Candidate is an EvidenceRecord annotated with a relevance score during
// one retrieval episode. It is request-scoped.
type Candidate struct {
	Record EvidenceRecord

	// Score is the raw similarity, or the rerank score once Reranked is set.
	Score float64

	// Reranked is true when Score came from the relevance scorer.
	Reranked bool
}

// SearchOptions configures evidence retrieval.
type SearchOptions struct {
	// Sources restricts candidates to the listed document sources.
	Sources []string
}

// SearchResult is the evidence selected for a question, before generation.
type SearchResult struct {
	// Class is the routing class of the question.
	Class QueryClass

	// Evidence is the reranked candidate list, table rows first.
	Evidence []Candidate
}
