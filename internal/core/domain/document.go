package domain

import "time"

// Document is the catalogue entry for one ingested file.
// Raw bytes are never persisted; only identity and counts are kept.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the display name carried on every evidence record.
	Source string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type the parser was selected by.
	MIMEType string

	// Title is the title hint of the doc-level block, or the file name.
	Title string

	// YearHint is the first year-like token of the doc-level block.
	YearHint string

	// Blocks is the number of structural blocks produced.
	Blocks int

	// Chunks is the number of chunks embedded into the index.
	Chunks int

	// IngestedAt is when the document was committed to the index.
	IngestedAt time.Time
}

// Chunk is a retrieval-atomic unit derived from one Block.
// Table-row and doc-level chunks are never split.
type Chunk struct {
	// ID is the globally unique identifier for the chunk.
	ID string

	// BlockID links to the Block this chunk was cut from.
	BlockID string

	// Text is the chunk content.
	Text string

	// Type is inherited from the Block.
	Type BlockType

	// Source is the document display name.
	Source string

	// Page is the 1-based page, or 0 when unknown.
	Page int

	// DocLevel is inherited from the Block.
	DocLevel bool

	// Table is non-nil only for table rows.
	Table *TableRef
}

// IsTableRow reports whether the chunk is a table row.
func (c Chunk) IsTableRow() bool {
	return c.Type == BlockTableRow
}
