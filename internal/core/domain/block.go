package domain

// BlockType distinguishes narrative text from table rows.
type BlockType string

// Block types.
const (
	// BlockNarrative is a paragraph of running text.
	BlockNarrative BlockType = "narrative"

	// BlockTableRow is one serialised data row of a table.
	BlockTableRow BlockType = "table_row"
)

// String returns the string representation.
func (t BlockType) String() string {
	return string(t)
}

// TableRef locates a table row. It is only set on table_row blocks and chunks.
type TableRef struct {
	// TableID identifies the logical table (after wide-table splitting).
	TableID string

	// RowIndex is the row position inside the logical table.
	RowIndex int
}

// DocMetadata holds lightweight identity hints for doc-level blocks.
type DocMetadata struct {
	// TitleHint is the first line of the first paragraph.
	TitleHint string

	// YearHint is the first 19xx/20xx token found, if any.
	YearHint string
}

// Block is one structural unit extracted from a document.
// Blocks are immutable once produced.
type Block struct {
	ID       string
	Text     string
	Type     BlockType
	Source   string
	Page     int
	Position int

	// Table is non-nil only for BlockTableRow.
	Table *TableRef

	// DocLevel marks blocks carrying document-identity information.
	DocLevel bool

	// DocMetadata is non-nil only for doc-level blocks.
	DocMetadata *DocMetadata
}

// IsTableRow reports whether the block is a table row.
func (b Block) IsTableRow() bool {
	return b.Type == BlockTableRow
}
