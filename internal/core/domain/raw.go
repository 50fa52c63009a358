package domain

// RawDocument represents opaque bytes handed to ingestion.
// It is the input to a Parser.
type RawDocument struct {
	// Source is the display name of the document (usually the file name).
	Source string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Format names a parsed document layout the structurer understands.
type Format string

// Known formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
)

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatMarkdown, FormatPDF, FormatDOCX, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// ParsedDocument is the output of a Parser: ordered logical units of text
// plus the table grids detected on each unit.
type ParsedDocument struct {
	// Source is the display name carried onto every Block.
	Source string

	// Format identifies the parser that produced this document.
	Format Format

	// Title is an optional title from document properties.
	Title string

	// Units are pages (PDF), sheets (XLSX) or a single unit for flat text.
	Units []Unit
}

// Unit is one logical unit (page, sheet or whole file).
type Unit struct {
	// Page is the 1-based page number, or 0 when the format has no pages.
	Page int

	// Text is the raw narrative text of the unit.
	Text string

	// Tables are the grids found on the unit, rows of cells.
	Tables []Table
}

// Table is a grid of cell strings.
type Table struct {
	Rows [][]string
}

// Columns returns the widest row length.
func (t Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}
