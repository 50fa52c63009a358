package driven

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Parser turns raw bytes into a ParsedDocument of text units and tables.
// Each parser handles specific MIME types (e.g., PDF, DOCX).
type Parser interface {
	// SupportedMIMETypes returns the MIME types this parser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific parsers should return 50-89, fallbacks 1-9.
	Priority() int

	// Parse extracts text units and tables.
	Parse(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error)
}

// ParserRegistry selects the appropriate parser for a document.
type ParserRegistry interface {
	// Parse dispatches to the highest-priority parser for the MIME type.
	// Unknown types fail with ErrUnsupportedFormat.
	Parse(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error)

	// Register adds a parser to the registry.
	Register(parser Parser)

	// SupportedMIMETypes returns all MIME types that can be parsed.
	SupportedMIMETypes() []string
}
