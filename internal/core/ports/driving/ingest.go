package driving

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// IngestService adds documents to the evidence index.
type IngestService interface {
	// Ingest parses, structures, chunks, embeds and commits one document.
	// Input errors leave the index untouched.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*IngestReport, error)
}

// IngestReport summarises one ingested document.
type IngestReport struct {
	// Document is the catalogue entry written for the file.
	Document domain.Document

	// Units is the number of pages/sheets read by the parser.
	Units int

	// TableRows is how many blocks were table rows.
	TableRows int

	// Previous counts catalogue entries that already carried this source.
	// Earlier evidence stays in the index alongside the new records.
	Previous int
}
