package driving

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// DocumentService exposes the catalogue of ingested documents.
type DocumentService interface {
	// List returns all ingested documents, oldest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// IndexStats reports the number of evidence records and their dimension.
	IndexStats(ctx context.Context) (IndexStats, error)
}

// IndexStats describes the shared vector index.
type IndexStats struct {
	Records    int
	Dimensions int
	Path       string
}
