package driven

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// DocumentStore persists the catalogue of ingested documents.
// Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores or updates a document entry.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns every document, oldest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// FindBySource returns the documents ingested under a source name.
	FindBySource(ctx context.Context, source string) ([]domain.Document, error)
}
