package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the ingested document catalogue and index stats.
type DocumentService struct {
	docStore driven.DocumentStore
	session  *Session
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, session *Session) *DocumentService {
	return &DocumentService{docStore: docStore, session: session}
}

// List returns all catalogued documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, fmt.Errorf("document store not configured: %w", domain.ErrNotFound)
	}
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document id required: %w", domain.ErrInvalidInput)
	}
	if s.docStore == nil {
		return nil, fmt.Errorf("document store not configured: %w", domain.ErrNotFound)
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// IndexStats reports the size of the shared index.
func (s *DocumentService) IndexStats(_ context.Context) (driving.IndexStats, error) {
	if s.session == nil {
		return driving.IndexStats{}, nil
	}
	return driving.IndexStats{
		Records:    s.session.Count(),
		Dimensions: s.session.Dimensions(),
		Path:       s.session.Prefix(),
	}, nil
}
