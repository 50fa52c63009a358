package driving

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// SearchService selects grounded evidence for a question without generating.
type SearchService interface {
	// Search classifies the question, retrieves, routes and reranks.
	// An empty index or empty question yields an empty result, not an error.
	Search(ctx context.Context, question string, opts domain.SearchOptions) (*domain.SearchResult, error)
}

// AnswerService answers questions strictly from indexed evidence.
type AnswerService interface {
	// Ask returns a validated answer. Refusal is a normal Answer with
	// Accepted=false; errors are reserved for failed operations.
	Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error)
}
