package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// reRankFallback is how many routed candidates are kept when reranking
// leaves nothing for a non-empty routed set.
const reRankFallback = 3

// SearchService selects evidence: classify, embed, retrieve, route, rerank.
type SearchService struct {
	session  *Session
	embedder driven.EmbeddingService
	router   *QueryRouter
	reranker *Reranker
	pool     int
}

// NewSearchService creates a new evidence search service.
func NewSearchService(
	session *Session,
	embedder driven.EmbeddingService,
	scorer driven.RelevanceScorer,
	cfg domain.RetrievalSettings,
) *SearchService {
	cfg = withRetrievalDefaults(cfg)
	return &SearchService{
		session:  session,
		embedder: embedder,
		router:   NewQueryRouter(cfg),
		reranker: NewReranker(scorer, cfg),
		pool:     cfg.CandidatePool,
	}
}

// Search returns the reranked evidence for a question.
func (s *SearchService) Search(
	ctx context.Context, question string, opts domain.SearchOptions,
) (*domain.SearchResult, error) {
	logger.Section("Evidence Retrieval")

	question = strings.TrimSpace(question)
	class := Classify(question)
	result := &domain.SearchResult{Class: class, Evidence: []domain.Candidate{}}
	logger.Debug("Question: %q, class: %s", question, class)

	if question == "" {
		logger.Debug("Empty question, returning no evidence")
		return result, nil
	}
	if s.session.Count() == 0 {
		logger.Info("Index is empty, returning no evidence")
		return result, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embed question: %w", domain.ErrEmbeddingUnavailable)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vector) != s.session.Dimensions() {
		return nil, fmt.Errorf("question embedding has %d dimensions, index has %d: %w",
			len(vector), s.session.Dimensions(), domain.ErrDimensionMismatch)
	}

	candidates, err := s.session.Search(vector, s.pool)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieved %d candidates (pool %d)", len(candidates), s.pool)

	if len(opts.Sources) > 0 {
		candidates = filterBySources(candidates, opts.Sources)
		logger.Debug("After source filter %v: %d candidates", opts.Sources, len(candidates))
	}

	routed := s.router.Route(class, candidates)
	logger.Debug("Routed to %d candidates", len(routed))

	evidence, err := s.reranker.Rerank(ctx, class, question, routed)
	if err != nil {
		return nil, err
	}
	if len(evidence) == 0 && len(routed) > 0 {
		logger.Warn("Rerank kept nothing, falling back to top %d by similarity", reRankFallback)
		evidence = cloneCandidates(capCandidates(routed, reRankFallback))
	}

	logger.Info("Evidence: %d items", len(evidence))
	result.Evidence = evidence
	return result, nil
}

// filterBySources keeps candidates whose source is in the allowed list.
func filterBySources(candidates []domain.Candidate, sources []string) []domain.Candidate {
	allowed := make(map[string]bool, len(sources))
	for _, src := range sources {
		allowed[src] = true
	}
	return filterCandidates(candidates, func(c domain.Candidate) bool {
		return allowed[c.Record.Source]
	})
}
