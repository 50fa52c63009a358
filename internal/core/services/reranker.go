package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Reranker orders routed candidates into the final evidence list.
// Table rows are authoritative and bypass scoring; narrative chunks are
// scored pairwise against the question and filtered by a relevance floor.
type Reranker struct {
	scorer driven.RelevanceScorer
	cfg    domain.RetrievalSettings
}

// NewReranker creates a reranker. The scorer may be nil only if no
// narrative candidate ever needs scoring.
func NewReranker(scorer driven.RelevanceScorer, cfg domain.RetrievalSettings) *Reranker {
	return &Reranker{scorer: scorer, cfg: withRetrievalDefaults(cfg)}
}

// Rerank returns the evidence for a question.
func (r *Reranker) Rerank(
	ctx context.Context, class domain.QueryClass, query string, candidates []domain.Candidate,
) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return []domain.Candidate{}, nil
	}

	if class == domain.QueryMetadata {
		logger.Debug("Rerank: metadata question, keeping first %d by similarity", r.cfg.MetadataCap)
		return cloneCandidates(capCandidates(candidates, r.cfg.MetadataCap)), nil
	}

	var tables, narrative []domain.Candidate
	for _, c := range candidates {
		if c.Record.IsTableRow() {
			tables = append(tables, c)
		} else {
			narrative = append(narrative, c)
		}
	}

	evidence := make([]domain.Candidate, 0, r.cfg.EvidenceCap)
	// Table rows keep their similarity score; the validator treats them as authoritative.
	evidence = append(evidence, capCandidates(tables, r.cfg.TableRowCap)...)

	scored, err := r.scoreNarrative(ctx, query, narrative)
	if err != nil {
		return nil, err
	}
	evidence = append(evidence, capCandidates(scored, r.cfg.NarrativeCap)...)

	logger.Debug("Rerank: %d table rows, %d/%d narrative above floor %.2f",
		len(tables), len(scored), len(narrative), r.cfg.RelevanceFloor)

	return capCandidates(evidence, r.cfg.EvidenceCap), nil
}

func (r *Reranker) scoreNarrative(
	ctx context.Context, query string, narrative []domain.Candidate,
) ([]domain.Candidate, error) {
	if len(narrative) == 0 {
		return nil, nil
	}
	if r.scorer == nil {
		return nil, fmt.Errorf("rerank: no scorer configured: %w", domain.ErrScorerUnavailable)
	}

	texts := make([]string, len(narrative))
	for i, c := range narrative {
		texts[i] = c.Record.Text
	}

	scores, err := r.scorer.ScorePairs(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank with %s: %w: %w", r.scorer.ModelName(), domain.ErrScorerUnavailable, err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("rerank: %d scores for %d texts: %w", len(scores), len(texts), domain.ErrScorerUnavailable)
	}

	kept := make([]domain.Candidate, 0, len(narrative))
	for i, c := range narrative {
		if scores[i] < r.cfg.RelevanceFloor {
			continue
		}
		c.Score = scores[i]
		c.Reranked = true
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept, nil
}

func cloneCandidates(in []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, len(in))
	copy(out, in)
	return out
}

// withRetrievalDefaults fills unset caps from the default set.
func withRetrievalDefaults(cfg domain.RetrievalSettings) domain.RetrievalSettings {
	def := domain.DefaultRetrievalSettings()
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = def.CandidatePool
	}
	if cfg.ProceduralCap <= 0 {
		cfg.ProceduralCap = def.ProceduralCap
	}
	if cfg.MetadataCap <= 0 {
		cfg.MetadataCap = def.MetadataCap
	}
	if cfg.TableRowCap <= 0 {
		cfg.TableRowCap = def.TableRowCap
	}
	if cfg.NarrativeCap <= 0 {
		cfg.NarrativeCap = def.NarrativeCap
	}
	if cfg.EvidenceCap <= 0 {
		cfg.EvidenceCap = def.EvidenceCap
	}
	if cfg.RelevanceFloor < 0 {
		cfg.RelevanceFloor = def.RelevanceFloor
	}
	return cfg
}
