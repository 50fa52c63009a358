package services

import (
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

var (
	metadataKeywords = []string{
		"author", "authors", "title", "year", "journal", "published",
	}
	proceduralKeywords = []string{
		"installation", "install", "guideline", "guidelines", "procedure",
		"steps", "precaution", "precautions", "wiring", "mounting", "mechanical",
	}
	analyticalKeywords = []string{
		"explain", "why", "workflow", "architecture", "process", "methodology", "approach",
	}
)

// QueryRouter classifies questions and applies the per-class retrieval policy.
type QueryRouter struct {
	proceduralCap int
}

// NewQueryRouter creates a router with the procedural candidate cap.
func NewQueryRouter(cfg domain.RetrievalSettings) *QueryRouter {
	return &QueryRouter{proceduralCap: withRetrievalDefaults(cfg).ProceduralCap}
}

// Classify derives the QueryClass from question text alone.
// First match wins: metadata, procedural, analytical, factual.
func Classify(query string) domain.QueryClass {
	q := strings.ToLower(strings.TrimSpace(query))

	switch {
	case containsAny(q, metadataKeywords):
		return domain.QueryMetadata
	case containsAny(q, proceduralKeywords):
		return domain.QueryProcedural
	case isAnalytical(q):
		return domain.QueryAnalytical
	default:
		return domain.QueryFactual
	}
}

// Classify is the method form of the package-level Classify.
func (r *QueryRouter) Classify(query string) domain.QueryClass {
	return Classify(query)
}

// Route narrows the broad candidate set for the given class.
// Candidate order is preserved.
func (r *QueryRouter) Route(class domain.QueryClass, candidates []domain.Candidate) []domain.Candidate {
	switch class {
	case domain.QueryMetadata:
		docLevel := filterCandidates(candidates, func(c domain.Candidate) bool {
			return c.Record.DocLevel && !c.Record.IsTableRow()
		})
		if len(docLevel) == 0 {
			return candidates
		}
		return docLevel

	case domain.QueryProcedural:
		narrative := filterCandidates(candidates, func(c domain.Candidate) bool {
			return !c.Record.IsTableRow()
		})
		docLevel := filterCandidates(narrative, func(c domain.Candidate) bool {
			return c.Record.DocLevel
		})
		if len(docLevel) > 0 {
			narrative = docLevel
		}
		return capCandidates(narrative, r.proceduralCap)

	default:
		return candidates
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// isAnalytical matches explanation keywords at the start of the question
// or as a whole word anywhere in it.
func isAnalytical(q string) bool {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, k := range analyticalKeywords {
		if strings.HasPrefix(q, k) {
			return true
		}
		for _, w := range words {
			if w == k {
				return true
			}
		}
	}
	return false
}

func filterCandidates(in []domain.Candidate, keep func(domain.Candidate) bool) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(in))
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func capCandidates(in []domain.Candidate, n int) []domain.Candidate {
	if n >= 0 && len(in) > n {
		return in[:n]
	}
	return in
}
