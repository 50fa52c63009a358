package driven

import "context"

// RelevanceScorer scores (query, candidate) pairs, typically with a
// cross-encoder. Higher is more relevant; no fixed range is guaranteed,
// only monotonic ordering is relied upon.
type RelevanceScorer interface {
	// ScorePairs returns one score per text, in input order.
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName returns the scoring model identifier for logging.
	ModelName() string

	// Close releases resources.
	Close() error
}
