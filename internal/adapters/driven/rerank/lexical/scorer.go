// Package lexical provides a built-in relevance scorer based on BM25 term
// statistics over the candidate set.
package lexical

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.RelevanceScorer = (*Scorer)(nil)

// ModelName is reported for logging.
const ModelName = "lexical-bm25"

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"should": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {},
}

// Scorer scores texts against a query with idf-weighted, length-normalised
// term saturation. Scores lie in [0,1]: 1 means every query term occurs at
// least as often as an average-length text would need.
type Scorer struct {
	k1 float64
	b  float64
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithParameters overrides the BM25 k1 and b parameters.
func WithParameters(k1, b float64) Option {
	return func(s *Scorer) {
		s.k1 = k1
		s.b = b
	}
}

// New creates a lexical scorer.
func New(opts ...Option) *Scorer {
	s := &Scorer{k1: DefaultK1, b: DefaultB}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScorePairs scores each text against the query. The texts themselves form
// the corpus for document frequencies.
func (s *Scorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, len(texts))
	terms := queryTerms(query)
	if len(terms) == 0 || len(texts) == 0 {
		return scores, nil
	}

	docs := make([]map[string]int, len(texts))
	lengths := make([]int, len(texts))
	total := 0
	df := make(map[string]int, len(terms))
	for i, text := range texts {
		tokens := tokenize(text)
		lengths[i] = len(tokens)
		total += len(tokens)
		tf := make(map[string]int)
		for _, t := range tokens {
			tf[t]++
		}
		docs[i] = tf
		for _, q := range terms {
			if tf[q] > 0 {
				df[q]++
			}
		}
	}

	avg := float64(total) / float64(len(texts))
	if avg == 0 {
		return scores, nil
	}

	n := float64(len(texts))
	idf := make(map[string]float64, len(terms))
	var idfSum float64
	for _, q := range terms {
		idf[q] = math.Log(1 + (n-float64(df[q])+0.5)/(float64(df[q])+0.5))
		idfSum += idf[q]
	}

	for i, tf := range docs {
		norm := 1 - s.b + s.b*float64(lengths[i])/avg
		var sum float64
		for _, q := range terms {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			sat := f * (s.k1 + 1) / (f + s.k1*norm)
			sum += idf[q] * math.Min(1, sat)
		}
		scores[i] = sum / idfSum
	}
	return scores, nil
}

// ModelName returns the scorer identifier.
func (s *Scorer) ModelName() string {
	return ModelName
}

// Close releases resources.
func (s *Scorer) Close() error {
	return nil
}

// queryTerms returns the distinct non-stopword query tokens, falling back to
// all tokens when the query is nothing but stopwords.
func queryTerms(query string) []string {
	tokens := tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	var terms, all []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		all = append(all, t)
		if _, stop := stopwords[t]; !stop {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return all
	}
	return terms
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
