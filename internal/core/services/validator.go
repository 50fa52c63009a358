package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Grounding thresholds per question class.
const (
	analyticalMinCoverage   = 0.5
	analyticalMinConfidence = 0.3
	factualMinConfidence    = 0.2
)

var tokenStrip = regexp.MustCompile(`[^a-z0-9\s]`)

var normalisedRefusal = strings.Join(Tokens(domain.RefusalMessage), " ")

// Validator decides whether a generated answer is grounded in its evidence.
// A refusal is a normal outcome, never an error.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns the final Answer for a generated text.
func (v *Validator) Validate(answerText string, evidence []domain.Candidate, class domain.QueryClass) domain.Answer {
	text := strings.TrimSpace(answerText)
	if text == "" || IsRefusal(text) || len(evidence) == 0 {
		return domain.Refusal(class, evidence)
	}

	coverage := EvidenceCoverage(text, evidence)
	confidence := Confidence(evidence)

	accepted := false
	switch class {
	case domain.QueryMetadata:
		accepted = true
	case domain.QueryAnalytical:
		accepted = coverage >= analyticalMinCoverage && confidence >= analyticalMinConfidence
	default:
		accepted = confidence >= factualMinConfidence
	}

	if !accepted {
		ans := domain.Refusal(class, evidence)
		ans.Coverage = coverage
		ans.Confidence = confidence
		return ans
	}

	return domain.Answer{
		Text:       text,
		Accepted:   true,
		Class:      class,
		Evidence:   evidence,
		Coverage:   coverage,
		Confidence: confidence,
	}
}

// IsRefusal reports whether text carries the canonical refusal phrasing,
// ignoring case, spacing and punctuation.
func IsRefusal(text string) bool {
	norm := strings.Join(Tokens(text), " ")
	return norm != "" && strings.Contains(norm, normalisedRefusal)
}

// Tokens lower-cases text, strips everything but [a-z0-9] and whitespace,
// and splits on whitespace.
func Tokens(text string) []string {
	return strings.Fields(tokenStrip.ReplaceAllString(strings.ToLower(text), ""))
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(text) {
		set[t] = struct{}{}
	}
	return set
}

// EvidenceCoverage is the share of distinct answer tokens that also appear
// in the evidence text. Any table row makes coverage 1.
func EvidenceCoverage(answer string, evidence []domain.Candidate) float64 {
	if answer == "" || len(evidence) == 0 {
		return 0
	}
	if hasTableRow(evidence) {
		return 1
	}

	answerTokens := tokenSet(answer)
	if len(answerTokens) == 0 {
		return 0
	}

	texts := make([]string, len(evidence))
	for i, c := range evidence {
		texts[i] = c.Record.Text
	}
	evidenceTokens := tokenSet(strings.Join(texts, " "))

	overlap := 0
	for t := range answerTokens {
		if _, ok := evidenceTokens[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(answerTokens))
}

// Confidence is the maximum relevance score in the evidence.
// Any table row makes confidence 1.
func Confidence(evidence []domain.Candidate) float64 {
	if len(evidence) == 0 {
		return 0
	}
	if hasTableRow(evidence) {
		return 1
	}
	best := evidence[0].Score
	for _, c := range evidence[1:] {
		if c.Score > best {
			best = c.Score
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func hasTableRow(evidence []domain.Candidate) bool {
	for _, c := range evidence {
		if c.Record.IsTableRow() {
			return true
		}
	}
	return false
}
