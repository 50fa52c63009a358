package domain

// RefusalMessage is the single canonical response issued whenever
// grounding cannot be established.
const RefusalMessage = "The answer is not available in the provided documents."

// Answer is produced once per question and never persisted.
type Answer struct {
	// Text is the generated answer, or RefusalMessage when rejected.
	Text string

	// Accepted is false when the answer was refused.
	Accepted bool

	// Class is the routing class the question was validated under.
	Class QueryClass

	// Evidence is what the answer was validated against.
	Evidence []Candidate

	// Coverage is the lexical overlap between answer and evidence (0-1).
	Coverage float64

	// Confidence is the strongest relevance score among the evidence.
	Confidence float64
}

// Refusal builds a rejected answer for the given class.
func Refusal(class QueryClass, evidence []Candidate) Answer {
	return Answer{
		Text:     RefusalMessage,
		Accepted: false,
		Class:    class,
		Evidence: evidence,
	}
}
