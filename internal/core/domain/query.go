package domain

// QueryClass is the routing class of a question. It drives both
// retrieval and validation policy and is recomputed per request.
type QueryClass string

// Query classes, in classification priority order.
const (
	QueryMetadata   QueryClass = "metadata"
	QueryProcedural QueryClass = "procedural"
	QueryAnalytical QueryClass = "analytical"
	QueryFactual    QueryClass = "factual"
)

// String returns the string representation.
func (c QueryClass) String() string {
	return string(c)
}

// IsValid returns true if the class is recognised.
func (c QueryClass) IsValid() bool {
	switch c {
	case QueryMetadata, QueryProcedural, QueryAnalytical, QueryFactual:
		return true
	default:
		return false
	}
}
