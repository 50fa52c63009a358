package flat

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only flat index. It is not safe for concurrent use.
type Index struct {
	dim     int
	records []domain.EvidenceRecord
}

// New creates an empty index for vectors of size dim.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dim)
	}
	return &Index{dim: dim}, nil
}

// Add validates every vector before appending any of them.
func (x *Index) Add(vectors [][]float32, records []domain.EvidenceRecord) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %d vectors for %d records", domain.ErrShapeMismatch, len(vectors), len(records))
	}
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(v), x.dim)
		}
	}

	for i, v := range vectors {
		rec := records[i]
		rec.Position = len(x.records)
		rec.Vector = normalise(v)
		x.records = append(x.records, rec)
	}
	return nil
}

// Search scores every record against the query.
func (x *Index) Search(query []float32, k int) ([]domain.Candidate, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dim)
	}
	if len(x.records) == 0 || k <= 0 {
		return []domain.Candidate{}, nil
	}

	q := normalise(query)
	candidates := make([]domain.Candidate, len(x.records))
	for i, rec := range x.records {
		candidates[i] = domain.Candidate{Record: rec, Score: dot(q, rec.Vector)}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Count returns the number of records.
func (x *Index) Count() int {
	return len(x.records)
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dim
}

// Truncate drops every record at position >= n.
func (x *Index) Truncate(n int) error {
	if n < 0 || n > len(x.records) {
		return fmt.Errorf("%w: truncate to %d of %d records", domain.ErrInvalidInput, n, len(x.records))
	}
	clear(x.records[n:])
	x.records = x.records[:n]
	return nil
}

// normalise returns a unit-length copy of v. A zero vector stays zero.
func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
