package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapReader(values map[string]any) Reader {
	return NewReader(func(key string) (any, bool) {
		v, ok := values[key]
		return v, ok
	})
}

func TestReader_DecodedTypes(t *testing.T) {
	r := mapReader(map[string]any{
		"embedding.model":           "all-minilm",
		"retrieval.candidate_pool":  int64(40),
		"retrieval.relevance_floor": 0.02,
		"index.dimensions":          float64(384),
		"watch.recursive":           true,
		"pipeline.processors":       []any{"chunker", 7},
	})

	assert.Equal(t, "all-minilm", r.GetString("embedding.model"))
	assert.Equal(t, 40, r.GetInt("retrieval.candidate_pool"))
	assert.Equal(t, 384, r.GetInt("index.dimensions"))
	assert.InDelta(t, 0.02, r.GetFloat("retrieval.relevance_floor"), 1e-9)
	assert.InDelta(t, 40.0, r.GetFloat("retrieval.candidate_pool"), 1e-9)
	assert.True(t, r.GetBool("watch.recursive"))
	assert.Equal(t, []string{"chunker"}, r.GetStringSlice("pipeline.processors"))
}

func TestReader_MismatchedTypes(t *testing.T) {
	r := mapReader(map[string]any{
		"text":     "not a number",
		"fraction": 0.5,
	})

	assert.Empty(t, r.GetString("missing"))
	assert.Zero(t, r.GetInt("text"))
	assert.Zero(t, r.GetInt("fraction"))
	assert.Zero(t, r.GetFloat("text"))
	assert.False(t, r.GetBool("text"))
	assert.Nil(t, r.GetStringSlice("text"))
}

func TestReader_ZeroValue(t *testing.T) {
	var r Reader

	assert.Empty(t, r.GetString("any"))
	assert.Zero(t, r.GetInt("any"))
}
