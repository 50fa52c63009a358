package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Getters(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("embedding.model", "all-minilm"))
	require.NoError(t, s.Set("retrieval.candidate_pool", int64(40)))
	require.NoError(t, s.Set("retrieval.relevance_floor", 0.02))
	require.NoError(t, s.Set("watch.recursive", true))
	require.NoError(t, s.Set("pipeline.processors", []any{"chunker", 7}))

	assert.Equal(t, "all-minilm", s.GetString("embedding.model"))
	assert.Equal(t, 40, s.GetInt("retrieval.candidate_pool"))
	assert.InDelta(t, 0.02, s.GetFloat("retrieval.relevance_floor"), 1e-9)
	assert.InDelta(t, 40.0, s.GetFloat("retrieval.candidate_pool"), 1e-9)
	assert.True(t, s.GetBool("watch.recursive"))
	assert.Equal(t, []string{"chunker"}, s.GetStringSlice("pipeline.processors"))
}

func TestConfigStore_MissingAndWrongTypes(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("n", "not a number"))

	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("missing"))
	assert.Zero(t, s.GetInt("n"))
	assert.Zero(t, s.GetFloat("n"))
	assert.False(t, s.GetBool("n"))
	assert.Nil(t, s.GetStringSlice("n"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	s := NewConfigStore()

	assert.NoError(t, s.Save())
	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.Equal(t, 2, s.Saves())
	assert.Equal(t, ":memory:", s.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	s := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set("k", i)
			_ = s.GetInt("k")
		}()
	}
	wg.Wait()
}
