package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePairs_RanksMatchingTextFirst(t *testing.T) {
	s := New()
	texts := []string{
		"Safety instructions for cleaning the housing.",
		"The P200 pump delivers a maximum torque of 45 Nm at 3000 rpm.",
		"Warranty terms apply for two years from purchase.",
	}

	scores, err := s.ScorePairs(context.Background(), "What is the maximum torque of the P200?", texts)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])
	assert.Zero(t, scores[0])
	for _, sc := range scores {
		assert.GreaterOrEqual(t, sc, 0.0)
		assert.LessOrEqual(t, sc, 1.0)
	}
}

func TestScorePairs_FullMatchIsOne(t *testing.T) {
	scores, err := New().ScorePairs(context.Background(), "torque", []string{"torque torque", "torque torque"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.InDelta(t, 1.0, scores[1], 1e-9)
}

func TestScorePairs_Degenerate(t *testing.T) {
	s := New()

	scores, err := s.ScorePairs(context.Background(), "torque", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)

	scores, err = s.ScorePairs(context.Background(), "?!", []string{"torque"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, scores)

	scores, err = s.ScorePairs(context.Background(), "torque", []string{"", ""})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestScorePairs_StopwordOnlyQuery(t *testing.T) {
	scores, err := New().ScorePairs(context.Background(), "what is it", []string{"it is what it is", "unrelated"})
	require.NoError(t, err)
	assert.Greater(t, scores[0], scores[1])
}

func TestScorePairs_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ScorePairs(ctx, "q", []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScorer_Metadata(t *testing.T) {
	s := New(WithParameters(1.5, 0.5))
	assert.Equal(t, 1.5, s.k1)
	assert.Equal(t, 0.5, s.b)
	assert.Equal(t, ModelName, s.ModelName())
	assert.NoError(t, s.Close())
}
