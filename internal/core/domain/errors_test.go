package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrEmptyDocument", ErrEmptyDocument},
		{"ErrShapeMismatch", ErrShapeMismatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrPersistence", ErrPersistence},
		{"ErrExternalCall", ErrExternalCall},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrScorerUnavailable", ErrScorerUnavailable},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrDimensionMismatch_IsShapeMismatch(t *testing.T) {
	assert.True(t, errors.Is(ErrDimensionMismatch, ErrShapeMismatch))
	assert.False(t, errors.Is(ErrShapeMismatch, ErrDimensionMismatch))
}

func TestExternalErrors_MatchExternalCall(t *testing.T) {
	for _, err := range []error{ErrEmbeddingUnavailable, ErrScorerUnavailable, ErrLLMUnavailable} {
		wrapped := fmt.Errorf("ask: %w", err)
		assert.True(t, errors.Is(wrapped, ErrExternalCall), err.Error())
		assert.True(t, errors.Is(wrapped, err))
	}
	assert.False(t, errors.Is(ErrPersistence, ErrExternalCall))
}

func TestRefusal(t *testing.T) {
	a := Refusal(QueryFactual, nil)

	assert.Equal(t, RefusalMessage, a.Text)
	assert.False(t, a.Accepted)
	assert.Equal(t, QueryFactual, a.Class)
	assert.Equal(t, "The answer is not available in the provided documents.", RefusalMessage)
}
