package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  40 Nm \n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := s.Generate(context.Background(), "rules", "what torque", driven.GenerateOptions{MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "40 Nm", text)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, 500, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
}

func TestGenerate_NoSystemPrompt(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	s, _ := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	text, err := s.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Len(t, got.Messages, 1)
}

func TestGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer srv.Close()

	s, _ := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	_, err := s.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "invalid api key")

	_, err = NewLLMService(LLMConfig{})
	assert.Error(t, err)
}
