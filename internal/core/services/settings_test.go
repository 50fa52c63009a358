package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/veritas/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore, *mockAIValidator) {
	store := memory.NewConfigStore()
	validator := &mockAIValidator{}
	svc := NewSettingsService(store, validator, "/data")
	svc.getenv = func(k string) string { return env[k] }
	return svc, store, validator
}

func TestSettingsService_Defaults(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	got, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, got.Embedding.Provider)
	assert.Equal(t, "all-minilm", got.Embedding.Model)
	assert.Equal(t, domain.AIProviderLexical, got.Reranker.Provider)
	assert.Equal(t, domain.DefaultRetrievalSettings(), got.Retrieval)
	assert.Equal(t, filepath.Join("/data", "index"), got.Index.Dir)
	assert.Equal(t, "veritas", got.Index.Collection)
	assert.Equal(t, []string{"chunker"}, got.Pipeline.Processors)

	assert.Equal(t, filepath.Join("/data", "index"), svc.GetDefaults().Index.Dir)
}

func TestSettingsService_ReadsConfiguredValues(t *testing.T) {
	svc, store, _ := newTestSettings(nil)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.api_key", "sk-file"))
	require.NoError(t, store.Set("retrieval.evidence_cap", int64(8)))
	require.NoError(t, store.Set("retrieval.relevance_floor", 0.0))
	require.NoError(t, store.Set("index.dir", "/srv/index"))
	require.NoError(t, store.Set("pipeline.chunker.chunk_size", int64(400)))

	got, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderAnthropic, got.LLM.Provider)
	assert.Empty(t, got.LLM.Model, "no default model carried across providers")
	assert.Equal(t, "sk-file", got.LLM.APIKey)
	assert.Equal(t, 8, got.Retrieval.EvidenceCap)
	assert.Zero(t, got.Retrieval.RelevanceFloor)
	assert.Equal(t, "/srv/index", got.Index.Dir)
	assert.Equal(t, int64(400), got.Pipeline.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 150, got.Pipeline.GetProcessorConfig("chunker")["overlap"])
}

func TestSettingsService_APIKeyFromEnvironment(t *testing.T) {
	svc, store, _ := newTestSettings(map[string]string{envOpenAIAPIKey: "sk-env"})
	require.NoError(t, store.Set("embedding.provider", "openai"))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", got.Embedding.APIKey)

	require.NoError(t, svc.Save(got))
	_, written := store.Get("embedding.api_key")
	assert.False(t, written, "environment keys are never written to the config file")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc, store, _ := newTestSettings(nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-1"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "text-embedding-3-small", store.GetString("embedding.model"))
	assert.Equal(t, "sk-1", store.GetString("embedding.api_key"))
	assert.Equal(t, 1536, store.GetInt("index.dimensions"))
	assert.Empty(t, store.GetString("embedding.base_url"))

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "nomic-embed-text", ""))
	assert.Equal(t, "http://localhost:11434", store.GetString("embedding.base_url"))
	assert.Equal(t, 768, store.GetInt("index.dimensions"))
}

func TestSettingsService_ProviderValidation(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	assert.ErrorIs(t, svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderLexical, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput, "API key required")
	assert.ErrorIs(t, svc.SetRerankProvider(domain.AIProviderOllama, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMAndRerankProviders(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	require.NoError(t, svc.SetRerankProvider(domain.AIProviderRerankAPI, "bge-reranker-v2-m3", "rk"))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, got.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", got.LLM.Model)
	assert.Equal(t, "bge-reranker-v2-m3", got.Reranker.Model)
	assert.Equal(t, "rk", got.Reranker.APIKey)

	require.NoError(t, svc.SetRerankProvider(domain.AIProviderLexical, "", ""))
	got, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderLexical, got.Reranker.Provider)
	assert.Empty(t, got.Reranker.BaseURL)
}

func TestSettingsService_Validate(t *testing.T) {
	svc, _, validator := newTestSettings(nil)
	validator.llmErr = errors.New("unreachable")

	require.NoError(t, svc.ValidateEmbeddingConfig())
	require.NotNil(t, validator.lastEmbed)
	assert.Equal(t, domain.AIProviderOllama, validator.lastEmbed.Provider)

	assert.EqualError(t, svc.ValidateLLMConfig(), "unreachable")

	noValidator := NewSettingsService(memory.NewConfigStore(), nil, "")
	assert.NoError(t, noValidator.ValidateEmbeddingConfig())
	assert.NoError(t, noValidator.ValidateLLMConfig())
}
