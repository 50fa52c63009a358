// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/veritas/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/veritas/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/veritas/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/veritas/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/veritas/internal/adapters/driven/llm/openai"
	rerankapi "github.com/custodia-labs/veritas/internal/adapters/driven/rerank/api"
	"github.com/custodia-labs/veritas/internal/adapters/driven/rerank/lexical"
	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the external model services for one session.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil disables answering; search still works.
	Scorer           driven.RelevanceScorer
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if the scorer fell back to lexical.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.Scorer != nil {
		r.Scorer.Close()
	}
}

// Initialise creates every model service from settings.
//
// An embedding service is mandatory. A scorer that cannot be created falls
// back to the lexical scorer, and an unavailable LLM leaves LLMService nil.
// Both cases are reported in Warnings. Connectivity is not checked here.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	result := &InitResult{}

	embed, err := CreateEmbeddingService(&settings.Embedding, settings.Index.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'veritas settings' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if embed == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'veritas settings' to fix",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	result.EmbeddingService = embed

	scorer, err := CreateScorer(&settings.Reranker)
	if err != nil || scorer == nil {
		reason := "not configured"
		if err != nil {
			reason = err.Error()
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("reranker %s: %s, using lexical scoring", settings.Reranker.Provider, reason))
		result.FellBack = true
		scorer = lexical.New()
	}
	result.Scorer = scorer

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm %s: %v, answering disabled", settings.LLM.Provider, err))
	case llm == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm %s: not configured, answering disabled", settings.LLM.Provider))
	default:
		result.LLMService = llm
	}

	return result, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.ProviderSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings, 0)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.ProviderSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// dimensions overrides the model's native size when non-zero.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.ProviderSettings, dimensions int) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateScorer creates the relevance scorer based on settings.
// Returns nil if the provider is not configured.
func CreateScorer(settings *domain.ProviderSettings) (driven.RelevanceScorer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLexical:
		return lexical.New(), nil

	case domain.AIProviderRerankAPI:
		return rerankapi.New(rerankapi.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported reranker provider: %s", settings.Provider)
	}
}
