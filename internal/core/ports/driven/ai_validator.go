package driven

import "github.com/custodia-labs/veritas/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify configurations by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.ProviderSettings) error

	// ValidateLLM pings the generation provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.ProviderSettings) error
}
