package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, generation or scoring.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic API (generation only).
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderRerankAPI is a hosted cross-encoder behind a /rerank endpoint.
	AIProviderRerankAPI AIProvider = "rerank_api"

	// AIProviderLexical is the built-in lexical relevance scorer.
	AIProviderLexical AIProvider = "lexical"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderRerankAPI, AIProviderLexical:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderRerankAPI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLexical
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderRerankAPI:
		return "Rerank API (cloud cross-encoder)"
	case AIProviderLexical:
		return "Lexical (built-in)"
	default:
		return unknownDescription
	}
}

// ProviderSettings holds one external model configuration.
type ProviderSettings struct {
	// Provider is the service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the provider is set up.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds the evidence caps used across routing and reranking.
type RetrievalSettings struct {
	// CandidatePool is the top-k of the broad vector search.
	CandidatePool int

	// ProceduralCap limits narrative candidates for procedural questions.
	ProceduralCap int

	// MetadataCap is how many candidates metadata questions keep unscored.
	MetadataCap int

	// TableRowCap limits authoritative table rows in the evidence.
	TableRowCap int

	// NarrativeCap limits scored narrative chunks in the evidence.
	NarrativeCap int

	// EvidenceCap limits the final evidence list.
	EvidenceCap int

	// RelevanceFloor drops narrative chunks scoring below it.
	RelevanceFloor float64
}

// IndexSettings locates the persisted vector index.
type IndexSettings struct {
	// Dir holds the paired index artifacts.
	Dir string

	// Collection is the artifact name prefix inside Dir.
	Collection string

	// Dimensions is the embedding vector size. Zero means "ask the embedding service".
	Dimensions int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding ProviderSettings
	LLM       ProviderSettings
	Reranker  ProviderSettings
	Retrieval RetrievalSettings
	Index     IndexSettings
	Pipeline  PipelineConfig
}

// DefaultRetrievalSettings returns the single coherent set of caps.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		CandidatePool:  40,
		ProceduralCap:  10,
		MetadataCap:    3,
		TableRowCap:    3,
		NarrativeCap:   5,
		EvidenceCap:    5,
		RelevanceFloor: 0.02,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and generation default to a local Ollama; scoring defaults
// to the built-in lexical scorer so no cross-encoder service is required.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: ProviderSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: ProviderSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Reranker: ProviderSettings{
			Provider: AIProviderLexical,
		},
		Retrieval: DefaultRetrievalSettings(),
		Index: IndexSettings{
			Collection: "veritas",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// AllRerankProviders returns providers that support pairwise scoring.
func AllRerankProviders() []AIProvider {
	return []AIProvider{AIProviderLexical, AIProviderRerankAPI}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.1:8b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds chunking pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default chunking pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 800,
				"overlap":    150,
				"min_length": 30,
			},
		},
	}
}
