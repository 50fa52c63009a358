package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyRerankProvider   = "reranker.provider"
	keyRerankModel      = "reranker.model"
	keyRerankBaseURL    = "reranker.base_url"
	keyRerankAPIKey     = "reranker.api_key"
	keyCandidatePool    = "retrieval.candidate_pool"
	keyProceduralCap    = "retrieval.procedural_cap"
	keyMetadataCap      = "retrieval.metadata_cap"
	keyTableRowCap      = "retrieval.table_row_cap"
	keyNarrativeCap     = "retrieval.narrative_cap"
	keyEvidenceCap      = "retrieval.evidence_cap"
	keyRelevanceFloor   = "retrieval.relevance_floor"
	keyIndexDir         = "index.dir"
	keyIndexCollection  = "index.collection"
	keyIndexDimensions  = "index.dimensions"
	keyPipelineStages   = "pipeline.processors"
	defaultOllamaURL    = "http://localhost:11434"
	envOpenAIAPIKey     = "VERITAS_OPENAI_API_KEY"
	envAnthropicAPIKey  = "VERITAS_ANTHROPIC_API_KEY"
	envRerankAPIKey     = "VERITAS_RERANK_API_KEY"
	defaultIndexDirName = "index"
)

// SettingsService maps flat configuration keys onto domain.AppSettings.
// API keys missing from the config file are taken from the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	dataDir     string
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. dataDir is where the
// index lives when index.dir is not configured.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		dataDir:     dataDir,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	retrieval := defaults.Retrieval

	settings := &domain.AppSettings{
		Embedding: s.getProviderSettings(keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, defaults.Embedding),
		LLM:       s.getProviderSettings(keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, defaults.LLM),
		Reranker:  s.getProviderSettings(keyRerankProvider, keyRerankModel, keyRerankBaseURL, keyRerankAPIKey, defaults.Reranker),
		Retrieval: domain.RetrievalSettings{
			CandidatePool:  s.getInt(keyCandidatePool, retrieval.CandidatePool),
			ProceduralCap:  s.getInt(keyProceduralCap, retrieval.ProceduralCap),
			MetadataCap:    s.getInt(keyMetadataCap, retrieval.MetadataCap),
			TableRowCap:    s.getInt(keyTableRowCap, retrieval.TableRowCap),
			NarrativeCap:   s.getInt(keyNarrativeCap, retrieval.NarrativeCap),
			EvidenceCap:    s.getInt(keyEvidenceCap, retrieval.EvidenceCap),
			RelevanceFloor: s.getFloat(keyRelevanceFloor, retrieval.RelevanceFloor),
		},
		Index: domain.IndexSettings{
			Dir:        s.getString(keyIndexDir, s.defaultIndexDir()),
			Collection: s.getString(keyIndexCollection, defaults.Index.Collection),
			Dimensions: s.configStore.GetInt(keyIndexDimensions),
		},
		Pipeline: s.GetPipelineConfig(),
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written so a
// key supplied through the environment is never copied to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyRerankProvider, settings.Reranker.Provider.String()},
		{keyRerankModel, settings.Reranker.Model},
		{keyRerankBaseURL, settings.Reranker.BaseURL},
		{keyCandidatePool, settings.Retrieval.CandidatePool},
		{keyProceduralCap, settings.Retrieval.ProceduralCap},
		{keyMetadataCap, settings.Retrieval.MetadataCap},
		{keyTableRowCap, settings.Retrieval.TableRowCap},
		{keyNarrativeCap, settings.Retrieval.NarrativeCap},
		{keyEvidenceCap, settings.Retrieval.EvidenceCap},
		{keyRelevanceFloor, settings.Retrieval.RelevanceFloor},
		{keyIndexDir, settings.Index.Dir},
		{keyIndexCollection, settings.Index.Collection},
		{keyIndexDimensions, settings.Index.Dimensions},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key string
		val string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyRerankAPIKey, settings.Reranker.APIKey},
	}
	for _, v := range secrets {
		if v.val == "" || v.val == s.envKey(providerForKey(settings, v.key)) {
			continue
		}
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the model resets the index dimension to the model's known size.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := configure(&settings.Embedding, provider, model, apiKey, domain.DefaultEmbeddingModels()); err != nil {
		return err
	}
	settings.Index.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]

	return s.Save(settings)
}

// SetLLMProvider configures the generation provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support generation: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := configure(&settings.LLM, provider, model, apiKey, domain.DefaultLLMModels()); err != nil {
		return err
	}

	return s.Save(settings)
}

// SetRerankProvider configures the relevance scorer.
func (s *SettingsService) SetRerankProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllRerankProviders(), provider) {
		return fmt.Errorf("provider %s does not support reranking: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := configure(&settings.Reranker, provider, model, apiKey, nil); err != nil {
		return err
	}
	if provider == domain.AIProviderLexical {
		settings.Reranker.BaseURL = ""
	}

	return s.Save(settings)
}

// configure applies a provider switch to one ProviderSettings.
func configure(ps *domain.ProviderSettings, provider domain.AIProvider, model, apiKey string, defaults map[domain.AIProvider]string) error {
	if provider.RequiresAPIKey() && apiKey == "" && ps.APIKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	changed := ps.Provider != provider
	ps.Provider = provider

	switch {
	case model != "":
		ps.Model = model
	case changed || ps.Model == "":
		ps.Model = defaults[provider]
	}

	// Local providers need a base URL; cloud providers use their default endpoint.
	if provider == domain.AIProviderOllama {
		if ps.BaseURL == "" || changed {
			ps.BaseURL = defaultOllamaURL
		}
	} else if changed {
		ps.BaseURL = ""
	}

	if apiKey != "" {
		ps.APIKey = apiKey
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	d := domain.DefaultAppSettings()
	d.Index.Dir = s.defaultIndexDir()
	return d
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the chunking pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineStages); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for _, key := range []string{"chunk_size", "overlap", "min_length"} {
			if val, ok := s.configStore.Get("pipeline." + name + "." + key); ok {
				existing[key] = val
			}
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getProviderSettings(
	providerKey, modelKey, urlKey, apiKeyKey string, def domain.ProviderSettings,
) domain.ProviderSettings {
	ps := domain.ProviderSettings{
		Provider: s.getProvider(providerKey, def.Provider),
		Model:    s.configStore.GetString(modelKey),
		BaseURL:  s.configStore.GetString(urlKey), // Empty is valid for cloud providers
		APIKey:   s.configStore.GetString(apiKeyKey),
	}
	if ps.Model == "" && ps.Provider == def.Provider {
		ps.Model = def.Model
	}
	if ps.APIKey == "" {
		ps.APIKey = s.envKey(ps.Provider)
	}
	return ps
}

// envKey returns the environment API key for a provider, if any.
func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicAPIKey)
	case domain.AIProviderRerankAPI:
		return s.getenv(envRerankAPIKey)
	default:
		return ""
	}
}

func providerForKey(settings *domain.AppSettings, key string) domain.AIProvider {
	switch key {
	case keyEmbedAPIKey:
		return settings.Embedding.Provider
	case keyLLMAPIKey:
		return settings.LLM.Provider
	default:
		return settings.Reranker.Provider
	}
}

func (s *SettingsService) defaultIndexDir() string {
	if s.dataDir == "" {
		return ""
	}
	return filepath.Join(s.dataDir, defaultIndexDirName)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
