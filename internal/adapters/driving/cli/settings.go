package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

var settingsAnnotations = map[string]string{annotationServices: servicesSettings}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding, generation and reranking providers.

Use subcommands to configure specific settings or run the interactive wizard.
API keys may also be supplied through VERITAS_OPENAI_API_KEY,
VERITAS_ANTHROPIC_API_KEY and VERITAS_RERANK_API_KEY, or a .env file.`,
	Annotations: settingsAnnotations,
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: settingsAnnotations,
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [embedding|llm|reranker] [provider] [model]",
	Short: "Select a provider",
	Long: `Select the provider, and optionally the model, for one component.

Providers:
  embedding  ollama, openai
  llm        ollama, openai, anthropic
  reranker   lexical, rerank_api

Cloud providers prompt for an API key unless one is already configured.
Changing the embedding model changes the index dimension; re-ingest your
documents into a new collection afterwards.`,
	Args:        cobra.RangeArgs(2, 3),
	Annotations: settingsAnnotations,
	RunE:        runSettingsSet,
}

var settingsKeyCmd = &cobra.Command{
	Use:         "key [embedding|llm|reranker]",
	Short:       "Store an API key for the selected provider",
	Args:        cobra.ExactArgs(1),
	Annotations: settingsAnnotations,
	RunE:        runSettingsKey,
}

var settingsWizardCmd = &cobra.Command{
	Use:         "wizard",
	Short:       "Interactive setup wizard",
	Long:        `Run an interactive wizard to configure all providers step by step.`,
	Annotations: settingsAnnotations,
	RunE:        runSettingsWizard,
}

var settingsBaseURL string

func init() {
	settingsSetCmd.Flags().StringVar(&settingsBaseURL, "base-url", "", "override the provider endpoint")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

// providerTarget describes one configurable component.
type providerTarget struct {
	title     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	current   func(*domain.AppSettings) *domain.ProviderSettings
	set       func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func lookupTarget(name string) (providerTarget, error) {
	switch name {
	case "embedding":
		return providerTarget{
			title:     "Embedding",
			providers: domain.AllEmbeddingProviders(),
			defaults:  domain.DefaultEmbeddingModels(),
			current:   func(s *domain.AppSettings) *domain.ProviderSettings { return &s.Embedding },
			set:       settingsService.SetEmbeddingProvider,
			validate:  settingsService.ValidateEmbeddingConfig,
		}, nil
	case "llm":
		return providerTarget{
			title:     "LLM",
			providers: domain.AllLLMProviders(),
			defaults:  domain.DefaultLLMModels(),
			current:   func(s *domain.AppSettings) *domain.ProviderSettings { return &s.LLM },
			set:       settingsService.SetLLMProvider,
			validate:  settingsService.ValidateLLMConfig,
		}, nil
	case "reranker":
		return providerTarget{
			title:     "Reranker",
			providers: domain.AllRerankProviders(),
			current:   func(s *domain.AppSettings) *domain.ProviderSettings { return &s.Reranker },
			set:       settingsService.SetRerankProvider,
		}, nil
	default:
		return providerTarget{}, fmt.Errorf("unknown component %q (want embedding, llm or reranker)", name)
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding)
	printProvider(cmd, "LLM", settings.LLM)
	printProvider(cmd, "Reranker", settings.Reranker)

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Candidate pool: %d\n", r.CandidatePool)
	cmd.Printf("  Procedural cap: %d\n", r.ProceduralCap)
	cmd.Printf("  Metadata cap: %d\n", r.MetadataCap)
	cmd.Printf("  Table row cap: %d\n", r.TableRowCap)
	cmd.Printf("  Narrative cap: %d\n", r.NarrativeCap)
	cmd.Printf("  Evidence cap: %d\n", r.EvidenceCap)
	cmd.Printf("  Relevance floor: %.2f\n", r.RelevanceFloor)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	cmd.Printf("  Collection: %s\n", settings.Index.Collection)
	if settings.Index.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Index.Dimensions)
	} else {
		cmd.Printf("  Dimensions: (from embedding model)\n")
	}
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Processors: %s\n", strings.Join(settings.Pipeline.Processors, ", "))
	cmd.Println()

	if !settings.Embedding.IsConfigured() {
		cmd.Println("Warning: embedding provider is not configured.")
		cmd.Println("Run 'veritas settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, title string, ps domain.ProviderSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", ps.Provider.Description())
	if ps.Model != "" {
		cmd.Printf("  Model: %s\n", ps.Model)
	}
	if ps.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", ps.BaseURL)
	}
	if ps.Provider.RequiresAPIKey() {
		if ps.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(ps.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !ps.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	target, err := lookupTarget(args[0])
	if err != nil {
		return err
	}

	provider := domain.AIProvider(args[1])
	if !containsProvider(target.providers, provider) {
		return fmt.Errorf("provider %q cannot be used for %s", args[1], args[0])
	}

	var model string
	if len(args) == 3 {
		model = args[2]
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var apiKey string
	if cur := target.current(settings); provider.RequiresAPIKey() && (cur.Provider != provider || cur.APIKey == "") {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin())
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := target.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", args[0], err)
	}

	if settingsBaseURL != "" {
		if err := setBaseURL(target, settingsBaseURL); err != nil {
			return err
		}
	}

	cmd.Printf("%s provider set to: %s\n", target.title, provider.Description())
	return nil
}

func setBaseURL(target providerTarget, baseURL string) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	target.current(settings).BaseURL = baseURL
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func runSettingsKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	target, err := lookupTarget(args[0])
	if err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cur := target.current(settings)
	if !cur.Provider.RequiresAPIKey() {
		return fmt.Errorf("%s provider %s does not use an API key", args[0], cur.Provider)
	}

	cmd.Printf("Enter API key for %s: ", cur.Provider.Description())
	apiKey := readPassword(cmd.InOrStdin())
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := target.set(cur.Provider, cur.Model, apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	cmd.Printf("API key stored: %s\n", maskAPIKey(apiKey))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Veritas Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	for i, name := range []string{"embedding", "llm", "reranker"} {
		target, err := lookupTarget(name)
		if err != nil {
			return err
		}
		heading := fmt.Sprintf("Step %d: %s Provider", i+1, target.title)
		cmd.Println(heading)
		cmd.Println(strings.Repeat("-", len(heading)))
		if err := configureProvider(cmd, reader, target); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are saved.")
	return nil
}

// configureProvider asks for a provider, model and API key, then pings the
// provider when the component supports it.
func configureProvider(cmd *cobra.Command, reader *bufio.Reader, target providerTarget) error {
	for i, p := range target.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(target.providers), 1)
	selectedProvider := target.providers[idx-1]

	var model string
	if defaultModel, ok := target.defaults[selectedProvider]; ok {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model = readLine(reader)
		if model == "" {
			model = defaultModel
		}
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readLine(reader)
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := target.set(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(target.title), err)
	}

	if target.validate != nil {
		cmd.Print("Validating configuration... ")
		if err := target.validate(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("%s configuration validation failed: %w", strings.ToLower(target.title), err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("%s provider configured: %s\n\n", target.title, selectedProvider.Description())
	return nil
}

// Helper functions.

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
