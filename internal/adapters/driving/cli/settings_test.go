package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	assert.Equal(t, "sk-secret", readPassword(strings.NewReader("  sk-secret  \nmore")))
	assert.Equal(t, "", readPassword(strings.NewReader("")))
}

func TestLookupTarget(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	for _, name := range []string{"embedding", "llm", "reranker"} {
		target, err := lookupTarget(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, target.providers)
	}

	_, err := lookupTarget("vectors")
	assert.Error(t, err)
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := settingsService.(*mockSettingsService)
	mock.settings.LLM = domain.ProviderSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-1234567890abcdef"}
	mock.settings.Index.Dir = "/data/index"

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[Reranker]")
	assert.Contains(t, out, "Provider: Lexical (built-in)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Candidate pool: 40")
	assert.Contains(t, out, "Directory: /data/index")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	t.Run("local provider with model", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		out, err := execute(t, "settings", "set", "embedding", "ollama", "nomic-embed-text")

		require.NoError(t, err)
		assert.Contains(t, out, "Embedding provider set to")
		mock := settingsService.(*mockSettingsService)
		assert.Equal(t, domain.AIProviderOllama, mock.settings.Embedding.Provider)
		assert.Equal(t, "nomic-embed-text", mock.settings.Embedding.Model)
	})

	t.Run("cloud provider reads API key", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetIn(strings.NewReader("jina-key-123456\n"))
		rootCmd.SetArgs([]string{"settings", "set", "reranker", "rerank_api"})
		defer func() {
			rootCmd.SetArgs(nil)
			rootCmd.SetIn(nil)
		}()

		require.NoError(t, rootCmd.Execute())
		mock := settingsService.(*mockSettingsService)
		assert.Equal(t, domain.AIProviderRerankAPI, mock.settings.Reranker.Provider)
		assert.Equal(t, "jina-key-123456", mock.settings.Reranker.APIKey)
	})

	t.Run("cloud provider without key fails", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "set", "llm", "anthropic")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("base URL override", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "set", "llm", "ollama", "--base-url", "http://gpu-box:11434")

		require.NoError(t, err)
		mock := settingsService.(*mockSettingsService)
		assert.Equal(t, "http://gpu-box:11434", mock.settings.LLM.BaseURL)
	})

	t.Run("provider not valid for component", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "set", "embedding", "anthropic")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be used for embedding")
	})

	t.Run("unknown component", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "set", "vectors", "ollama")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown component")
	})
}

func TestSettingsKey(t *testing.T) {
	t.Run("stores key for cloud provider", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()
		mock := settingsService.(*mockSettingsService)
		mock.settings.LLM = domain.ProviderSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini"}

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetIn(strings.NewReader("sk-new-key-abcdef\n"))
		rootCmd.SetArgs([]string{"settings", "key", "llm"})
		defer func() {
			rootCmd.SetArgs(nil)
			rootCmd.SetIn(nil)
		}()

		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "sk-new-key-abcdef", mock.settings.LLM.APIKey)
		assert.Equal(t, "gpt-4o-mini", mock.settings.LLM.Model)
		assert.Contains(t, buf.String(), "API key stored: sk-n...cdef")
	})

	t.Run("local provider has no key", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "key", "embedding")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not use an API key")
	})
}

func TestSettingsWizard(t *testing.T) {
	t.Run("defaults for every step", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetIn(strings.NewReader("\n\n\n\n\n"))
		rootCmd.SetArgs([]string{"settings", "wizard"})
		defer func() {
			rootCmd.SetArgs(nil)
			rootCmd.SetIn(nil)
		}()

		require.NoError(t, rootCmd.Execute())
		out := buf.String()
		assert.Contains(t, out, "Step 1: Embedding Provider")
		assert.Contains(t, out, "Step 3: Reranker Provider")
		assert.Contains(t, out, "Configuration Complete!")

		mock := settingsService.(*mockSettingsService)
		assert.Equal(t, domain.AIProviderOllama, mock.settings.Embedding.Provider)
		assert.Equal(t, "all-minilm", mock.settings.Embedding.Model)
		assert.Equal(t, domain.AIProviderLexical, mock.settings.Reranker.Provider)
	})

	t.Run("validation failure stops the wizard", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()
		settingsService.(*mockSettingsService).validateErr = errors.New("connection refused")

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetIn(strings.NewReader("\n\n"))
		rootCmd.SetArgs([]string{"settings", "wizard"})
		defer func() {
			rootCmd.SetArgs(nil)
			rootCmd.SetIn(nil)
		}()

		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding configuration validation failed")
		assert.Contains(t, buf.String(), "FAILED: connection refused")
	})
}
