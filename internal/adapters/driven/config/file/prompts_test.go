package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

// writePrompt replaces a prompt file and moves its mtime so edits are seen.
func writePrompt(t *testing.T, dir, name, content string, at time.Time) {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".veritas", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_SeedsFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)

	for _, f := range []string{"answer_system.txt", "answer_user.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_SeedKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "Question: %s\nFacts: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_user.txt"), []byte("\n  "+custom+"\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	prompt, err := store.Load(driven.PromptAnswerUser)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_DefaultSystemPromptCarriesRefusal(t *testing.T) {
	store, _ := newTestPromptStore(t)

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Contains(t, prompt, domain.RefusalMessage)
	assert.Contains(t, prompt, "TABLE FACTS")
}

func TestPromptStore_Load_InvalidEditsUseBuiltIn(t *testing.T) {
	base := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		prompt   string
		content  string
		fallback string
	}{
		{"system prompt without refusal", driven.PromptAnswerSystem, "Answer freely.", domain.DefaultAnswerSystemPrompt},
		{"user prompt with one placeholder", driven.PromptAnswerUser, "Question: %s", domain.DefaultAnswerUserPrompt},
		{"user prompt with three placeholders", driven.PromptAnswerUser, "%s %s %s", domain.DefaultAnswerUserPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestPromptStore(t)
			_, err := store.Load(tt.prompt)
			require.NoError(t, err)
			writePrompt(t, dir, tt.prompt, tt.content, base)

			prompt, err := store.Load(tt.prompt)

			require.NoError(t, err)
			assert.Equal(t, tt.fallback, prompt)
		})
	}
}

func TestPromptStore_Load_MissingFileUsesBuiltIn(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, _ = store.Load(driven.PromptAnswerUser)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer_user.txt")))

	prompt, err := store.Load(driven.PromptAnswerUser)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerUserPrompt, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_PicksUpEdits(t *testing.T) {
	store, dir := newTestPromptStore(t)
	base := time.Now().Add(-time.Hour)

	writePrompt(t, dir, driven.PromptAnswerUser, "Q: %s\nI: %s", base)
	first, err := store.Load(driven.PromptAnswerUser)
	require.NoError(t, err)
	assert.Equal(t, "Q: %s\nI: %s", first)

	writePrompt(t, dir, driven.PromptAnswerUser, "Ask: %s\nUse: %s", base.Add(time.Minute))
	second, err := store.Load(driven.PromptAnswerUser)
	require.NoError(t, err)
	assert.Equal(t, "Ask: %s\nUse: %s", second)
}

func TestPromptStore_Load_UnchangedFileIsCached(t *testing.T) {
	store, dir := newTestPromptStore(t)
	base := time.Now().Add(-time.Hour)

	writePrompt(t, dir, driven.PromptAnswerUser, "Q: %s\nI: %s", base)
	_, err := store.Load(driven.PromptAnswerUser)
	require.NoError(t, err)

	// Same mtime: the cached text wins.
	writePrompt(t, dir, driven.PromptAnswerUser, "Other: %s %s", base)
	cached, err := store.Load(driven.PromptAnswerUser)

	require.NoError(t, err)
	assert.Equal(t, "Q: %s\nI: %s", cached)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptAnswerSystem)
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	for _, p := range results {
		assert.Equal(t, results[0], p)
	}
}
