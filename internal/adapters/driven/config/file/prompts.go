package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptFile describes one user-editable answer prompt.
type promptFile struct {
	fallback string
	check    func(string) error
}

var promptFiles = map[string]promptFile{
	driven.PromptAnswerSystem: {
		fallback: domain.DefaultAnswerSystemPrompt,
		check: func(p string) error {
			if !strings.Contains(p, domain.RefusalMessage) {
				return errors.New("must keep the refusal sentence")
			}
			return nil
		},
	},
	driven.PromptAnswerUser: {
		fallback: domain.DefaultAnswerUserPrompt,
		check: func(p string) error {
			if n := strings.Count(p, "%s"); n != 2 {
				return fmt.Errorf("needs two %%s placeholders, found %d", n)
			}
			return nil
		},
	},
}

const promptReadme = `# veritas prompts

Prompts used when answering questions from your documents.

- answer_system.txt: grounding rules sent as the system prompt. It must keep
  the sentence "` + domain.RefusalMessage + `"
  or refusals are not recognised.
- answer_user.txt: frames the question and the evidence. It must keep two %s
  placeholders, the question first and the evidence second.

Edits are picked up on the next question, including by a running "mcp serve".
A file that breaks these rules is ignored and the built-in prompt is used.
`

// cachedPrompt is a validated prompt and the file time it was read at.
type cachedPrompt struct {
	text    string
	modTime time.Time
}

// PromptStore serves answer prompts from text files in one directory.
// Files are seeded with the built-in prompts on first use and re-read
// whenever their modification time changes.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store rooted at dir, ~/.veritas/prompts when empty.
// No files are touched until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".veritas", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt. A missing, unreadable or invalid file
// yields the built-in prompt; unknown names are an error.
func (s *PromptStore) Load(name string) (string, error) {
	pf, ok := promptFiles[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q: %w", name, domain.ErrNotFound)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		return pf.fallback, nil
	}

	text, err := s.read(name, pf)
	if err != nil {
		return pf.fallback, nil
	}
	return text, nil
}

// read returns the cached prompt when the file is unchanged, otherwise
// reads and validates it again.
func (s *PromptStore) read(name string, pf promptFile) (string, error) {
	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if err := pf.check(text); err != nil {
		delete(s.cache, name)
		return "", fmt.Errorf("prompt %s %w: %w", path, err, domain.ErrInvalidInput)
	}

	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// seed creates the directory and writes any missing prompt files.
// Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, pf := range promptFiles {
		files[name+".txt"] = pf.fallback
	}
	for file, content := range files {
		if err := writeNew(filepath.Join(s.dir, file), content); err != nil {
			s.seedErr = err
			return
		}
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// writeNew writes content to path unless the file already exists.
func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
