package file

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts_readme.md
var promptsReadme string

var builtinPrompts = map[string]string{
	driven.PromptAnswer: domain.DefaultAnswerPrompt,
}

// PromptStore serves prompt templates from <dir>/<name>.txt. A file is
// re-read when its modification time changes, so edits reach a running
// chat or MCP session on the next question. Missing or invalid files fall
// back to the built-in template.
//
// The directory is seeded with the built-in templates and a README on the
// first Load, never before.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	text    string
	modTime time.Time
}

// NewPromptStore creates a store over dir. An empty dir selects
// ~/.docqa/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]cachedPrompt{}}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.seedErr)
	}

	text, err := s.read(name)
	switch {
	case err == nil:
		return text, nil
	case known:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Ignoring prompt %q: %v", name, err)
		}
		return builtin, nil
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
}

// read returns the validated file content, from cache when the file is
// unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		s.forget(name)
		return "", err
	}

	s.mu.Lock()
	c, ok := s.cache[name]
	s.mu.Unlock()
	if ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if err := validatePrompt(name, text); err != nil {
		s.forget(name)
		return "", err
	}

	s.mu.Lock()
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	s.mu.Unlock()
	return text, nil
}

func (s *PromptStore) forget(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

func validatePrompt(name, text string) error {
	if text == "" {
		return fmt.Errorf("%w: prompt file is empty", domain.ErrInvalidInput)
	}
	if name != driven.PromptAnswer {
		return nil
	}
	for _, ph := range []string{domain.PlaceholderContext, domain.PlaceholderQuestion} {
		if !strings.Contains(text, ph) {
			return fmt.Errorf("%w: prompt is missing %s", domain.ErrInvalidInput, ph)
		}
	}
	return nil
}

// seed creates the directory and writes any missing built-in file.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptsReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", name, err)
			return
		}
	}
}
