package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves the answer templates from <dir>/<name>_<lang>.txt.
//
// The directory is seeded with the built-in templates on the first Load, so
// users can edit them in place. A missing, empty or malformed file falls back
// to the built-in template for that name. Loads are cached until Reload.
type PromptStore struct {
	dir      string
	defaults map[string]string
	seed     func() error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store rooted at dir, or ~/.docqa/prompts when dir
// is empty. Nothing touches the disk until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "prompts")
	}

	s := &PromptStore{
		dir:      dir,
		defaults: driven.DefaultPrompts(),
		cache:    make(map[string]string),
	}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for a localised prompt name such as "rag_hi".
func (s *PromptStore) Load(name string) (string, error) {
	def, known := s.defaults[name]

	if err := s.seed(); err != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", err)
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		logger.Debug("prompt %q unreadable (%v), using the built-in template", name, err)
		return def, nil
	case known && !sameVerbs(prompt, def):
		logger.Warn("prompt %q has the wrong number of %%s placeholders, using the default", name)
		prompt = def
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// read returns the trimmed file content. A blank file counts as missing.
func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("%s is empty", s.path(name))
	}
	return prompt, nil
}

// sameVerbs reports whether two templates take the same number of %s
// arguments, so a customised file can be formatted like the built-in one.
func sameVerbs(a, b string) bool {
	return strings.Count(a, "%s") == strings.Count(b, "%s")
}

// writeDefaults creates the directory, the template files that do not exist
// yet and a README. Existing files are left alone.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	for name, content := range s.defaults {
		if err := writeIfMissing(s.path(name), content); err != nil {
			return fmt.Errorf("create default prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), promptReadme)
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const promptReadme = `# docqa prompts

Templates used to answer questions about your documents. Each one has an
English (_en) and a Hindi (_hi) file; the language of the question picks
which is used.

| File            | Used when                                   | %s arguments          |
|-----------------|---------------------------------------------|-----------------------|
| rag_*           | a language model answers from the context   | context, then question |
| fallback_*      | no model answers; frames the best passages  | passages              |
| no_match_*      | no passage is similar enough                | none                  |
| no_documents_*  | nothing has been ingested yet               | none                  |

A file that is empty or has a different number of %s arguments than the
built-in template is ignored. Edits take effect on the next command, or
after the server restarts.
`
