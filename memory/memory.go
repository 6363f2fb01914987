package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Memory is a concurrency-safe set of named facts.
type Memory struct {
	mu    sync.RWMutex
	facts map[string]string
}

func New() *Memory { return &Memory{facts: map[string]string{}} }

// Remember stores fact under name, replacing any previous value. An empty
// fact forgets the name.
func (m *Memory) Remember(name, fact string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.facts == nil {
		m.facts = map[string]string{}
	}
	if fact == "" {
		delete(m.facts, name)
		return
	}
	m.facts[name] = fact
}

// Facts returns a copy of the stored facts.
func (m *Memory) Facts() map[string]string {
	out := map[string]string{}
	if m == nil {
		return out
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.facts {
		out[k] = v
	}
	return out
}

// PromptContent renders facts sorted by name, one per line. It returns ""
// for a nil or empty memory.
func (m *Memory) PromptContent() string {
	facts := m.Facts()
	if len(facts) == 0 {
		return ""
	}
	names := make([]string, 0, len(facts))
	for k := range facts {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Known facts:\n")
	for _, k := range names {
		fmt.Fprintf(&b, "- %s: %s\n", k, facts[k])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Load reads facts from path. A missing file yields an empty memory.
func Load(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, err
	}
	m := New()
	if len(strings.TrimSpace(string(b))) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m.facts); err != nil {
		return nil, fmt.Errorf("memory: decode %s: %w", path, err)
	}
	if m.facts == nil {
		m.facts = map[string]string{}
	}
	return m, nil
}

// Save writes facts to path, creating parent directories as needed.
func (m *Memory) Save(path string) error {
	b, err := json.MarshalIndent(m.Facts(), "", " ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
