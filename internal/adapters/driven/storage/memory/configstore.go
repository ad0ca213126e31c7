package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps flattened settings ("retrieval.top_k") in a map.
// Save and Load are no-ops; the TOML file store embeds it and persists
// Snapshot itself.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store holding a copy of seed.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// lookup converts the value at key with conv, yielding the zero value when
// the key is absent or conv rejects it.
func lookup[T any](s *ConfigStore, key string, conv func(any) (T, bool)) T {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero
	}
	if out, ok := conv(val); ok {
		return out
	}
	return zero
}

func asString(v any) (string, bool) {
	str, ok := v.(string)
	return str, ok
}

// asInt accepts Go ints and the int64 TOML decodes to. Floats are rejected
// so 0.7 never reads as a top-k of 0.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asStrings accepts []string and the []any TOML decodes arrays to, dropping
// non-string elements.
func asStrings(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	}
	return nil, false
}

func (s *ConfigStore) GetString(key string) string        { return lookup(s, key, asString) }
func (s *ConfigStore) GetInt(key string) int              { return lookup(s, key, asInt) }
func (s *ConfigStore) GetFloat(key string) float64        { return lookup(s, key, asFloat) }
func (s *ConfigStore) GetBool(key string) bool            { return lookup(s, key, asBool) }
func (s *ConfigStore) GetStringSlice(key string) []string { return lookup(s, key, asStrings) }

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of every key and value.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Replace swaps the whole key set for a copy of values.
func (s *ConfigStore) Replace(values map[string]any) {
	next := make(map[string]any, len(values))
	maps.Copy(next, values)
	s.mu.Lock()
	s.values = next
	s.mu.Unlock()
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
