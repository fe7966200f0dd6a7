// Package memory provides in-process implementations of driven ports.
// They back the "memory" index backend and keep tests free of disk state.
package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map. Nothing is persisted.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store seeded with a copy of values.
func NewConfigStore(values map[string]any) *ConfigStore {
	return &ConfigStore{values: maps.Clone(values)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Path() string { return ":memory:" }
