// Package postprocessors builds the chunking stage from configuration.
package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Config is the loosely typed option table of one processor, as decoded
// from TOML or JSON.
type Config map[string]any

// Int reads key as an int. TOML decodes integers as int64 and JSON as
// float64, so both are accepted.
func (c Config) Int(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// BuilderFunc creates a PostProcessor from its Config.
type BuilderFunc func(cfg Config) (driven.PostProcessor, error)

// Registry maps processor names to builders. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register adds a builder under name. Names are unique.
func (r *Registry) Register(name string, builder BuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.builders[name]; dup {
		return fmt.Errorf("%w: processor %q already registered", domain.ErrInvalidInput, name)
	}
	r.builders[name] = builder
	return nil
}

// Build creates the processor registered under name.
func (r *Registry) Build(name string, cfg Config) (driven.PostProcessor, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (have %v)", domain.ErrInvalidInput, name, r.Names())
	}
	return builder(cfg)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.builders))
}
