package source

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe, order-preserving registry of source adapters.
// Registration order is significant: it fixes the invocation order the
// coordinator reports in SourcesUsed.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds an adapter. Re-registering a name overwrites the previous
// entry but keeps its position in the order.
func (r *Registry) Register(s Source) error {
	name := s.Info().Name
	if name == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sources[name] = s
	return nil
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil, &ErrNotFound{Name: name}
	}
	return s, nil
}

// Names returns all registered adapter names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns all registered adapters in registration order.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.sources[name])
	}
	return all
}

// Enabled returns the adapters whose relevance gate admits the requested
// topics, in registration order.
func (r *Registry) Enabled(topics []string) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		if s := r.sources[name]; s.Enabled(topics) {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
