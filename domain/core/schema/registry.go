package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps type discriminators to schemas. Safe for concurrent use;
// Replace swaps the whole set at once for hot reload.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*NodeSchema
}

// NewRegistry creates a registry holding the given schemas. It panics on an
// invalid schema, so it is meant for built-in definitions.
func NewRegistry(schemas ...*NodeSchema) *Registry {
	r := &Registry{schemas: make(map[string]*NodeSchema)}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds or overrides the schema for its type
func (r *Registry) Register(s *NodeSchema) error {
	if s == nil {
		return fmt.Errorf("schema cannot be nil")
	}
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Type] = s
	return nil
}

// Lookup returns the schema for nodeType or an error wrapping ErrUnknownNodeType
func (r *Registry) Lookup(nodeType string) (*NodeSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}
	return s, nil
}

// Types returns the registered discriminators in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Replace validates all schemas and then swaps them in. Later entries override
// earlier ones with the same type. On error the registry is left unchanged.
func (r *Registry) Replace(schemas []*NodeSchema) error {
	next := make(map[string]*NodeSchema, len(schemas))
	for _, s := range schemas {
		if s == nil {
			return fmt.Errorf("schema cannot be nil")
		}
		if err := s.Validate(); err != nil {
			return err
		}
		next[s.Type] = s
	}

	r.mu.Lock()
	r.schemas = next
	r.mu.Unlock()
	return nil
}
