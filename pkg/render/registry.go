package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores renderers by name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates a registry pre-populated with renderers.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{renderers: make(map[string]Renderer)}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
