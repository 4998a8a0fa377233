// Package components maps field types to the HTML component that renders
// their widget. Callers can override a type or register new ones.
package components

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Renderer writes the HTML for one widget into buf.
type Renderer func(buf *bytes.Buffer, widget render.Widget, templates rendertemplate.TemplateRenderer) error

// Descriptor names a component and its renderer.
type Descriptor struct {
	Name     string
	Renderer Renderer
}

// Registry tracks descriptors keyed by field type.
type Registry struct {
	mu         sync.RWMutex
	components map[schema.FieldType]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[schema.FieldType]Descriptor)}
}

// Clone returns a copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cloned := New()
	for fieldType, descriptor := range r.components {
		cloned.components[fieldType] = descriptor
	}
	return cloned
}

// Register associates a descriptor with a field type, replacing any existing
// entry.
func (r *Registry) Register(fieldType schema.FieldType, descriptor Descriptor) error {
	if fieldType == "" {
		return fmt.Errorf("components: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", fieldType)
	}
	if descriptor.Name == "" {
		descriptor.Name = string(fieldType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[fieldType] = descriptor
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(fieldType schema.FieldType, descriptor Descriptor) {
	if err := r.Register(fieldType, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches the component for a field type.
func (r *Registry) Descriptor(fieldType schema.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[fieldType]
	return descriptor, ok
}

// Types returns the registered field types, sorted.
func (r *Registry) Types() []schema.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]schema.FieldType, 0, len(r.components))
	for fieldType := range r.components {
		types = append(types, fieldType)
	}
	slices.Sort(types)
	return types
}
