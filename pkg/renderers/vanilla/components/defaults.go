package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/schema"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry covering every built-in field type.
func NewDefaultRegistry() *Registry {
	registry := New()
	input := Descriptor{Name: "input", Renderer: Template(templatePrefix + "input.tmpl")}
	registry.MustRegister(schema.FieldTypeText, input)
	registry.MustRegister(schema.FieldTypeNumber, input)
	registry.MustRegister(schema.FieldTypeDate, input)
	registry.MustRegister(schema.FieldTypeSelect, Descriptor{Name: "select", Renderer: Template(templatePrefix + "select.tmpl")})
	registry.MustRegister(schema.FieldTypeCheckbox, Descriptor{Name: "checkbox", Renderer: Template(templatePrefix + "checkbox.tmpl")})
	return registry
}

// Template renders the widget with the named template. The template sees
// the widget under "widget".
func Template(name string) Renderer {
	return func(buf *bytes.Buffer, widget render.Widget, templates rendertemplate.TemplateRenderer) error {
		if templates == nil {
			return fmt.Errorf("components: template renderer not configured for %q", name)
		}
		_, err := templates.RenderTemplate(name, map[string]any{"widget": widget}, buf)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", name, err)
		}
		return nil
	}
}
