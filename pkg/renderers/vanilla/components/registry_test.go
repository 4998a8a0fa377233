package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func TestDefaultRegistry_CoversFieldTypes(t *testing.T) {
	registry := NewDefaultRegistry()
	want := []schema.FieldType{
		schema.FieldTypeCheckbox, schema.FieldTypeDate, schema.FieldTypeNumber,
		schema.FieldTypeSelect, schema.FieldTypeText,
	}
	if diff := cmp.Diff(want, registry.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	descriptor, ok := registry.Descriptor(schema.FieldTypeNumber)
	if !ok || descriptor.Name != "input" {
		t.Fatalf("expected number fields to use the input component, got %+v", descriptor)
	}
}

func TestRegistry_CloneIsolatesOverrides(t *testing.T) {
	base := NewDefaultRegistry()
	clone := base.Clone()
	custom := func(buf *bytes.Buffer, w render.Widget, _ rendertemplate.TemplateRenderer) error {
		buf.WriteString("custom:" + w.ID)
		return nil
	}
	if err := clone.Register(schema.FieldTypeText, Descriptor{Renderer: custom}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if d, _ := base.Descriptor(schema.FieldTypeText); d.Name != "input" {
		t.Fatalf("override leaked into the original registry")
	}
	if d, _ := clone.Descriptor(schema.FieldTypeText); d.Name != "text" {
		t.Fatalf("expected default name from field type, got %q", d.Name)
	}
	if err := clone.Register(schema.FieldTypeText, Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer to be rejected")
	}
}
