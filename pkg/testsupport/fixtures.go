// Package testsupport holds fixtures and comparison helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// RoleSchema returns a two field schema where "detail" is only shown (and
// required) when "role" is "B".
func RoleSchema() []schema.Field {
	return []schema.Field{
		{ID: "role", Type: schema.FieldTypeSelect, Label: "Role", Required: true, Options: []string{"A", "B"}},
		{ID: "detail", Type: schema.FieldTypeText, Label: "Detail", Required: true, DependsOn: &schema.Dependency{Field: "role", Value: schema.String("B")}},
	}
}

// MustDecode decodes and checks a schema document.
func MustDecode(t *testing.T, raw string, format schema.Format) []schema.Field {
	t.Helper()
	fields, err := schema.Decode([]byte(raw), format)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if err := schema.Check(fields); err != nil {
		t.Fatalf("check schema: %v", err)
	}
	return fields
}

// FormData builds ordered form data from alternating id/value pairs.
func FormData(t *testing.T, pairs ...any) *schema.FormData {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("FormData: odd number of arguments")
	}
	data := schema.NewFormData()
	for i := 0; i < len(pairs); i += 2 {
		id, ok := pairs[i].(string)
		if !ok {
			t.Fatalf("FormData: key %v is not a string", pairs[i])
		}
		value, err := schema.ValueOf(pairs[i+1])
		if err != nil {
			t.Fatalf("FormData: %s: %v", id, err)
		}
		data.Set(id, value)
	}
	return data
}

// DiffFormData compares keys (in order) and strictly typed values.
func DiffFormData(want, got *schema.FormData) string {
	return cmp.Diff(entries(want), entries(got))
}

type entry struct {
	ID    string
	Value schema.Value
}

func entries(data *schema.FormData) []entry {
	if data == nil {
		return nil
	}
	out := make([]entry, 0, data.Len())
	for _, id := range data.Keys() {
		out = append(out, entry{ID: id, Value: data.Value(id)})
	}
	return out
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
