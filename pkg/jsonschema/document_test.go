package jsonschema

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/pkg/schema"
)

const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "plan"],
  "properties": {
    "name": {"type": "string", "minLength": 2, "x-order": 0},
    "plan": {"type": "string", "enum": ["free", "pro"], "x-order": 1},
    "seats": {
      "type": "integer", "minimum": 1, "maximum": 20, "x-order": 2,
      "x-depends-on": {"field": "plan", "value": "pro"}
    },
    "newsletter": {"type": "boolean", "title": "Send me news"},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestParse_ConvertsProperties(t *testing.T) {
	fields, err := Parse([]byte(profileSchema))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"name", "plan", "seats", "newsletter"}, ids); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	plan, _ := schema.Find(fields, "plan")
	if plan.Type != schema.FieldTypeSelect || !plan.Required {
		t.Fatalf("expected required select, got %+v", plan)
	}
	seats, _ := schema.Find(fields, "seats")
	if seats.DependsOn == nil || !seats.DependsOn.Value.Equal(schema.String("pro")) {
		t.Fatalf("expected seats to depend on plan=pro, got %+v", seats.DependsOn)
	}
	rules := seats.EffectiveRules()
	if rules.Min == nil || *rules.Min != 1 || rules.Max == nil || *rules.Max != 20 {
		t.Fatalf("unexpected seat bounds %+v", rules)
	}
	newsletter, _ := schema.Find(fields, "newsletter")
	if newsletter.Type != schema.FieldTypeCheckbox || newsletter.Label != "Send me news" {
		t.Fatalf("unexpected newsletter field %+v", newsletter)
	}
}

func TestParse_YAML(t *testing.T) {
	doc := `
type: object
properties:
  startDate:
    type: string
    format: date
`
	fields, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if len(fields) != 1 || fields[0].Type != schema.FieldTypeDate || fields[0].Label != "Start Date" {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestParse_RejectsNonObjects(t *testing.T) {
	cases := map[string]string{
		"array root":    `{"type":"array","items":{"type":"string"}}`,
		"no properties": `{"type":"object"}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrNotObject) {
				t.Fatalf("expected ErrNotObject, got %v", err)
			}
		})
	}
	if _, err := Parse(nil); !errors.Is(err, schema.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema, got %v", err)
	}
}

func TestSource_FetchesThroughLoader(t *testing.T) {
	files := fstest.MapFS{"forms/profile.json": {Data: []byte(profileSchema)}}
	src, err := NewSource(loader.New(loader.Options{FileSystem: files}), schema.AtFS("forms/profile.json"))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	fields, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}

	if _, err := NewSource(nil, schema.AtFS("x")); err == nil {
		t.Fatalf("expected loader to be required")
	}
}
