package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
)

// Transformer rewrites a fetched schema before the store checks and adopts
// it. Implementations must not modify the input slice in place.
type Transformer interface {
	Transform(ctx context.Context, fields []schema.Field) ([]schema.Field, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, fields []schema.Field) ([]schema.Field, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, fields []schema.Field) ([]schema.Field, error) {
	if fn == nil {
		return fields, nil
	}
	return fn(ctx, fields)
}

func transformed(src source.Source, t Transformer) source.Source {
	return source.Func(func(ctx context.Context) ([]schema.Field, error) {
		fields, err := src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		out, err := t.Transform(ctx, fields)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: transform schema: %w", err)
		}
		return out, nil
	})
}

// JSONPresetTransformer applies declarative per-field overrides loaded from a
// JSON document:
//
//	{
//	  "fields": {
//	    "email": {"label": "Work email", "placeholder": "you@company.com"},
//	    "experience": {"required": true},
//	    "role": {"options": ["Developer", "Lawyer"]},
//	    "terms": {"remove": true}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Fields map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder"`
	Required    *bool    `json:"required"`
	Options     []string `json:"options"`
	Remove      bool     `json:"remove"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the patches. Patching an unknown field is an error;
// removing a field other fields depend on is left for schema.Check to reject.
func (t *JSONPresetTransformer) Transform(ctx context.Context, fields []schema.Field) ([]schema.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for id := range t.document.Fields {
		if _, ok := schema.Find(fields, id); !ok {
			return nil, fmt.Errorf("json preset transformer: field %q not found", id)
		}
	}

	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		patch, ok := t.document.Fields[field.ID]
		if !ok {
			out = append(out, field)
			continue
		}
		if patch.Remove {
			continue
		}
		out = append(out, applyFieldPatch(field, patch))
	}
	return out, nil
}

func applyFieldPatch(field schema.Field, patch jsonFieldPatch) schema.Field {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
		if field.Validation != nil {
			rules := *field.Validation
			rules.Required = false
			field.Validation = &rules
		}
	}
	if len(patch.Options) > 0 {
		field.Options = append([]string(nil), patch.Options...)
	}
	return field
}
