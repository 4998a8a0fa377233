// Package jsonschema derives form schemas from a JSON Schema object
// definition. Properties map to fields the same way OpenAPI request bodies do,
// including the x-order, x-placeholder and x-depends-on extensions.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// ErrNotObject is returned when the document root is not an object schema
// with properties.
var ErrNotObject = errors.New("jsonschema: document must describe an object with properties")

// Parse decodes raw (JSON or YAML) as a JSON Schema object and returns its
// properties as a checked field list. References are not followed; a property
// defined only through $ref is skipped.
func Parse(raw []byte) ([]schema.Field, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, schema.ErrEmptySchema
	}
	if trimmed[0] != '{' {
		converted, err := yamlToJSON(trimmed)
		if err != nil {
			return nil, err
		}
		trimmed = converted
	}

	var root openapi3.Schema
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: decode: %w", err)
	}
	if root.Type != nil && !root.Type.Is(openapi3.TypeObject) {
		return nil, ErrNotObject
	}
	if len(root.Properties) == 0 {
		return nil, ErrNotObject
	}
	return openapi.FieldsFromSchema(&root)
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: decode yaml: %w", err)
	}
	if doc == nil {
		return nil, ErrNotObject
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: convert yaml: %w", err)
	}
	return out, nil
}
