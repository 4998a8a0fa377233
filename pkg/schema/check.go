package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptySchema is returned when a document decodes to zero fields.
var ErrEmptySchema = errors.New("schema: no fields defined")

// FieldError reports a boundary check failure for a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Message)
}

// Format identifies the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the document format from a file name or URL path.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(strings.TrimSpace(path))
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a field list in the given format and runs Check over it.
// JSON documents may either be a bare array or an object with a "fields" key.
func Decode(raw []byte, format Format) ([]Field, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptySchema
	}

	var fields []Field
	switch format {
	case FormatYAML:
		var err error
		fields, err = decodeYAML(trimmed)
		if err != nil {
			return nil, err
		}
	default:
		var err error
		fields, err = decodeJSON(trimmed)
		if err != nil {
			return nil, err
		}
	}

	if err := Check(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeJSON(raw []byte) ([]Field, error) {
	if raw[0] == '[' {
		var fields []Field
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("schema: decode json: %w", err)
		}
		return fields, nil
	}
	var envelope struct {
		Fields []Field `json:"fields"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("schema: decode json: %w", err)
	}
	return envelope.Fields, nil
}

func decodeYAML(raw []byte) ([]Field, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, ErrEmptySchema
	}
	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var envelope struct {
			Fields []Field `yaml:"fields"`
		}
		if err := root.Decode(&envelope); err != nil {
			return nil, fmt.Errorf("schema: decode yaml: %w", err)
		}
		return envelope.Fields, nil
	}
	var fields []Field
	if err := root.Decode(&fields); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return fields, nil
}

// Check enforces the schema invariants: unique non-empty ids, known types,
// options present exactly for select fields, compilable patterns, and
// dependencies that point at another field without forming a cycle.
func Check(fields []Field) error {
	if len(fields) == 0 {
		return ErrEmptySchema
	}

	index := make(map[string]Field, len(fields))
	var errs []error
	for _, field := range fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			errs = append(errs, FieldError{Message: "field id is required"})
			continue
		}
		if id != field.ID {
			errs = append(errs, FieldError{Field: field.ID, Message: "field id must not contain surrounding spaces"})
		}
		if _, dup := index[id]; dup {
			errs = append(errs, FieldError{Field: id, Message: "duplicate field id"})
			continue
		}
		index[id] = field

		if !field.Type.Valid() {
			errs = append(errs, FieldError{Field: id, Message: fmt.Sprintf("unsupported type %q", field.Type)})
		}
		switch {
		case field.Type == FieldTypeSelect && len(field.Options) == 0:
			errs = append(errs, FieldError{Field: id, Message: "select fields require options"})
		case field.Type != FieldTypeSelect && len(field.Options) > 0:
			errs = append(errs, FieldError{Field: id, Message: "options are only allowed on select fields"})
		}
		if rules := field.Validation; rules != nil {
			if rules.Pattern != "" {
				if _, err := regexp.Compile(rules.Pattern); err != nil {
					errs = append(errs, FieldError{Field: id, Message: fmt.Sprintf("invalid pattern: %v", err)})
				}
			}
			if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
				errs = append(errs, FieldError{Field: id, Message: "min is greater than max"})
			}
			if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
				errs = append(errs, FieldError{Field: id, Message: "minLength is greater than maxLength"})
			}
		}
	}

	for _, field := range fields {
		dep := field.DependsOn
		if dep == nil || field.ID == "" {
			continue
		}
		switch {
		case dep.Field == field.ID:
			errs = append(errs, FieldError{Field: field.ID, Message: "field cannot depend on itself"})
		case dep.Field == "":
			errs = append(errs, FieldError{Field: field.ID, Message: "dependsOn.field is required"})
		default:
			if _, ok := index[dep.Field]; !ok {
				errs = append(errs, FieldError{Field: field.ID, Message: fmt.Sprintf("dependsOn references unknown field %q", dep.Field)})
			} else if cyclic(field.ID, index) {
				errs = append(errs, FieldError{Field: field.ID, Message: "dependency cycle"})
			}
		}
	}

	return errors.Join(errs...)
}

// cyclic reports whether following dependencies from start leads back to
// start. Fields that only lead into a cycle elsewhere are not part of it.
func cyclic(start string, index map[string]Field) bool {
	seen := map[string]struct{}{start: {}}
	current := index[start]
	for current.DependsOn != nil {
		next := current.DependsOn.Field
		if next == start {
			return true
		}
		if _, loop := seen[next]; loop {
			return false
		}
		seen[next] = struct{}{}
		field, ok := index[next]
		if !ok {
			return false
		}
		current = field
	}
	return false
}
