// Package openapi derives form schemas from the JSON request body of an
// OpenAPI 3 operation.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Extension keys read from property schemas.
const (
	ExtensionOrder       = "x-order"
	ExtensionDependsOn   = "x-depends-on"
	ExtensionPlaceholder = "x-placeholder"
)

var (
	// ErrOperationNotFound is returned when the requested operation id does not
	// exist in the document.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no JSON object body.
	ErrNoRequestBody = errors.New("openapi: operation has no JSON object request body")
)

// ParserOptions tunes document parsing.
type ParserOptions struct {
	// OperationID selects the operation. When empty the first operation (by
	// path, then method) with a JSON object request body is used.
	OperationID string
	// Validate runs the kin-openapi document validator before conversion.
	Validate bool
}

// Parser converts OpenAPI documents into field lists.
type Parser struct {
	options ParserOptions
}

// NewParser constructs a Parser.
func NewParser(options ParserOptions) *Parser {
	return &Parser{options: options}
}

// Fields parses raw (JSON or YAML) and returns the selected operation's
// request body as a checked field list. Properties whose type has no form
// widget (objects, arrays) are skipped.
func (p *Parser) Fields(ctx context.Context, raw []byte) ([]schema.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if p.options.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	body, err := p.requestBody(doc)
	if err != nil {
		return nil, err
	}
	return FieldsFromSchema(body)
}

// FieldsFromSchema converts the properties of an object schema into a checked
// field list. Properties are ordered by x-order, then by name.
func FieldsFromSchema(body *openapi3.Schema) ([]schema.Field, error) {
	if body == nil || len(body.Properties) == 0 {
		return nil, ErrNoRequestBody
	}
	fields := convertObject(body)
	if err := schema.Check(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Parser) requestBody(doc *openapi3.T) (*openapi3.Schema, error) {
	if doc.Paths == nil {
		return nil, ErrOperationNotFound
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			if p.options.OperationID != "" {
				if op.OperationID != p.options.OperationID {
					continue
				}
				body := jsonBody(op)
				if body == nil {
					return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, op.OperationID)
				}
				return body, nil
			}
			if body := jsonBody(op); body != nil {
				return body, nil
			}
		}
	}
	if p.options.OperationID != "" {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, p.options.OperationID)
	}
	return nil, ErrNoRequestBody
}

func jsonBody(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	body := mt.Schema.Value
	if body.Type != nil && !body.Type.Is(openapi3.TypeObject) {
		return nil
	}
	if len(body.Properties) == 0 {
		return nil
	}
	return body
}

type ordered struct {
	name  string
	order float64
	field schema.Field
}

func convertObject(body *openapi3.Schema) []schema.Field {
	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	items := make([]ordered, 0, len(body.Properties))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := convertProperty(name, ref.Value)
		if !ok {
			continue
		}
		_, field.Required = required[name]
		order := math.Inf(1)
		if v, ok := number(ref.Value.Extensions[ExtensionOrder]); ok {
			order = v
		}
		items = append(items, ordered{name: name, order: order, field: field})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].order != items[j].order {
			return items[i].order < items[j].order
		}
		return items[i].name < items[j].name
	})

	fields := make([]schema.Field, 0, len(items))
	for _, item := range items {
		fields = append(fields, item.field)
	}
	return fields
}

func convertProperty(name string, prop *openapi3.Schema) (schema.Field, bool) {
	field := schema.Field{
		ID:    name,
		Label: strings.TrimSpace(prop.Title),
	}
	if field.Label == "" {
		field.Label = schema.Humanize(name)
	}
	if placeholder, ok := prop.Extensions[ExtensionPlaceholder].(string); ok {
		field.Placeholder = placeholder
	}

	rules := &schema.Rules{}
	switch {
	case prop.Type.Is(openapi3.TypeString) && len(prop.Enum) > 0:
		field.Type = schema.FieldTypeSelect
		for _, option := range prop.Enum {
			field.Options = append(field.Options, fmt.Sprint(option))
		}
	case prop.Type.Is(openapi3.TypeString) && prop.Format == "date":
		field.Type = schema.FieldTypeDate
	case prop.Type.Is(openapi3.TypeString):
		field.Type = schema.FieldTypeText
		if prop.MinLength > 0 {
			rules.MinLength = schema.Int(int(prop.MinLength))
		}
		if prop.MaxLength != nil {
			rules.MaxLength = schema.Int(int(*prop.MaxLength))
		}
		rules.Pattern = prop.Pattern
		if rules.Pattern == "" && prop.Format == "email" {
			rules.Pattern = schema.EmailPattern
		}
	case prop.Type.Is(openapi3.TypeNumber), prop.Type.Is(openapi3.TypeInteger):
		field.Type = schema.FieldTypeNumber
		if prop.Min != nil {
			rules.Min = schema.Float(*prop.Min)
		}
		if prop.Max != nil {
			rules.Max = schema.Float(*prop.Max)
		}
	case prop.Type.Is(openapi3.TypeBoolean):
		field.Type = schema.FieldTypeCheckbox
	default:
		return schema.Field{}, false
	}
	if *rules != (schema.Rules{}) {
		field.Validation = rules
	}

	if dep, ok := prop.Extensions[ExtensionDependsOn].(map[string]any); ok {
		target, _ := dep["field"].(string)
		value, err := schema.ValueOf(dep["value"])
		if target != "" && err == nil {
			field.DependsOn = &schema.Dependency{Field: target, Value: value}
		}
	}
	return field, true
}

func number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
