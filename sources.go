package dynform

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
)

// ParseLocation maps http(s) URLs to URL locations and anything else to a
// file path.
func ParseLocation(raw string) (schema.Location, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, fmt.Errorf("dynform: schema location is required")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.AtURL(path)
	}
	return schema.AtFile(path), nil
}

// NewDocumentSource reads a JSON or YAML field list from raw (a path or URL)
// using the default loader.
func NewDocumentSource(raw string, opts ...source.DocumentOption) (*source.Document, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	return source.NewDocument(defaultLoader(loc), loc, opts...)
}

// NewOpenAPISource derives fields from an OpenAPI operation's request body.
func NewOpenAPISource(raw string, options openapi.ParserOptions) (*openapi.Source, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	return openapi.NewSource(defaultLoader(loc), loc, options)
}

// NewJSONSchemaSource derives fields from a JSON Schema object definition.
func NewJSONSchemaSource(raw string) (*jsonschema.Source, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	return jsonschema.NewSource(defaultLoader(loc), loc)
}

func defaultLoader(loc schema.Location) *loader.Loader {
	return loader.New(loader.Options{AllowHTTP: loc.Kind() == schema.LocationKindURL})
}
