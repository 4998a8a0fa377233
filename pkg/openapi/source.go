package openapi

import (
	"context"
	"errors"

	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Source fetches an OpenAPI document through a loader and converts the
// selected operation into fields. It satisfies source.Source.
type Source struct {
	loader   *loader.Loader
	location schema.Location
	parser   *Parser
}

// NewSource builds a Source reading loc with l.
func NewSource(l *loader.Loader, loc schema.Location, options ParserOptions) (*Source, error) {
	if l == nil {
		return nil, errors.New("openapi: loader is required")
	}
	if loc == nil {
		return nil, errors.New("openapi: location is required")
	}
	return &Source{loader: l, location: loc, parser: NewParser(options)}, nil
}

// Fetch loads and converts the document.
func (s *Source) Fetch(ctx context.Context) ([]schema.Field, error) {
	doc, err := s.loader.Load(ctx, s.location)
	if err != nil {
		return nil, err
	}
	return s.parser.Fields(ctx, doc.Raw())
}
