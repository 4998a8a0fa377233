package jsonschema

import (
	"context"
	"errors"

	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Source fetches a JSON Schema document through a loader and converts it into
// fields. It satisfies source.Source.
type Source struct {
	loader   *loader.Loader
	location schema.Location
}

// NewSource builds a Source reading loc with l.
func NewSource(l *loader.Loader, loc schema.Location) (*Source, error) {
	if l == nil {
		return nil, errors.New("jsonschema: loader is required")
	}
	if loc == nil {
		return nil, errors.New("jsonschema: location is required")
	}
	return &Source{loader: l, location: loc}, nil
}

// Fetch loads and converts the document.
func (s *Source) Fetch(ctx context.Context) ([]schema.Field, error) {
	doc, err := s.loader.Load(ctx, s.location)
	if err != nil {
		return nil, err
	}
	return Parse(doc.Raw())
}
