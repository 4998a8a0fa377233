// Package source provides the schema sources a store can fetch from. A source
// either returns a checked field list or an error; the store turns any error
// into the built-in fallback schema.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Source fetches a schema.
type Source interface {
	Fetch(ctx context.Context) ([]schema.Field, error)
}

// Func adapts a function into a Source.
type Func func(ctx context.Context) ([]schema.Field, error)

// Fetch delegates to the function.
func (fn Func) Fetch(ctx context.Context) ([]schema.Field, error) {
	return fn(ctx)
}

// Static always returns a deep copy of fields.
func Static(fields []schema.Field) Source {
	fields = schema.CloneFields(fields)
	return Func(func(context.Context) ([]schema.Field, error) {
		if err := schema.Check(fields); err != nil {
			return nil, err
		}
		return schema.CloneFields(fields), nil
	})
}

// Delayed waits d before delegating, mimicking a slow remote. Cancelling ctx
// aborts the wait.
func Delayed(src Source, d time.Duration) Source {
	return Func(func(ctx context.Context) ([]schema.Field, error) {
		if d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		return src.Fetch(ctx)
	})
}

// DocumentOption configures a Document source.
type DocumentOption func(*Document)

// WithFieldsPath extracts the field list from a JSON envelope using a gjson
// path (for example "data.form.fields") before decoding.
func WithFieldsPath(path string) DocumentOption {
	return func(d *Document) {
		d.fieldsPath = strings.TrimSpace(path)
	}
}

// Document loads a JSON or YAML schema document through a loader.
type Document struct {
	loader     *loader.Loader
	location   schema.Location
	fieldsPath string
}

var _ Source = (*Document)(nil)

// NewDocument builds a source reading loc with l.
func NewDocument(l *loader.Loader, loc schema.Location, opts ...DocumentOption) (*Document, error) {
	if l == nil {
		return nil, errors.New("source: loader is required")
	}
	if loc == nil {
		return nil, errors.New("source: location is required")
	}
	d := &Document{loader: l, location: loc}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Fetch loads, extracts and decodes the document.
func (d *Document) Fetch(ctx context.Context) ([]schema.Field, error) {
	doc, err := d.loader.Load(ctx, d.location)
	if err != nil {
		return nil, fmt.Errorf("source: load %s: %w", d.location.Path(), err)
	}
	if d.fieldsPath == "" {
		return doc.Fields()
	}

	raw := doc.Raw()
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("source: %s is not valid JSON", d.location.Path())
	}
	result := gjson.GetBytes(raw, d.fieldsPath)
	if !result.Exists() {
		return nil, fmt.Errorf("source: path %q not found in %s", d.fieldsPath, d.location.Path())
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("source: path %q in %s is not a list", d.fieldsPath, d.location.Path())
	}
	return schema.Decode([]byte(result.Raw), schema.FormatJSON)
}
