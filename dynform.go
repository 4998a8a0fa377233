// Package dynform renders forms from a JSON schema, validates input against
// per-field rules and shows a confirmation preview before submission.
//
// Most callers only need NewOrchestrator plus one of the schema sources:
//
//	src, err := dynform.NewDocumentSource("https://example.com/form.json")
//	if err != nil { ... }
//	o, err := dynform.NewOrchestrator(ctx, orchestrator.WithSource(src))
//	o.Mount(ctx)
//	html, err := o.Render(ctx, orchestrator.Request{})
package dynform

import (
	"context"

	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
)

// Field aliases schema.Field.
type Field = schema.Field

// FormData aliases schema.FormData.
type FormData = schema.FormData

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(ctx context.Context, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(ctx, options...)
}

// RenderHTML mounts fields as a fresh session and renders the empty form
// with the vanilla renderer. Invalid schemas render the fallback form, as a
// failed fetch would.
func RenderHTML(ctx context.Context, fields []Field, options RenderOptions) ([]byte, error) {
	o, err := orchestrator.New(ctx, orchestrator.WithSource(source.Static(fields)))
	if err != nil {
		return nil, err
	}
	o.Mount(ctx)
	return o.Render(ctx, orchestrator.Request{Renderer: "vanilla", RenderOptions: options})
}
