package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/composer"
	"github.com/goliatone/go-dynform/pkg/persist"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/store"
	"github.com/goliatone/go-dynform/pkg/submit"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSource sets the schema source.
func WithSource(src source.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithFallback overrides the schema used when the source fails.
func WithFallback(fields []schema.Field) Option {
	return func(o *Orchestrator) {
		o.fallback = fields
		o.fallbackSet = true
	}
}

// WithPersister enables FormData persistence under key. An empty key keeps
// persist.DefaultKey.
func WithPersister(p persist.Persister, key string) Option {
	return func(o *Orchestrator) {
		o.persister = p
		o.storageKey = key
	}
}

// WithSubmitter sets the collaborator receiving confirmed submissions.
func WithSubmitter(s submit.Submitter) Option {
	return func(o *Orchestrator) {
		o.submitter = s
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer applied to every fetched
// schema before it reaches the store.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger sets the logger shared by the store and composer.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator owns one form session. Missing dependencies are initialised
// with the built-in implementations (fallback schema, no persistence, noop
// submitter, vanilla and tui renderers).
type Orchestrator struct {
	source          source.Source
	fallback        []schema.Field
	fallbackSet     bool
	persister       persist.Persister
	storageKey      string
	submitter       submit.Submitter
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	logger          logging.Logger

	store    *store.Store
	composer *composer.Composer
}

// New constructs an Orchestrator. Persisted values are restored here; the
// schema is not fetched until Mount.
func New(ctx context.Context, options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          logging.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.registry == nil {
		html, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		registry, err := render.NewRegistry(html, tui.New())
		if err != nil {
			return nil, fmt.Errorf("orchestrator: renderer registry: %w", err)
		}
		o.registry = registry
	}

	src := o.source
	if src != nil && o.transformer != nil {
		src = transformed(src, o.transformer)
	}
	storeOpts := []store.Option{
		store.WithSource(src),
		store.WithLogger(o.logger),
		store.WithPersister(o.persister),
		store.WithStorageKey(o.storageKey),
	}
	if o.fallbackSet {
		storeOpts = append(storeOpts, store.WithFallback(o.fallback))
	}
	o.store = store.New(ctx, storeOpts...)
	o.composer = composer.New(o.store, composer.WithSubmitter(o.submitter), composer.WithLogger(o.logger))
	return o, nil
}

// Composer returns the session composer.
func (o *Orchestrator) Composer() *composer.Composer {
	return o.composer
}

// Store returns the session store.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Mount fetches the schema and blocks until it settles.
func (o *Orchestrator) Mount(ctx context.Context) {
	o.composer.Mount(ctx)
}

// Request selects the renderer and per-request options for Render.
type Request struct {
	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	RenderOptions render.RenderOptions
}

// Render builds the current page and serialises it with the requested
// renderer.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, o.composer.View(), req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer resolves name (or the default renderer when empty).
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}
