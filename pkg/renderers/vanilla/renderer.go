// Package vanilla renders composer pages as server-side HTML with a small
// progressive-enhancement script.
package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/render/template/pongo"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla/components"
)

const (
	defaultTitle    = "Dynamic Form"
	defaultSubtitle = "Rendered from a remote JSON schema with custom validation."
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	subtitle         string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a custom template renderer.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the default component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithSubtitle sets the line shown under the title.
func WithSubtitle(subtitle string) Option {
	return func(cfg *config) {
		cfg.subtitle = subtitle
	}
}

// Renderer implements render.Renderer for HTML output.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	subtitle   string
	stylesheet string
	script     string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{subtitle: defaultSubtitle}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS), pongo.WithExtension(".tmpl"))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		components: cfg.components,
		subtitle:   cfg.subtitle,
		stylesheet: readAsset(StylesheetName),
		script:     readAsset(RuntimeScriptName),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type renderedWidget struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// Render produces the full page, or only the widget list when
// options.Partial is set.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	page = sanitizePage(page)

	widgets := make([]renderedWidget, 0, len(page.Widgets))
	for _, w := range page.Widgets {
		markup, err := r.renderWidget(w)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, renderedWidget{ID: w.ID, HTML: markup})
	}

	title := options.Title
	if title == "" {
		title = defaultTitle
	}
	data := map[string]any{
		"title":      title,
		"subtitle":   r.subtitle,
		"base":       options.BasePath,
		"page":       page,
		"widgets":    widgets,
		"stylesheet": r.stylesheet,
		"script":     r.script,
		"submitted":  render.MessageSubmitted,
	}

	name := "templates/page.tmpl"
	if options.Partial {
		name = "templates/widgets.tmpl"
	}
	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderWidget renders a single widget fragment.
func (r *Renderer) RenderWidget(_ context.Context, w render.Widget) ([]byte, error) {
	markup, err := r.renderWidget(sanitizeWidget(w))
	if err != nil {
		return nil, err
	}
	return []byte(markup), nil
}

func (r *Renderer) renderWidget(w render.Widget) (string, error) {
	descriptor, ok := r.components.Descriptor(w.Type)
	if !ok {
		return "", fmt.Errorf("vanilla renderer: no component registered for field %q of type %q", w.ID, w.Type)
	}
	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, w, r.templates); err != nil {
		return "", fmt.Errorf("vanilla renderer: field %q: %w", w.ID, err)
	}
	return buf.String(), nil
}
