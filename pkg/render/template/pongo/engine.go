// Package pongo implements template.TemplateRenderer on top of pongo2.
//
// Data handed to templates goes through a JSON round trip, so templates see
// the json tag names of view model structs ("input_type", "show_preview")
// rather than Go field names.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-dynform/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the ".tmpl" extension appended to template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobals seeds values available to every template.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine is a pongo2 template set with a compiled template cache.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	extension string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Either a base directory or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		set:       pongo2.NewSet("dynform", loaders...),
		templates: make(map[string]*pongo2.Template),
		extension: cfg.extension,
	}
	registerDefaultFilters()

	if len(cfg.globals) > 0 {
		globals, err := toContext(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("pongo: convert globals: %w", err)
		}
		engine.set.Globals.Update(globals)
	}
	return engine, nil
}

// RenderTemplate executes the named template. The extension is appended
// when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

// RenderString compiles and executes an inline template.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}
	return e.execute(tmpl, "inline", data, out)
}

// RegisterFilter exposes fn as a pongo2 filter. pongo2 filters are process
// wide, so registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

func (e *Engine) execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("template data must encode to a JSON object: %w", err)
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
