// Package app wires a loaded configuration into a running form session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/internal/loader"
	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/persist"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/submit"
)

// App bundles the configured session and the resources it owns.
type App struct {
	Config       config.Config
	Logger       logging.Logger
	Orchestrator *orchestrator.Orchestrator

	closers []io.Closer
}

// Build assembles the schema source, persistence, submitter and renderers
// described by cfg. tuiOpts customise the terminal renderer registered under
// "tui". The schema is not fetched; call Orchestrator.Mount.
func Build(ctx context.Context, cfg config.Config, logger logging.Logger, tuiOpts ...tui.Option) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &App{Config: cfg, Logger: logger}

	src, err := BuildSource(cfg.Schema)
	if err != nil {
		return nil, err
	}
	submitter, err := BuildSubmitter(cfg.Submit, logger)
	if err != nil {
		return nil, err
	}
	persister, closer, err := BuildPersister(ctx, cfg.Persist)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	html, err := vanilla.New(vanilla.WithSubtitle(cfg.Subtitle))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: html renderer: %w", err)
	}
	registry, err := render.NewRegistry(html, tui.New(tuiOpts...))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: renderer registry: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithSubmitter(submitter),
		orchestrator.WithPersister(persister, cfg.Persist.Key),
		orchestrator.WithLogger(logger),
	}
	if src != nil {
		opts = append(opts, orchestrator.WithSource(src))
	}
	if cfg.Schema.Preset != "" {
		preset, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS(filepath.Dir(cfg.Schema.Preset)), filepath.Base(cfg.Schema.Preset))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		opts = append(opts, orchestrator.WithSchemaTransformer(preset))
	}

	o, err := orchestrator.New(ctx, opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Orchestrator = o
	logger.Debug("session assembled",
		"schema", cfg.Schema.Source,
		"kind", cfg.Schema.Kind,
		"persist", cfg.Persist.Backend,
		"submit", cfg.Submit.Endpoint,
	)
	return a, nil
}

// Close releases persistence connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// BuildSource returns the configured schema source, or nil when no source is
// set and the built-in schema should be used.
func BuildSource(cfg config.SchemaConfig) (source.Source, error) {
	if cfg.Source == "" {
		return nil, nil
	}
	loc, err := location(cfg.Source)
	if err != nil {
		return nil, err
	}
	l := loader.New(loader.Options{
		AllowHTTP:      loc.Kind() == schema.LocationKindURL,
		RequestTimeout: cfg.Timeout,
		Headers:        cfg.Headers,
	})

	var src source.Source
	switch cfg.Kind {
	case config.SchemaKindOpenAPI:
		src, err = openapi.NewSource(l, loc, openapi.ParserOptions{OperationID: cfg.OperationID, Validate: true})
	case config.SchemaKindJSONSchema:
		src, err = jsonschema.NewSource(l, loc)
	default:
		src, err = source.NewDocument(l, loc, source.WithFieldsPath(cfg.FieldsPath))
	}
	if err != nil {
		return nil, fmt.Errorf("app: schema source: %w", err)
	}
	if cfg.Delay > 0 {
		src = source.Delayed(src, cfg.Delay)
	}
	return src, nil
}

func location(raw string) (schema.Location, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return schema.AtURL(raw)
	}
	return schema.AtFile(raw), nil
}

// BuildPersister opens the configured backend. The returned closer is nil for
// backends without connections.
func BuildPersister(ctx context.Context, cfg config.PersistConfig) (persist.Persister, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendNone, "":
		return nil, nil, nil
	case config.BackendMemory:
		return persist.NewMemory(), nil, nil
	case config.BackendFile:
		p, err := persist.NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("app: %w", err)
		}
		return p, nil, nil
	case config.BackendSQLite:
		p, err := persist.NewSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("app: %w", err)
		}
		return p, p, nil
	case config.BackendRedis:
		opts := []persist.RedisOption{persist.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, persist.WithKeyPrefix(cfg.Redis.Prefix))
		}
		p, err := persist.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("app: %w", err)
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown persist backend %q", cfg.Backend)
	}
}

// BuildSubmitter returns an HTTP submitter when an endpoint is configured and
// a logging no-op otherwise.
func BuildSubmitter(cfg config.SubmitConfig, logger logging.Logger) (submit.Submitter, error) {
	if cfg.Endpoint == "" {
		return submit.NewNoop(logger), nil
	}
	h, err := submit.NewHTTP(cfg.Endpoint,
		submit.WithClient(&http.Client{Timeout: cfg.Timeout}),
		submit.WithHeaders(cfg.Headers),
		submit.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return h, nil
}
