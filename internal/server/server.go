// Package server exposes a form session over HTTP: the composer page, field
// updates, submission and the preview/confirm flow.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/composer"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithBasePath mounts every route under path (for example "/forms").
func WithBasePath(path string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimSuffix(path, "/")
	}
}

// WithRenderer selects the renderer used for pages. Defaults to "vanilla".
func WithRenderer(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.renderer = name
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server serves a single form session.
type Server struct {
	orch     *orchestrator.Orchestrator
	title    string
	basePath string
	renderer string
	logger   logging.Logger
}

// New wraps o.
func New(o *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:     o,
		renderer: "vanilla",
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	routes := func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Post("/fields/{id}", s.handleField)
		r.Post("/submit", s.handleSubmit)
		r.Post("/preview/edit", s.handleEdit)
		r.Post("/preview/confirm", s.handleConfirm)
		r.Post("/discard", s.handleDiscard)
		r.Post("/schema/reload", s.handleReload)
		r.Get("/api/state", s.handleState)
		r.Handle("/assets/*", http.StripPrefix(s.basePath+"/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	}
	if s.basePath == "" {
		routes(r)
	} else {
		r.Route(s.basePath, routes)
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) options(partial bool) render.RenderOptions {
	return render.RenderOptions{Title: s.title, BasePath: s.basePath, Partial: partial}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, name string, partial bool) {
	renderer, err := s.orch.Renderer(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out, err := renderer.Render(r.Context(), s.orch.Composer().View(), s.options(partial))
	if err != nil {
		s.logger.Error("render page failed", "renderer", name, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, focus string) {
	target := s.basePath + "/"
	if focus != "" {
		target += "#field-" + focus
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := s.renderer
	if q := r.URL.Query().Get("renderer"); q != "" {
		name = q
	}
	s.write(w, r, name, false)
}

// handleField applies one field change and answers with the refreshed
// widget list, since a change can reveal or hide dependents.
func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	err := s.orch.Composer().SetInput(r.Context(), id, r.PostForm.Get("value"))
	switch {
	case errors.Is(err, composer.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, composer.ErrHiddenField):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.write(w, r, s.renderer, true)
}

// handleSubmit applies the posted values in schema order, so a controlling
// field is stored before its dependents are checked for visibility, then
// validates. Input a field refuses stops the submission at that field.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	c := s.orch.Composer()
	ctx := r.Context()

	rejected := ""
	for _, field := range s.orch.Store().Snapshot().Schema {
		if !s.orch.Store().Visible(field) {
			continue
		}
		raw, present := r.PostForm[field.ID]
		if !present && field.Type != schema.FieldTypeCheckbox {
			continue
		}
		value := ""
		if len(raw) > 0 {
			value = raw[0]
		}
		if err := c.SetInput(ctx, field.ID, value); err != nil && rejected == "" {
			rejected = field.ID
		}
	}
	if rejected != "" {
		s.redirect(w, r, rejected)
		return
	}

	ok, focus := c.Submit()
	if !ok {
		s.redirect(w, r, focus)
		return
	}
	s.redirect(w, r, "")
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.orch.Composer().Edit()
	s.redirect(w, r, "")
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	_, err := s.orch.Composer().Confirm(r.Context())
	switch {
	case errors.Is(err, composer.ErrPreviewClosed):
		s.logger.Warn("confirm without an open preview ignored")
	case err != nil:
		s.logger.Error("submission failed", "error", err)
	}
	s.redirect(w, r, "")
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.orch.Composer().Discard(r.Context())
	s.redirect(w, r, "")
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.orch.Composer().Reload(r.Context())
	s.redirect(w, r, "")
}

type stateResponse struct {
	Schema      []schema.Field    `json:"schema"`
	Data        *schema.FormData  `json:"data"`
	Errors      schema.FormErrors `json:"errors"`
	Loading     bool              `json:"loading"`
	ShowPreview bool              `json:"showPreview"`
	FetchFailed bool              `json:"fetchFailed"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := s.orch.Store().Snapshot()
	resp := stateResponse{
		Schema:      snap.Schema,
		Data:        snap.Data,
		Errors:      snap.Errors,
		Loading:     snap.Loading,
		ShowPreview: snap.ShowPreview,
		FetchFailed: snap.FetchFailed,
	}
	if resp.Schema == nil {
		resp.Schema = []schema.Field{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encode state failed", "error", err)
	}
}
