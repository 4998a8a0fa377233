// Package store holds the session's form state: the schema, the values
// entered so far, the current validation errors and the UI flags (loading,
// preview). All mutation goes through the transition methods on Store so the
// renderers stay pure functions of a Snapshot.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/persist"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/visibility"
)

// Logger is the subset of structured logging the store uses.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Schema      []schema.Field
	Data        *schema.FormData
	Errors      schema.FormErrors
	Loading     bool
	ShowPreview bool
	FetchFailed bool
}

// Store is the form state container. It is safe for concurrent use; the
// schema fetch runs outside the lock so readers can observe the loading flag.
type Store struct {
	mu sync.RWMutex

	source     source.Source
	fallback   []schema.Field
	persister  persist.Persister
	storageKey string
	visibility visibility.Evaluator
	logger     Logger

	fields      []schema.Field
	data        *schema.FormData
	errors      schema.FormErrors
	loading     bool
	showPreview bool
	fetchFailed bool
	fetchSeq    uint64

	// persistSeq orders persistence writes; it is bumped under mu with each
	// data mutation. persistMu serialises the writes and persisted records
	// the newest sequence already written.
	persistSeq uint64
	persistMu  sync.Mutex
	persisted  uint64
}

// Option configures a Store.
type Option func(*Store)

// WithSource sets the schema source. Without one, FetchSchema always
// resolves to the fallback schema.
func WithSource(src source.Source) Option {
	return func(s *Store) {
		s.source = src
	}
}

// WithFallback replaces the built-in fallback schema. Passing an empty list
// makes a failed fetch leave the store without a usable schema.
func WithFallback(fields []schema.Field) Option {
	return func(s *Store) {
		s.fallback = schema.CloneFields(fields)
	}
}

// WithPersister enables FormData persistence.
func WithPersister(p persist.Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithStorageKey overrides persist.DefaultKey.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// WithVisibility overrides the dependency evaluator.
func WithVisibility(eval visibility.Evaluator) Option {
	return func(s *Store) {
		if eval != nil {
			s.visibility = eval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store and restores persisted form values, if any. Restore
// failures are logged and leave the store empty.
func New(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		fallback:   schema.Fallback(),
		storageKey: persist.DefaultKey,
		visibility: visibility.DependsOn,
		logger:     logging.Nop(),
		data:       schema.NewFormData(),
		errors:     schema.FormErrors{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	if s.persister == nil {
		return
	}
	data, err := s.persister.Load(ctx, s.storageKey)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		return
	case err != nil:
		s.logger.Warn("restore form data failed", "key", s.storageKey, "error", err)
		return
	case data == nil:
		return
	}
	s.data = data
	s.logger.Debug("restored form data", "key", s.storageKey, "fields", data.Len())
}

// FetchSchema loads the schema from the source. Any failure, including an
// empty or invalid document, resolves to the fallback schema; the error is
// logged and recorded in the FetchFailed flag but never returned. Calling it
// again replaces the schema. When fetches overlap, the last one started wins.
func (s *Store) FetchSchema(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.fetchSeq++
	seq := s.fetchSeq
	src := s.source
	s.mu.Unlock()

	fields, err := fetch(ctx, src)
	failed := err != nil
	if failed {
		s.logger.Warn("schema fetch failed, using fallback", "error", err)
		fields = s.fallback
	}
	fields = schema.CloneFields(fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq {
		return
	}
	s.fields = fields
	s.fetchFailed = failed
	s.loading = false
	s.logger.Info("schema loaded", "fields", len(fields), "fallback", failed)
}

func fetch(ctx context.Context, src source.Source) ([]schema.Field, error) {
	if src == nil {
		return nil, errors.New("store: no schema source configured")
	}
	fields, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := schema.Check(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// SetFieldValue stores value under id and clears that field's error. Other
// fields' errors are left alone. An open preview is closed.
func (s *Store) SetFieldValue(ctx context.Context, id string, value schema.Value) {
	s.mu.Lock()
	s.data.Set(id, value)
	delete(s.errors, id)
	s.showPreview = false
	data := s.data.Clone()
	s.persistSeq++
	seq := s.persistSeq
	s.mu.Unlock()

	s.save(ctx, seq, data)
}

// RejectInput records message as id's error without touching its value. It is
// used when raw input cannot be coerced to the field's type.
func (s *Store) RejectInput(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[id] = message
}

// ValidateForm validates every visible field and replaces the error map with
// the result. Hidden fields are skipped entirely. It reports whether the form
// is free of errors.
func (s *Store) ValidateForm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := schema.FormErrors{}
	for _, field := range s.fields {
		if !s.visibility.Visible(field, s.data) {
			continue
		}
		if msg := validation.Field(field, s.data.Value(field.ID)); msg != "" {
			next[field.ID] = msg
		}
	}
	s.errors = next
	return len(next) == 0
}

// ResetForm clears values and errors and hides the preview.
func (s *Store) ResetForm(ctx context.Context) {
	s.mu.Lock()
	s.data = schema.NewFormData()
	s.errors = schema.FormErrors{}
	s.showPreview = false
	s.persistSeq++
	seq := s.persistSeq
	s.mu.Unlock()

	s.clear(ctx, seq)
}

// Discard drops the values entered so far without a submission.
func (s *Store) Discard(ctx context.Context) {
	s.logger.Info("form discarded")
	s.ResetForm(ctx)
}

// TogglePreview shows or hides the confirmation view.
func (s *Store) TogglePreview(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showPreview = show
}

// TakePreview closes an open preview and returns a copy of the values it
// showed. ok is false when no preview was open. Checking and closing happen
// under one lock, so concurrent callers cannot both take the same preview.
func (s *Store) TakePreview() (data *schema.FormData, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.showPreview {
		return nil, false
	}
	s.showPreview = false
	return s.data.Clone(), true
}

// Visible reports whether field is currently shown, using the same
// evaluator ValidateForm uses.
func (s *Store) Visible(field schema.Field) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibility.Visible(field, s.data)
}

// Evaluator returns the visibility evaluator shared with renderers.
func (s *Store) Evaluator() visibility.Evaluator {
	return s.visibility
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FetchFailed reports whether the current schema is the fallback.
func (s *Store) FetchFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchFailed
}

// Field looks up a schema field by id.
func (s *Store) Field(id string) (schema.Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := schema.Find(s.fields, id)
	if !ok {
		return schema.Field{}, false
	}
	return field.Clone(), true
}

// Snapshot deep copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Schema:      schema.CloneFields(s.fields),
		Data:        s.data.Clone(),
		Errors:      s.errors.Clone(),
		Loading:     s.loading,
		ShowPreview: s.showPreview,
		FetchFailed: s.fetchFailed,
	}
}

// begin reports whether the write numbered seq is still the newest one. The
// caller must hold persistMu.
func (s *Store) begin(seq uint64) bool {
	if seq <= s.persisted {
		return false
	}
	s.persisted = seq
	return true
}

func (s *Store) save(ctx context.Context, seq uint64, data *schema.FormData) {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if !s.begin(seq) {
		return
	}
	if err := s.persister.Save(ctx, s.storageKey, data); err != nil {
		s.logger.Warn("persist form data failed", "key", s.storageKey, "error", err)
	}
}

func (s *Store) clear(ctx context.Context, seq uint64) {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if !s.begin(seq) {
		return
	}
	if err := s.persister.Clear(ctx, s.storageKey); err != nil {
		s.logger.Warn("clear persisted form data failed", "key", s.storageKey, "error", err)
	}
}
