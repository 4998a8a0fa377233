// Package composer drives a form session on top of a store: mounting the
// schema, building the page view, applying input, submitting and the
// preview/confirm flow. Every front end (HTML, terminal) goes through it.
package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/store"
	"github.com/goliatone/go-dynform/pkg/submit"
)

// ErrUnknownField is returned when input targets an id missing from the schema.
var ErrUnknownField = errors.New("composer: unknown field")

// ErrHiddenField is returned when input targets a field whose dependency is unmet.
var ErrHiddenField = errors.New("composer: field is hidden")

// ErrPreviewClosed is returned by Confirm when no validated preview is open.
var ErrPreviewClosed = errors.New("composer: no preview to confirm")

// Logger is the logging subset the composer uses.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
}

// Option configures a Composer.
type Option func(*Composer)

// WithSubmitter sets the collaborator that receives confirmed submissions.
func WithSubmitter(s submit.Submitter) Option {
	return func(c *Composer) {
		if s != nil {
			c.submitter = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer is safe for concurrent use.
type Composer struct {
	store     *store.Store
	submitter submit.Submitter
	logger    Logger

	mu      sync.Mutex
	mounted bool
	focus   string
	receipt string
}

// New wraps st.
func New(st *store.Store, opts ...Option) *Composer {
	c := &Composer{
		store:  st,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.submitter == nil {
		c.submitter = submit.NewNoop(c.logger)
	}
	return c
}

// Store returns the underlying store.
func (c *Composer) Store() *store.Store {
	return c.store
}

// Mount fetches the schema and blocks until it settles.
func (c *Composer) Mount(ctx context.Context) {
	c.store.FetchSchema(ctx)
	c.mu.Lock()
	c.mounted = true
	c.mu.Unlock()
}

// MountAsync starts Mount in the background. The returned channel closes
// once the schema has settled; until then View reports the loading state.
func (c *Composer) MountAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Mount(ctx)
	}()
	return done
}

// View builds the page for the current state. A pending scroll target or
// submission receipt is reported once and then cleared.
func (c *Composer) View() render.Page {
	snap := c.store.Snapshot()

	c.mu.Lock()
	mounted := c.mounted
	focus, receipt := c.focus, c.receipt
	c.focus, c.receipt = "", ""
	c.mu.Unlock()

	page := render.Page{Receipt: receipt}
	switch {
	case snap.Loading || !mounted:
		page.State = render.PageLoading
		page.Message = render.MessageLoading
		return page
	case len(snap.Schema) == 0:
		page.State = render.PageFailed
		page.Message = render.MessageLoadFailed
		return page
	}

	eval := c.store.Evaluator()
	page.State = render.PageForm
	page.Focus = focus
	for _, field := range snap.Schema {
		if !eval.Visible(field, snap.Data) {
			continue
		}
		page.Widgets = append(page.Widgets, render.BuildWidget(field, snap.Data.Value(field.ID), snap.Errors[field.ID]))
	}
	if snap.ShowPreview {
		page.ShowPreview = true
		page.Preview = render.PreviewRows(snap.Data)
	}
	return page
}

// Widget returns the current widget for a visible field.
func (c *Composer) Widget(id string) (render.Widget, bool) {
	field, ok := c.store.Field(id)
	if !ok || !c.store.Visible(field) {
		return render.Widget{}, false
	}
	snap := c.store.Snapshot()
	return render.BuildWidget(field, snap.Data.Value(id), snap.Errors[id]), true
}

// SetInput coerces raw input for field id and stores it, closing an open
// preview. Input the field type refuses is recorded as that field's error and
// returned, leaving the stored value untouched.
func (c *Composer) SetInput(ctx context.Context, id, raw string) error {
	field, ok := c.store.Field(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	if !c.store.Visible(field) {
		return fmt.Errorf("%w: %q", ErrHiddenField, id)
	}
	value, err := render.ParseInput(field, raw)
	if err != nil {
		c.store.RejectInput(id, render.InputMessage(err))
		return err
	}
	c.store.SetFieldValue(ctx, id, value)
	return nil
}

// SetValue stores an already typed value.
func (c *Composer) SetValue(ctx context.Context, id string, value schema.Value) error {
	if _, ok := c.store.Field(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	c.store.SetFieldValue(ctx, id, value)
	return nil
}

// Submit validates the form. On success the preview opens; otherwise the
// first invalid visible field in schema order is returned as the scroll
// target and reported once by the next View.
func (c *Composer) Submit() (ok bool, focus string) {
	if c.store.ValidateForm() {
		c.store.TogglePreview(true)
		return true, ""
	}
	snap := c.store.Snapshot()
	for _, field := range snap.Schema {
		if _, invalid := snap.Errors[field.ID]; invalid {
			focus = field.ID
			break
		}
	}
	c.mu.Lock()
	c.focus = focus
	c.mu.Unlock()
	return false, focus
}

// Edit closes the preview without touching values or errors.
func (c *Composer) Edit() {
	c.store.TogglePreview(false)
}

// Confirm hands the FormData shown in the preview to the submitter and
// resets the form. Only an open preview can be confirmed; it opens after a
// successful Submit and closes on Edit or any value change. The form is reset
// even when the submitter fails; the error is logged and returned.
func (c *Composer) Confirm(ctx context.Context) (submit.Receipt, error) {
	data, ok := c.store.TakePreview()
	if !ok {
		return submit.Receipt{}, ErrPreviewClosed
	}
	receipt, err := c.submitter.Submit(ctx, data)
	if err != nil {
		c.logger.Warn("submission failed", "error", err)
	}
	c.store.ResetForm(ctx)

	if err == nil {
		c.mu.Lock()
		c.receipt = receipt.ID
		c.mu.Unlock()
	}
	return receipt, err
}

// Discard drops the entered values.
func (c *Composer) Discard(ctx context.Context) {
	c.store.Discard(ctx)
}

// Reload re-fetches the schema, keeping entered values.
func (c *Composer) Reload(ctx context.Context) {
	c.Mount(ctx)
}
