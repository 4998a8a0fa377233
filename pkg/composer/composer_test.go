package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/store"
	"github.com/goliatone/go-dynform/pkg/submit"
)

type recordingSubmitter struct {
	calls []*schema.FormData
	err   error
}

func (r *recordingSubmitter) Submit(_ context.Context, data *schema.FormData) (submit.Receipt, error) {
	r.calls = append(r.calls, data)
	return submit.Receipt{ID: "receipt-1"}, r.err
}

func mounted(t *testing.T, fields []schema.Field, opts ...Option) *Composer {
	t.Helper()
	ctx := context.Background()
	c := New(store.New(ctx, store.WithSource(source.Static(fields))), opts...)
	c.Mount(ctx)
	return c
}

func widgetIDs(page render.Page) []string {
	var ids []string
	for _, w := range page.Widgets {
		ids = append(ids, w.ID)
	}
	return ids
}

func TestComposer_LoadingBeforeMount(t *testing.T) {
	c := New(store.New(context.Background()))
	page := c.View()
	if page.State != render.PageLoading || page.Message != render.MessageLoading {
		t.Fatalf("expected loading page, got %+v", page)
	}
}

func TestComposer_EmptySchemaShowsFailure(t *testing.T) {
	ctx := context.Background()
	failing := source.Func(func(context.Context) ([]schema.Field, error) { return nil, errors.New("down") })
	c := New(store.New(ctx, store.WithSource(failing), store.WithFallback(nil)))
	c.Mount(ctx)
	page := c.View()
	if page.State != render.PageFailed || page.Message != "Failed to load form schema." {
		t.Fatalf("expected failure page, got %+v", page)
	}
}

func TestComposer_FallbackRendersInSchemaOrder(t *testing.T) {
	ctx := context.Background()
	failing := source.Func(func(context.Context) ([]schema.Field, error) { return nil, errors.New("down") })
	c := New(store.New(ctx, store.WithSource(failing)))
	c.Mount(ctx)

	want := []string{"fullName", "email", "role", "experience", "availableStart", "terms"}
	if diff := cmp.Diff(want, widgetIDs(c.View())); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}

	if err := c.SetInput(ctx, "role", "Lawyer"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	want = []string{"fullName", "email", "role", "specialization", "experience", "availableStart", "terms"}
	if diff := cmp.Diff(want, widgetIDs(c.View())); diff != "" {
		t.Fatalf("widgets mismatch after role change (-want +got):\n%s", diff)
	}
}

func TestComposer_DependentFieldScenario(t *testing.T) {
	ctx := context.Background()
	c := mounted(t, []schema.Field{
		{ID: "role", Type: schema.FieldTypeSelect, Label: "Role", Required: true, Options: []string{"A", "B"}},
		{ID: "detail", Type: schema.FieldTypeText, Label: "Detail", Required: true, DependsOn: &schema.Dependency{Field: "role", Value: schema.String("B")}},
	})

	if err := c.SetInput(ctx, "role", "A"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if ids := widgetIDs(c.View()); len(ids) != 1 {
		t.Fatalf("detail should not render, got %v", ids)
	}
	if err := c.SetInput(ctx, "detail", "x"); !errors.Is(err, ErrHiddenField) {
		t.Fatalf("expected hidden field error, got %v", err)
	}
	if ok, _ := c.Submit(); !ok {
		t.Fatalf("expected submit to succeed with detail hidden")
	}
	c.Edit()

	_ = c.SetInput(ctx, "role", "B")
	ok, focus := c.Submit()
	if ok || focus != "detail" {
		t.Fatalf("expected detail to block submit, got ok=%v focus=%q", ok, focus)
	}
	page := c.View()
	if page.Focus != "detail" || page.Widgets[1].Error != "This field is required" {
		t.Fatalf("unexpected page after failed submit %+v", page)
	}
	if c.View().Focus != "" {
		t.Fatalf("focus should be reported once")
	}
}

func TestComposer_FocusFollowsSchemaOrder(t *testing.T) {
	c := mounted(t, schema.Fallback())
	_, focus := c.Submit()
	if focus != "fullName" {
		t.Fatalf("expected first invalid field in schema order, got %q", focus)
	}
}

func TestComposer_RefusesNonNumericInput(t *testing.T) {
	ctx := context.Background()
	c := mounted(t, schema.Fallback())
	_ = c.SetInput(ctx, "experience", "7")
	if err := c.SetInput(ctx, "experience", "seven"); !errors.Is(err, render.ErrNotANumber) {
		t.Fatalf("expected ErrNotANumber, got %v", err)
	}
	w, _ := c.Widget("experience")
	if w.Value != "7" || w.Error != "Please enter a number" {
		t.Fatalf("unexpected widget after refused input %+v", w)
	}
	if err := c.SetInput(ctx, "nope", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestComposer_PreviewAndConfirm(t *testing.T) {
	ctx := context.Background()
	sub := &recordingSubmitter{}
	c := mounted(t, schema.Fallback(), WithSubmitter(sub))

	inputs := [][2]string{
		{"fullName", "Ada Lovelace"},
		{"email", "ada@example.com"},
		{"role", "Developer"},
		{"availableStart", "2024-06-01"},
		{"terms", "on"},
	}
	for _, in := range inputs {
		if err := c.SetInput(ctx, in[0], in[1]); err != nil {
			t.Fatalf("set %s: %v", in[0], err)
		}
	}
	if ok, focus := c.Submit(); !ok {
		t.Fatalf("expected valid form, focus %q errors %v", focus, c.Store().Snapshot().Errors)
	}

	page := c.View()
	if !page.ShowPreview {
		t.Fatalf("expected preview to open")
	}
	want := []render.PreviewRow{
		{ID: "fullName", Label: "Full Name", Value: "Ada Lovelace"},
		{ID: "email", Label: "Email", Value: "ada@example.com"},
		{ID: "role", Label: "Role", Value: "Developer"},
		{ID: "availableStart", Label: "Available Start", Value: "2024-06-01"},
		{ID: "terms", Label: "Terms", Value: "true"},
	}
	if diff := cmp.Diff(want, page.Preview); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}

	c.Edit()
	if c.View().ShowPreview {
		t.Fatalf("edit must close the preview")
	}
	if c.Store().Snapshot().Data.Len() != 5 {
		t.Fatalf("edit must keep the values")
	}

	c.Submit()
	receipt, err := c.Confirm(ctx)
	if err != nil || receipt.ID != "receipt-1" {
		t.Fatalf("confirm: %v %+v", err, receipt)
	}
	if len(sub.calls) != 1 || sub.calls[0].Len() != 5 {
		t.Fatalf("expected one submission with all values, got %d", len(sub.calls))
	}
	snap := c.Store().Snapshot()
	if snap.Data.Len() != 0 || snap.ShowPreview || len(snap.Errors) != 0 {
		t.Fatalf("expected reset after confirm: %+v", snap)
	}
	if c.View().Receipt != "receipt-1" {
		t.Fatalf("expected receipt on the next view")
	}
}

func fillValid(t *testing.T, c *Composer) {
	t.Helper()
	ctx := context.Background()
	inputs := [][2]string{
		{"fullName", "Ada Lovelace"},
		{"email", "ada@example.com"},
		{"role", "Developer"},
		{"availableStart", "2024-06-01"},
		{"terms", "on"},
	}
	for _, in := range inputs {
		if err := c.SetInput(ctx, in[0], in[1]); err != nil {
			t.Fatalf("set %s: %v", in[0], err)
		}
	}
	if ok, focus := c.Submit(); !ok {
		t.Fatalf("expected valid form, focus %q errors %v", focus, c.Store().Snapshot().Errors)
	}
}

func TestComposer_ConfirmRequiresOpenPreview(t *testing.T) {
	ctx := context.Background()
	sub := &recordingSubmitter{}
	c := mounted(t, schema.Fallback(), WithSubmitter(sub))
	_ = c.SetInput(ctx, "email", "bad")

	if _, err := c.Confirm(ctx); !errors.Is(err, ErrPreviewClosed) {
		t.Fatalf("expected ErrPreviewClosed, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("unvalidated data must not reach the submitter")
	}
	if !c.Store().Snapshot().Data.Value("email").Equal(schema.String("bad")) {
		t.Fatalf("a refused confirm must keep the values")
	}

	fillValid(t, c)
	if _, err := c.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := c.Confirm(ctx); !errors.Is(err, ErrPreviewClosed) {
		t.Fatalf("a repeated confirm must be refused, got %v", err)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(sub.calls))
	}
}

func TestComposer_EditWhilePreviewOpenClosesIt(t *testing.T) {
	ctx := context.Background()
	sub := &recordingSubmitter{}
	c := mounted(t, schema.Fallback(), WithSubmitter(sub))
	fillValid(t, c)

	if err := c.SetInput(ctx, "email", "bad"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if c.View().ShowPreview {
		t.Fatalf("changing a value must close the preview")
	}
	if _, err := c.Confirm(ctx); !errors.Is(err, ErrPreviewClosed) {
		t.Fatalf("expected ErrPreviewClosed, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("edited data must be validated again before submission")
	}

	if ok, focus := c.Submit(); ok || focus != "email" {
		t.Fatalf("expected email to fail validation, got ok=%v focus=%q", ok, focus)
	}
}

func TestComposer_ConfirmResetsEvenWhenSubmitterFails(t *testing.T) {
	ctx := context.Background()
	sub := &recordingSubmitter{err: errors.New("endpoint down")}
	c := mounted(t, schema.Fallback(), WithSubmitter(sub))
	fillValid(t, c)

	if _, err := c.Confirm(ctx); err == nil {
		t.Fatalf("expected submitter error to be returned")
	}
	if c.Store().Snapshot().Data.Len() != 0 {
		t.Fatalf("form must reset regardless of the submitter outcome")
	}
	if c.View().Receipt != "" {
		t.Fatalf("failed submissions carry no receipt")
	}
}

func TestComposer_MountAsync(t *testing.T) {
	ctx := context.Background()
	c := New(store.New(ctx, store.WithSource(source.Static(schema.Fallback()))))
	<-c.MountAsync(ctx)
	if c.View().State != render.PageForm {
		t.Fatalf("expected form after async mount")
	}
}
