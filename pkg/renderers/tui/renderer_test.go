package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/composer"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/store"
	"github.com/goliatone/go-dynform/pkg/submit"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

var errScriptExhausted = errors.New("stub: script exhausted")

type stubDriver struct {
	inputs   []string
	selects  []int
	confirms []bool

	asked []string
	infos []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.inputs) == 0 {
		return "", errScriptExhausted
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.confirms) == 0 {
		return false, errScriptExhausted
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.selects) == 0 {
		return 0, errScriptExhausted
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func roleSchema() []schema.Field {
	return append(testsupport.RoleSchema(), schema.Field{
		ID: "age", Type: schema.FieldTypeNumber, Label: "Age",
		Validation: &schema.Rules{Min: schema.Float(0), Max: schema.Float(50)},
	})
}

func newComposer(t *testing.T, fields []schema.Field, submitted **schema.FormData) *composer.Composer {
	t.Helper()
	ctx := context.Background()
	st := store.New(ctx, store.WithSource(source.Static(fields)))
	sub := submit.Func(func(_ context.Context, data *schema.FormData) (submit.Receipt, error) {
		*submitted = data.Clone()
		return submit.Receipt{ID: "r-1"}, nil
	})
	c := composer.New(st, composer.WithSubmitter(sub))
	c.Mount(ctx)
	return c
}

func TestFill_AsksRevealedFieldsAndRetriesInvalidOnes(t *testing.T) {
	var submitted *schema.FormData
	c := newComposer(t, roleSchema(), &submitted)
	driver := &stubDriver{
		selects:  []int{1},
		inputs:   []string{"", "abc", "7", "tax"},
		confirms: []bool{true},
	}

	receipt, err := New(WithPromptDriver(driver)).Fill(context.Background(), c)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if receipt.ID != "r-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	want := []string{"Role *", "Detail *", "Age", "Age", "Detail *", "Confirm & Submit?"}
	if diff := cmp.Diff(want, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	joined := strings.Join(driver.infos, "\n")
	for _, msg := range []string{"! Please enter a number", "! Detail: This field is required", "Review Submission", "  Detail: tax", render.MessageSubmitted} {
		if !strings.Contains(joined, msg) {
			t.Fatalf("expected %q in info output:\n%s", msg, joined)
		}
	}

	if submitted == nil {
		t.Fatalf("expected submission")
	}
	if diff := testsupport.DiffFormData(testsupport.FormData(t, "role", "B", "detail", "tax", "age", 7.0), submitted); diff != "" {
		t.Fatalf("submitted data mismatch (-want +got):\n%s", diff)
	}
	if c.Store().Snapshot().Data.Len() != 0 {
		t.Fatalf("expected the form to reset after confirm")
	}
}

func TestFill_DeclineAndDiscard(t *testing.T) {
	var submitted *schema.FormData
	c := newComposer(t, roleSchema(), &submitted)
	driver := &stubDriver{
		selects:  []int{0},
		inputs:   []string{""},
		confirms: []bool{false, false},
	}

	_, err := New(WithPromptDriver(driver)).Fill(context.Background(), c)
	if !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}
	if submitted != nil {
		t.Fatalf("discarded form must not be submitted")
	}
	if c.Store().Snapshot().Data.Len() != 0 {
		t.Fatalf("expected discard to clear values")
	}
}

func TestFill_LoadFailure(t *testing.T) {
	ctx := context.Background()
	failing := source.Func(func(context.Context) ([]schema.Field, error) {
		return nil, errors.New("offline")
	})
	c := composer.New(store.New(ctx, store.WithSource(failing), store.WithFallback(nil)))
	driver := &stubDriver{}

	_, err := New(WithPromptDriver(driver)).Fill(ctx, c)
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if diff := cmp.Diff([]string{"! " + render.MessageLoadFailed}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_OptionalSelectOffersNone(t *testing.T) {
	var submitted *schema.FormData
	fields := []schema.Field{{ID: "size", Type: schema.FieldTypeSelect, Label: "Size", Options: []string{"S", "M"}}}
	c := newComposer(t, fields, &submitted)
	driver := &stubDriver{selects: []int{0}, confirms: []bool{true}}

	if _, err := New(WithPromptDriver(driver)).Fill(context.Background(), c); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := submitted.Value("size"); !got.Equal(schema.String("")) {
		t.Fatalf("expected the none option to store an empty value, got %v", got)
	}
}

func TestRender_PrettyText(t *testing.T) {
	page := render.Page{
		State: render.PageForm,
		Widgets: []render.Widget{
			{ID: "name", Type: schema.FieldTypeText, Label: "Name", Required: true, Value: "Ada"},
			{ID: "terms", Type: schema.FieldTypeCheckbox, Label: "Terms", Invalid: true, Error: "This field is required"},
		},
		ShowPreview: true,
		Preview:     []render.PreviewRow{{ID: "name", Label: "Name", Value: "Ada"}},
	}
	out, err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), page, render.RenderOptions{Title: "Signup"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Signup\n\nName *: Ada\nTerms: [ ]\n  ! This field is required\n\nReview Submission\n  Name: Ada\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_JSON(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatJSON))
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
	out, err := r.Render(context.Background(), render.Page{State: render.PageLoading, Message: render.MessageLoading}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded render.Page
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.State != render.PageLoading || decoded.Message != render.MessageLoading {
		t.Fatalf("unexpected page %+v", decoded)
	}
}
