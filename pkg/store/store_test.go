package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/persist"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/source"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

func newLoaded(t *testing.T, fields []schema.Field, opts ...Option) *Store {
	t.Helper()
	ctx := context.Background()
	s := New(ctx, append([]Option{WithSource(source.Static(fields))}, opts...)...)
	s.FetchSchema(ctx)
	if s.FetchFailed() {
		t.Fatalf("expected schema to load")
	}
	return s
}

func TestStore_HiddenDependentIsNotValidated(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, testsupport.RoleSchema())

	s.SetFieldValue(ctx, "role", schema.String("A"))
	detail, _ := s.Field("detail")
	if s.Visible(detail) {
		t.Fatalf("detail must be hidden while role is A")
	}
	if !s.ValidateForm() {
		t.Fatalf("expected form to be valid, errors: %v", s.Snapshot().Errors)
	}

	s.SetFieldValue(ctx, "role", schema.String("B"))
	if s.ValidateForm() {
		t.Fatalf("expected detail to be required once visible")
	}
	errs := s.Snapshot().Errors
	if diff := cmp.Diff(schema.FormErrors{"detail": "This field is required"}, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_NumericBounds(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, []schema.Field{{
		ID: "age", Type: schema.FieldTypeNumber, Label: "Age",
		Validation: &schema.Rules{Min: schema.Float(0), Max: schema.Float(50)},
	}})

	cases := []struct {
		value float64
		want  string
	}{
		{51, "Value must be at most 50"},
		{-1, "Value must be at least 0"},
		{25, ""},
	}
	for _, tc := range cases {
		s.SetFieldValue(ctx, "age", schema.Number(tc.value))
		s.ValidateForm()
		if got := s.Snapshot().Errors["age"]; got != tc.want {
			t.Fatalf("age=%v: got %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestStore_ResetClearsEverything(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, testsupport.RoleSchema())

	s.SetFieldValue(ctx, "role", schema.String("A"))
	if !s.ValidateForm() {
		t.Fatalf("expected valid form")
	}
	s.TogglePreview(true)
	if !s.Snapshot().ShowPreview {
		t.Fatalf("expected preview to be shown")
	}

	s.ResetForm(ctx)
	snap := s.Snapshot()
	if snap.Data.Len() != 0 || len(snap.Errors) != 0 || snap.ShowPreview {
		t.Fatalf("unexpected state after reset: data=%v errors=%v preview=%v", snap.Data.Map(), snap.Errors, snap.ShowPreview)
	}
	if len(snap.Schema) != 2 {
		t.Fatalf("reset must keep the schema")
	}
}

func TestStore_SetFieldValueClearsOnlyThatError(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, schema.Fallback())
	s.ValidateForm()
	before := s.Snapshot().Errors
	if before["fullName"] == "" || before["email"] == "" {
		t.Fatalf("expected required errors, got %v", before)
	}

	s.SetFieldValue(ctx, "fullName", schema.String("x"))
	after := s.Snapshot().Errors
	if _, ok := after["fullName"]; ok {
		t.Fatalf("fullName error should be cleared on edit")
	}
	if after["email"] != before["email"] {
		t.Fatalf("other errors must be untouched")
	}

	s.ValidateForm()
	if got := s.Snapshot().Errors["fullName"]; got != "Minimum length is 2 characters" {
		t.Fatalf("expected length error after revalidation, got %q", got)
	}
}

func TestStore_ValidateFormIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, schema.Fallback())
	s.SetFieldValue(ctx, "email", schema.String("bad"))
	s.SetFieldValue(ctx, "experience", schema.Number(99))

	first := s.ValidateForm()
	errs := s.Snapshot().Errors
	second := s.ValidateForm()
	if first != second {
		t.Fatalf("validity flipped between runs")
	}
	if diff := cmp.Diff(errs, s.Snapshot().Errors); diff != "" {
		t.Fatalf("errors changed between runs (-first +second):\n%s", diff)
	}
}

func TestStore_ValidateFormMatchesVisibility(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, schema.Fallback())
	for _, role := range []string{"Developer", "Lawyer"} {
		s.SetFieldValue(ctx, "role", schema.String(role))
		s.ValidateForm()
		snap := s.Snapshot()
		for id := range snap.Errors {
			field, ok := schema.Find(snap.Schema, id)
			if !ok || !s.Visible(field) {
				t.Fatalf("role=%s: error reported for hidden field %q", role, id)
			}
		}
	}
}

func TestStore_FetchFailureUsesFallback(t *testing.T) {
	ctx := context.Background()
	failing := source.Func(func(context.Context) ([]schema.Field, error) {
		return nil, errors.New("boom")
	})
	s := New(ctx, WithSource(failing))
	s.FetchSchema(ctx)

	snap := s.Snapshot()
	if !snap.FetchFailed || snap.Loading {
		t.Fatalf("expected failed, settled fetch: %+v", snap)
	}
	if diff := cmp.Diff(schema.Fallback(), snap.Schema, cmp.Comparer(func(a, b schema.Value) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("expected fallback schema (-want +got):\n%s", diff)
	}
}

func TestStore_EmptySourceUsesFallback(t *testing.T) {
	ctx := context.Background()
	empty := source.Func(func(context.Context) ([]schema.Field, error) {
		return nil, nil
	})
	s := New(ctx, WithSource(empty), WithFallback(testsupport.RoleSchema()))
	s.FetchSchema(ctx)
	if !s.FetchFailed() || len(s.Snapshot().Schema) != 2 {
		t.Fatalf("expected configured fallback after empty fetch")
	}
}

func TestStore_LoadingDuringFetch(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	slow := source.Func(func(context.Context) ([]schema.Field, error) {
		close(started)
		<-release
		return testsupport.RoleSchema(), nil
	})
	s := New(ctx, WithSource(slow))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchSchema(ctx)
	}()
	<-started
	if !s.Loading() {
		t.Fatalf("expected loading while the source is pending")
	}
	close(release)
	wg.Wait()
	if s.Loading() {
		t.Fatalf("expected loading to settle")
	}
}

func TestStore_PersistsAndRestoresFormData(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemory()

	s := newLoaded(t, testsupport.RoleSchema(), WithPersister(backend), WithStorageKey("signup"))
	s.SetFieldValue(ctx, "role", schema.String("B"))
	s.SetFieldValue(ctx, "detail", schema.String("tax"))
	s.ValidateForm()
	s.TogglePreview(true)

	restored := New(ctx, WithPersister(backend), WithStorageKey("signup"))
	snap := restored.Snapshot()
	if diff := testsupport.DiffFormData(testsupport.FormData(t, "role", "B", "detail", "tax"), snap.Data); diff != "" {
		t.Fatalf("restored data mismatch (-want +got):\n%s", diff)
	}
	if snap.ShowPreview || len(snap.Errors) != 0 || len(snap.Schema) != 0 {
		t.Fatalf("only form data should be restored: %+v", snap)
	}

	restored.ResetForm(ctx)
	if _, err := backend.Load(ctx, "signup"); !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("expected reset to clear storage, got %v", err)
	}
}

func TestStore_RejectInputKeepsValue(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, schema.Fallback())
	s.SetFieldValue(ctx, "experience", schema.Number(3))
	s.RejectInput("experience", "Please enter a number")

	snap := s.Snapshot()
	if !snap.Data.Value("experience").Equal(schema.Number(3)) {
		t.Fatalf("rejected input must not change the stored value")
	}
	if snap.Errors["experience"] != "Please enter a number" {
		t.Fatalf("expected rejection message, got %v", snap.Errors)
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, testsupport.RoleSchema())
	s.SetFieldValue(ctx, "role", schema.String("A"))
	snap := s.Snapshot()
	snap.Data.Set("role", schema.String("B"))
	snap.Errors["role"] = "mutated"

	if !s.Snapshot().Data.Value("role").Equal(schema.String("A")) {
		t.Fatalf("snapshot mutation leaked into the store")
	}
	if _, ok := s.Snapshot().Errors["role"]; ok {
		t.Fatalf("snapshot error mutation leaked into the store")
	}
}

func TestStore_SnapshotSchemaIsADeepCopy(t *testing.T) {
	fields := schema.Fallback()
	s := newLoaded(t, fields)

	snap := s.Snapshot()
	*snap.Schema[0].Validation.MinLength = 40
	snap.Schema[2].Options[0] = "Hacker"
	snap.Schema[3].DependsOn.Value = schema.String("Developer")

	fresh := s.Snapshot()
	if got := *fresh.Schema[0].Validation.MinLength; got != 2 {
		t.Fatalf("snapshot rules mutation leaked into the store: minLength=%d", got)
	}
	if got := fresh.Schema[2].Options[0]; got != "Developer" {
		t.Fatalf("snapshot options mutation leaked into the store: %q", got)
	}
	if !fresh.Schema[3].DependsOn.Value.Equal(schema.String("Lawyer")) {
		t.Fatalf("snapshot dependency mutation leaked into the store")
	}

	field, _ := s.Field("fullName")
	*field.Validation.MaxLength = 1
	again, _ := s.Field("fullName")
	if *again.Validation.MaxLength != 50 {
		t.Fatalf("Field must return a copy")
	}

	*fields[0].Validation.MinLength = 9
	if got := *s.Snapshot().Schema[0].Validation.MinLength; got != 2 {
		t.Fatalf("source fields must not alias the store schema: minLength=%d", got)
	}
}

func TestStore_SetFieldValueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	once := newLoaded(t, schema.Fallback())
	twice := newLoaded(t, schema.Fallback())
	for _, s := range []*Store{once, twice} {
		s.SetFieldValue(ctx, "role", schema.String("Lawyer"))
		s.ValidateForm()
	}

	once.SetFieldValue(ctx, "email", schema.String("bad"))
	twice.SetFieldValue(ctx, "email", schema.String("bad"))
	twice.SetFieldValue(ctx, "email", schema.String("bad"))

	a, b := once.Snapshot(), twice.Snapshot()
	if diff := testsupport.DiffFormData(a.Data, b.Data); diff != "" {
		t.Fatalf("data differs after repeated set (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(a.Errors, b.Errors); diff != "" {
		t.Fatalf("errors differ after repeated set (-once +twice):\n%s", diff)
	}
	if _, ok := b.Errors["email"]; ok {
		t.Fatalf("the edited field's error must stay cleared")
	}
	if b.Errors["specialization"] == "" {
		t.Fatalf("other errors must survive repeated sets")
	}
}

func TestStore_LastFetchStartedWins(t *testing.T) {
	ctx := context.Background()
	older := []schema.Field{{ID: "older", Type: schema.FieldTypeText, Label: "Older"}}
	newer := []schema.Field{{ID: "newer", Type: schema.FieldTypeText, Label: "Newer"}}

	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	started := make(chan int, 2)
	var mu sync.Mutex
	calls := 0
	src := source.Func(func(context.Context) ([]schema.Field, error) {
		mu.Lock()
		n := calls
		calls++
		mu.Unlock()
		started <- n
		<-gates[n]
		if n == 0 {
			return older, nil
		}
		return newer, nil
	})
	s := New(ctx, WithSource(src))

	fetch := func() <-chan struct{} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.FetchSchema(ctx)
		}()
		return done
	}

	first := fetch()
	<-started
	second := fetch()
	<-started

	close(gates[1])
	<-second
	close(gates[0])
	<-first

	snap := s.Snapshot()
	if len(snap.Schema) != 1 || snap.Schema[0].ID != "newer" {
		t.Fatalf("expected the later fetch to win, got %+v", snap.Schema)
	}
	if snap.Loading || snap.FetchFailed {
		t.Fatalf("expected a settled, successful fetch: %+v", snap)
	}
}

func TestStore_RefetchReplacesSchema(t *testing.T) {
	ctx := context.Background()
	versions := [][]schema.Field{
		testsupport.RoleSchema(),
		{{ID: "name", Type: schema.FieldTypeText, Label: "Name"}},
	}
	calls := 0
	src := source.Func(func(context.Context) ([]schema.Field, error) {
		fields := versions[calls]
		calls++
		return fields, nil
	})
	s := New(ctx, WithSource(src))

	s.FetchSchema(ctx)
	if len(s.Snapshot().Schema) != 2 {
		t.Fatalf("expected first schema")
	}
	s.FetchSchema(ctx)
	snap := s.Snapshot()
	if len(snap.Schema) != 1 || snap.Schema[0].ID != "name" {
		t.Fatalf("expected re-fetch to replace the schema, got %+v", snap.Schema)
	}
}

func TestStore_SetFieldValueClosesPreview(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, testsupport.RoleSchema())
	s.SetFieldValue(ctx, "role", schema.String("A"))
	s.TogglePreview(true)

	s.SetFieldValue(ctx, "role", schema.String("B"))
	if s.Snapshot().ShowPreview {
		t.Fatalf("a value change must close the preview")
	}
	if _, ok := s.TakePreview(); ok {
		t.Fatalf("a closed preview cannot be taken")
	}
}

func TestStore_TakePreviewOnce(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, testsupport.RoleSchema())
	s.SetFieldValue(ctx, "role", schema.String("A"))
	s.TogglePreview(true)

	data, ok := s.TakePreview()
	if !ok || !data.Value("role").Equal(schema.String("A")) {
		t.Fatalf("expected preview data, got %v %v", data, ok)
	}
	if s.Snapshot().ShowPreview {
		t.Fatalf("taking the preview must close it")
	}
	if _, ok := s.TakePreview(); ok {
		t.Fatalf("the same preview must not be taken twice")
	}
}

func TestStore_StaleWritesAreDropped(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemory()
	s := New(ctx, WithPersister(backend), WithStorageKey("signup"))

	s.save(ctx, 2, testsupport.FormData(t, "role", "B"))
	s.save(ctx, 1, testsupport.FormData(t, "role", "A"))
	got, err := backend.Load(ctx, "signup")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Value("role").Equal(schema.String("B")) {
		t.Fatalf("an older snapshot overwrote a newer one: %v", got.Map())
	}

	s.clear(ctx, 3)
	s.save(ctx, 2, testsupport.FormData(t, "role", "B"))
	if _, err := backend.Load(ctx, "signup"); !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("a save older than the reset must not restore cleared data, got %v", err)
	}
}

type nilPersister struct{ persist.Persister }

func (nilPersister) Load(context.Context, string) (*schema.FormData, error) { return nil, nil }

func TestStore_RestoreIgnoresNilData(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, WithPersister(nilPersister{Persister: persist.NewMemory()}))
	s.SetFieldValue(ctx, "role", schema.String("A"))
	if !s.Snapshot().Data.Value("role").Equal(schema.String("A")) {
		t.Fatalf("expected the value to be stored")
	}
}
