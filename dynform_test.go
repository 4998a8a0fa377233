package dynform

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(context.Background(), testsupport.RoleSchema(), RenderOptions{Title: "Roles"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<title>Roles</title>") || !strings.Contains(html, `id="field-role"`) {
		t.Fatalf("unexpected html:\n%s", html)
	}
}

func TestRenderHTML_InvalidSchemaUsesFallback(t *testing.T) {
	out, err := RenderHTML(context.Background(), nil, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `id="field-fullName"`) {
		t.Fatalf("expected fallback form:\n%s", out)
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("https://example.com/form.json")
	if err != nil || loc.Kind() != schema.LocationKindURL {
		t.Fatalf("expected url location, got %v %v", loc, err)
	}
	loc, err = ParseLocation("forms/signup.yaml")
	if err != nil || loc.Kind() != schema.LocationKindFile {
		t.Fatalf("expected file location, got %v %v", loc, err)
	}
	if _, err := ParseLocation("  "); err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestNewJSONSchemaSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := NewJSONSchemaSource(path)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	fields, err := src.Fetch(context.Background())
	if err != nil || len(fields) != 1 || fields[0].Label != "Name" {
		t.Fatalf("unexpected fields %+v err=%v", fields, err)
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(RuntimeAssetsFS(), vanilla.StylesheetName); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	data, err := fs.ReadFile(RuntimeAssetsFS(), vanilla.RuntimeScriptName)
	if err != nil {
		t.Fatalf("expected runtime script: %v", err)
	}
	if !strings.Contains(string(data), "dynformFocus") {
		t.Fatalf("expected runtime script to define dynformFocus")
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
}
