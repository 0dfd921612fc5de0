package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/config"
)

func catalog() adapter.Catalog {
	return adapter.NewCatalog(
		&adapter.FuncAdapter{AdapterName: "pongo2"},
		&adapter.FuncAdapter{AdapterName: "htmltemplate"},
		&adapter.FuncAdapter{AdapterName: "goldmark"},
		&adapter.FuncAdapter{AdapterName: "plain"},
	)
}

func names(list []adapter.EngineAdapter) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name())
	}
	return out
}

func TestDecode(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader(`
cache: false
partials:
  prefix: "partial_"
extensions:
  .HTML: [Pongo2, " htmltemplate "]
deregister:
  md: [goldmark]
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if cfg.Cache == nil || *cfg.Cache {
		t.Fatalf("Cache = %v, want false", cfg.Cache)
	}
	if cfg.Partials.Prefix == nil || *cfg.Partials.Prefix != "partial_" {
		t.Fatalf("Prefix = %v, want partial_", cfg.Partials.Prefix)
	}
	if diff := cmp.Diff(map[string][]string{"html": {"pongo2", "htmltemplate"}}, cfg.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"md": {"goldmark"}}, cfg.Deregister); diff != "" {
		t.Fatalf("deregister mismatch (-want +got):\n%s", diff)
	}
	if got := len(cfg.Options()); got != 2 {
		t.Fatalf("Options() returned %d options, want 2", got)
	}
}

func TestDecode_EmptyAndUnknownKeys(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(cfg.Options()) != 0 {
		t.Fatal("empty document should not produce options")
	}

	if _, err := config.Decode(strings.NewReader("engines: {}\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate_ReportsUnknownAdapters(t *testing.T) {
	cfg := &config.Config{
		Extensions: map[string][]string{"html": {"pongo2", "jade"}},
		Deregister: map[string][]string{"md": {"kramdown"}},
	}
	err := cfg.Validate(catalog())
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{`extensions.html: "jade"`, `deregister.md: "kramdown"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestApply(t *testing.T) {
	cat := catalog()
	registry := adapter.NewRegistry()
	for _, name := range []string{"htmltemplate", "pongo2"} {
		a, _ := cat.Lookup(name)
		registry.MustRegister("html", a)
	}
	for _, name := range []string{"goldmark", "plain"} {
		a, _ := cat.Lookup(name)
		registry.MustRegister("md", a, adapter.Append())
	}

	cfg := &config.Config{
		Extensions: map[string][]string{
			"html": {"htmltemplate", "pongo2"},
			"txt":  {"plain"},
		},
		Deregister: map[string][]string{"md": {"goldmark"}},
	}
	if err := cfg.Apply(registry, cat); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := map[string][]string{
		"html": {"htmltemplate", "pongo2"},
		"md":   {"plain"},
		"txt":  {"plain"},
	}
	for ext, wantNames := range want {
		if diff := cmp.Diff(wantNames, names(registry.Adapters(ext))); diff != "" {
			t.Errorf("%s adapters mismatch (-want +got):\n%s", ext, diff)
		}
	}
}

func TestApply_RejectsUnknownAdapterWithoutChanges(t *testing.T) {
	cat := catalog()
	registry := adapter.NewRegistry()
	a, _ := cat.Lookup("pongo2")
	registry.MustRegister("html", a)

	cfg := &config.Config{Extensions: map[string][]string{"html": {"jade"}}}
	if err := cfg.Apply(registry, cat); err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff([]string{"pongo2"}, names(registry.Adapters("html"))); diff != "" {
		t.Fatalf("registry changed (-want +got):\n%s", diff)
	}
	if err := cfg.Apply(nil, cat); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.yaml")
	if err := os.WriteFile(path, []byte("cache: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache == nil || !*cfg.Cache {
		t.Fatalf("Cache = %v, want true", cfg.Cache)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
