package adapter_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
)

type fakeLibrary struct {
	mu        sync.Mutex
	available map[string]bool
}

func newFakeLibrary(available ...string) *fakeLibrary {
	f := &fakeLibrary{available: make(map[string]bool)}
	for _, name := range available {
		f.available[name] = true
	}
	return f
}

func (f *fakeLibrary) set(name string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available[name] = ok
}

func (f *fakeLibrary) adapter(name string) *adapter.FuncAdapter {
	return &adapter.FuncAdapter{
		AdapterName: name,
		Library:     name + "-lib",
		IsAvailable: func() bool {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.available[name]
		},
	}
}

func names(list []adapter.EngineAdapter) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name())
	}
	return out
}

func TestRegistry_RegisterPrependsByDefault(t *testing.T) {
	lib := newFakeLibrary("plain", "rich")
	reg := adapter.NewRegistry()

	reg.MustRegister("erb", lib.adapter("plain"))
	reg.MustRegister(".ERB", lib.adapter("rich"))

	if diff := cmp.Diff([]string{"rich", "plain"}, names(reg.Adapters("erb"))); diff != "" {
		t.Fatalf("priority mismatch (-want +got):\n%s", diff)
	}

	got, err := reg.Resolve("erb")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name() != "rich" {
		t.Fatalf("expected highest priority adapter, got %q", got.Name())
	}
}

func TestRegistry_RegisterPlacement(t *testing.T) {
	lib := newFakeLibrary()
	reg := adapter.NewRegistry()

	reg.MustRegister("html", lib.adapter("a"))
	reg.MustRegister("html", lib.adapter("z"), adapter.Append())
	reg.MustRegister("html", lib.adapter("m"), adapter.Before("z"))
	reg.MustRegister("html", lib.adapter("first"), adapter.Before("missing"))

	if diff := cmp.Diff([]string{"first", "a", "m", "z"}, names(reg.Adapters("html"))); diff != "" {
		t.Fatalf("priority mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ReRegisterReplacesPosition(t *testing.T) {
	lib := newFakeLibrary()
	reg := adapter.NewRegistry()

	reg.MustRegister("html", lib.adapter("fallback"))
	reg.MustRegister("html", lib.adapter("rich"))
	reg.MustRegister("html", lib.adapter("fallback"))

	if diff := cmp.Diff([]string{"fallback", "rich"}, names(reg.Adapters("html"))); diff != "" {
		t.Fatalf("re-register should move, not duplicate (-want +got):\n%s", diff)
	}

	reg.MustRegister("html", lib.adapter("fallback"), adapter.Append())
	if diff := cmp.Diff([]string{"rich", "fallback"}, names(reg.Adapters("html"))); diff != "" {
		t.Fatalf("re-register with Append mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	reg := adapter.NewRegistry()

	if err := reg.Register("html", nil); err == nil {
		t.Fatalf("expected error for nil adapter")
	}
	if err := reg.Register("  ", &adapter.FuncAdapter{AdapterName: "x"}); err == nil {
		t.Fatalf("expected error for empty extension")
	}
	if err := reg.Register("html", &adapter.FuncAdapter{}); err == nil {
		t.Fatalf("expected error for empty adapter name")
	}
}

func TestRegistry_ResolveSkipsUnavailable(t *testing.T) {
	lib := newFakeLibrary("plain")
	reg := adapter.NewRegistry()
	reg.MustRegister("erb", lib.adapter("plain"))
	reg.MustRegister("erb", lib.adapter("rich"))

	got, err := reg.Resolve("erb")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name() != "plain" {
		t.Fatalf("expected fallback adapter, got %q", got.Name())
	}

	lib.set("rich", true)
	got, _ = reg.Resolve("erb")
	if got.Name() != "rich" {
		t.Fatalf("availability change should be seen by the next resolve, got %q", got.Name())
	}
}

func TestRegistry_ResolveReportsHighestPriorityLibrary(t *testing.T) {
	lib := newFakeLibrary()
	reg := adapter.NewRegistry()
	reg.MustRegister("erb", lib.adapter("plain"))
	reg.MustRegister("erb", lib.adapter("rich"))

	_, err := reg.Resolve("erb")
	var unavailable *adapter.UnavailableEngineError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableEngineError, got %v", err)
	}
	want := adapter.UnavailableEngineError{Extension: "erb", Adapter: "rich", Library: "rich-lib"}
	if diff := cmp.Diff(want, *unavailable); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "requires the rich-lib engine library") {
		t.Fatalf("message should name the library: %s", err)
	}
}

func TestRegistry_UnknownExtension(t *testing.T) {
	reg := adapter.NewRegistry()
	reg.MustRegister("html", &adapter.FuncAdapter{AdapterName: "static"})

	_, err := reg.Resolve("haml")
	var unknown *adapter.UnknownExtensionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownExtensionError, got %v", err)
	}
	if unknown.Extension != "haml" {
		t.Fatalf("unexpected extension %q", unknown.Extension)
	}
	if diff := cmp.Diff([]string{"html"}, unknown.KnownExtensions); diff != "" {
		t.Fatalf("known extensions mismatch (-want +got):\n%s", diff)
	}
	want := `adapter: no template engine registered for extension "haml" (registered: html)`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestUnknownExtensionError_WithoutKnownExtensions(t *testing.T) {
	err := adapter.NewUnknownExtensionError("haml", nil)
	want := `adapter: no template engine registered for extension "haml"`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestRegistry_DeregisterFallsBack(t *testing.T) {
	lib := newFakeLibrary("plain")
	reg := adapter.NewRegistry()
	reg.MustRegister("erb", lib.adapter("plain"))
	reg.MustRegister("erb", lib.adapter("rich"))
	lib.set("rich", true)

	reg.Deregister("erb", "rich")
	got, err := reg.Resolve("erb")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name() != "plain" {
		t.Fatalf("expected next adapter after deregister, got %q", got.Name())
	}

	// Absent adapters and extensions are no-ops.
	reg.Deregister("erb", "rich")
	reg.Deregister("haml", "rich")
	if diff := cmp.Diff([]string{"plain"}, names(reg.Adapters("erb"))); diff != "" {
		t.Fatalf("unexpected adapters (-want +got):\n%s", diff)
	}
}

func TestRegistry_DeregisterLastAdapter(t *testing.T) {
	lib := newFakeLibrary("only")
	reg := adapter.NewRegistry()
	reg.MustRegister("erb", lib.adapter("only"))

	reg.Deregister("erb", "only")
	if reg.Has("erb") {
		t.Fatalf("expected no adapters left")
	}

	_, err := reg.Resolve("erb")
	var unavailable *adapter.UnavailableEngineError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableEngineError once adapters were registered, got %v", err)
	}
	if unavailable.Library != "only-lib" {
		t.Fatalf("expected the removed adapter's library, got %q", unavailable.Library)
	}

	reg.MustRegister("erb", lib.adapter("only"))
	if _, err := reg.Resolve("erb"); err != nil {
		t.Fatalf("re-registering should restore resolution: %v", err)
	}
}

func TestRegistry_Clone(t *testing.T) {
	lib := newFakeLibrary("a", "b")
	reg := adapter.NewRegistry()
	reg.MustRegister("html", lib.adapter("a"))

	clone := reg.Clone()
	clone.MustRegister("html", lib.adapter("b"))
	clone.Deregister("html", "a")

	if diff := cmp.Diff([]string{"a"}, names(reg.Adapters("html"))); diff != "" {
		t.Fatalf("original mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, names(clone.Adapters("html"))); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	lib := newFakeLibrary("plain", "rich")
	reg := adapter.NewRegistry()
	reg.MustRegister("erb", lib.adapter("plain"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i == 0 && j%10 == 0 {
					reg.MustRegister("erb", lib.adapter("rich"))
					reg.Deregister("erb", "rich")
					continue
				}
				if _, err := reg.Resolve("erb"); err != nil {
					t.Errorf("resolve: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestLibraryAdapter(t *testing.T) {
	engine.Provide("adapter-test-lib", func() (engine.Engine, error) { return staticEngine{}, nil })
	t.Cleanup(func() { engine.Withdraw("adapter-test-lib") })

	a := adapter.New(" Rich ", "adapter-test-lib", adapter.WithImportPath("example.com/rich"), adapter.WithDescription("rich engine"))
	if a.Name() != "rich" || a.RequiredLibrary() != "adapter-test-lib" {
		t.Fatalf("unexpected adapter identity %q/%q", a.Name(), a.RequiredLibrary())
	}
	if !a.Available() {
		t.Fatalf("expected adapter to be available")
	}
	if _, err := a.Compile("page", "hello"); err != nil {
		t.Fatalf("compile: %v", err)
	}

	restore := engine.Withdraw("adapter-test-lib")
	defer restore()

	if a.Available() {
		t.Fatalf("expected adapter to be unavailable once withdrawn")
	}
	_, err := a.Compile("page", "hello")
	var loadErr *adapter.EngineLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected EngineLoadError, got %v", err)
	}
	if !errors.Is(err, engine.ErrLibraryUnavailable) {
		t.Fatalf("expected cause to wrap ErrLibraryUnavailable, got %v", err)
	}

	unavailable := adapter.NewUnavailableEngineError("html", a)
	if !strings.Contains(unavailable.Error(), `import _ "example.com/rich"`) {
		t.Fatalf("message should carry the import hint: %s", unavailable)
	}
	if !strings.Contains(unavailable.Error(), `deregister the "rich" adapter`) {
		t.Fatalf("message should mention deregistration: %s", unavailable)
	}
}

func TestCatalog(t *testing.T) {
	c := adapter.NewCatalog(adapter.New("pongo2", ""), adapter.New("Plain", ""), nil)
	if diff := cmp.Diff([]string{"plain", "pongo2"}, c.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	a, ok := c.Lookup("PONGO2")
	if !ok || a.RequiredLibrary() != "pongo2" {
		t.Fatalf("lookup failed: %v %v", a, ok)
	}
}

type staticEngine struct{}

func (staticEngine) Name() string { return "static" }

func (staticEngine) Compile(_, source string) (engine.Template, error) {
	return engine.Static(source), nil
}
