package adapter

import (
	"strings"

	"github.com/goliatone/go-view/pkg/engine"
)

// EngineAdapter binds an extension to one concrete rendering engine. Several
// adapters may serve one extension; the registry picks the first available
// one in priority order.
type EngineAdapter interface {
	// Name identifies the adapter within an extension's priority list and in
	// cache keys.
	Name() string
	// RequiredLibrary names the backing library the adapter renders with.
	RequiredLibrary() string
	// Available reports whether the backing library can be used. It must be
	// cheap and free of side effects; resolution calls it on every render.
	Available() bool
	// Compile turns raw source into a reusable template.
	Compile(identity, source string) (engine.Template, error)
}

// Remediable is implemented by adapters that know how their missing library
// can be linked in. Errors use it to print an actionable hint.
type Remediable interface {
	ImportPath() string
}

// Option configures a LibraryAdapter.
type Option func(*LibraryAdapter)

// WithImportPath records the package whose blank import provides the library.
func WithImportPath(path string) Option {
	return func(a *LibraryAdapter) {
		a.importPath = strings.TrimSpace(path)
	}
}

// WithDescription attaches a human readable summary shown by tooling.
func WithDescription(description string) Option {
	return func(a *LibraryAdapter) {
		a.description = strings.TrimSpace(description)
	}
}

// LibraryAdapter is the adapter variant backed by the engine library table.
// It is available when its library was provided and compiles through the
// library's Engine, loading it lazily on first use.
type LibraryAdapter struct {
	name        string
	library     string
	importPath  string
	description string
}

var (
	_ EngineAdapter = (*LibraryAdapter)(nil)
	_ Remediable    = (*LibraryAdapter)(nil)
)

// New constructs a LibraryAdapter. When library is empty the adapter name is
// used as the library name.
func New(name, library string, options ...Option) *LibraryAdapter {
	a := &LibraryAdapter{
		name:    normalizeName(name),
		library: normalizeName(library),
	}
	if a.library == "" {
		a.library = a.name
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Name implements EngineAdapter.
func (a *LibraryAdapter) Name() string { return a.name }

// RequiredLibrary implements EngineAdapter.
func (a *LibraryAdapter) RequiredLibrary() string { return a.library }

// ImportPath implements Remediable.
func (a *LibraryAdapter) ImportPath() string { return a.importPath }

// Description returns the adapter summary, if any.
func (a *LibraryAdapter) Description() string { return a.description }

// Available implements EngineAdapter.
func (a *LibraryAdapter) Available() bool {
	return engine.Available(a.library)
}

// Compile implements EngineAdapter. A library that cannot be loaded, even
// though it looked available, is reported as an EngineLoadError.
func (a *LibraryAdapter) Compile(identity, source string) (engine.Template, error) {
	eng, err := engine.Load(a.library)
	if err != nil {
		return nil, NewEngineLoadError(a.name, a.library, err)
	}
	return eng.Compile(identity, source)
}

// FuncAdapter builds an adapter from plain functions. It suits custom engines
// that do not go through the library table, and tests.
type FuncAdapter struct {
	AdapterName string
	Library     string
	IsAvailable func() bool
	CompileFunc func(identity, source string) (engine.Template, error)
}

var _ EngineAdapter = (*FuncAdapter)(nil)

// Name implements EngineAdapter.
func (f *FuncAdapter) Name() string { return normalizeName(f.AdapterName) }

// RequiredLibrary implements EngineAdapter.
func (f *FuncAdapter) RequiredLibrary() string {
	if lib := normalizeName(f.Library); lib != "" {
		return lib
	}
	return f.Name()
}

// Available implements EngineAdapter. A nil IsAvailable means always available.
func (f *FuncAdapter) Available() bool {
	if f.IsAvailable == nil {
		return true
	}
	return f.IsAvailable()
}

// Compile implements EngineAdapter.
func (f *FuncAdapter) Compile(identity, source string) (engine.Template, error) {
	if f.CompileFunc == nil {
		return engine.Static(source), nil
	}
	return f.CompileFunc(identity, source)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
