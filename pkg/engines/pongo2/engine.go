// Package pongo2 provides the "pongo2" engine library, a Django-syntax engine
// on top of github.com/flosch/pongo2/v6. Helpers bound per render:
//
//	{{ yield() }}                              content of the caller's block
//	{{ render("name") }}                       partial "_name" next to the template
//	{{ render("name", partial("other")) }}     partial yielding another partial
//	{{ render("name", capture(fn)) }}          partial yielding a zero-argument function
//	{{ render("name", "literal") }}            partial yielding fixed text
//
// The view context is available as {{ context }}.
//
// Templates autoescape, and yield() and render() return safe values. A
// context method that wraps yielded content returns a plain value and is
// escaped like any other variable; mark it with |safe in the template, or
// return pongo2.AsSafeValue from the method:
//
//	{{ context.Panel(partial("body"))|safe }}
package pongo2

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "pongo2"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/pongo2"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New()
	})
}

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	templates  fs.FS
	globalData map[string]any
	filters    map[string]pongo2.FilterFunction
	debug      bool
}

// WithFS lets {% include %} and {% extends %} load templates from files.
// Without it those tags fail; use render() for partials.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers a filter when the engine loads. pongo2 filters are
// process-wide; an existing filter with the same name is kept.
func WithFilter(name string, fn pongo2.FilterFunction) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]pongo2.FilterFunction)
		}
		cfg.filters[name] = fn
	}
}

// WithDebug enables pongo2's debug mode on the template set.
func WithDebug(debug bool) Option {
	return func(cfg *config) {
		cfg.debug = debug
	}
}

// Engine compiles templates into a pongo2 template set.
type Engine struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loader pongo2.TemplateLoader = noIncludes{}
	if cfg.templates != nil {
		loader = pongo2.NewFSLoader(cfg.templates)
	}

	set := pongo2.NewSet("go-view", loader)
	set.Debug = cfg.debug
	if len(cfg.globalData) > 0 {
		set.Globals = make(pongo2.Context, len(cfg.globalData))
		set.Globals.Update(pongo2.Context(cfg.globalData))
	}

	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("pongo2: register filter %q: %w", name, err)
		}
	}

	return &Engine{set: set}, nil
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// Compile implements engine.Engine.
func (e *Engine) Compile(identity, source string) (engine.Template, error) {
	e.mu.Lock()
	tpl, err := e.set.FromString(source)
	e.mu.Unlock()
	if err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, err)
	}
	return &compiled{tpl: tpl}, nil
}

// noIncludes rejects file lookups from templates compiled from strings.
type noIncludes struct{}

func (noIncludes) Abs(_, name string) string {
	return name
}

func (noIncludes) Get(path string) (io.Reader, error) {
	return nil, fmt.Errorf("pongo2: cannot load %q: no template files configured, use render() for partials", path)
}

var errNotCallable = errors.New("capture expects a function without arguments")
