// Package scriggo provides the "scriggo" engine library on top of
// github.com/open2b/scriggo. Scriggo templates are statically typed, so the
// view data is exposed through two typed globals:
//
//	{{ locals["title"] }}   per-call locals (map[string]interface{})
//	{{ context }}           the view context (interface{})
//
// and the yield protocol through native functions:
//
//	{{ yield() }}
//	{{ render("name") }}
package scriggo

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/open2b/scriggo"
	"github.com/open2b/scriggo/native"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "scriggo"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/scriggo"

const entryPoint = "index"

var errOutsideRender = errors.New("scriggo: template executed outside of a render call")

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

// Option configures the engine.
type Option func(*Engine)

// WithFormat sets the format templates are compiled as, which decides how
// values are escaped.
// Default: scriggo.FormatHTML
func WithFormat(format scriggo.Format) Option {
	return func(e *Engine) {
		e.format = format
	}
}

// WithGlobals adds declarations available to every template. The names
// locals, context, yield and render are reserved.
func WithGlobals(globals native.Declarations) Option {
	return func(e *Engine) {
		for name, decl := range globals {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			e.globals[name] = decl
		}
	}
}

// WithPackages makes native packages importable from templates.
func WithPackages(packages native.Importer) Option {
	return func(e *Engine) {
		e.packages = packages
	}
}

// WithMarkdownConverter converts markdown sections of templates to HTML.
func WithMarkdownConverter(conv scriggo.Converter) Option {
	return func(e *Engine) {
		e.markdown = conv
	}
}

// Engine builds scriggo templates.
type Engine struct {
	format   scriggo.Format
	globals  native.Declarations
	packages native.Importer
	markdown scriggo.Converter
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		format:  scriggo.FormatHTML,
		globals: native.Declarations{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// Compile implements engine.Engine.
func (e *Engine) Compile(identity, source string) (engine.Template, error) {
	globals := make(native.Declarations, len(e.globals)+4)
	for name, decl := range e.globals {
		globals[name] = decl
	}
	for name, decl := range helperDeclarations() {
		globals[name] = decl
	}

	fsys := formatFS{
		Files:  scriggo.Files{entryPoint: []byte(source)},
		format: e.format,
	}
	tpl, err := scriggo.BuildTemplate(fsys, entryPoint, &scriggo.BuildOptions{
		Globals:           globals,
		Packages:          e.packages,
		MarkdownConverter: e.markdown,
	})
	if err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, err)
	}
	return &compiled{tpl: tpl}, nil
}

// formatFS reports one format for every file, so the format does not depend
// on the template identity's extension.
type formatFS struct {
	scriggo.Files
	format scriggo.Format
}

func (f formatFS) Format(string) (scriggo.Format, error) {
	return f.format, nil
}

type compiled struct {
	tpl *scriggo.Template
}

// Execute runs the template. The scope travels in ctx, where the native
// helpers find it through native.Env. env.Fatal panics out of Run with the
// helper's error, which is returned here.
func (c *compiled) Execute(ctx context.Context, w io.Writer, scope *engine.Scope) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if recorded := scope.Err(); recorded != nil {
			err = recorded
			return
		}
		if fatal, ok := rec.(error); ok {
			err = fatal
			return
		}
		panic(rec)
	}()

	locals := make(map[string]interface{}, len(scope.Locals))
	for key, value := range scope.Locals {
		locals[key] = value
	}
	viewContext := scope.Context

	if ctx == nil {
		ctx = scope.Ctx()
	}
	return c.tpl.Run(w, map[string]interface{}{
		"locals":  &locals,
		"context": &viewContext,
	}, &scriggo.RunOptions{Context: ctx})
}

// helperDeclarations declares the typed globals and the yield helpers.
// Helpers stop the template with env.Fatal on error; the scope already
// recorded the error, which the renderer reports in place of scriggo's.
func helperDeclarations() native.Declarations {
	return native.Declarations{
		"locals":  (*map[string]interface{})(nil),
		"context": (*interface{})(nil),
		"yield": func(env native.Env) native.HTML {
			out, err := scopeOf(env).Yield()
			if err != nil {
				env.Fatal(err)
			}
			return native.HTML(out)
		},
		"render": func(env native.Env, name string) native.HTML {
			out, err := scopeOf(env).Render(name, nil)
			if err != nil {
				env.Fatal(err)
			}
			return native.HTML(out)
		},
	}
}

func scopeOf(env native.Env) *engine.Scope {
	scope, ok := engine.ScopeFrom(env.Context())
	if !ok {
		env.Fatal(errOutsideRender)
	}
	return scope
}
