// Package gotemplate provides the "gotemplate" engine library on top of
// text/template. Import it for side effects to make it available:
//
//	import _ "github.com/goliatone/go-view/pkg/engines/gotemplate"
//
// Templates reach the view context as .context and locals as top-level keys.
// Helpers bound per render:
//
//	{{ yield }}                           content of the caller's block
//	{{ render "name" }}                   partial "_name" next to the template
//	{{ render "name" (capture "body") }}  partial yielding a {{ define "body" }} block
//	{{ render "name" (partial "other") }} partial yielding another partial
//	{{ .context.Method (capture "body") }}
package gotemplate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "gotemplate"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/gotemplate"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

// Option configures the engine.
type Option func(*Engine)

// WithFuncs adds functions available to every template. Helper names bound
// per render (yield, render, partial, capture) cannot be overridden.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			e.funcs[name] = fn
		}
	}
}

// WithDelims sets the action delimiters.
// Default: "{{" and "}}"
func WithDelims(left, right string) Option {
	return func(e *Engine) {
		e.left, e.right = left, right
	}
}

// WithMissingKey sets the text/template missingkey option ("default",
// "zero" or "error").
// Default: "default"
func WithMissingKey(mode string) Option {
	return func(e *Engine) {
		e.missingKey = strings.TrimSpace(mode)
	}
}

// Engine compiles text/template sources.
type Engine struct {
	funcs       template.FuncMap
	left, right string
	missingKey  string
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{funcs: template.FuncMap{}}
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
	tpl := template.New(identity).
		Funcs(e.funcs).
		Funcs(parseFuncs()).
		Delims(e.left, e.right)
	switch e.missingKey {
	case "":
	case "default", "invalid", "zero", "error":
		tpl = tpl.Option("missingkey=" + e.missingKey)
	default:
		return nil, engine.NewCompilationError(Name, identity, source, fmt.Errorf("unknown missingkey mode %q", e.missingKey))
	}

	parsed, err := tpl.Parse(source)
	if err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, err)
	}
	return &compiled{tpl: parsed}, nil
}
