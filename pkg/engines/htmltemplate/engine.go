// Package htmltemplate provides the "htmltemplate" engine library on top of
// html/template. It binds the same helpers as the gotemplate engine; yield and
// render return template.HTML so yielded markup is not escaped twice. Context
// methods that wrap a block should return template.HTML for the same reason.
package htmltemplate

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "htmltemplate"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/htmltemplate"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

// Option configures the engine.
type Option func(*Engine)

// WithFuncs adds functions available to every template.
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

// Engine compiles html/template sources.
type Engine struct {
	funcs       template.FuncMap
	left, right string
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
	parsed, err := template.New(identity).
		Funcs(e.funcs).
		Funcs(helpers(nil, nil)).
		Delims(e.left, e.right).
		Parse(source)
	if err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, err)
	}
	return &compiled{tpl: parsed}, nil
}

type compiled struct {
	tpl *template.Template
}

// Execute works on a clone: html/template refuses to clone a set that was
// executed, so the parsed original is never run.
func (c *compiled) Execute(_ context.Context, w io.Writer, scope *engine.Scope) error {
	tpl, err := c.tpl.Clone()
	if err != nil {
		return err
	}
	data := scope.Data()
	tpl.Funcs(helpers(scope, func(name string) (string, error) {
		if tpl.Lookup(name) == nil {
			return "", fmt.Errorf("htmltemplate: template %q defines no block %q", scope.Identity, name)
		}
		var b strings.Builder
		err := tpl.ExecuteTemplate(&b, name, data)
		return b.String(), err
	}))
	return tpl.Execute(w, data)
}

func helpers(scope *engine.Scope, execBlock func(name string) (string, error)) template.FuncMap {
	return template.FuncMap{
		"yield": func() (template.HTML, error) {
			if scope == nil {
				return "", engine.NewNoYieldTargetError("")
			}
			out, err := scope.Yield()
			return template.HTML(out), err
		},
		"render": func(name string, blocks ...any) (template.HTML, error) {
			if scope == nil {
				return "", fmt.Errorf("htmltemplate: render %q outside of a render call", name)
			}
			if len(blocks) > 1 {
				err := fmt.Errorf("htmltemplate: render takes at most one block, got %d", len(blocks))
				scope.Fail(err)
				return "", err
			}
			var block engine.Producer
			if len(blocks) == 1 {
				var err error
				if block, err = asProducer(blocks[0]); err != nil {
					scope.Fail(err)
					return "", err
				}
			}
			out, err := scope.Render(name, block)
			return template.HTML(out), err
		},
		"partial": func(name string) engine.Producer {
			if scope == nil {
				return nil
			}
			return scope.Partial(name)
		},
		"capture": func(name string) (engine.Producer, error) {
			if scope == nil || execBlock == nil {
				return nil, fmt.Errorf("htmltemplate: capture %q outside of a render call", name)
			}
			return scope.Capture(func() (string, error) {
				return execBlock(name)
			}), nil
		},
	}
}

// asProducer escapes plain strings passed as blocks; template.HTML is trusted.
func asProducer(value any) (engine.Producer, error) {
	switch v := value.(type) {
	case template.HTML:
		return engine.Literal(string(v)), nil
	case string:
		return engine.Literal(template.HTMLEscapeString(v)), nil
	default:
		return engine.AsProducer(value)
	}
}
