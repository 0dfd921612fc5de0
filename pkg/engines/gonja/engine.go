// Package gonja provides the "gonja" engine library, a Jinja2 engine on top of
// github.com/nikolalohinski/gonja/v2. Helpers bound per render:
//
//	{{ yield() }}
//	{{ render("name") }}
//	{{ render("name", partial("other")) }}
//	{{ render("name", "literal") }}
//
// The view context is available as {{ context }}.
package gonja

import (
	"strings"

	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "gonja"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/gonja"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

// FilterFunc is a custom filter: it receives the filtered value and the
// filter arguments.
type FilterFunc func(in interface{}, args ...interface{}) (interface{}, error)

// GlobalFunc is a custom global function callable from templates.
type GlobalFunc func(args ...interface{}) (interface{}, error)

// Option configures the engine.
type Option func(*Engine)

// WithFilters registers custom filters on top of the gonja builtins.
func WithFilters(filters map[string]FilterFunc) Option {
	return func(e *Engine) {
		for name, fn := range filters {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			e.filters[name] = fn
		}
	}
}

// WithFunctions registers custom global functions on top of the gonja
// builtins.
func WithFunctions(functions map[string]GlobalFunc) Option {
	return func(e *Engine) {
		for name, fn := range functions {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			e.functions[name] = fn
		}
	}
}

// WithTemplates makes templates available to {% include %}, {% import %} and
// {% extends %} by name.
func WithTemplates(templates map[string]string) Option {
	return func(e *Engine) {
		for name, source := range templates {
			e.templates[name] = source
		}
	}
}

// WithAutoEscape toggles HTML escaping of expression output.
// Default: false
func WithAutoEscape(enabled bool) Option {
	return func(e *Engine) {
		e.autoEscape = enabled
	}
}

// WithStrictUndefined makes undefined variables an execution error.
// Default: false
func WithStrictUndefined(enabled bool) Option {
	return func(e *Engine) {
		e.strictUndefined = enabled
	}
}

// Engine compiles Jinja2 sources.
type Engine struct {
	filters         map[string]FilterFunc
	functions       map[string]GlobalFunc
	templates       map[string]string
	autoEscape      bool
	strictUndefined bool

	environment *exec.Environment
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		filters:   make(map[string]FilterFunc),
		functions: make(map[string]GlobalFunc),
		templates: make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.environment = e.newEnvironment()
	return e
}

var _ engine.Engine = (*Engine)(nil)

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

func (e *Engine) templateConfig() *config.Config {
	// TrimBlocks and LeftStripBlocks keep block tags from leaving blank lines
	// in line-oriented output.
	return &config.Config{
		BlockStartString:    "{%",
		BlockEndString:      "%}",
		VariableStartString: "{{",
		VariableEndString:   "}}",
		CommentStartString:  "{#",
		CommentEndString:    "#}",
		AutoEscape:          e.autoEscape,
		StrictUndefined:     e.strictUndefined,
		TrimBlocks:          true,
		LeftStripBlocks:     true,
	}
}

func (e *Engine) newEnvironment() *exec.Environment {
	filters := builtins.Filters
	if len(e.filters) > 0 {
		filterMap := make(map[string]exec.FilterFunction, len(e.filters))
		for name, fn := range e.filters {
			filterMap[name] = wrapCustomFilter(fn)
		}
		filters = filters.Update(exec.NewFilterSet(filterMap))
	}

	globalFunctions := builtins.GlobalFunctions
	if len(e.functions) > 0 {
		functionMap := make(map[string]interface{}, len(e.functions))
		for name, fn := range e.functions {
			functionMap[name] = wrapGlobalFunction(fn)
		}
		globalFunctions = globalFunctions.Update(exec.NewContext(functionMap))
	}

	return &exec.Environment{
		Filters:           filters,
		Tests:             builtins.Tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
		Context:           globalFunctions,
	}
}

func wrapCustomFilter(customFilter FilterFunc) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		result, err := customFilter(in.Interface(), argValues(params)...)
		if err != nil {
			return exec.AsValue(exec.ErrInvalidCall(err))
		}
		return exec.AsValue(result)
	}
}

func wrapGlobalFunction(customFunc GlobalFunc) func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
	return func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
		result, err := customFunc(argValues(params)...)
		if err != nil {
			return exec.AsValue(exec.ErrInvalidCall(err))
		}
		return exec.AsValue(result)
	}
}

func argValues(params *exec.VarArgs) []interface{} {
	if params == nil || len(params.Args) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(params.Args))
	for _, arg := range params.Args {
		args = append(args, arg.Interface())
	}
	return args
}
