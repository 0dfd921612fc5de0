package pongo2

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-view/pkg/engine"
)

type compiled struct {
	tpl *pongo2.Template
}

func (c *compiled) Execute(_ context.Context, w io.Writer, scope *engine.Scope) error {
	data := pongo2.Context(scope.Data())
	data.Update(helpers(scope))
	return c.tpl.ExecuteWriter(data, w)
}

// helpers binds the yield protocol to scope. pongo2 reports helper errors with
// its own wrapping, so each failure is also recorded on the scope.
func helpers(scope *engine.Scope) pongo2.Context {
	fail := func(err error) (*pongo2.Value, error) {
		scope.Fail(err)
		return nil, err
	}

	return pongo2.Context{
		"yield": func() (*pongo2.Value, error) {
			out, err := scope.Yield()
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
		"render": func(name *pongo2.Value, blocks ...*pongo2.Value) (*pongo2.Value, error) {
			if len(blocks) > 1 {
				return fail(fmt.Errorf("pongo2: render takes at most one block, got %d", len(blocks)))
			}
			var block engine.Producer
			if len(blocks) == 1 {
				var err error
				if block, err = engine.AsProducer(blocks[0].Interface()); err != nil {
					return fail(err)
				}
			}
			out, err := scope.Render(name.String(), block)
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
		"partial": func(name *pongo2.Value) *pongo2.Value {
			return pongo2.AsValue(scope.Partial(name.String()))
		},
		"capture": func(fn *pongo2.Value) (*pongo2.Value, error) {
			producer, err := captureFunc(scope, fn.Interface())
			if err != nil {
				return fail(err)
			}
			return pongo2.AsValue(producer), nil
		},
	}
}

// captureFunc wraps a zero-argument function (a Go func from the locals or
// context, or a pongo2 macro) as a producer resolved against scope. pongo2
// calls function values it resolves from variables, so the already rendered
// string is accepted too.
func captureFunc(scope *engine.Scope, fn any) (engine.Producer, error) {
	switch f := fn.(type) {
	case engine.Producer:
		return scope.Capture(f), nil
	case func() (string, error):
		return scope.Capture(f), nil
	case string:
		return engine.Literal(f), nil
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("pongo2: %w, got %T", errNotCallable, fn)
	}
	rt := rv.Type()
	if rt.NumIn() > 1 || (rt.NumIn() == 1 && !rt.IsVariadic()) || rt.NumOut() == 0 || rt.NumOut() > 2 {
		return nil, fmt.Errorf("pongo2: %w, got %s", errNotCallable, rt)
	}

	return scope.Capture(func() (string, error) {
		results := rv.Call(nil)
		if len(results) == 2 && !results[1].IsNil() {
			if err, ok := results[1].Interface().(error); ok {
				return "", err
			}
		}
		switch out := results[0].Interface().(type) {
		case *pongo2.Value:
			return out.String(), nil
		case string:
			return out, nil
		default:
			return fmt.Sprint(out), nil
		}
	}), nil
}
