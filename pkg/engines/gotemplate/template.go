package gotemplate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/goliatone/go-view/pkg/engine"
)

type compiled struct {
	tpl *template.Template
}

// Execute clones the parsed set so helper functions can close over this
// render's scope without touching the shared compiled template.
func (c *compiled) Execute(_ context.Context, w io.Writer, scope *engine.Scope) error {
	tpl, err := c.tpl.Clone()
	if err != nil {
		return err
	}
	data := scope.Data()
	tpl.Funcs(Helpers(scope, func(name string) (string, error) {
		if tpl.Lookup(name) == nil {
			return "", fmt.Errorf("gotemplate: template %q defines no block %q", scope.Identity, name)
		}
		var b strings.Builder
		err := tpl.ExecuteTemplate(&b, name, data)
		return b.String(), err
	}))
	return tpl.Execute(w, data)
}

// parseFuncs declares the helper names so templates referencing them parse.
// The values are replaced per render.
func parseFuncs() template.FuncMap {
	return Helpers(nil, nil)
}

// Helpers returns the per-render helper functions bound to scope. execBlock
// executes a named block of the template being rendered; capture wraps it.
// Both html/template and text/template engines share the signatures.
func Helpers(scope *engine.Scope, execBlock func(name string) (string, error)) template.FuncMap {
	return template.FuncMap{
		"yield": func() (string, error) {
			if scope == nil {
				return "", engine.NewNoYieldTargetError("")
			}
			return scope.Yield()
		},
		"render": func(name string, blocks ...any) (string, error) {
			if scope == nil {
				return "", fmt.Errorf("gotemplate: render %q outside of a render call", name)
			}
			block, err := blockArg(blocks)
			if err != nil {
				scope.Fail(err)
				return "", err
			}
			return scope.Render(name, block)
		},
		"partial": func(name string) engine.Producer {
			if scope == nil {
				return nil
			}
			return scope.Partial(name)
		},
		"capture": func(name string) (engine.Producer, error) {
			if scope == nil || execBlock == nil {
				return nil, fmt.Errorf("gotemplate: capture %q outside of a render call", name)
			}
			return scope.Capture(func() (string, error) {
				return execBlock(name)
			}), nil
		},
	}
}

func blockArg(blocks []any) (engine.Producer, error) {
	switch len(blocks) {
	case 0:
		return nil, nil
	case 1:
		return engine.AsProducer(blocks[0])
	default:
		return nil, fmt.Errorf("gotemplate: render takes at most one block, got %d", len(blocks))
	}
}
