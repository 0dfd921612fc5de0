package gonja

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"

	"github.com/goliatone/go-view/pkg/engine"
)

// Compile implements engine.Engine.
func (e *Engine) Compile(identity, source string) (engine.Template, error) {
	templates := make(map[string]string, len(e.templates)+1)
	for name, content := range e.templates {
		templates[name] = content
	}
	templates[identity] = source

	tpl, err := exec.NewTemplate(identity, e.templateConfig(), NewSimpleLoader(templates), e.environment)
	if err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, err)
	}
	return &compiled{tpl: tpl}, nil
}

type compiled struct {
	tpl *exec.Template
}

func (c *compiled) Execute(_ context.Context, w io.Writer, scope *engine.Scope) error {
	data := scope.Data()
	for name, fn := range helpers(scope) {
		data[name] = fn
	}
	out, err := c.tpl.ExecuteToString(exec.NewContext(data))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type helperFunc = func(*exec.Evaluator, *exec.VarArgs) *exec.Value

// helpers binds the yield protocol to scope. gonja turns a helper error into
// an error value, so failures are recorded on the scope as well.
func helpers(scope *engine.Scope) map[string]helperFunc {
	fail := func(err error) *exec.Value {
		scope.Fail(err)
		return exec.AsValue(exec.ErrInvalidCall(err))
	}

	return map[string]helperFunc{
		"yield": func(_ *exec.Evaluator, _ *exec.VarArgs) *exec.Value {
			out, err := scope.Yield()
			if err != nil {
				return fail(err)
			}
			return exec.AsSafeValue(out)
		},
		"render": func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
			args := argValues(params)
			if len(args) == 0 || len(args) > 2 {
				return fail(fmt.Errorf("gonja: render expects a name and an optional block, got %d arguments", len(args)))
			}
			var block engine.Producer
			if len(args) == 2 {
				var err error
				if block, err = engine.AsProducer(args[1]); err != nil {
					return fail(err)
				}
			}
			out, err := scope.Render(fmt.Sprint(args[0]), block)
			if err != nil {
				return fail(err)
			}
			return exec.AsSafeValue(out)
		},
		"partial": func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
			args := argValues(params)
			if len(args) != 1 {
				return fail(fmt.Errorf("gonja: partial expects a name, got %d arguments", len(args)))
			}
			return exec.AsValue(scope.Partial(fmt.Sprint(args[0])))
		},
	}
}

// SimpleLoader is a basic in-memory template loader that doesn't require
// path prefixes or filesystem-like path resolution. It's simpler than
// Gonja's MemoryLoader which enforces '/' prefixes.
type SimpleLoader struct {
	templates map[string]string
}

// NewSimpleLoader creates a new SimpleLoader with the given templates.
func NewSimpleLoader(templates map[string]string) loaders.Loader {
	return &SimpleLoader{
		templates: templates,
	}
}

// Read returns an io.Reader for the template content.
func (l *SimpleLoader) Read(path string) (io.Reader, error) {
	content, exists := l.templates[path]
	if !exists {
		return nil, fmt.Errorf("template not found: %s", path)
	}
	return strings.NewReader(content), nil
}

// Resolve returns the path unchanged once the template exists.
func (l *SimpleLoader) Resolve(path string) (string, error) {
	if _, exists := l.templates[path]; !exists {
		return "", fmt.Errorf("template not found: %s", path)
	}
	return path, nil
}

// Inherit returns the same loader; names form a flat namespace.
func (l *SimpleLoader) Inherit(_ string) (loaders.Loader, error) {
	return l, nil
}
