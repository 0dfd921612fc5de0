// Package engine defines the contract shared by every template engine that
// go-view can render through: the Engine that compiles source, the compiled
// Template handle, the per-render Scope with its yield channel, and the
// process-wide table of backing libraries that adapters check for
// availability.
package engine

import (
	"context"
	"io"
)

// Engine compiles raw template source for one backing library.
type Engine interface {
	Name() string
	Compile(identity, source string) (Template, error)
}

// Template is the compiled, reusable form of a template. Implementations must
// be safe for concurrent Execute calls; everything that varies per call lives
// in the Scope.
type Template interface {
	Execute(ctx context.Context, w io.Writer, scope *Scope) error
}

// ContextKey is the data key under which templates reach the view context.
const ContextKey = "context"

// Static returns a template that always writes content, ignoring the scope.
// Engines without a runtime (markdown, passthrough) compile to it.
func Static(content string) Template {
	return staticTemplate(content)
}

type staticTemplate string

func (s staticTemplate) Execute(_ context.Context, w io.Writer, _ *Scope) error {
	_, err := io.WriteString(w, string(s))
	return err
}
