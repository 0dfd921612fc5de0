// Package plain provides the "plain" engine library: a passthrough that
// renders the source unchanged. It is the fallback of last resort for text
// formats whose richer engine is missing.
package plain

import "github.com/goliatone/go-view/pkg/engine"

// Name is the library name the engine is provided under.
const Name = "plain"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/plain"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return Engine{}, nil
	})
}

// Engine compiles every source to a static template.
type Engine struct{}

var _ engine.Engine = Engine{}

// Name implements engine.Engine.
func (Engine) Name() string { return Name }

// Compile implements engine.Engine.
func (Engine) Compile(_, source string) (engine.Template, error) {
	return engine.Static(source), nil
}
