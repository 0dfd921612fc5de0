// Package markdown provides the "goldmark" engine library: markdown sources
// are converted to HTML once at compile time and sanitized with bluemonday.
// The compiled template is static, so markdown cannot yield or render
// partials.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-view/pkg/engine"
)

// Name is the library name the engine is provided under.
const Name = "goldmark"

// ImportPath is the package whose blank import provides the library.
const ImportPath = "github.com/goliatone/go-view/pkg/engines/markdown"

func init() {
	engine.Provide(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

// Option configures the engine.
type Option func(*Engine)

// WithPolicy replaces the sanitizer policy. A nil policy disables
// sanitizing, which is only safe for trusted sources.
// Default: bluemonday.UGCPolicy()
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithGoldmarkOptions replaces the goldmark construction options.
// Default: GFM extensions with raw HTML passed through to the sanitizer.
func WithGoldmarkOptions(options ...goldmark.Option) Option {
	return func(e *Engine) {
		e.md = goldmark.New(options...)
	}
}

// Engine converts markdown to sanitized HTML.
type Engine struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
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
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(source), &buf); err != nil {
		return nil, engine.NewCompilationError(Name, identity, source, fmt.Errorf("convert markdown: %w", err))
	}

	out := buf.String()
	if e.policy != nil {
		out = e.policy.Sanitize(out)
	}
	return engine.Static(out), nil
}
