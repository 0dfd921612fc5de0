// Package view renders templates through interchangeable engines chosen per
// file extension. The process-wide registry starts with DefaultExtensions;
// text/template, html/template and the passthrough engine are always linked,
// richer engines are linked with a blank import of their package under
// pkg/engines (or pkg/engines/all).
package view

import (
	"context"
	"sync/atomic"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/render"
)

// Request aliases render.Request for callers of the top-level helpers.
type Request = render.Request

// SourceLoader aliases render.SourceLoader.
type SourceLoader = render.SourceLoader

// Producer aliases engine.Producer, the yield block type.
type Producer = engine.Producer

var defaultRenderer atomic.Pointer[render.Renderer]

func init() {
	ResetDefaults()
}

// ResetDefaults replaces the process-wide renderer with a fresh one over
// DefaultRegistry, discarding registrations and cached templates.
func ResetDefaults(options ...render.Option) {
	opts := append([]render.Option{render.WithRegistry(DefaultRegistry())}, options...)
	defaultRenderer.Store(render.New(opts...))
}

// Renderer returns the process-wide renderer.
func Renderer() *render.Renderer {
	return defaultRenderer.Load()
}

// Registry returns the process-wide adapter registry.
func Registry() *adapter.Registry {
	return Renderer().Registry()
}

// RegisterAdapter registers a at the highest priority for ext in the
// process-wide registry, unless options place it elsewhere.
func RegisterAdapter(ext string, a adapter.EngineAdapter, options ...adapter.RegisterOption) error {
	return Registry().Register(ext, a, options...)
}

// DeregisterAdapter removes the named adapter from ext in the process-wide
// registry. Removing an adapter that is not registered is a no-op.
func DeregisterAdapter(ext, name string) {
	Registry().Deregister(ext, name)
}

// ClearCache drops every template compiled by the process-wide renderer.
func ClearCache() {
	Renderer().ClearCache()
}

// Render renders req with the process-wide renderer.
func Render(ctx context.Context, req Request) (string, error) {
	return Renderer().RenderTemplate(ctx, req)
}
