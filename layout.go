package view

import (
	"context"
	"errors"

	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/render"
)

// View renders one template, optionally wrapped in a layout that yields the
// template's output.
type View struct {
	// Renderer renders the view. Nil means the process-wide renderer.
	Renderer *render.Renderer
	// Loader provides the template, layout and partial sources.
	Loader render.SourceLoader
	// Template is the identity of the view template.
	Template string
	// Layout is the identity of the layout. Empty renders without one.
	Layout string
	// Context is exposed to both templates under "context".
	Context any
}

// Call renders the template with locals and, when a layout is set, renders
// the layout with the template output bound as its yield block.
func (v View) Call(ctx context.Context, locals map[string]any) (string, error) {
	if v.Template == "" {
		return "", errors.New("view: template is required")
	}
	r := v.Renderer
	if r == nil {
		r = Renderer()
	}

	body, err := r.RenderTemplate(ctx, render.Request{
		Identity: v.Template,
		Loader:   v.Loader,
		Context:  v.Context,
		Locals:   locals,
	})
	if err != nil || v.Layout == "" {
		return body, err
	}

	return r.RenderTemplate(ctx, render.Request{
		Identity: v.Layout,
		Loader:   v.Loader,
		Context:  v.Context,
		Locals:   locals,
		Block:    engine.Literal(body),
	})
}
