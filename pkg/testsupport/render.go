package testsupport

import (
	"testing"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/render"
)

// Renderer returns a renderer whose registry serves ext with eng alone.
func Renderer(t *testing.T, ext string, eng engine.Engine, options ...render.Option) *render.Renderer {
	t.Helper()
	registry := adapter.NewRegistry()
	err := registry.Register(ext, &adapter.FuncAdapter{
		AdapterName: eng.Name(),
		CompileFunc: eng.Compile,
	})
	if err != nil {
		t.Fatalf("testsupport: register %s: %v", eng.Name(), err)
	}
	return render.New(append([]render.Option{render.WithRegistry(registry)}, options...)...)
}

// Render renders identity from sources with r.
func Render(t *testing.T, r *render.Renderer, sources map[string]string, req render.Request) (string, error) {
	t.Helper()
	if req.Loader == nil {
		req.Loader = NewMapLoader(sources).Load
	}
	return r.RenderTemplate(Context(), req)
}
