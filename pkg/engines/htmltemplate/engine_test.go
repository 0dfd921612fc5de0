package htmltemplate_test

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/engines/htmltemplate"
	"github.com/goliatone/go-view/pkg/render"
	"github.com/goliatone/go-view/pkg/testsupport"
)

type page struct{}

func (page) Panel(block engine.Producer) (template.HTML, error) {
	out, err := block.Yield()
	return template.HTML(`<section class="panel">` + out + `</section>`), err
}

func TestEngine_EscapesLocals(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"page.html": "<p>{{ .msg }}</p>",
	}, render.Request{Identity: "page.html", Locals: map[string]any{"msg": "<script>x</script>"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;x&lt;/script&gt;</p>", out)
}

func TestEngine_YieldIsNotEscapedTwice(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"layout.html": "<main>{{ yield }}</main>",
	}, render.Request{Identity: "layout.html", Block: engine.Literal("<h1>Title</h1>")})
	require.NoError(t, err)
	assert.Equal(t, "<main><h1>Title</h1></main>", out)
}

func TestEngine_PartialYieldsCapturedBlock(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"show.html":     `{{ define "body" }}<b>{{ .name }}</b>{{ end }}{{ render "wrapper" (capture "body") }}`,
		"_wrapper.html": "<wrapper>{{ yield }}</wrapper>",
	}, render.Request{Identity: "show.html", Locals: map[string]any{"name": "A&B"}})
	require.NoError(t, err)
	assert.Equal(t, "<wrapper><b>A&amp;B</b></wrapper>", out)
}

func TestEngine_LiteralBlockIsEscaped(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"show.html":     `{{ render "wrapper" "<i>raw</i>" }}`,
		"_wrapper.html": "{{ yield }}",
	}, render.Request{Identity: "show.html"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;i&gt;raw&lt;/i&gt;", out)
}

func TestEngine_ContextMethodYield(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"show.html": `{{ define "body" }}Yielded{{ end }}{{ .context.Panel (capture "body") }}`,
	}, render.Request{Identity: "show.html", Context: page{}})
	require.NoError(t, err)
	assert.Equal(t, `<section class="panel">Yielded</section>`, out)
}

func TestEngine_RendersTwice(t *testing.T) {
	r := testsupport.Renderer(t, "html", htmltemplate.New())
	sources := map[string]string{"page.html": "<p>{{ .n }}</p>"}

	for _, n := range []int{1, 2} {
		out, err := testsupport.Render(t, r, sources, render.Request{Identity: "page.html", Locals: map[string]any{"n": n}})
		require.NoError(t, err)
		assert.Equal(t, "<p>"+string(rune('0'+n))+"</p>", out)
	}
}

func TestEngine_SyntaxError(t *testing.T) {
	_, err := htmltemplate.New().Compile("bad.html", "{{ range }}")
	var compileErr *engine.CompilationError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, htmltemplate.Name, compileErr.Engine)
}
