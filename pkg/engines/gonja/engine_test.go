package gonja_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/engines/gonja"
	"github.com/goliatone/go-view/pkg/render"
	"github.com/goliatone/go-view/pkg/testsupport"
)

func TestEngine_ProvidedOnImport(t *testing.T) {
	assert.True(t, engine.Available(gonja.Name))
}

func TestEngine_RendersLocalsAndContext(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New())

	out, err := testsupport.Render(t, r, map[string]string{
		"page.j2": "{% for item in items %}{{ item }}{% if not loop.last %}, {% endif %}{% endfor %} for {{ context.user }}",
	}, render.Request{
		Identity: "page.j2",
		Context:  map[string]any{"user": "ada"},
		Locals:   map[string]any{"items": []string{"a", "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a, b for ada", out)
}

func TestEngine_YieldIsSafeUnderAutoEscape(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New(gonja.WithAutoEscape(true)))

	out, err := testsupport.Render(t, r, map[string]string{
		"layout.j2": "<main>{{ yield() }}</main>{{ note }}",
	}, render.Request{
		Identity: "layout.j2",
		Locals:   map[string]any{"note": "<i>"},
		Block:    engine.Literal("<h1>Body</h1>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<main><h1>Body</h1></main>&lt;i&gt;", out)
}

func TestEngine_RenderPartialWithBlocks(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New())
	sources := map[string]string{
		"_card.j2":  "<card>{{ yield() }}</card>",
		"_title.j2": "Title {{ n }}",
		"lit.j2":    `{{ render("card", "text") }}`,
		"part.j2":   `{{ render("card", partial("title")) }}`,
	}

	out, err := testsupport.Render(t, r, sources, render.Request{Identity: "lit.j2"})
	require.NoError(t, err)
	assert.Equal(t, "<card>text</card>", out)

	out, err = testsupport.Render(t, r, sources, render.Request{Identity: "part.j2", Locals: map[string]any{"n": 2}})
	require.NoError(t, err)
	assert.Equal(t, "<card>Title 2</card>", out)
}

func TestEngine_YieldWithoutBlockFails(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New())

	_, err := testsupport.Render(t, r, map[string]string{
		"layout.j2": "{{ yield() }}",
	}, render.Request{Identity: "layout.j2"})
	var noYield *engine.NoYieldTargetError
	require.ErrorAs(t, err, &noYield)
}

func TestEngine_RenderArgumentErrors(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New())

	_, err := testsupport.Render(t, r, map[string]string{
		"page.j2": `{{ render() }}`,
	}, render.Request{Identity: "page.j2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render expects a name")
}

func TestEngine_CustomFiltersAndFunctions(t *testing.T) {
	eng := gonja.New(
		gonja.WithFilters(map[string]gonja.FilterFunc{
			"shout": func(in interface{}, _ ...interface{}) (interface{}, error) {
				s, ok := in.(string)
				if !ok {
					return nil, errors.New("shout expects a string")
				}
				return strings.ToUpper(s) + "!", nil
			},
		}),
		gonja.WithFunctions(map[string]gonja.GlobalFunc{
			"greet": func(args ...interface{}) (interface{}, error) {
				if len(args) != 1 {
					return nil, errors.New("greet expects one argument")
				}
				return "hi " + args[0].(string), nil
			},
		}),
	)
	r := testsupport.Renderer(t, "j2", eng)

	out, err := testsupport.Render(t, r, map[string]string{
		"page.j2": `{{ name|shout }} {{ greet(name) }}`,
	}, render.Request{Identity: "page.j2", Locals: map[string]any{"name": "ada"}})
	require.NoError(t, err)
	assert.Equal(t, "ADA! hi ada", out)
}

func TestEngine_IncludeFromTemplates(t *testing.T) {
	eng := gonja.New(gonja.WithTemplates(map[string]string{
		"header.j2": "<header>{{ title }}</header>",
	}))
	r := testsupport.Renderer(t, "j2", eng)

	out, err := testsupport.Render(t, r, map[string]string{
		"page.j2": `{% include "header.j2" %}body`,
	}, render.Request{Identity: "page.j2", Locals: map[string]any{"title": "T"}})
	require.NoError(t, err)
	assert.Equal(t, "<header>T</header>body", out)
}

func TestEngine_StrictUndefined(t *testing.T) {
	r := testsupport.Renderer(t, "j2", gonja.New(gonja.WithStrictUndefined(true)))

	_, err := testsupport.Render(t, r, map[string]string{"page.j2": "{{ missing }}"}, render.Request{Identity: "page.j2"})
	var renderErr *engine.RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestEngine_SyntaxError(t *testing.T) {
	_, err := gonja.New().Compile("bad.j2", "{% if %}")
	var compileErr *engine.CompilationError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, gonja.Name, compileErr.Engine)
}
