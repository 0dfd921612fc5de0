package view

import (
	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engines/gotemplate"
	"github.com/goliatone/go-view/pkg/engines/htmltemplate"
	"github.com/goliatone/go-view/pkg/engines/plain"
)

// Adapter names of the engines go-view ships. Rich engines are linked by
// importing their package; the fallbacks are always linked.
const (
	AdapterGoTemplate   = gotemplate.Name
	AdapterHTMLTemplate = htmltemplate.Name
	AdapterPlain        = plain.Name
	AdapterPongo2       = "pongo2"
	AdapterGonja        = "gonja"
	AdapterScriggo      = "scriggo"
	AdapterGoldmark     = "goldmark"
)

const enginesPath = "github.com/goliatone/go-view/pkg/engines/"

// Catalog returns the adapters of every shipped engine, linked or not.
func Catalog() adapter.Catalog {
	return adapter.NewCatalog(
		adapter.New(AdapterGoTemplate, gotemplate.Name,
			adapter.WithImportPath(gotemplate.ImportPath),
			adapter.WithDescription("text/template")),
		adapter.New(AdapterHTMLTemplate, htmltemplate.Name,
			adapter.WithImportPath(htmltemplate.ImportPath),
			adapter.WithDescription("html/template with contextual escaping")),
		adapter.New(AdapterPlain, plain.Name,
			adapter.WithImportPath(plain.ImportPath),
			adapter.WithDescription("passthrough, renders the source unchanged")),
		adapter.New(AdapterPongo2, "pongo2",
			adapter.WithImportPath(enginesPath+"pongo2"),
			adapter.WithDescription("Django syntax (github.com/flosch/pongo2/v6)")),
		adapter.New(AdapterGonja, "gonja",
			adapter.WithImportPath(enginesPath+"gonja"),
			adapter.WithDescription("Jinja2 syntax (github.com/nikolalohinski/gonja/v2)")),
		adapter.New(AdapterScriggo, "scriggo",
			adapter.WithImportPath(enginesPath+"scriggo"),
			adapter.WithDescription("statically typed Go templates (github.com/open2b/scriggo)")),
		adapter.New(AdapterGoldmark, "goldmark",
			adapter.WithImportPath(enginesPath+"markdown"),
			adapter.WithDescription("markdown to sanitized HTML (github.com/yuin/goldmark)")),
	)
}

// DefaultExtensions lists, per extension, the adapters registered by
// DefaultRegistry from highest to lowest priority.
var DefaultExtensions = map[string][]string{
	"tmpl":     {AdapterGoTemplate},
	"gotmpl":   {AdapterGoTemplate},
	"txt":      {AdapterGoTemplate, AdapterPlain},
	"html":     {AdapterPongo2, AdapterHTMLTemplate},
	"django":   {AdapterPongo2},
	"j2":       {AdapterGonja, AdapterPongo2},
	"jinja":    {AdapterGonja, AdapterPongo2},
	"sgo":      {AdapterScriggo},
	"md":       {AdapterGoldmark, AdapterPlain},
	"markdown": {AdapterGoldmark, AdapterPlain},
}

// DefaultRegistry returns a registry holding DefaultExtensions.
func DefaultRegistry(options ...adapter.RegistryOption) *adapter.Registry {
	registry := adapter.NewRegistry(options...)
	catalog := Catalog()
	for ext, names := range DefaultExtensions {
		for _, name := range names {
			a, ok := catalog.Lookup(name)
			if !ok {
				continue
			}
			registry.MustRegister(ext, a, adapter.Append())
		}
	}
	return registry
}
