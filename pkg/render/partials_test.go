package render_test

import (
	"testing"

	"github.com/goliatone/go-view/pkg/render"
)

func TestPrefixPartialNamer(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		parent  string
		partial string
		ext     string
		wantID  string
		wantExt string
	}{
		{name: "sibling", prefix: "_", parent: "pages/home.html", partial: "wrapper", ext: "html", wantID: "pages/_wrapper.html", wantExt: "html"},
		{name: "root parent", prefix: "_", parent: "home.tmpl", partial: "nav", ext: "tmpl", wantID: "_nav.tmpl", wantExt: "tmpl"},
		{name: "subdirectory", prefix: "_", parent: "pages/home.html", partial: "shared/card", ext: "html", wantID: "pages/shared/_card.html", wantExt: "html"},
		{name: "anchored", prefix: "_", parent: "pages/home.html", partial: "/layouts/frame", ext: "html", wantID: "layouts/_frame.html", wantExt: "html"},
		{name: "own extension", prefix: "_", parent: "pages/home.html", partial: "notes.md", ext: "html", wantID: "pages/_notes.md", wantExt: "md"},
		{name: "already prefixed", prefix: "_", parent: "home.tmpl", partial: "_nav", ext: "tmpl", wantID: "_nav.tmpl", wantExt: "tmpl"},
		{name: "no prefix", prefix: "", parent: "home.tmpl", partial: "nav", ext: "tmpl", wantID: "nav.tmpl", wantExt: "tmpl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ext := render.PrefixPartialNamer(tt.prefix)(tt.parent, tt.partial, tt.ext)
			if id != tt.wantID || ext != tt.wantExt {
				t.Fatalf("got (%q, %q), want (%q, %q)", id, ext, tt.wantID, tt.wantExt)
			}
		})
	}
}
