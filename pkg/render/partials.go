package render

import (
	"path"
	"strings"

	"github.com/goliatone/go-view/pkg/adapter"
)

// DefaultPartialPrefix marks partial template files.
const DefaultPartialPrefix = "_"

// PartialNamer maps a partial name used inside a template to the identity
// and extension of the partial's source. parent is the identity of the
// template doing the rendering.
type PartialNamer func(parent, name, extension string) (identity, partialExtension string)

// PrefixPartialNamer resolves partials next to their parent template with the
// given prefix on the file name: rendering "wrapper" from "pages/home.html"
// loads "pages/_wrapper.html". Names with their own extension keep it, and a
// leading "/" anchors the name at the loader root.
func PrefixPartialNamer(prefix string) PartialNamer {
	return func(parent, name, extension string) (string, string) {
		name = strings.TrimSpace(name)
		dir := path.Dir(parent)
		if strings.HasPrefix(name, "/") {
			dir = ""
			name = strings.TrimLeft(name, "/")
		}

		sub, base := path.Split(name)
		if prefix != "" && !strings.HasPrefix(base, prefix) {
			base = prefix + base
		}

		ext := adapter.NormalizeExtension(extension)
		if own := path.Ext(base); own != "" {
			ext = adapter.NormalizeExtension(own)
		} else if ext != "" {
			base += "." + ext
		}

		return path.Join(dir, sub, base), ext
	}
}
