// Package all links every engine library go-view ships. Import it for side
// effects when every extension should render with its preferred engine:
//
//	import _ "github.com/goliatone/go-view/pkg/engines/all"
package all

import (
	_ "github.com/goliatone/go-view/pkg/engines/gonja"
	_ "github.com/goliatone/go-view/pkg/engines/gotemplate"
	_ "github.com/goliatone/go-view/pkg/engines/htmltemplate"
	_ "github.com/goliatone/go-view/pkg/engines/markdown"
	_ "github.com/goliatone/go-view/pkg/engines/plain"
	_ "github.com/goliatone/go-view/pkg/engines/pongo2"
	_ "github.com/goliatone/go-view/pkg/engines/scriggo"
)
