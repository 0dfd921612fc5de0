// Package render compiles templates through the adapter registry, caches the
// compiled form and executes it against a scope bound to the caller's yield
// producer.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
)

// SourceLoader returns the raw source of the template identified by identity.
type SourceLoader func(identity string) (string, error)

// Request describes one render call.
type Request struct {
	// Identity names the template; it keys the cache and is passed to Loader.
	Identity string
	// Extension selects the adapters. Empty means the identity's extension.
	Extension string
	// Loader provides the source on a cache miss. Partials rendered from the
	// template are loaded through it too.
	Loader SourceLoader
	// Context is exposed to templates under engine.ContextKey.
	Context any
	// Locals are exposed to templates as top-level variables.
	Locals map[string]any
	// Block is the producer a yield inside the template invokes.
	Block engine.Producer
}

// Renderer resolves, compiles, caches and executes templates. It is safe for
// concurrent use.
type Renderer struct {
	registry     *adapter.Registry
	logger       *zap.Logger
	metrics      *Metrics
	cacheEnabled bool
	partialNamer PartialNamer

	cache    *Cache
	reporter reporter
}

// New creates a Renderer. Without WithRegistry it renders through an empty
// registry.
func New(options ...Option) *Renderer {
	r := &Renderer{
		registry:     adapter.NewRegistry(),
		logger:       zap.NewNop(),
		cacheEnabled: true,
		partialNamer: PrefixPartialNamer(DefaultPartialPrefix),
		cache:        NewCache(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.reporter = reporter{logger: r.logger}
	return r
}

// Registry returns the adapter registry the renderer resolves through.
func (r *Renderer) Registry() *adapter.Registry {
	return r.registry
}

// RenderTemplate renders req and returns the output.
func (r *Renderer) RenderTemplate(ctx context.Context, req Request) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, req, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render renders req into w. Nothing is written when rendering fails.
func (r *Renderer) Render(ctx context.Context, req Request, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, nested := engine.ScopeFrom(ctx)

	start := time.Now()
	err := r.render(ctx, req, w)
	if !nested {
		r.metrics.observe(start, err)
		if err != nil {
			r.logger.Debug(logMsgRenderFailed,
				zap.String(logFieldIdentity, req.Identity),
				zap.String(logFieldKind, ErrorKind(err)),
				zap.Error(err),
			)
		}
	}
	return err
}

func (r *Renderer) render(ctx context.Context, req Request, w io.Writer) error {
	identity := cleanIdentity(req.Identity)
	if identity == "" {
		return errors.New("render: template identity is required")
	}
	if req.Loader == nil {
		return fmt.Errorf("render: template %q has no source loader", identity)
	}

	ext := adapter.NormalizeExtension(req.Extension)
	if ext == "" {
		ext = adapter.NormalizeExtension(path.Ext(identity))
	}

	a, err := r.registry.Resolve(ext)
	if err != nil {
		r.logger.Warn(logMsgResolveFailed,
			zap.String(logFieldIdentity, identity),
			zap.String(logFieldExtension, ext),
			zap.Error(err),
		)
		return err
	}

	tpl, err := r.compiled(a, identity, ext, req.Loader)
	if err != nil {
		return err
	}

	scope, release := engine.NewScope(ctx, engine.ScopeOptions{
		Identity:  identity,
		Extension: ext,
		Context:   req.Context,
		Locals:    req.Locals,
		Block:     req.Block,
		Partials:  r.partials(req, identity, ext),
	})
	defer release()

	var buf bytes.Buffer
	if err := r.reporter.execute(tpl, &buf, scope); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) compiled(a adapter.EngineAdapter, identity, ext string, loader SourceLoader) (engine.Template, error) {
	compile := func() (engine.Template, error) {
		source, err := loader(identity)
		if err != nil {
			return nil, NewSourceError(identity, err)
		}
		tpl, err := r.reporter.compile(a, identity, source)
		if err != nil {
			return nil, err
		}
		r.metrics.compiled(a.Name())
		r.logger.Debug(logMsgCompiled,
			zap.String(logFieldIdentity, identity),
			zap.String(logFieldExtension, ext),
			zap.String(logFieldAdapter, a.Name()),
		)
		return tpl, nil
	}

	if !r.cacheEnabled {
		r.metrics.cacheMiss()
		return compile()
	}

	key := CacheKey{Identity: identity, Extension: ext, Adapter: a.Name()}
	tpl, hit, err := r.cache.GetOrCompile(key, compile)
	if hit {
		r.metrics.cacheHit()
		r.logger.Debug(logMsgCacheHit,
			zap.String(logFieldIdentity, identity),
			zap.String(logFieldAdapter, a.Name()),
		)
	} else {
		r.metrics.cacheMiss()
	}
	return tpl, err
}

// partials renders named partials of the template identified by parent with
// the same loader, context and locals.
func (r *Renderer) partials(req Request, parent, ext string) engine.PartialRenderer {
	return func(ctx context.Context, name string, block engine.Producer) (string, error) {
		identity, partialExt := r.partialNamer(parent, name, ext)

		var buf bytes.Buffer
		err := r.Render(ctx, Request{
			Identity:  identity,
			Extension: partialExt,
			Loader:    req.Loader,
			Context:   req.Context,
			Locals:    req.Locals,
			Block:     block,
		}, &buf)
		if err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}

// ClearCache drops every compiled template. Renders issued after it returns
// recompile from source; compiles already in flight do not repopulate the
// cache.
func (r *Renderer) ClearCache() {
	entries := r.cache.Len()
	r.cache.Clear()
	r.logger.Info(logMsgCacheCleared, zap.Int(logFieldEntries, entries))
}

// Forget drops the compiled templates of one identity, whatever adapter
// produced them, and reports how many were removed.
func (r *Renderer) Forget(identity string) int {
	identity = cleanIdentity(identity)
	if identity == "" {
		return 0
	}
	removed := r.cache.Forget(identity)
	if removed > 0 {
		r.logger.Debug(logMsgCacheForgotten,
			zap.String(logFieldIdentity, identity),
			zap.Int(logFieldEntries, removed),
		)
	}
	return removed
}

// CacheLen returns the number of cached compiled templates.
func (r *Renderer) CacheLen() int {
	return r.cache.Len()
}

// cleanIdentity reduces identity to the slash separated, root relative form
// cache keys use, so "./pages/a.html" and "pages/a.html" share an entry.
func cleanIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean("/"+identity), "/")
}
