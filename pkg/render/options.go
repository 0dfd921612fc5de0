package render

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-view/pkg/adapter"
)

// Option customises the Renderer configuration.
type Option func(*Renderer)

// WithRegistry injects the adapter registry used to resolve extensions.
func WithRegistry(registry *adapter.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithLogger sets the logger for the renderer.
// Default: zap.NewNop()
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records cache and render metrics. A nil Metrics disables them.
func WithMetrics(metrics *Metrics) Option {
	return func(r *Renderer) {
		r.metrics = metrics
	}
}

// WithCache toggles the compiled-template cache. Disabling it recompiles on
// every render, which suits template development.
// Default: true
func WithCache(enabled bool) Option {
	return func(r *Renderer) {
		r.cacheEnabled = enabled
	}
}

// WithPartialNamer overrides how partial names map to template identities.
func WithPartialNamer(namer PartialNamer) Option {
	return func(r *Renderer) {
		if namer != nil {
			r.partialNamer = namer
		}
	}
}

// WithPartialPrefix keeps the default partial naming but changes the prefix
// marking partial files.
// Default: "_"
func WithPartialPrefix(prefix string) Option {
	return func(r *Renderer) {
		r.partialNamer = PrefixPartialNamer(prefix)
	}
}
