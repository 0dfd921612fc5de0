package render

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
)

// Error kinds used as the label of goview_render_errors_total.
const (
	ErrorKindUnknownExtension  = "unknown_extension"
	ErrorKindUnavailableEngine = "unavailable_engine"
	ErrorKindEngineLoad        = "engine_load"
	ErrorKindSource            = "source"
	ErrorKindCompilation       = "compilation"
	ErrorKindNoYieldTarget     = "no_yield_target"
	ErrorKindRender            = "render"
	ErrorKindOther             = "other"
)

// Metrics holds the renderer's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	compiles       *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	renderDuration prometheus.Histogram
}

// NewMetrics creates the renderer collectors and registers them with
// registry. Pass a dedicated prometheus.NewRegistry() rather than the global
// default so renderers can be discarded.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "goview_cache_hits_total",
			Help: "Total number of compiled template cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "goview_cache_misses_total",
			Help: "Total number of compiled template cache misses",
		}),
		compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goview_compiles_total",
			Help: "Total number of template compilations by adapter",
		}, []string{"adapter"}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "goview_render_errors_total",
			Help: "Total number of failed renders by error kind",
		}, []string{"kind"}),
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goview_render_duration_seconds",
			Help:    "Duration of top-level template renders in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) cacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) compiled(adapterName string) {
	if m == nil {
		return
	}
	m.compiles.WithLabelValues(adapterName).Inc()
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.renderErrors.WithLabelValues(ErrorKind(err)).Inc()
	}
}

// ErrorKind classifies a render error into one of the ErrorKind constants.
// Kinds are matched in pipeline order.
func ErrorKind(err error) string {
	var (
		unknown     *adapter.UnknownExtensionError
		unavailable *adapter.UnavailableEngineError
		loadErr     *adapter.EngineLoadError
		sourceErr   *SourceError
		compileErr  *engine.CompilationError
		noYield     *engine.NoYieldTargetError
		renderErr   *engine.RenderError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unknown):
		return ErrorKindUnknownExtension
	case errors.As(err, &unavailable):
		return ErrorKindUnavailableEngine
	case errors.As(err, &loadErr):
		return ErrorKindEngineLoad
	case errors.As(err, &sourceErr):
		return ErrorKindSource
	case errors.As(err, &compileErr):
		return ErrorKindCompilation
	case errors.As(err, &noYield):
		return ErrorKindNoYieldTarget
	case errors.As(err, &renderErr):
		return ErrorKindRender
	default:
		return ErrorKindOther
	}
}
