package render

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
)

func TestMetrics_RecordsCacheAndErrors(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	adapters := adapter.NewRegistry()
	require.NoError(t, adapters.Register("txt", &adapter.FuncAdapter{AdapterName: "plain"}))
	r := New(WithRegistry(adapters), WithMetrics(metrics))

	sources := map[string]string{"a.txt": "a", "layout.txt": "ignored"}
	loader := func(identity string) (string, error) {
		if source, ok := sources[identity]; ok {
			return source, nil
		}
		return "", errors.New("not found")
	}

	for i := 0; i < 3; i++ {
		_, err := r.RenderTemplate(context.Background(), Request{Identity: "a.txt", Loader: loader})
		require.NoError(t, err)
	}
	_, err := r.RenderTemplate(context.Background(), Request{Identity: "missing.txt", Loader: loader})
	require.Error(t, err)
	_, err = r.RenderTemplate(context.Background(), Request{Identity: "a.haml", Loader: loader})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.compiles.WithLabelValues("plain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renderErrors.WithLabelValues(ErrorKindSource)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renderErrors.WithLabelValues(ErrorKindUnknownExtension)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.renderDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.cacheHit()
		metrics.cacheMiss()
		metrics.compiled("plain")
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{adapter.NewUnknownExtensionError("haml", nil), ErrorKindUnknownExtension},
		{adapter.NewUnavailableEngineError("html", nil), ErrorKindUnavailableEngine},
		{adapter.NewEngineLoadError("pongo2", "pongo2", errors.New("x")), ErrorKindEngineLoad},
		{NewSourceError("a.tmpl", errors.New("x")), ErrorKindSource},
		{engine.NewCompilationError("gotemplate", "a.tmpl", "", errors.New("x")), ErrorKindCompilation},
		{engine.NewNoYieldTargetError("a.tmpl"), ErrorKindNoYieldTarget},
		{engine.NewRenderError("a.tmpl", errors.New("x")), ErrorKindRender},
		{engine.NewRenderError("a.tmpl", NewSourceError("_p.tmpl", errors.New("x"))), ErrorKindSource},
		{errors.New("x"), ErrorKindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "%v", tt.err)
	}
}
