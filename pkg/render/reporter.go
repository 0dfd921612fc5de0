package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/engine"
)

// reporter turns whatever an adapter or engine raised into the typed errors
// callers match with errors.As.
type reporter struct {
	logger *zap.Logger
}

// compile runs the adapter's compile step. Panics and library failures are
// EngineLoadErrors; anything else the engine rejected is a CompilationError.
func (r reporter) compile(a adapter.EngineAdapter, identity, source string) (tpl engine.Template, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(logMsgCompilePanic,
				zap.String(logFieldIdentity, identity),
				zap.String(logFieldAdapter, a.Name()),
				zap.Any("panic", rec),
			)
			tpl = nil
			err = adapter.NewEngineLoadError(a.Name(), a.RequiredLibrary(), fmt.Errorf("panic during compile: %v", rec))
		}
	}()

	tpl, err = a.Compile(identity, source)
	if err != nil {
		return nil, r.compileError(a, identity, source, err)
	}
	if tpl == nil {
		return nil, engine.NewCompilationError(a.RequiredLibrary(), identity, source, errors.New("adapter returned no template"))
	}
	return tpl, nil
}

func (r reporter) compileError(a adapter.EngineAdapter, identity, source string, err error) error {
	var loadErr *adapter.EngineLoadError
	if errors.As(err, &loadErr) {
		r.logEngineLoad(identity, loadErr)
		return err
	}
	if errors.Is(err, engine.ErrLibraryUnavailable) {
		loadErr = adapter.NewEngineLoadError(a.Name(), a.RequiredLibrary(), err)
		r.logEngineLoad(identity, loadErr)
		return loadErr
	}

	var compileErr *engine.CompilationError
	if errors.As(err, &compileErr) {
		return err
	}
	return engine.NewCompilationError(a.RequiredLibrary(), identity, source, err)
}

func (r reporter) logEngineLoad(identity string, err *adapter.EngineLoadError) {
	r.logger.Warn(logMsgEngineLoadFailed,
		zap.String(logFieldIdentity, identity),
		zap.String(logFieldAdapter, err.Adapter),
		zap.String(logFieldLibrary, err.Library),
		zap.Error(err.Cause),
	)
}

// execute runs tpl against scope. An error recorded on the scope by a helper
// is returned as-is in place of the engine's own report, which usually only
// wraps it in engine-specific text.
func (r reporter) execute(tpl engine.Template, w io.Writer, scope *engine.Scope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = engine.NewRenderError(scope.Identity, fmt.Errorf("panic during execute: %v", rec))
		}
	}()

	execErr := tpl.Execute(executionContext(scope), w, scope)
	if recorded := scope.Err(); recorded != nil {
		return recorded
	}
	if execErr == nil {
		return nil
	}

	var (
		noYield   *engine.NoYieldTargetError
		renderErr *engine.RenderError
	)
	if errors.As(execErr, &noYield) || errors.As(execErr, &renderErr) {
		return execErr
	}
	return engine.NewRenderError(scope.Identity, execErr)
}

func executionContext(scope *engine.Scope) context.Context {
	if ctx := scope.Ctx(); ctx != nil {
		return ctx
	}
	return context.Background()
}
