package engine

import (
	"context"
	"fmt"
)

// Producer supplies the content substituted at a yield point. A nil Producer
// means nothing was bound.
type Producer func() (string, error)

// Yield invokes the producer. Context methods that wrap yielded content call
// it; a nil producer reports a NoYieldTargetError.
func (p Producer) Yield() (string, error) {
	if p == nil {
		return "", NewNoYieldTargetError("")
	}
	return p()
}

// Literal returns a producer that yields fixed content.
func Literal(content string) Producer {
	return func() (string, error) {
		return content, nil
	}
}

// PartialRenderer renders the named partial with block bound as its yield
// target. The Renderer that created the scope supplies it.
type PartialRenderer func(ctx context.Context, name string, block Producer) (string, error)

// yieldStack holds one frame per active render invocation of a render chain.
// It is only touched by the goroutine running that chain.
type yieldStack struct {
	frames []Producer
}

func (s *yieldStack) push(p Producer) {
	s.frames = append(s.frames, p)
}

func (s *yieldStack) pop() {
	if n := len(s.frames); n > 0 {
		s.frames[n-1] = nil
		s.frames = s.frames[:n-1]
	}
}

func (s *yieldStack) top() Producer {
	if n := len(s.frames); n > 0 {
		return s.frames[n-1]
	}
	return nil
}

func (s *yieldStack) depth() int {
	return len(s.frames)
}

type stackKey struct{}

type scopeKey struct{}

// WithYieldStack returns ctx carrying a yield stack. A context that already
// carries one is returned unchanged, so nested renders share the stack of the
// top-level call.
func WithYieldStack(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(stackKey{}).(*yieldStack); ok {
		return ctx
	}
	return context.WithValue(ctx, stackKey{}, &yieldStack{})
}

// ScopeFrom returns the scope of the render invocation executing under ctx.
// Engine helpers that only receive a context (scriggo natives) use it.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	scope, ok := ctx.Value(scopeKey{}).(*Scope)
	return scope, ok && scope != nil
}

// ScopeOptions describes one render invocation.
type ScopeOptions struct {
	Identity  string
	Extension string
	Context   any
	Locals    map[string]any
	Block     Producer
	Partials  PartialRenderer
}

// Scope is what a compiled template executes against: the view context, the
// locals of this call, and the yield channel bound to this call's block.
// A Scope belongs to a single render invocation and is not safe for
// concurrent use.
type Scope struct {
	Identity  string
	Extension string
	Context   any
	Locals    map[string]any

	ctx      context.Context
	stack    *yieldStack
	block    Producer
	partials PartialRenderer
	err      error
}

// NewScope pushes opts.Block onto the yield stack carried by ctx and returns
// the scope together with the function that pops it. Callers must invoke
// release once the template finished executing.
func NewScope(ctx context.Context, opts ScopeOptions) (*Scope, func()) {
	ctx = WithYieldStack(ctx)
	stack := ctx.Value(stackKey{}).(*yieldStack)

	scope := &Scope{
		Identity:  opts.Identity,
		Extension: opts.Extension,
		Context:   opts.Context,
		Locals:    opts.Locals,
		stack:     stack,
		block:     opts.Block,
		partials:  opts.Partials,
	}
	scope.ctx = context.WithValue(ctx, scopeKey{}, scope)

	stack.push(opts.Block)
	depth := stack.depth()
	return scope, func() {
		if stack.depth() == depth {
			stack.pop()
		}
	}
}

// Ctx returns the context engines should execute under. It carries the yield
// stack and the scope itself.
func (s *Scope) Ctx() context.Context {
	return s.ctx
}

// Data returns the variables a template sees: the locals plus the view
// context under ContextKey. Locals cannot shadow the context.
func (s *Scope) Data() map[string]any {
	data := make(map[string]any, len(s.Locals)+1)
	for key, value := range s.Locals {
		data[key] = value
	}
	data[ContextKey] = s.Context
	return data
}

// Yield calls the nearest bound producer and returns its content. Yielding
// with nothing bound fails with a NoYieldTargetError.
func (s *Scope) Yield() (string, error) {
	producer := s.stack.top()
	if producer == nil {
		err := NewNoYieldTargetError(s.Identity)
		s.Fail(err)
		return "", err
	}
	out, err := producer()
	if err != nil {
		s.Fail(err)
		return "", err
	}
	return out, nil
}

// HasBlock reports whether a producer is bound at the top of the yield stack.
func (s *Scope) HasBlock() bool {
	return s.stack.top() != nil
}

// Capture turns template-defined content into a producer. While the producer
// runs, this scope's own block is the yield target again, so a yield inside
// the captured content resolves to the template that defined it and not to
// the partial or method that invoked it.
func (s *Scope) Capture(fn func() (string, error)) Producer {
	if fn == nil {
		return nil
	}
	return func() (string, error) {
		s.stack.push(s.block)
		defer s.stack.pop()
		return fn()
	}
}

// Render renders the named partial, binding block as its yield target.
func (s *Scope) Render(name string, block Producer) (string, error) {
	if s.partials == nil {
		err := fmt.Errorf("engine: template %q cannot render partial %q: no partial renderer bound", s.Identity, name)
		s.Fail(err)
		return "", err
	}
	out, err := s.partials(s.ctx, name, block)
	if err != nil {
		s.Fail(err)
		return "", err
	}
	return out, nil
}

// Partial returns a producer that renders the named partial without a block.
// Templates pass it to Render when the wrapped content lives in its own file.
func (s *Scope) Partial(name string) Producer {
	return func() (string, error) {
		return s.Render(name, nil)
	}
}

// Fail records the first error raised by a helper. Engines whose helper
// functions cannot return errors call it and the Renderer reports the
// recorded error in place of the engine's own.
func (s *Scope) Fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first recorded helper error.
func (s *Scope) Err() error {
	return s.err
}

// AsProducer converts a value passed to a render helper into a producer.
// Producers pass through, strings and fmt.Stringers become literals, and nil
// binds nothing.
func AsProducer(value any) (Producer, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Producer:
		return v, nil
	case func() (string, error):
		return v, nil
	case func() string:
		return func() (string, error) { return v(), nil }, nil
	case string:
		return Literal(v), nil
	case fmt.Stringer:
		return Literal(v.String()), nil
	default:
		return nil, fmt.Errorf("engine: cannot use %T as a yield block", value)
	}
}
