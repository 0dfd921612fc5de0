package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	logMsgAdapterRegistered   = "template adapter registered"
	logMsgAdapterDeregistered = "template adapter deregistered"
	logMsgAdapterUnavailable  = "no available template adapter"
	logMsgAdapterReplaced     = "template adapters replaced"

	logFieldExtension = "extension"
	logFieldAdapter   = "adapter"
	logFieldLibrary   = "library"
	logFieldPosition  = "position"
	logFieldCount     = "count"
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registry mutations.
// Default: zap.NewNop()
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// RegisterOption controls where Register places an adapter.
type RegisterOption func(*placement)

type placement struct {
	last   bool
	before string
}

// Append places the adapter at the lowest priority, the slot for a plain,
// always-available fallback engine.
func Append() RegisterOption {
	return func(p *placement) {
		p.last = true
	}
}

// Before places the adapter directly ahead of the named adapter. When the
// named adapter is not registered the default placement applies.
func Before(name string) RegisterOption {
	return func(p *placement) {
		p.before = normalizeName(name)
	}
}

// Registry maps extensions to priority-ordered adapters. Reads are concurrent;
// mutations replace the per-extension slice so a resolve never observes a
// half-applied change.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string][]EngineAdapter
	retired  map[string]EngineAdapter
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		adapters: make(map[string][]EngineAdapter),
		retired:  make(map[string]EngineAdapter),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Register inserts adapter into the priority list of extension, ahead of
// every adapter already there unless options say otherwise. Registering an
// adapter name that is already present moves it instead of duplicating it.
func (r *Registry) Register(extension string, adapter EngineAdapter, options ...RegisterOption) error {
	if adapter == nil {
		return fmt.Errorf("adapter: adapter is required")
	}
	ext := NormalizeExtension(extension)
	if ext == "" {
		return fmt.Errorf("adapter: extension is required")
	}
	name := normalizeName(adapter.Name())
	if name == "" {
		return fmt.Errorf("adapter: adapter name is required")
	}

	var place placement
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&place)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.adapters[ext]
	next := make([]EngineAdapter, 0, len(current)+1)
	for _, existing := range current {
		if normalizeName(existing.Name()) == name {
			continue
		}
		next = append(next, existing)
	}

	position := 0
	switch {
	case place.before != "" && place.before != name && indexOf(next, place.before) >= 0:
		position = indexOf(next, place.before)
	case place.last:
		position = len(next)
	}
	next = append(next, nil)
	copy(next[position+1:], next[position:])
	next[position] = adapter

	r.adapters[ext] = next
	delete(r.retired, ext)

	r.logger.Debug(logMsgAdapterRegistered,
		zap.String(logFieldExtension, ext),
		zap.String(logFieldAdapter, name),
		zap.String(logFieldLibrary, adapter.RequiredLibrary()),
		zap.Int(logFieldPosition, position))
	return nil
}

// Replace swaps the whole priority list of extension in one step, highest
// priority first. Duplicate names keep their first position. An empty list
// removes the extension as Deregister would.
func (r *Registry) Replace(extension string, adapters ...EngineAdapter) error {
	ext := NormalizeExtension(extension)
	if ext == "" {
		return fmt.Errorf("adapter: extension is required")
	}

	next := make([]EngineAdapter, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			return fmt.Errorf("adapter: adapter is required")
		}
		name := normalizeName(adapter.Name())
		if name == "" {
			return fmt.Errorf("adapter: adapter name is required")
		}
		if indexOf(next, name) >= 0 {
			continue
		}
		next = append(next, adapter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.adapters[ext]
	if len(next) == 0 {
		if len(current) > 0 {
			delete(r.adapters, ext)
			r.retired[ext] = current[0]
		}
		return nil
	}
	r.adapters[ext] = next
	delete(r.retired, ext)

	r.logger.Debug(logMsgAdapterReplaced,
		zap.String(logFieldExtension, ext),
		zap.Int(logFieldCount, len(next)))
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(extension string, adapter EngineAdapter, options ...RegisterOption) {
	if err := r.Register(extension, adapter, options...); err != nil {
		panic(err)
	}
}

// Deregister removes the named adapter from the priority list of extension.
// Removing an adapter that is not registered is a no-op. Templates already
// compiled through the adapter stay cached until the cache is cleared.
func (r *Registry) Deregister(extension, name string) {
	ext := NormalizeExtension(extension)
	key := normalizeName(name)
	if ext == "" || key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.adapters[ext]
	idx := indexOf(current, key)
	if idx < 0 {
		return
	}

	removed := current[idx]
	next := make([]EngineAdapter, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)

	if len(next) == 0 {
		delete(r.adapters, ext)
		r.retired[ext] = removed
	} else {
		r.adapters[ext] = next
	}

	r.logger.Debug(logMsgAdapterDeregistered,
		zap.String(logFieldExtension, ext),
		zap.String(logFieldAdapter, key))
}

// Resolve returns the first available adapter for extension, in priority
// order. When none is available the error names the library of the
// highest-priority adapter, even if a lower-priority adapter's library is the
// one that is missing.
func (r *Registry) Resolve(extension string) (EngineAdapter, error) {
	ext := NormalizeExtension(extension)

	r.mu.RLock()
	list := r.adapters[ext]
	retired := r.retired[ext]
	r.mu.RUnlock()

	if len(list) == 0 {
		if retired != nil {
			r.logUnavailable(ext, retired)
			return nil, NewUnavailableEngineError(ext, retired)
		}
		return nil, NewUnknownExtensionError(ext, r.Extensions())
	}

	for _, adapter := range list {
		if adapter.Available() {
			return adapter, nil
		}
	}

	r.logUnavailable(ext, list[0])
	return nil, NewUnavailableEngineError(ext, list[0])
}

// Adapters returns a priority-ordered snapshot of the adapters for extension.
func (r *Registry) Adapters(extension string) []EngineAdapter {
	ext := NormalizeExtension(extension)

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.adapters[ext]
	out := make([]EngineAdapter, len(list))
	copy(out, list)
	return out
}

// Extensions returns a sorted list of extensions with registered adapters.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for ext := range r.adapters {
		names = append(names, ext)
	}
	sort.Strings(names)
	return names
}

// Has reports whether extension has at least one registered adapter.
func (r *Registry) Has(extension string) bool {
	ext := NormalizeExtension(extension)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters[ext]) > 0
}

// Clone returns an independent registry with the same priority lists. Tests
// mutate a clone to stay isolated from process-wide state.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &Registry{
		adapters: make(map[string][]EngineAdapter, len(r.adapters)),
		retired:  make(map[string]EngineAdapter, len(r.retired)),
		logger:   r.logger,
	}
	for ext, list := range r.adapters {
		out.adapters[ext] = append([]EngineAdapter(nil), list...)
	}
	for ext, adapter := range r.retired {
		out.retired[ext] = adapter
	}
	return out
}

func (r *Registry) logUnavailable(ext string, top EngineAdapter) {
	r.logger.Warn(logMsgAdapterUnavailable,
		zap.String(logFieldExtension, ext),
		zap.String(logFieldAdapter, top.Name()),
		zap.String(logFieldLibrary, top.RequiredLibrary()))
}

// NormalizeExtension lower-cases an extension and strips a leading dot, so
// ".HTML", "html" and " html " share one registry slot.
func NormalizeExtension(extension string) string {
	ext := strings.ToLower(strings.TrimSpace(extension))
	return strings.TrimPrefix(ext, ".")
}

func indexOf(list []EngineAdapter, name string) int {
	for i, adapter := range list {
		if normalizeName(adapter.Name()) == name {
			return i
		}
	}
	return -1
}
