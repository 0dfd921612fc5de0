package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrLibraryUnavailable reports that a backing library is not provided in the
// running binary.
var ErrLibraryUnavailable = errors.New("engine: library not available")

// Loader constructs the Engine of a backing library. It runs at most once per
// Provide call, the first time the library is loaded.
type Loader func() (Engine, error)

type library struct {
	loader Loader

	once   sync.Once
	engine Engine
	err    error
}

func (l *library) load() (Engine, error) {
	l.once.Do(func() {
		l.engine, l.err = l.loader()
		if l.err == nil && l.engine == nil {
			l.err = errors.New("engine: loader returned no engine")
		}
	})
	return l.engine, l.err
}

var libraries = struct {
	sync.RWMutex
	entries map[string]*library
}{entries: make(map[string]*library)}

// Provide makes a backing library available under name. Engine packages call
// it from init so that a blank import links the library in:
//
//	import _ "github.com/goliatone/go-view/pkg/engines/pongo2"
//
// Providing a name again replaces the previous loader and discards its
// memoized engine. Provide panics when name is empty or loader is nil.
func Provide(name string, loader Loader) {
	key := normalizeLibrary(name)
	if key == "" {
		panic("engine: Provide called with empty library name")
	}
	if loader == nil {
		panic("engine: Provide called with nil loader for " + key)
	}

	libraries.Lock()
	defer libraries.Unlock()
	libraries.entries[key] = &library{loader: loader}
}

// Available reports whether the named library is provided. It is a read-locked
// map lookup and has no side effects.
func Available(name string) bool {
	key := normalizeLibrary(name)

	libraries.RLock()
	defer libraries.RUnlock()
	_, ok := libraries.entries[key]
	return ok
}

// Load returns the Engine of the named library, running its loader on first
// use. A library that is not provided yields an error wrapping
// ErrLibraryUnavailable.
func Load(name string) (Engine, error) {
	key := normalizeLibrary(name)

	libraries.RLock()
	lib, ok := libraries.entries[key]
	libraries.RUnlock()

	if !ok {
		return nil, fmt.Errorf("engine: load %q: %w", key, ErrLibraryUnavailable)
	}
	eng, err := lib.load()
	if err != nil {
		return nil, fmt.Errorf("engine: load %q: %w", key, err)
	}
	return eng, nil
}

// Withdraw removes the named library, as if it had never been linked, and
// returns a function that puts the same entry back. Operators use it to force
// a fallback; tests use it to simulate a missing install:
//
//	t.Cleanup(engine.Withdraw("pongo2"))
func Withdraw(name string) (restore func()) {
	key := normalizeLibrary(name)

	libraries.Lock()
	lib, ok := libraries.entries[key]
	delete(libraries.entries, key)
	libraries.Unlock()

	return func() {
		if !ok {
			return
		}
		libraries.Lock()
		defer libraries.Unlock()
		if _, exists := libraries.entries[key]; !exists {
			libraries.entries[key] = lib
		}
	}
}

// Libraries returns the sorted names of all provided libraries.
func Libraries() []string {
	libraries.RLock()
	defer libraries.RUnlock()

	names := make([]string, 0, len(libraries.entries))
	for name := range libraries.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeLibrary(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
