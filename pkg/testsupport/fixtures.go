package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/engine"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// CaptureOutput runs a streaming render and returns what it wrote.
func CaptureOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render template: %v", err)
	}
	return buf.String()
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	betweenTags = regexp.MustCompile(`>\s+<`)
)

// NormalizeWhitespace collapses runs of whitespace between tags and trims the
// result, so assertions do not depend on template indentation.
func NormalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	s = betweenTags.ReplaceAllString(s, "><")
	return whitespace.ReplaceAllString(s, " ")
}

// MapLoader serves template sources from memory. It is safe for concurrent
// use and counts loads per identity, which lets tests observe recompilation.
type MapLoader struct {
	mu      sync.Mutex
	sources map[string]string
	loads   map[string]int
}

// NewMapLoader creates a loader over a copy of sources.
func NewMapLoader(sources map[string]string) *MapLoader {
	l := &MapLoader{
		sources: make(map[string]string, len(sources)),
		loads:   make(map[string]int),
	}
	for identity, source := range sources {
		l.sources[identity] = source
	}
	return l
}

// Load returns the source for identity. It matches render.SourceLoader.
func (l *MapLoader) Load(identity string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loads[identity]++
	source, ok := l.sources[identity]
	if !ok {
		return "", fmt.Errorf("testsupport: template %q: %w", identity, fs.ErrNotExist)
	}
	return source, nil
}

// Set replaces the source of identity.
func (l *MapLoader) Set(identity, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[identity] = source
}

// Loads reports how many times identity was loaded.
func (l *MapLoader) Loads(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[identity]
}

// WithdrawLibrary removes an engine library for the duration of the test.
func WithdrawLibrary(t *testing.T, name string) {
	t.Helper()
	restore := engine.Withdraw(name)
	t.Cleanup(restore)
}
