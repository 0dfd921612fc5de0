// Package loader reads template sources from a file system and keeps a
// renderer's compiled templates in step with the files on disk.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/goliatone/go-view/pkg/render"
)

// FS loads template sources by identity, a slash separated path relative to
// the root of the file system.
type FS struct {
	fsys fs.FS
	root string
}

// New creates a loader over fsys.
func New(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Dir creates a loader over the directory root.
func Dir(root string) *FS {
	return &FS{fsys: os.DirFS(root), root: root}
}

// Root returns the directory the loader was created with, if any.
func (l *FS) Root() string {
	return l.root
}

// Load returns the source of identity. It matches render.SourceLoader.
func (l *FS) Load(identity string) (string, error) {
	name, err := l.Resolve(identity)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", fmt.Errorf("loader: read %q: %w", identity, err)
	}
	return string(data), nil
}

// Loader returns Load as a render.SourceLoader.
func (l *FS) Loader() render.SourceLoader {
	return l.Load
}

// Resolve cleans identity into a path valid for the file system. Paths are
// cleaned as if rooted, so "../" segments cannot leave the root.
func (l *FS) Resolve(identity string) (string, error) {
	name := strings.TrimSpace(strings.ReplaceAll(identity, "\\", "/"))
	name = path.Clean("/" + name)[1:]
	if name == "" {
		return "", errors.New("loader: empty template identity")
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("loader: invalid template identity %q", identity)
	}
	return name, nil
}

// Exists reports whether identity names a regular file.
func (l *FS) Exists(identity string) bool {
	name, err := l.Resolve(identity)
	if err != nil {
		return false
	}
	info, err := fs.Stat(l.fsys, name)
	return err == nil && info.Mode().IsRegular()
}
