// Package workspace hands out a private output directory per pipeline run
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Workspace is a directory owned by a single run
type Workspace struct {
	ID  string
	dir string

	once sync.Once
	err  error
}

// New creates <base>/<uuid>. An empty base uses the OS temp directory.
func New(base string) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}

	id := uuid.NewString()
	dir := filepath.Join(base, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}

	return &Workspace{ID: id, dir: dir}, nil
}

// Dir returns the workspace directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the location of name inside the workspace
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Release removes the workspace and everything in it. Later calls are no-ops.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.err = fmt.Errorf("failed to release workspace %s: %w", w.dir, err)
		}
	})
	return w.err
}
