package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files under a root directory on disk. Writes go to a
// temporary file in the target directory and are renamed into place on
// Close, so readers never observe a half-written artifact.
type Local struct {
	root string
}

// NewLocal returns a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute root directory.
func (l *Local) Root() string {
	return l.root
}

// Path returns the filesystem path of p.
func (l *Local) Path(p string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(p))
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: path %q escapes the store root", p)
	}
	return full, nil
}

func (l *Local) Read(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := l.Path(p)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (l *Local) Write(_ context.Context, p string) (io.WriteCloser, error) {
	full, err := l.Path(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".*")
	if err != nil {
		return nil, err
	}
	return &localWriter{f: tmp, dst: full}, nil
}

func (l *Local) Delete(_ context.Context, p string) error {
	full, err := l.Path(p)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Exists(_ context.Context, p string) (bool, error) {
	full, err := l.Path(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// localWriter renames its temporary file to dst on a clean Close.
type localWriter struct {
	f      *os.File
	dst    string
	failed bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		w.failed = true
	}
	return n, err
}

func (w *localWriter) Close() error {
	name := w.f.Name()
	if err := w.f.Close(); err != nil || w.failed {
		os.Remove(name)
		if err == nil {
			err = errors.New("storage: write failed")
		}
		return err
	}
	if err := os.Rename(name, w.dst); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

var _ FileStore = (*Local)(nil)
