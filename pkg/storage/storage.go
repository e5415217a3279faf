// Package storage persists rendered artifacts (Standard MIDI Files) to a
// pluggable backend: a local directory, an S3 bucket, or memory.
//
// Callers pick a backend with [Open] and write through [Save], which
// removes the destination again when encoding or upload fails.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file. Missing files yield an error wrapping
	// os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, replacing any existing
	// content once the writer is closed. Close reports whether the data
	// was stored.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ArtifactDir is the directory rendered compositions are saved under.
const ArtifactDir = "compositions"

// ArtifactPath returns the storage path of the MIDI file for id.
func ArtifactPath(id string) string {
	return path.Join(ArtifactDir, id+".mid")
}

// Save writes src to p in fs and returns the number of bytes written. If
// writing or closing fails, the destination is deleted so no partial file
// remains.
func Save(ctx context.Context, fs FileStore, p string, src io.WriterTo) (int64, error) {
	w, err := fs.Write(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("storage: open %s: %w", p, err)
	}
	n, err := src.WriteTo(w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if derr := fs.Delete(ctx, p); derr != nil {
			return n, fmt.Errorf("storage: save %s: %w (cleanup: %v)", p, err, derr)
		}
		return n, fmt.Errorf("storage: save %s: %w", p, err)
	}
	return n, nil
}

// Load reads the whole file at p.
func Load(ctx context.Context, fs FileStore, p string) ([]byte, error) {
	r, err := fs.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
