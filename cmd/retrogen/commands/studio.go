package commands

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Malifforas/music/pkg/library"
	"github.com/Malifforas/music/pkg/storage"
	"github.com/Malifforas/music/pkg/studio"
)

// openStudio opens the library and artifact store of the selected context.
// Unset locations default to the data directory beside the config file.
// The returned func closes the library.
func openStudio(ctx context.Context) (*studio.Studio, func(), error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	c, err := cfg.ResolveContext(contextName)
	if err != nil {
		return nil, nil, err
	}
	paths := cfg.Paths()
	logger := slog.Default()

	libLocation := cmp.Or(c.Library, paths.LibraryDir())
	lib, err := library.Open(libLocation, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(ctx, cmp.Or(c.Store, paths.ArtifactDir()))
	if err != nil {
		lib.Close()
		return nil, nil, err
	}
	logger.Debug("studio opened", "library", libLocation, "context", c.Name)

	closeFn := func() {
		if err := lib.Close(); err != nil {
			logger.Warn("failed to close library", "error", err)
		}
	}
	return studio.New(studio.Config{Library: lib, Store: store, Logger: logger}), closeFn, nil
}

// writeFile saves src to path through a local FileStore rooted at the
// file's directory, so a failed write leaves nothing behind.
func writeFile(ctx context.Context, path string, src io.WriterTo) (int64, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	fs, err := storage.NewLocal(filepath.Dir(abs))
	if err != nil {
		return 0, err
	}
	return storage.Save(ctx, fs, filepath.Base(abs), src)
}
