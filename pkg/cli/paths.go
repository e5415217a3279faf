package cli

import (
	"os"
	"path/filepath"
)

// Paths locates an app's files under one root directory, by default
// ~/.retromusic/<app>.
type Paths struct {
	Root string
}

// NewPaths returns the default Paths of appName under the user's home
// directory.
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{Root: filepath.Join(home, DefaultBaseDir, appName)}, nil
}

// ConfigFile returns <root>/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.Root, DefaultConfigFile)
}

// LogDir returns <root>/logs.
func (p *Paths) LogDir() string {
	return filepath.Join(p.Root, "logs")
}

// DataDir returns <root>/data.
func (p *Paths) DataDir() string {
	return filepath.Join(p.Root, "data")
}

// LibraryDir is the default BadgerDB directory.
func (p *Paths) LibraryDir() string {
	return filepath.Join(p.DataDir(), "library")
}

// ArtifactDir is the default directory for rendered MIDI files.
func (p *Paths) ArtifactDir() string {
	return filepath.Join(p.DataDir(), "artifacts")
}

// LogPath resolves name inside LogDir unless it is already absolute.
func (p *Paths) LogPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.LogDir(), name)
}

// EnsureLogDir creates LogDir.
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0o755)
}

// EnsureDataDir creates DataDir.
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0o755)
}
