package library

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Open returns the Library described by location:
//
//	/path/to/dir, file:///path, badger:///path   BadgerDB directory
//	memory://                                    in-process memory
func Open(location string, logger *slog.Logger) (*Library, error) {
	if location == "" {
		return nil, fmt.Errorf("library: empty location")
	}
	if !strings.Contains(location, "://") {
		return NewBadger(BadgerOptions{Dir: location, Logger: logger})
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("library: parse %q: %w", location, err)
	}
	switch u.Scheme {
	case "memory", "mem":
		return NewMemory(logger), nil
	case "file", "badger":
		return NewBadger(BadgerOptions{Dir: u.Path, Logger: logger})
	}
	return nil, fmt.Errorf("library: unsupported scheme %q", u.Scheme)
}
