package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Location identifies where a schema document lives so loaders can read
// files, fs.FS entries, or URLs without leaking implementation details.
type Location interface {
	Kind() LocationKind
	Path() string
}

// LocationKind enumerates the loader modalities.
type LocationKind string

const (
	LocationKindFile LocationKind = "file"
	LocationKindFS   LocationKind = "fs"
	LocationKindURL  LocationKind = "url"
)

type fileLocation struct {
	path string
}

func (l fileLocation) Path() string       { return l.path }
func (l fileLocation) Kind() LocationKind { return LocationKindFile }

// AtFile points to a schema document on disk.
func AtFile(path string) Location {
	return fileLocation{path: filepath.Clean(path)}
}

type fsLocation struct {
	name string
}

func (l fsLocation) Path() string       { return l.name }
func (l fsLocation) Kind() LocationKind { return LocationKindFS }

// AtFS points to a schema document inside an fs.FS.
func AtFS(name string) Location {
	return fsLocation{name: name}
}

type urlLocation struct {
	raw string
}

func (l urlLocation) Path() string       { return l.raw }
func (l urlLocation) Kind() LocationKind { return LocationKindURL }

// AtURL validates raw and returns a URL location.
func AtURL(raw string) (Location, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL location")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return urlLocation{raw: raw}, nil
}

// MustAtURL panics if raw is not a valid URL. Useful for wiring constants.
func MustAtURL(raw string) Location {
	loc, err := AtURL(raw)
	if err != nil {
		panic(err)
	}
	return loc
}
