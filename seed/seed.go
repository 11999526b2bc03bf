// Package seed bundles the sample content shown while a collection is still
// empty, and uploads it into a live store.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"tourdesk/collections"
)

//go:embed data/*.json
var bundled embed.FS

// Data is the embedded fixture tree, one data/<kind>.json file per kind.
var Data fs.FS = bundled

var ErrNoFixtures = errors.New("seed: no fixtures for kind")

// Fixtures decodes the bundled records for kind.
func Fixtures[T any](kind collections.Kind) ([]T, error) {
	return load[T](Data, kind)
}

// Raw returns the bundled records for kind as plain maps.
func Raw(kind collections.Kind) ([]map[string]any, error) {
	return load[map[string]any](Data, kind)
}

func load[T any](fsys fs.FS, kind collections.Kind) ([]T, error) {
	data, err := fs.ReadFile(fsys, "data/"+string(kind)+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoFixtures, kind)
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode fixtures %s: %w", kind, err)
	}
	return out, nil
}

// OrFallback returns live unless it is empty, in which case it returns
// fallback and true. A collection leaves fallback mode on its first write.
func OrFallback[T any](live, fallback []T) ([]T, bool) {
	if len(live) > 0 {
		return live, false
	}
	if fallback == nil {
		fallback = []T{}
	}
	return fallback, true
}
