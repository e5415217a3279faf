package theory

import (
	"fmt"
	"slices"
	"sort"
)

// Built-in scale names.
const (
	Major      = "major"
	Minor      = "minor"
	Dorian     = "dorian"
	Mixolydian = "mixolydian"
)

// DefaultScale is used when no scale is configured.
const DefaultScale = Minor

var scales = map[string][]ChromaticDegree{
	Major:      {0, 2, 4, 5, 7, 9, 11},
	Minor:      {0, 2, 3, 5, 7, 8, 10},
	Dorian:     {0, 2, 3, 5, 7, 9, 10},
	Mixolydian: {0, 2, 4, 5, 7, 9, 10},
}

// Degrees returns the ordered degrees of the named scale. Unknown names
// yield an empty slice, not an error.
func Degrees(name string) []ChromaticDegree {
	return slices.Clone(scales[name])
}

// Lookup is like Degrees but reports unknown names as ErrUnknownScale.
func Lookup(name string) ([]ChromaticDegree, error) {
	d, ok := scales[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
	return slices.Clone(d), nil
}

// HasScale reports whether name is a built-in scale.
func HasScale(name string) bool {
	_, ok := scales[name]
	return ok
}

// ScaleNames returns the built-in scale names in sorted order.
func ScaleNames() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
