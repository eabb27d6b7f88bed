package machine

import (
	"maps"
	"slices"
)

// DataSpace is the variable store of an extended machine. Values are always strings;
// callers parse them as needed.
type DataSpace map[string]string

// Clone returns an independent copy.
func (d DataSpace) Clone() DataSpace {
	if d == nil {
		return DataSpace{}
	}
	return maps.Clone(d)
}

// Names returns the defined variable names, sorted.
func (d DataSpace) Names() []string {
	return slices.Sorted(maps.Keys(d))
}
