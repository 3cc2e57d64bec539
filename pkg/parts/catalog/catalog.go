// Package catalog registers every part family by name.
package catalog

import (
	"fmt"
	"sort"

	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/parts/antenna"
	"github.com/sixbitdeep/3D-Models/pkg/parts/mount"
	"github.com/sixbitdeep/3D-Models/pkg/parts/sleeve"
	"github.com/sixbitdeep/3D-Models/pkg/parts/tpu"
)

var families = map[string]parts.Family{}

func init() {
	for _, f := range []parts.Family{
		sleeve.Enclosed{},
		sleeve.CShape{},
		antenna.Family{},
		mount.Family{},
		tpu.Family{},
	} {
		families[f.Name()] = f
	}
}

// Lookup returns the named family.
func Lookup(name string) (parts.Family, error) {
	f, ok := families[name]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown part family %q", name)
	}
	return f, nil
}

// Names returns the registered family names in sorted order.
func Names() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every family, sorted by name.
func All() []parts.Family {
	out := make([]parts.Family, 0, len(families))
	for _, name := range Names() {
		out = append(out, families[name])
	}
	return out
}
