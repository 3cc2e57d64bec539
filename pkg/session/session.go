// Package session holds the host document: the named, ordered registry of
// finished solids that a build registers into and that export reads from.
// A Document is passed explicitly to the builder; there is no current or
// global document.
package session

import (
	"fmt"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// Object is one registered solid.
type Object struct {
	Name     string
	Solid    kernel.Solid
	Revision uint64 // document revision at which the object was last put
}

// Document is a named registry of objects kept in registration order.
// Put replaces an existing object in place, so a rerun keeps exactly one
// object per name and the original ordering.
type Document struct {
	Name     string
	objects  []*Object
	index    map[string]int
	revision uint64
}

// New creates an empty document.
func New(name string) *Document {
	return &Document{Name: name, index: make(map[string]int)}
}

// Put adds s under name, replacing any object already registered with that
// name, and bumps the revision.
func (d *Document) Put(name string, s kernel.Solid) {
	d.revision++
	if i, ok := d.index[name]; ok {
		d.objects[i].Solid = s
		d.objects[i].Revision = d.revision
		return
	}
	d.index[name] = len(d.objects)
	d.objects = append(d.objects, &Object{Name: name, Solid: s, Revision: d.revision})
}

// Remove drops the named object. It reports whether one was registered.
func (d *Document) Remove(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	d.revision++
	d.objects = append(d.objects[:i], d.objects[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.objects); j++ {
		d.index[d.objects[j].Name] = j
	}
	return true
}

// Acquire runs the clean-rerun precondition for a build about to register
// names: every stale object with one of those names is removed. It returns
// the names that were removed.
func (d *Document) Acquire(names ...string) []string {
	var removed []string
	for _, n := range names {
		if d.Remove(n) {
			removed = append(removed, n)
		}
	}
	return removed
}

// Object returns the named object.
func (d *Document) Object(name string) (*Object, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.objects[i], true
}

// MustObject returns the named object, or panics.
func (d *Document) MustObject(name string) *Object {
	o, ok := d.Object(name)
	if !ok {
		panic(fmt.Sprintf("session: no object named %q", name))
	}
	return o
}

// Objects returns the registered objects in registration order.
func (d *Document) Objects() []*Object {
	out := make([]*Object, len(d.objects))
	copy(out, d.objects)
	return out
}

// Names returns the registered names in registration order.
func (d *Document) Names() []string {
	out := make([]string, len(d.objects))
	for i, o := range d.objects {
		out[i] = o.Name
	}
	return out
}

// Len returns the number of registered objects.
func (d *Document) Len() int { return len(d.objects) }

// Revision returns a counter bumped by every Put and successful Remove.
func (d *Document) Revision() uint64 { return d.revision }

// Clear removes every object.
func (d *Document) Clear() {
	if len(d.objects) == 0 {
		return
	}
	d.revision++
	d.objects = nil
	d.index = make(map[string]int)
}
