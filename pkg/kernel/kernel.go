// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling, boolean
// operations, edge queries and edge rounding behind this interface. The
// kernel abstraction allows swapping backends without changing the part
// recipes or the builder.
package kernel

import "errors"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Primitive conventions follow FreeCAD's Part module: a box has its minimum
// corner at the origin, cylinders, cones and domes have their base centre at
// the origin and extend along +Z, and extrusions sweep a wire in the XY
// plane from z=0 to z=height. Callers place primitives with Translate and
// Rotate.
//
// A Kernel is single-caller: callers must not use one Kernel, or solids it
// produced, from multiple goroutines at once.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64, segments int) (Solid, error)
	Cone(height, bottomRadius, topRadius float64, segments int) (Solid, error)
	Dome(radius, height float64, segments int) (Solid, error)
	Extrude(w Wire, height float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Edge queries and rounding. Fillet and Chamfer return a recoverable
	// error when the request cannot be honoured for the local geometry;
	// the input solid is left untouched in that case.
	Edges(s Solid) ([]Edge, error)
	Fillet(s Solid, radius float64, edges []Edge) (Solid, error)
	// Chamfer sets the bevel back by d1 along the adjacent face whose normal
	// is closest to Z and by d2 along the other face.
	Chamfer(s Solid, d1, d2 float64, edges []Edge) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

var (
	// ErrUnsupported reports an operation the backend cannot perform.
	ErrUnsupported = errors.New("kernel: operation not supported by this backend")

	// ErrFilletTooLarge reports a rounding radius that exceeds the extent of
	// a face adjacent to one of the requested edges.
	ErrFilletTooLarge = errors.New("kernel: rounding radius exceeds adjacent face extent")

	// ErrUnknownEdge reports an edge that was not produced by the solid it
	// was passed back with.
	ErrUnknownEdge = errors.New("kernel: edge does not belong to solid")
)
