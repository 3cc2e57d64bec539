// Package edgesel classifies the edges of a finished solid with purely
// geometric predicates. Boolean operations do not keep edge identities
// stable across reruns, so rounding steps select edges by their bounding
// boxes instead of by name.
package edgesel

import (
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// Tolerances used by the named predicates.
const (
	// FullHeightFraction is the share of the part height a vertical edge
	// must span to count as full height. It rules out short edges left by
	// cut features.
	FullHeightFraction = 0.8

	// DegenerateTolerance is the largest horizontal extent of a vertical
	// edge's bounding box.
	DegenerateTolerance = 0.1

	// RimTolerance absorbs floating-point drift in the Z position of rim
	// edges after upstream booleans.
	RimTolerance = 0.5
)

// Predicate reports whether an edge qualifies for a rounding step.
type Predicate func(e kernel.Edge) bool

// Select returns the edges matching p in kernel order.
func Select(edges []kernel.Edge, p Predicate) []kernel.Edge {
	var out []kernel.Edge
	for _, e := range edges {
		if p(e) {
			out = append(out, e)
		}
	}
	return out
}

// All matches edges that satisfy every predicate.
func All(ps ...Predicate) Predicate {
	return func(e kernel.Edge) bool {
		for _, p := range ps {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(e kernel.Edge) bool { return !p(e) }
}

// IsVerticalFullHeight matches edges longer than FullHeightFraction of
// height whose X and Y extents are both below DegenerateTolerance.
func IsVerticalFullHeight(height float64) Predicate {
	return func(e kernel.Edge) bool {
		sz := e.Size()
		return e.Length > height*FullHeightFraction &&
			sz[0] < DegenerateTolerance && sz[1] < DegenerateTolerance
	}
}

// IsOnOuterPerimeter matches edges whose midpoint lies within band of the
// X=0 or X=depth face and within band of the Y=0 or Y=width face, that is
// near one of the four outer vertical corners of a depth by width part
// whose minimum corner is at the origin.
func IsOnOuterPerimeter(depth, width, band float64) Predicate {
	return func(e kernel.Edge) bool {
		m := e.Mid()
		nearX := m[0] < band || m[0] > depth-band
		nearY := m[1] < band || m[1] > width-band
		return nearX && nearY
	}
}

// IsAtHeight matches edges whose bounding box lies within RimTolerance of
// z on both ZMin and ZMax.
func IsAtHeight(z float64) Predicate {
	return IsAtHeightTol(z, RimTolerance)
}

// IsAtHeightTol is IsAtHeight with an explicit tolerance.
func IsAtHeightTol(z, tol float64) Predicate {
	return func(e kernel.Edge) bool {
		return math.Abs(e.Min[2]-z) < tol && math.Abs(e.Max[2]-z) < tol
	}
}

// WithinXY matches edges whose bounding box lies inside the footprint
// [x0, x1] by [y0, y1].
func WithinXY(x0, y0, x1, y1 float64) Predicate {
	return func(e kernel.Edge) bool {
		return e.Min[0] >= x0 && e.Max[0] <= x1 && e.Min[1] >= y0 && e.Max[1] <= y1
	}
}

// IsTiny matches edges whose bounding box is smaller than tol on every
// axis.
func IsTiny(tol float64) Predicate {
	return func(e kernel.Edge) bool {
		sz := e.Size()
		return sz[0] < tol && sz[1] < tol && sz[2] < tol
	}
}

// MaxExtentAtLeast matches edges whose largest bounding box extent is at
// least l.
func MaxExtentAtLeast(l float64) Predicate {
	return func(e kernel.Edge) bool {
		sz := e.Size()
		return math.Max(sz[0], math.Max(sz[1], sz[2])) >= l
	}
}
