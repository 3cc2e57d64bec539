package sdfx

import (
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// patchTol is the tolerance used when testing patch membership in leaf
// local coordinates.
const patchTol = 1e-7

type surfaceKind int

const (
	surfacePlane surfaceKind = iota
	surfaceCylinder
	surfaceCone
)

// face is an analytic surface patch contributed by one CSG leaf, expressed
// in world coordinates. Cylinder and cone patches share an axis
// representation: origin is the axis point at local z=0 and the radius
// varies linearly from r0 to r1 over height.
type face struct {
	kind   surfaceKind
	origin r3.Vec
	normal r3.Vec // planes only
	axis   r3.Vec
	r0, r1 float64
	height float64

	toLocal xform
	inside  func(local r3.Vec) bool
	bounds  box3
}

func within(v, lo, hi float64) bool {
	return v >= lo-patchTol && v <= hi+patchTol
}

// slope returns dr/dt along the axis of a cylinder or cone.
func (f *face) slope() float64 {
	if f.height == 0 {
		return 0
	}
	return (f.r1 - f.r0) / f.height
}

// axial splits p into its axial coordinate and radial vector.
func (f *face) axial(p r3.Vec) (float64, r3.Vec) {
	d := r3.Sub(p, f.origin)
	t := r3.Dot(d, f.axis)
	return t, r3.Sub(d, r3.Scale(t, f.axis))
}

func (f *face) radiusAt(t float64) float64 {
	return f.r0 + f.slope()*t
}

// normalAt returns the geometric unit normal at p (sign unspecified for
// planes, radially outward for cylinders and cones).
func (f *face) normalAt(p r3.Vec) r3.Vec {
	if f.kind == surfacePlane {
		return f.normal
	}
	_, rad := f.axial(p)
	if r3.Norm(rad) < 1e-12 {
		return perpendicular(f.axis)
	}
	n := r3.Sub(r3.Unit(rad), r3.Scale(f.slope(), f.axis))
	return r3.Unit(n)
}

// project returns the point on the surface nearest to p (radially for
// cones).
func (f *face) project(p r3.Vec) r3.Vec {
	if f.kind == surfacePlane {
		return r3.Sub(p, r3.Scale(r3.Dot(r3.Sub(p, f.origin), f.normal), f.normal))
	}
	t, rad := f.axial(p)
	if r3.Norm(rad) < 1e-12 {
		return p
	}
	return r3.Add(r3.Add(f.origin, r3.Scale(t, f.axis)), r3.Scale(f.radiusAt(t), r3.Unit(rad)))
}

// dist returns the approximate signed distance from the surface, positive
// along normalAt.
func (f *face) dist(p r3.Vec) float64 {
	if f.kind == surfacePlane {
		return r3.Dot(r3.Sub(p, f.origin), f.normal)
	}
	t, rad := f.axial(p)
	d := r3.Norm(rad) - f.radiusAt(t)
	if f.kind == surfaceCone {
		d /= math.Sqrt(1 + f.slope()*f.slope())
	}
	return d
}

// contains reports whether an on-surface point lies on this patch.
func (f *face) contains(p r3.Vec) bool {
	b := f.bounds.inflate(1e-6)
	if p.X < b.min.X || p.X > b.max.X || p.Y < b.min.Y || p.Y > b.max.Y || p.Z < b.min.Z || p.Z > b.max.Z {
		return false
	}
	return f.inside(f.toLocal.point(p))
}

// ---------------------------------------------------------------------------
// Face construction per primitive. Each builder receives the leaf's
// local-to-world transform and returns world-space patches.
// ---------------------------------------------------------------------------

type faceBuilder func(toWorld, toLocal xform) []*face

func localBox(min, max r3.Vec) box3 {
	b := newBox3()
	b.add(min)
	b.add(max)
	return b
}

func worldBounds(toWorld xform, local box3) box3 {
	b := newBox3()
	for _, c := range local.corners() {
		b.add(toWorld.point(c))
	}
	return b
}

func planeFace(toWorld, toLocal xform, origin, normal r3.Vec, local box3, inside func(r3.Vec) bool) *face {
	return &face{
		kind:    surfacePlane,
		origin:  toWorld.point(origin),
		normal:  toWorld.unitDir(normal),
		toLocal: toLocal,
		inside:  inside,
		bounds:  worldBounds(toWorld, local),
	}
}

// axialFace builds a cylinder or cone side around the local Z axis through
// (cx, cy).
func axialFace(toWorld, toLocal xform, cx, cy, r0, r1, height float64, inside func(r3.Vec) bool) *face {
	kind := surfaceCylinder
	if r0 != r1 {
		kind = surfaceCone
	}
	rm := math.Max(r0, r1)
	local := localBox(r3.Vec{X: cx - rm, Y: cy - rm}, r3.Vec{X: cx + rm, Y: cy + rm, Z: height})
	return &face{
		kind:    kind,
		origin:  toWorld.point(r3.Vec{X: cx, Y: cy}),
		axis:    toWorld.unitDir(r3.Vec{Z: 1}),
		r0:      r0,
		r1:      r1,
		height:  height,
		toLocal: toLocal,
		inside:  inside,
		bounds:  worldBounds(toWorld, local),
	}
}

func boxFaces(x, y, z float64) faceBuilder {
	return func(w, l xform) []*face {
		yz := func(p r3.Vec) bool { return within(p.Y, 0, y) && within(p.Z, 0, z) }
		xz := func(p r3.Vec) bool { return within(p.X, 0, x) && within(p.Z, 0, z) }
		xy := func(p r3.Vec) bool { return within(p.X, 0, x) && within(p.Y, 0, y) }
		return []*face{
			planeFace(w, l, r3.Vec{}, r3.Vec{X: -1}, localBox(r3.Vec{}, r3.Vec{Y: y, Z: z}), yz),
			planeFace(w, l, r3.Vec{X: x}, r3.Vec{X: 1}, localBox(r3.Vec{X: x}, r3.Vec{X: x, Y: y, Z: z}), yz),
			planeFace(w, l, r3.Vec{}, r3.Vec{Y: -1}, localBox(r3.Vec{}, r3.Vec{X: x, Z: z}), xz),
			planeFace(w, l, r3.Vec{Y: y}, r3.Vec{Y: 1}, localBox(r3.Vec{Y: y}, r3.Vec{X: x, Y: y, Z: z}), xz),
			planeFace(w, l, r3.Vec{}, r3.Vec{Z: -1}, localBox(r3.Vec{}, r3.Vec{X: x, Y: y}), xy),
			planeFace(w, l, r3.Vec{Z: z}, r3.Vec{Z: 1}, localBox(r3.Vec{Z: z}, r3.Vec{X: x, Y: y, Z: z}), xy),
		}
	}
}

func discFace(w, l xform, z, r float64, normalZ float64) *face {
	inside := func(p r3.Vec) bool { return math.Hypot(p.X, p.Y) <= r+patchTol }
	return planeFace(w, l, r3.Vec{Z: z}, r3.Vec{Z: normalZ}, localBox(r3.Vec{X: -r, Y: -r, Z: z}, r3.Vec{X: r, Y: r, Z: z}), inside)
}

// coneFaces covers cylinders (r0 == r1) and frustums.
func coneFaces(height, r0, r1 float64) faceBuilder {
	return func(w, l xform) []*face {
		var out []*face
		if r0 > 0 {
			out = append(out, discFace(w, l, 0, r0, -1))
		}
		if r1 > 0 {
			out = append(out, discFace(w, l, height, r1, 1))
		}
		side := func(p r3.Vec) bool { return within(p.Z, 0, height) }
		out = append(out, axialFace(w, l, 0, 0, r0, r1, height, side))
		return out
	}
}

func domeFaces(radius float64) faceBuilder {
	return func(w, l xform) []*face {
		return []*face{discFace(w, l, 0, radius, -1)}
	}
}

func extrudeFaces(wire kernel.Wire, height float64) faceBuilder {
	return func(w, l xform) []*face {
		min, max := wire.Bounds()
		capInside := func(p r3.Vec) bool {
			q := [2]float64{p.X, p.Y}
			return wire.Contains(q) || wire.Distance(q) <= 1e-6
		}
		out := []*face{
			planeFace(w, l, r3.Vec{}, r3.Vec{Z: -1}, localBox(r3.Vec{X: min[0], Y: min[1]}, r3.Vec{X: max[0], Y: max[1]}), capInside),
			planeFace(w, l, r3.Vec{Z: height}, r3.Vec{Z: 1}, localBox(r3.Vec{X: min[0], Y: min[1], Z: height}, r3.Vec{X: max[0], Y: max[1], Z: height}), capInside),
		}
		for _, s := range wire.Segments {
			s := s
			switch s.Kind {
			case kernel.SegmentLine:
				dx, dy := s.End[0]-s.Start[0], s.End[1]-s.Start[1]
				length := math.Hypot(dx, dy)
				if length == 0 {
					continue
				}
				ux, uy := dx/length, dy/length
				inside := func(p r3.Vec) bool {
					t := (p.X-s.Start[0])*ux + (p.Y-s.Start[1])*uy
					return within(t, 0, length) && within(p.Z, 0, height)
				}
				lb := localBox(r3.Vec{X: s.Start[0], Y: s.Start[1]}, r3.Vec{X: s.End[0], Y: s.End[1], Z: height})
				out = append(out, planeFace(w, l, r3.Vec{X: s.Start[0], Y: s.Start[1]}, r3.Vec{X: uy, Y: -ux}, lb, inside))
			case kernel.SegmentArc:
				inside := func(p r3.Vec) bool {
					a := math.Atan2(p.Y-s.Center[1], p.X-s.Center[0])
					return s.ContainsAngle(a) && within(p.Z, 0, height)
				}
				out = append(out, axialFace(w, l, s.Center[0], s.Center[1], s.Radius, s.Radius, height, inside))
			}
		}
		return out
	}
}
