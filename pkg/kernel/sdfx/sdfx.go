// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Signed distance fields carry no boundary representation, so each solid
// also records the analytic faces of the primitives it was built from.
// Edges are recovered on demand by intersecting those faces and keeping the
// creases that survive on the final surface. Fillets and chamfers are
// local distance-field blends around the recovered edges.
package sdfx

import (
	"fmt"
	"math"
	"sync"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// leaf is one primitive of a solid's CSG history with its placement.
type leaf struct {
	build   faceBuilder
	toWorld sdf.M44
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s      sdf.SDF3
	leaves []leaf

	once  sync.Once
	edges []edgeRec
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

func (s *sdfxSolid) faces() []*face {
	var out []*face
	for _, l := range s.leaves {
		out = append(out, l.build(xform{m: l.toWorld}, xform{m: l.toWorld.Inverse()})...)
	}
	return out
}

// edgeRecords returns the solid's recovered edges, computing them once.
func (s *sdfxSolid) edgeRecords() []edgeRec {
	s.once.Do(func() {
		s.edges = recoverEdges(s.s, s.faces())
	})
	return s.edges
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest axis.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("sdfx: solid %T was not created by this kernel", s)
	}
	return ss, nil
}

// primitive wraps a freshly built SDF whose local frame is the world frame.
func primitive(s sdf.SDF3, b faceBuilder) kernel.Solid {
	return &sdfxSolid{s: s, leaves: []leaf{{build: b, toWorld: sdf.Identity3d()}}}
}

func positive(op string, vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("sdfx: %s: dimensions must be positive and finite, got %v", op, vals)
		}
	}
	return nil
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0). sdf.Box3D centers the box at the
// origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box", x, y, z); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	// Shift from center-origin to min-corner-origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return primitive(sdf.Transform3D(s, m), boxFaces(x, y, z)), nil
}

// Cylinder creates a cylinder with its base centred on the origin.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) (kernel.Solid, error) {
	if err := positive("cylinder", height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return primitive(sdf.Transform3D(s, m), coneFaces(height, radius, radius)), nil
}

// Cone creates a frustum from bottomRadius at z=0 to topRadius at z=height.
// Either radius may be zero but not both.
func (k *SdfxKernel) Cone(height, bottomRadius, topRadius float64, segments int) (kernel.Solid, error) {
	if err := positive("cone", height); err != nil {
		return nil, err
	}
	if bottomRadius < 0 || topRadius < 0 || bottomRadius+topRadius == 0 {
		return nil, fmt.Errorf("sdfx: cone: invalid radii %v, %v", bottomRadius, topRadius)
	}
	if bottomRadius == topRadius {
		return k.Cylinder(height, bottomRadius, segments)
	}
	s, err := sdf.Cone3D(height, bottomRadius, topRadius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cone: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return primitive(sdf.Transform3D(s, m), coneFaces(height, bottomRadius, topRadius)), nil
}

// Dome creates the upper half of an ellipsoid of revolution with base
// radius radius on z=0 and apex at z=height.
func (k *SdfxKernel) Dome(radius, height float64, segments int) (kernel.Solid, error) {
	if err := positive("dome", radius, height); err != nil {
		return nil, err
	}
	ball, err := sdf.Sphere3D(1)
	if err != nil {
		return nil, fmt.Errorf("sdfx: dome: %w", err)
	}
	shell := sdf.Transform3D(ball, sdf.Scale3d(v3.Vec{X: radius, Y: radius, Z: height}))
	half, err := sdf.Box3D(v3.Vec{X: 2 * radius, Y: 2 * radius, Z: height}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: dome: %w", err)
	}
	half = sdf.Transform3D(half, sdf.Translate3d(v3.Vec{Z: height / 2}))
	return primitive(sdf.Intersect3D(shell, half), domeFaces(radius)), nil
}

// Extrude sweeps a closed XY profile from z=0 to z=height.
func (k *SdfxKernel) Extrude(w kernel.Wire, height float64) (kernel.Solid, error) {
	if err := positive("extrude", height); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: extrude: %w", err)
	}
	s := sdf.Extrude3D(newWireSDF2(w), height)
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return primitive(sdf.Transform3D(s, m), extrudeFaces(w, height)), nil
}

func combine(a, b kernel.Solid, op func(x, y sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	leaves := make([]leaf, 0, len(sa.leaves)+len(sb.leaves))
	leaves = append(leaves, sa.leaves...)
	leaves = append(leaves, sb.leaves...)
	return &sdfxSolid{s: op(sa.s, sb.s), leaves: leaves}, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, func(x, y sdf.SDF3) sdf.SDF3 { return sdf.Union3D(x, y) })
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return combine(a, b, sdf.Intersect3D)
}

func (k *SdfxKernel) transform(s kernel.Solid, m sdf.M44) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil {
		// Foreign solids cannot be placed; the next boolean or query
		// reports the mismatch.
		return s
	}
	leaves := make([]leaf, len(ss.leaves))
	for i, l := range ss.leaves {
		leaves[i] = leaf{build: l.build, toWorld: m.Mul(l.toWorld)}
	}
	return &sdfxSolid{s: sdf.Transform3D(ss.s, m), leaves: leaves}
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return k.transform(s, m)
}

// Edges returns the solid's edges in a stable order: by minimum corner
// (z, then y, then x), then by maximum corner, then by curve kind.
func (k *SdfxKernel) Edges(s kernel.Solid) ([]kernel.Edge, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	recs := ss.edgeRecords()
	out := make([]kernel.Edge, len(recs))
	for i, r := range recs {
		out[i] = r.edge
	}
	return out, nil
}

func (k *SdfxKernel) round(s kernel.Solid, kind roundKind, d1, d2 float64, edges []kernel.Edge) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	res, err := buildRound(ss, kind, d1, d2, edges)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: &roundSDF3{base: ss.s, edges: res}, leaves: ss.leaves}, nil
}

// Fillet rounds the given edges with a constant radius.
func (k *SdfxKernel) Fillet(s kernel.Solid, radius float64, edges []kernel.Edge) (kernel.Solid, error) {
	if err := positive("fillet", radius); err != nil {
		return nil, err
	}
	return k.round(s, roundFillet, radius, radius, edges)
}

// Chamfer bevels the given edges.
func (k *SdfxKernel) Chamfer(s kernel.Solid, d1, d2 float64, edges []kernel.Edge) (kernel.Solid, error) {
	if err := positive("chamfer", d1, d2); err != nil {
		return nil, err
	}
	return k.round(s, roundChamfer, d1, d2, edges)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(ss.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
