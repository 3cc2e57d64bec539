//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations. It is the fast backend for
// parts that need no edge rounding.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// arcSteps is the number of chords per profile arc.
const arcSteps = 16

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
// Manifold meshes carry no analytic edges, so edge queries and rounding
// report kernel.ErrUnsupported.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// check wraps ptr, turning a Manifold status error into a Go error.
func check(op string, ptr *C.ManifoldManifold) (kernel.Solid, error) {
	if st := C.manifold_status(ptr); st != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, fmt.Errorf("manifold: %s: status %d", op, int(st))
	}
	return newSolid(ptr), nil
}

func unwrap(s kernel.Solid) (*manifoldSolid, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok || ms == nil {
		return nil, fmt.Errorf("manifold: solid %T was not created by this kernel", s)
	}
	return ms, nil
}

func positive(op string, vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("manifold: %s: dimensions must be positive and finite, got %v", op, vals)
		}
	}
	return nil
}

// Box creates an axis-aligned box with its minimum corner at the origin.
func (k *ManifoldKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box", x, y, z); err != nil {
		return nil, err
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(0), // center=false
	)
	return check("box", ptr)
}

// Cylinder creates a cylinder along the Z axis with its base centred on
// the origin.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) (kernel.Solid, error) {
	if err := positive("cylinder", height, radius); err != nil {
		return nil, err
	}
	return k.Cone(height, radius, radius, segments)
}

// Cone creates a tapered cylinder from bottomRadius at z=0 to topRadius at
// z=height.
func (k *ManifoldKernel) Cone(height, bottomRadius, topRadius float64, segments int) (kernel.Solid, error) {
	if err := positive("cone", height); err != nil {
		return nil, err
	}
	if bottomRadius < 0 || topRadius < 0 || bottomRadius+topRadius == 0 {
		return nil, fmt.Errorf("manifold: cone: invalid radii %v, %v", bottomRadius, topRadius)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(bottomRadius), // radius_low
		C.double(topRadius),    // radius_high
		C.int(segments),
		C.int(0), // center=false
	)
	return check("cone", ptr)
}

// Dome creates the upper half of an ellipsoid with base radius radius on
// z=0 and apex at z=height.
func (k *ManifoldKernel) Dome(radius, height float64, segments int) (kernel.Solid, error) {
	if err := positive("dome", radius, height); err != nil {
		return nil, err
	}
	ball := C.manifold_sphere(C.manifold_alloc_manifold(), C.double(1), C.int(segments))
	defer C.manifold_delete_manifold(ball)
	shell := C.manifold_scale(C.manifold_alloc_manifold(), ball,
		C.double(radius), C.double(radius), C.double(height))
	defer C.manifold_delete_manifold(shell)
	cube := C.manifold_cube(C.manifold_alloc_manifold(),
		C.double(2*radius), C.double(2*radius), C.double(height), C.int(0))
	defer C.manifold_delete_manifold(cube)
	half := C.manifold_translate(C.manifold_alloc_manifold(), cube,
		C.double(-radius), C.double(-radius), C.double(0))
	defer C.manifold_delete_manifold(half)
	return check("dome", C.manifold_intersection(C.manifold_alloc_manifold(), shell, half))
}

// Extrude sweeps a closed XY profile from z=0 to z=height. Arcs are
// flattened with arcSteps steps each.
func (k *ManifoldKernel) Extrude(w kernel.Wire, height float64) (kernel.Solid, error) {
	if err := positive("extrude", height); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("manifold: extrude: %w", err)
	}
	pts := w.Polyline(arcSteps)
	cpts := make([]C.ManifoldVec2, len(pts))
	for i, p := range pts {
		cpts[i] = C.ManifoldVec2{x: C.double(p[0]), y: C.double(p[1])}
	}
	simple := C.manifold_simple_polygon(C.manifold_alloc_simple_polygon(),
		&cpts[0], C.size_t(len(cpts)))
	defer C.manifold_delete_simple_polygon(simple)
	polys := C.manifold_polygons(C.manifold_alloc_polygons(), &simple, C.size_t(1))
	defer C.manifold_delete_polygons(polys)
	ptr := C.manifold_extrude(C.manifold_alloc_manifold(), polys,
		C.double(height), C.int(0), C.double(0), C.double(1), C.double(1))
	return check("extrude", ptr)
}

func boolean(op string, a, b kernel.Solid, f func(mem *C.ManifoldManifold, x, y *C.ManifoldManifold) *C.ManifoldManifold) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return check(op, f(C.manifold_alloc_manifold(), sa.ptr, sb.ptr))
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("union", a, b, func(mem *C.ManifoldManifold, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_union(mem, x, y)
	})
}

// Difference returns the boolean difference (a minus b).
func (k *ManifoldKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("difference", a, b, func(mem *C.ManifoldManifold, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_difference(mem, x, y)
	})
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return boolean("intersection", a, b, func(mem *C.ManifoldManifold, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_intersection(mem, x, y)
	})
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms, err := unwrap(s)
	if err != nil {
		return s
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Edges is not available on mesh solids.
func (k *ManifoldKernel) Edges(s kernel.Solid) ([]kernel.Edge, error) {
	return nil, fmt.Errorf("manifold: edges: %w", kernel.ErrUnsupported)
}

// Fillet is not available on mesh solids.
func (k *ManifoldKernel) Fillet(s kernel.Solid, radius float64, edges []kernel.Edge) (kernel.Solid, error) {
	return nil, fmt.Errorf("manifold: fillet: %w", kernel.ErrUnsupported)
}

// Chamfer is not available on mesh solids.
func (k *ManifoldKernel) Chamfer(s kernel.Solid, d1, d2 float64, edges []kernel.Edge) (kernel.Solid, error) {
	return nil, fmt.Errorf("manifold: chamfer: %w", kernel.ErrUnsupported)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex positions and normals are interleaved in MeshGL; this
// method separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	// Get MeshGL from the manifold.
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// MeshGL stores vertex properties in a flat float array.
	// The default layout has numProp properties per vertex.
	// The first 3 are always position (x, y, z).
	// If normals are present, they follow at indices 3, 4, 5.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	// Extract the vertex property data.
	propLen := numVert * numProp
	propData := make([]float32, propLen)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	// Extract triangle indices.
	triLen := numTri * 3
	indices := make([]uint32, triLen)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	// Separate positions and normals from the interleaved property array.
	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}

	for i := 0; i < numVert; i++ {
		base := i * numProp
		// Positions are always at indices 0, 1, 2.
		vertices[i*3+0] = propData[base+0]
		vertices[i*3+1] = propData[base+1]
		vertices[i*3+2] = propData[base+2]
		// Normals at indices 3, 4, 5 if present.
		if hasNormals {
			normals[i*3+0] = propData[base+3]
			normals[i*3+1] = propData[base+4]
			normals[i*3+2] = propData[base+5]
		}
	}

	if !hasNormals {
		// Compute flat normals from triangle faces as a fallback.
		normals = computeFlatNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}

	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}

	return mesh, nil
}

// computeFlatNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex. This is a fallback when MeshGL
// does not include normals in the vertex properties.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		i0 := indices[t*3+0]
		i1 := indices[t*3+1]
		i2 := indices[t*3+2]

		// Triangle vertex positions.
		ax, ay, az := float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])
		bx, by, bz := float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])
		cx, cy, cz := float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])

		// Edge vectors.
		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az

		// Cross product (unnormalized face normal).
		nx := float32(e1y*e2z - e1z*e2y)
		ny := float32(e1z*e2x - e1x*e2z)
		nz := float32(e1x*e2y - e1y*e2x)

		// Accumulate into each vertex of this triangle.
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	// Normalize.
	for i := 0; i < numVerts; i++ {
		nx := float64(normals[i*3+0])
		ny := float64(normals[i*3+1])
		nz := float64(normals[i*3+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i*3+0] = float32(nx / length)
			normals[i*3+1] = float32(ny / length)
			normals[i*3+2] = float32(nz / length)
		}
	}

	return normals
}
