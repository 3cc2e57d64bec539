//go:build manifold

package manifold

import (
	"errors"
	"math"
	"testing"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

// must fails the test when a kernel call errors:
//
//	box := must(t)(k.Box(1, 2, 3))
func must(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatalf("primitive error = %v", err)
		}
		return s
	}
}

func checkBounds(t *testing.T, name string, s kernel.Solid, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("%s min[%d] = %f, want %f", name, i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("%s max[%d] = %f, want %f", name, i, max[i], wantMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	s := must(t)(k.Box(10, 20, 30))
	// Minimum corner at the origin.
	checkBounds(t, "Box", s, [3]float64{0, 0, 0}, [3]float64{10, 20, 30}, 1e-6)
}

func TestCylinder(t *testing.T) {
	k := mustNew(t)
	s := must(t)(k.Cylinder(20, 5, 32))
	min, max := s.BoundingBox()

	// Base on z=0, radius 5 polygon inscribed in the circle.
	if math.Abs(min[2]) > 1e-6 || math.Abs(max[2]-20) > 1e-6 {
		t.Errorf("Cylinder Z range = [%f, %f], want [0, 20]", min[2], max[2])
	}
	for i := 0; i < 2; i++ {
		if min[i] > -4.5 {
			t.Errorf("Cylinder min[%d] = %f, want <= -4.5", i, min[i])
		}
		if max[i] < 4.5 {
			t.Errorf("Cylinder max[%d] = %f, want >= 4.5", i, max[i])
		}
	}
}

func TestDome(t *testing.T) {
	k := mustNew(t)
	s := must(t)(k.Dome(6, 2, 48))
	min, max := s.BoundingBox()
	if math.Abs(min[2]) > 1e-6 || math.Abs(max[2]-2) > 0.05 {
		t.Errorf("Dome Z range = [%f, %f], want [0, 2]", min[2], max[2])
	}
}

func TestExtrude(t *testing.T) {
	k := mustNew(t)
	w := kernel.Wire{Segments: []kernel.Segment{
		kernel.Line([2]float64{0, 0}, [2]float64{10, 0}),
		kernel.Line([2]float64{10, 0}, [2]float64{10, 5}),
		kernel.Line([2]float64{10, 5}, [2]float64{0, 5}),
		kernel.Line([2]float64{0, 5}, [2]float64{0, 0}),
	}}
	s := must(t)(k.Extrude(w, 3))
	checkBounds(t, "Extrude", s, [3]float64{0, 0, 0}, [3]float64{10, 5, 3}, 1e-6)
}

func TestDifference(t *testing.T) {
	k := mustNew(t)
	box := must(t)(k.Box(10, 10, 10))
	hole := k.Translate(must(t)(k.Cylinder(20, 3, 32)), 5, 5, -5)
	result, err := k.Difference(box, hole)
	if err != nil {
		t.Fatalf("Difference() error = %v", err)
	}
	checkBounds(t, "Difference", result, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, 1e-6)
}

func TestTranslate(t *testing.T) {
	k := mustNew(t)
	moved := k.Translate(must(t)(k.Box(10, 10, 10)), 100, 200, 300)
	checkBounds(t, "Translate", moved, [3]float64{100, 200, 300}, [3]float64{110, 210, 310}, 1e-6)
}

func TestEdgeOpsUnsupported(t *testing.T) {
	k := mustNew(t)
	box := must(t)(k.Box(1, 1, 1))
	if _, err := k.Edges(box); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("Edges() error = %v, want ErrUnsupported", err)
	}
	if _, err := k.Fillet(box, 0.1, nil); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("Fillet() error = %v, want ErrUnsupported", err)
	}
	if _, err := k.Chamfer(box, 0.1, 0.1, nil); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("Chamfer() error = %v, want ErrUnsupported", err)
	}
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	mesh, err := k.ToMesh(must(t)(k.Box(10, 10, 10)))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if mesh.IsEmpty() {
		t.Error("ToMesh() returned empty mesh for a box")
	}

	// Manifold may produce more vertices due to sharp edges requiring
	// separate normals, but a box has at least 12 triangles.
	if mesh.TriangleCount() < 12 {
		t.Errorf("ToMesh() triangle count = %d, want >= 12", mesh.TriangleCount())
	}

	// Verify normals array has the same length as vertices.
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("ToMesh() normals length = %d, vertices length = %d, want equal",
			len(mesh.Normals), len(mesh.Vertices))
	}
}
