package tessellate_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/sdfx"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/stub"
	"github.com/sixbitdeep/3D-Models/pkg/session"
	"github.com/sixbitdeep/3D-Models/pkg/tessellate"
)

func box(t *testing.T, k kernel.Kernel, x, y, z float64) kernel.Solid {
	t.Helper()
	s, err := k.Box(x, y, z)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	return s
}

func TestRegistrationOrder(t *testing.T) {
	k := stub.New()
	doc := session.New("order")
	doc.Put("Second", box(t, k, 1, 1, 1))
	doc.Put("First", box(t, k, 1, 1, 1))
	doc.Put("Second", box(t, k, 2, 2, 2))

	meshes, err := tessellate.Tessellate(doc, k)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	var names []string
	for _, m := range meshes {
		names = append(names, m.PartName)
	}
	if diff := cmp.Diff([]string{"Second", "First"}, names); diff != "" {
		t.Errorf("mesh names (-want +got):\n%s", diff)
	}
	if got := k.Count("ToMesh"); got != 2 {
		t.Errorf("ToMesh called %d times, want 2", got)
	}
}

func TestEmptyDocument(t *testing.T) {
	meshes, err := tessellate.Tessellate(session.New("empty"), stub.New())
	if err != nil || len(meshes) != 0 {
		t.Errorf("Tessellate = %v, %v; want no meshes", meshes, err)
	}
}

func TestWriteSTL(t *testing.T) {
	k := stub.New()
	mesh, err := k.ToMesh(box(t, k, 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	mesh.PartName = "Block"

	var buf bytes.Buffer
	if err := tessellate.WriteSTL(&buf, mesh); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	b := buf.Bytes()
	if len(b) != 84+12*50 {
		t.Fatalf("wrote %d bytes, want %d", len(b), 84+12*50)
	}
	if !bytes.HasPrefix(b, []byte("Block")) {
		t.Errorf("header = %q", b[:16])
	}
	if n := binary.LittleEndian.Uint32(b[80:84]); n != 12 {
		t.Errorf("triangle count = %d, want 12", n)
	}

	// The first facet lies on the -X face.
	var normal [3]float32
	for i := range normal {
		normal[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[84+4*i:]))
	}
	if normal != [3]float32{-1, 0, 0} {
		t.Errorf("first normal = %v, want -X", normal)
	}
}

func TestDegenerateFacet(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 2, 0, 0},
		Indices:  []uint32{0, 1, 2},
	}
	var buf bytes.Buffer
	if err := tessellate.WriteSTL(&buf, m); err != nil {
		t.Fatal(err)
	}
	for _, c := range buf.Bytes()[84:96] {
		if c != 0 {
			t.Fatal("degenerate facet has a non-zero normal")
		}
	}
}

func TestExportDir(t *testing.T) {
	k := stub.New()
	doc := session.New("export")
	doc.Put("TPU_Pocket_Insert", box(t, k, 24, 46, 1.6))
	doc.Put("TPU_Undercut_Strip", box(t, k, 60, 48, 1))

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := tessellate.ExportDir(doc, k, dir)
	if err != nil {
		t.Fatalf("ExportDir: %v", err)
	}
	want := []string{
		filepath.Join(dir, "TPU_Pocket_Insert.stl"),
		filepath.Join(dir, "TPU_Undercut_Strip.stl"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() != 84+12*50 {
			t.Errorf("%s is %d bytes", p, fi.Size())
		}
	}
}

func TestSdfxBoxMesh(t *testing.T) {
	k := sdfx.New(sdfx.WithMeshCells(32))
	doc := session.New("sdfx")
	doc.Put("Block", box(t, k, 10, 20, 5))
	meshes, err := tessellate.Tessellate(doc, k)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	m := meshes[0]
	if m.TriangleCount() == 0 {
		t.Fatal("empty sdfx mesh")
	}
	min, max := m.Bounds()
	want := [3]float64{10, 20, 5}
	for i := range want {
		if min[i] < -0.5 || max[i] > want[i]+0.5 {
			t.Errorf("mesh bounds %v to %v outside the box", min, max)
			break
		}
	}
}
