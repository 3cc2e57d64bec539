// Package tessellate meshes the objects registered in a session document
// using a geometry kernel and writes them as binary STL. One mesh is
// produced per object.
package tessellate

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/session"
)

// Tessellate produces one mesh per registered object, in registration
// order, named after the object. The document is never mutated.
func Tessellate(doc *session.Document, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if doc == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, o := range doc.Objects() {
		mesh, err := k.ToMesh(o.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", o.Name, err)
		}
		if mesh.IsEmpty() {
			return nil, fmt.Errorf("tessellate: %s: empty mesh", o.Name)
		}
		mesh.PartName = o.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// ---------------------------------------------------------------------------
// STL
// ---------------------------------------------------------------------------

// stlHeader is the 80-byte comment plus the triangle count.
type stlHeader struct {
	Comment [80]byte
	Count   uint32
}

// stlTriangle is one 50-byte facet record.
type stlTriangle struct {
	Normal [3]float32
	Vertex [3][3]float32
	Attr   uint16
}

// WriteSTL writes m as little-endian binary STL. Facet normals are
// computed from the winding; degenerate facets get a zero normal.
func WriteSTL(w io.Writer, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	h := stlHeader{Count: uint32(m.TriangleCount())}
	copy(h.Comment[:], m.PartName)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("tessellate: stl header: %w", err)
	}
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		rec := stlTriangle{Vertex: tri, Normal: facetNormal(tri)}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("tessellate: stl triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func facetNormal(tri [3][3]float32) [3]float32 {
	var p [3]r3.Vec
	for i, v := range tri {
		p[i] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}
	n := r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]))
	if r3.Norm(n) == 0 {
		return [3]float32{}
	}
	n = r3.Unit(n)
	return [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
}

// ExportDir writes <name>.stl into dir for every registered object and
// returns the paths written, in registration order.
func ExportDir(doc *session.Document, k kernel.Kernel, dir string) ([]string, error) {
	meshes, err := Tessellate(doc, k)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	var paths []string
	for _, m := range meshes {
		path := filepath.Join(dir, m.PartName+".stl")
		if err := writeFile(path, m); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	if err := WriteSTL(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	return nil
}
