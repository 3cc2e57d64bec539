package kernel

import "math"

// Mesh is an indexed triangle mesh, the common output of every backend.
// Vertices and Normals hold x, y, z per vertex; Indices holds three vertex
// indices per triangle, counter-clockwise seen from outside.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
	PartName string // document object the mesh was made from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool { return len(m.Indices) == 0 }

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	var tri [3][3]float32
	for j := range tri {
		v := m.Indices[i*3+j]
		tri[j] = [3]float32{m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2]}
	}
	return tri
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero bounds.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.VertexCount() == 0 {
		return
	}
	for i := range min {
		min[i], max[i] = math.Inf(1), math.Inf(-1)
	}
	for v := 0; v < m.VertexCount(); v++ {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[v*3+i])
			min[i] = math.Min(min[i], c)
			max[i] = math.Max(max[i], c)
		}
	}
	return min, max
}
