// Package stub provides a deterministic in-memory kernel.Kernel for tests.
// It computes analytic bounding boxes, records every call in order, and can
// be told to fail specific operations.
package stub

import (
	"fmt"
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Solid is a stub solid: an operation name and its bounding box.
type Solid struct {
	ID       int
	Op       string
	Min, Max [3]float64
}

// BoundingBox implements kernel.Solid.
func (s *Solid) BoundingBox() (min, max [3]float64) { return s.Min, s.Max }

// Call is one recorded kernel call.
type Call struct {
	Op   string
	Args []float64
}

func (c Call) String() string { return fmt.Sprintf("%s%v", c.Op, c.Args) }

// Kernel records calls and returns bounding-box solids.
type Kernel struct {
	Calls []Call

	// Fail makes the named operation ("Box", "Union", "Fillet", ...) return
	// the mapped error.
	Fail map[string]error

	// EdgeSet overrides the edges reported for every solid. When nil the
	// twelve edges of the solid's bounding box are reported.
	EdgeSet []kernel.Edge

	next int
}

// New returns an empty stub kernel.
func New() *Kernel {
	return &Kernel{Fail: map[string]error{}}
}

// Ops returns the operation names of the recorded calls in order.
func (k *Kernel) Ops() []string {
	out := make([]string, len(k.Calls))
	for i, c := range k.Calls {
		out[i] = c.Op
	}
	return out
}

// Count returns how many times op was called.
func (k *Kernel) Count(op string) int {
	n := 0
	for _, c := range k.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the call log.
func (k *Kernel) Reset() { k.Calls = nil }

func (k *Kernel) record(op string, args ...float64) error {
	k.Calls = append(k.Calls, Call{Op: op, Args: args})
	if err, ok := k.Fail[op]; ok {
		return err
	}
	return nil
}

func (k *Kernel) solid(op string, min, max [3]float64) *Solid {
	k.next++
	return &Solid{ID: k.next, Op: op, Min: min, Max: max}
}

func unwrap(s kernel.Solid) (*Solid, error) {
	ss, ok := s.(*Solid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("stub: foreign solid %T", s)
	}
	return ss, nil
}

// ------------------------------------------------------------------------
// Primitives
// ------------------------------------------------------------------------

func positive(op string, vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) {
			return fmt.Errorf("stub: %s: dimension %.4f must be positive", op, v)
		}
	}
	return nil
}

func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := k.record("Box", x, y, z); err != nil {
		return nil, err
	}
	if err := positive("Box", x, y, z); err != nil {
		return nil, err
	}
	return k.solid("Box", [3]float64{}, [3]float64{x, y, z}), nil
}

func (k *Kernel) Cylinder(height, radius float64, segments int) (kernel.Solid, error) {
	if err := k.record("Cylinder", height, radius); err != nil {
		return nil, err
	}
	if err := positive("Cylinder", height, radius); err != nil {
		return nil, err
	}
	return k.solid("Cylinder", [3]float64{-radius, -radius, 0}, [3]float64{radius, radius, height}), nil
}

func (k *Kernel) Cone(height, bottomRadius, topRadius float64, segments int) (kernel.Solid, error) {
	if err := k.record("Cone", height, bottomRadius, topRadius); err != nil {
		return nil, err
	}
	if err := positive("Cone", height); err != nil {
		return nil, err
	}
	if bottomRadius < 0 || topRadius < 0 || bottomRadius+topRadius <= 0 {
		return nil, fmt.Errorf("stub: Cone: radii %.4f, %.4f", bottomRadius, topRadius)
	}
	r := math.Max(bottomRadius, topRadius)
	return k.solid("Cone", [3]float64{-r, -r, 0}, [3]float64{r, r, height}), nil
}

func (k *Kernel) Dome(radius, height float64, segments int) (kernel.Solid, error) {
	if err := k.record("Dome", radius, height); err != nil {
		return nil, err
	}
	if err := positive("Dome", radius, height); err != nil {
		return nil, err
	}
	return k.solid("Dome", [3]float64{-radius, -radius, 0}, [3]float64{radius, radius, height}), nil
}

func (k *Kernel) Extrude(w kernel.Wire, height float64) (kernel.Solid, error) {
	if err := k.record("Extrude", height, float64(len(w.Segments))); err != nil {
		return nil, err
	}
	if err := positive("Extrude", height); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("stub: Extrude: %w", err)
	}
	lo, hi := w.Bounds()
	return k.solid("Extrude", [3]float64{lo[0], lo[1], 0}, [3]float64{hi[0], hi[1], height}), nil
}

// ------------------------------------------------------------------------
// Booleans
// ------------------------------------------------------------------------

func (k *Kernel) boolean(op string, a, b kernel.Solid, bbox func(x, y *Solid) (min, max [3]float64)) (kernel.Solid, error) {
	if err := k.record(op); err != nil {
		return nil, err
	}
	x, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	y, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	min, max := bbox(x, y)
	return k.solid(op, min, max), nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("Union", a, b, func(x, y *Solid) (min, max [3]float64) {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(x.Min[i], y.Min[i])
			max[i] = math.Max(x.Max[i], y.Max[i])
		}
		return min, max
	})
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("Difference", a, b, func(x, _ *Solid) (min, max [3]float64) {
		return x.Min, x.Max
	})
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("Intersection", a, b, func(x, y *Solid) (min, max [3]float64) {
		for i := 0; i < 3; i++ {
			min[i] = math.Max(x.Min[i], y.Min[i])
			max[i] = math.Min(x.Max[i], y.Max[i])
		}
		return min, max
	})
}

// ------------------------------------------------------------------------
// Transforms
// ------------------------------------------------------------------------

// Translate and Rotate return foreign solids unchanged.
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.record("Translate", x, y, z)
	ss, err := unwrap(s)
	if err != nil {
		return s
	}
	d := [3]float64{x, y, z}
	var min, max [3]float64
	for i := range d {
		min[i], max[i] = ss.Min[i]+d[i], ss.Max[i]+d[i]
	}
	return k.solid("Translate", min, max)
}

func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.record("Rotate", x, y, z)
	ss, err := unwrap(s)
	if err != nil {
		return s
	}
	min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for c := 0; c < 8; c++ {
		p := ss.Min
		for i := 0; i < 3; i++ {
			if c&(1<<i) != 0 {
				p[i] = ss.Max[i]
			}
		}
		p = rotate(p, x, y, z)
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}
	return k.solid("Rotate", snapBox(min), snapBox(max))
}

// rotate applies Euler rotations in degrees about X, then Y, then Z.
func rotate(p [3]float64, x, y, z float64) [3]float64 {
	sx, cx := math.Sincos(x * math.Pi / 180)
	p = [3]float64{p[0], cx*p[1] - sx*p[2], sx*p[1] + cx*p[2]}
	sy, cy := math.Sincos(y * math.Pi / 180)
	p = [3]float64{cy*p[0] + sy*p[2], p[1], -sy*p[0] + cy*p[2]}
	sz, cz := math.Sincos(z * math.Pi / 180)
	return [3]float64{cz*p[0] - sz*p[1], sz*p[0] + cz*p[1], p[2]}
}

// snapBox rounds away trig noise so quarter-turns give exact boxes.
func snapBox(v [3]float64) [3]float64 {
	for i := range v {
		if r := math.Round(v[i]*1e9) / 1e9; math.Abs(r-v[i]) < 1e-9 {
			v[i] = r
		}
	}
	return v
}

// ------------------------------------------------------------------------
// Edges and rounding
// ------------------------------------------------------------------------

func (k *Kernel) Edges(s kernel.Solid) ([]kernel.Edge, error) {
	if err := k.record("Edges"); err != nil {
		return nil, err
	}
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if k.EdgeSet != nil {
		out := make([]kernel.Edge, len(k.EdgeSet))
		copy(out, k.EdgeSet)
		return out, nil
	}
	return BoxEdges(ss.Min, ss.Max), nil
}

// BoxEdges returns the twelve edges of the box [min, max]: four along X,
// four along Y, then four along Z.
func BoxEdges(min, max [3]float64) []kernel.Edge {
	var out []kernel.Edge
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		for _, cu := range []float64{min[u], max[u]} {
			for _, cv := range []float64{min[v], max[v]} {
				var a, b [3]float64
				a[axis], b[axis] = min[axis], max[axis]
				a[u], b[u] = cu, cu
				a[v], b[v] = cv, cv
				out = append(out, kernel.Edge{
					ID:     len(out),
					Kind:   kernel.CurveLine,
					Length: max[axis] - min[axis],
					Min:    a,
					Max:    b,
					Start:  a,
					End:    b,
				})
			}
		}
	}
	return out
}

func (k *Kernel) round(op string, s kernel.Solid, d1, d2 float64, edges []kernel.Edge) (kernel.Solid, error) {
	if err := k.record(op, d1, d2, float64(len(edges))); err != nil {
		return nil, err
	}
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("stub: %s: no edges", op)
	}
	if !(d1 > 0) || !(d2 > 0) {
		return nil, fmt.Errorf("stub: %s: distance must be positive", op)
	}
	return k.solid(op, ss.Min, ss.Max), nil
}

func (k *Kernel) Fillet(s kernel.Solid, radius float64, edges []kernel.Edge) (kernel.Solid, error) {
	return k.round("Fillet", s, radius, radius, edges)
}

func (k *Kernel) Chamfer(s kernel.Solid, d1, d2 float64, edges []kernel.Edge) (kernel.Solid, error) {
	return k.round("Chamfer", s, d1, d2, edges)
}

// ------------------------------------------------------------------------
// Mesh output
// ------------------------------------------------------------------------

// boxFaces lists the corner indices of each box face, wound outward.
var boxFaces = [6][4]uint32{
	{0, 4, 6, 2}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 6, 7, 3}, // +Y
	{0, 2, 3, 1}, // -Z
	{4, 5, 7, 6}, // +Z
}

// ToMesh returns the solid's bounding box as a twelve-triangle mesh.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if err := k.record("ToMesh"); err != nil {
		return nil, err
	}
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	mesh := &kernel.Mesh{}
	for c := 0; c < 8; c++ {
		p := ss.Min
		for i := 0; i < 3; i++ {
			if c&(1<<i) != 0 {
				p[i] = ss.Max[i]
			}
		}
		mesh.Vertices = append(mesh.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
		mesh.Normals = append(mesh.Normals, 0, 0, 0)
	}
	for _, f := range boxFaces {
		mesh.Indices = append(mesh.Indices, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return mesh, nil
}
