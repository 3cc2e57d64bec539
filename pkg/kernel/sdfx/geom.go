package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

func toV3(p r3.Vec) v3.Vec   { return v3.Vec{X: p.X, Y: p.Y, Z: p.Z} }
func fromV3(p v3.Vec) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// xform applies an sdf transform matrix to points and directions in r3.
type xform struct {
	m sdf.M44
}

func (x xform) point(p r3.Vec) r3.Vec {
	return fromV3(x.m.MulPosition(toV3(p)))
}

func (x xform) dir(d r3.Vec) r3.Vec {
	return r3.Sub(x.point(d), x.point(r3.Vec{}))
}

// unitDir transforms a direction and renormalises it.
func (x xform) unitDir(d r3.Vec) r3.Vec {
	return r3.Unit(x.dir(d))
}

func arr(p r3.Vec) [3]float64 { return [3]float64{p.X, p.Y, p.Z} }

// perpendicular returns some unit vector orthogonal to n.
func perpendicular(n r3.Vec) r3.Vec {
	a := r3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		a = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(n, a))
}

func nearlyZero(v, tol float64) bool { return math.Abs(v) <= tol }

// box3 is an axis-aligned bounding box accumulator.
type box3 struct {
	min, max r3.Vec
	empty    bool
}

func newBox3() box3 {
	inf := math.Inf(1)
	return box3{
		min:   r3.Vec{X: inf, Y: inf, Z: inf},
		max:   r3.Vec{X: -inf, Y: -inf, Z: -inf},
		empty: true,
	}
}

func (b *box3) add(p r3.Vec) {
	b.min = r3.Vec{X: math.Min(b.min.X, p.X), Y: math.Min(b.min.Y, p.Y), Z: math.Min(b.min.Z, p.Z)}
	b.max = r3.Vec{X: math.Max(b.max.X, p.X), Y: math.Max(b.max.Y, p.Y), Z: math.Max(b.max.Z, p.Z)}
	b.empty = false
}

// corners returns the eight corners of the box.
func (b box3) corners() []r3.Vec {
	out := make([]r3.Vec, 0, 8)
	for i := 0; i < 8; i++ {
		p := b.min
		if i&1 != 0 {
			p.X = b.max.X
		}
		if i&2 != 0 {
			p.Y = b.max.Y
		}
		if i&4 != 0 {
			p.Z = b.max.Z
		}
		out = append(out, p)
	}
	return out
}

func (b box3) inflate(d float64) box3 {
	e := r3.Vec{X: d, Y: d, Z: d}
	return box3{min: r3.Sub(b.min, e), max: r3.Add(b.max, e)}
}
