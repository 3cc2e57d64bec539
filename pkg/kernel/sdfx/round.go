package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

type roundKind int

const (
	roundFillet roundKind = iota
	roundChamfer
)

// roundEdge is the local rounding field of one edge. Distances a and b are
// the signed distances to the two adjacent faces, oriented so that negative
// values lie on the material side.
type roundEdge struct {
	kind   roundKind
	c      curve
	sp     span
	fa, fb *face
	sa, sb float64
	convex bool
	// fillet: radius in da. chamfer: setback da along face a, db along face b.
	da, db float64
	reach  float64
	bounds box3
}

// region reports whether p is close enough to the edge for its field to
// apply.
func (e *roundEdge) region(p r3.Vec) bool {
	b := e.bounds
	if p.X < b.min.X || p.X > b.max.X || p.Y < b.min.Y || p.Y > b.max.Y || p.Z < b.min.Z || p.Z > b.max.Z {
		return false
	}
	if e.c.kind == curveLine {
		t := r3.Dot(r3.Sub(p, e.c.p0), e.c.dir)
		if t < e.sp.s0 || t > e.sp.s1 {
			return false
		}
		foot := e.c.at(t)
		return r3.Norm(r3.Sub(p, foot)) <= e.reach
	}
	d := r3.Sub(p, e.c.center)
	h := r3.Dot(d, e.c.axis)
	rad := r3.Sub(d, r3.Scale(h, e.c.axis))
	if !e.sp.full {
		th := math.Atan2(r3.Dot(rad, e.c.v), r3.Dot(rad, e.c.u))
		if !angleIn(th, e.sp.s0, e.sp.s1) {
			return false
		}
	}
	return math.Hypot(r3.Norm(rad)-e.c.radius, h) <= e.reach
}

func roundMax(a, b, r float64) float64 {
	return math.Min(-r, math.Max(a, b)) + math.Hypot(math.Max(a+r, 0), math.Max(b+r, 0))
}

func roundMin(a, b, r float64) float64 {
	return math.Max(r, math.Min(a, b)) - math.Hypot(math.Max(r-a, 0), math.Max(r-b, 0))
}

// field returns the rounding field at p.
func (e *roundEdge) field(p r3.Vec) float64 {
	a := e.sa * e.fa.dist(p)
	b := e.sb * e.fb.dist(p)
	switch {
	case e.kind == roundFillet && e.convex:
		return roundMax(a, b, e.da)
	case e.kind == roundFillet:
		return roundMin(a, b, e.da)
	case e.convex:
		return (a/e.db + b/e.da + 1) / math.Hypot(1/e.da, 1/e.db)
	default:
		return (a/e.db + b/e.da - 1) / math.Hypot(1/e.da, 1/e.db)
	}
}

// roundSDF3 applies per-edge rounding fields to a base SDF. Convex edges
// remove material (max), concave edges add it (min).
type roundSDF3 struct {
	base  sdf.SDF3
	edges []roundEdge
}

func (s *roundSDF3) Evaluate(p v3.Vec) float64 {
	d := s.base.Evaluate(p)
	q := fromV3(p)
	for i := range s.edges {
		e := &s.edges[i]
		if !e.region(q) {
			continue
		}
		f := e.field(q)
		if e.convex {
			d = math.Max(d, f)
		} else {
			d = math.Min(d, f)
		}
	}
	return d
}

func (s *roundSDF3) BoundingBox() sdf.Box3 {
	return s.base.BoundingBox()
}

// orient fills in the face orientations and convexity of an edge by probing
// the solid around its midpoint.
func orient(pr sampler, rec edgeRec) (sa, sb float64, convex bool, err error) {
	sm := rec.mid()
	q := rec.c.at(sm)
	t := rec.c.tangent(sm)
	sign := func(f *face) (float64, error) {
		u, side := pr.faceSide(f, q, t)
		if side == 0 {
			return 0, fmt.Errorf("sdfx: edge %d: face not visible at midpoint", rec.edge.ID)
		}
		qf := f.project(r3.Add(q, r3.Scale(side*creaseStep, u)))
		n := f.normalAt(qf)
		out := pr.eval(r3.Add(qf, r3.Scale(creaseStep/2, n)))
		in := pr.eval(r3.Sub(qf, r3.Scale(creaseStep/2, n)))
		if out > in {
			return 1, nil
		}
		return -1, nil
	}
	if sa, err = sign(rec.fa); err != nil {
		return 0, 0, false, err
	}
	if sb, err = sign(rec.fb); err != nil {
		return 0, 0, false, err
	}
	na := r3.Scale(sa, rec.fa.normalAt(q))
	nb := r3.Scale(sb, rec.fb.normalAt(q))
	p := r3.Add(q, r3.Scale(creaseStep, r3.Sub(na, nb)))
	return sa, sb, pr.eval(p) > 0, nil
}

// checkExtent verifies that face f stays visible for at least dist away from
// the edge midpoint, so the rounding fits the local geometry.
func checkExtent(pr sampler, rec edgeRec, f *face, dist float64) bool {
	sm := rec.mid()
	q := rec.c.at(sm)
	t := rec.c.tangent(sm)
	u, side := pr.faceSide(f, q, t)
	if side == 0 {
		return false
	}
	dir := r3.Scale(side, u)
	const steps = 8
	for i := 1; i <= steps; i++ {
		if !pr.onFace(f, q, dir, dist*float64(i)/steps) {
			return false
		}
	}
	return true
}

// closerToZ reports whether face a's normal at q is closer to the Z axis
// than face b's.
func closerToZ(a, b *face, q r3.Vec) bool {
	return math.Abs(a.normalAt(q).Z) >= math.Abs(b.normalAt(q).Z)
}

// buildRound resolves the requested edges against the solid's recovered
// edge set and prepares their rounding fields.
func buildRound(sol *sdfxSolid, kind roundKind, d1, d2 float64, edges []kernel.Edge) ([]roundEdge, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("sdfx: no edges to round")
	}
	recs := sol.edgeRecords()
	pr := sampler{s: sol.s}
	out := make([]roundEdge, 0, len(edges))
	for _, e := range edges {
		if e.ID < 0 || e.ID >= len(recs) || !sameEdge(recs[e.ID].edge, e) {
			return nil, fmt.Errorf("%w: %v", kernel.ErrUnknownEdge, e)
		}
		rec := recs[e.ID]
		if rec.fa.kind == surfaceCone || rec.fb.kind == surfaceCone {
			return nil, fmt.Errorf("%w: rounding an edge on a conical face", kernel.ErrUnsupported)
		}
		sa, sb, convex, err := orient(pr, rec)
		if err != nil {
			return nil, err
		}
		re := roundEdge{kind: kind, c: rec.c, sp: rec.sp, fa: rec.fa, fb: rec.fb, sa: sa, sb: sb, convex: convex}
		needA, needB := 2*d1, 2*d1
		if kind == roundFillet {
			re.da, re.db = d1, d1
			re.reach = 3 * d1
		} else {
			q := rec.c.at(rec.mid())
			if closerToZ(rec.fa, rec.fb, q) {
				re.da, re.db = d1, d2
			} else {
				re.da, re.db = d2, d1
			}
			needA, needB = re.da, re.db
			re.reach = 3 * math.Max(d1, d2)
		}
		if !checkExtent(pr, rec, rec.fa, needA) || !checkExtent(pr, rec, rec.fb, needB) {
			return nil, fmt.Errorf("%w: %v", kernel.ErrFilletTooLarge, e)
		}
		b := newBox3()
		b.add(fromArr(e.Min))
		b.add(fromArr(e.Max))
		re.bounds = b.inflate(re.reach)
		out = append(out, re)
	}
	return out, nil
}

func fromArr(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func sameEdge(a, b kernel.Edge) bool {
	const tol = 1e-6
	for i := 0; i < 3; i++ {
		if math.Abs(a.Start[i]-b.Start[i]) > tol || math.Abs(a.End[i]-b.End[i]) > tol {
			return false
		}
	}
	return a.Kind == b.Kind
}
