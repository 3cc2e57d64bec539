package sdfx

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge recovery tolerances. Edges are found by intersecting the analytic
// face patches of every CSG leaf and keeping the parts of each intersection
// curve that lie on the final surface and form a crease there.
const (
	surfaceTol  = 1e-5 // |sdf| below this counts as on the surface
	creaseStep  = 0.02 // sample offset for crease and orientation tests
	sampleStep  = 0.25 // nominal spacing of curve samples
	minSamples  = 16
	maxSamples  = 4000
	bisectIters = 40
)

type curveKind int

const (
	curveLine curveKind = iota
	curveCircle
)

// curve is a candidate edge carrier. Lines are parameterised by arc length
// along a unit direction over [lo, hi]; circles by angle in the (u, v)
// basis over [0, 2π).
type curve struct {
	kind   curveKind
	p0     r3.Vec
	dir    r3.Vec
	lo, hi float64

	center r3.Vec
	axis   r3.Vec
	u, v   r3.Vec
	radius float64
}

func (c curve) at(s float64) r3.Vec {
	if c.kind == curveLine {
		return r3.Add(c.p0, r3.Scale(s, c.dir))
	}
	return r3.Add(c.center, r3.Add(r3.Scale(c.radius*math.Cos(s), c.u), r3.Scale(c.radius*math.Sin(s), c.v)))
}

func (c curve) tangent(s float64) r3.Vec {
	if c.kind == curveLine {
		return c.dir
	}
	return r3.Add(r3.Scale(-math.Sin(s), c.u), r3.Scale(math.Cos(s), c.v))
}

// canonical flips v so its first significant component is positive.
func canonical(v r3.Vec) r3.Vec {
	switch {
	case math.Abs(v.X) > 1e-9:
		if v.X < 0 {
			return r3.Scale(-1, v)
		}
	case math.Abs(v.Y) > 1e-9:
		if v.Y < 0 {
			return r3.Scale(-1, v)
		}
	default:
		if v.Z < 0 {
			return r3.Scale(-1, v)
		}
	}
	return v
}

func newCircle(center, axis r3.Vec, radius float64) curve {
	axis = canonical(axis)
	u := perpendicular(axis)
	return curve{
		kind:   curveCircle,
		center: center,
		axis:   axis,
		u:      u,
		v:      r3.Cross(axis, u),
		radius: radius,
	}
}

func boxesOverlap(a, b box3) bool {
	a, b = a.inflate(1e-6), b.inflate(1e-6)
	return a.min.X <= b.max.X && b.min.X <= a.max.X &&
		a.min.Y <= b.max.Y && b.min.Y <= a.max.Y &&
		a.min.Z <= b.max.Z && b.min.Z <= a.max.Z
}

// paramRange projects the corners of b onto a line.
func paramRange(b box3, p0, dir r3.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range b.corners() {
		t := r3.Dot(r3.Sub(c, p0), dir)
		lo, hi = math.Min(lo, t), math.Max(hi, t)
	}
	return lo, hi
}

func clipLine(p0, dir r3.Vec, a, b *face) (curve, bool) {
	alo, ahi := paramRange(a.bounds, p0, dir)
	blo, bhi := paramRange(b.bounds, p0, dir)
	lo, hi := math.Max(alo, blo), math.Min(ahi, bhi)
	if hi-lo <= 1e-9 {
		return curve{}, false
	}
	return curve{kind: curveLine, p0: p0, dir: dir, lo: lo, hi: hi}, true
}

func intersectPlanes(a, b *face) []curve {
	d := r3.Cross(a.normal, b.normal)
	if r3.Norm(d) < 1e-9 {
		return nil
	}
	d = canonical(r3.Unit(d))
	k := r3.Dot(a.normal, b.normal)
	c1 := r3.Dot(a.normal, a.origin)
	c2 := r3.Dot(b.normal, b.origin)
	det := 1 - k*k
	p0 := r3.Scale(1/det, r3.Add(r3.Scale(c1-c2*k, a.normal), r3.Scale(c2-c1*k, b.normal)))
	c, ok := clipLine(p0, d, a, b)
	if !ok {
		return nil
	}
	return []curve{c}
}

// intersectPlaneAxial handles a plane perpendicular to a cylinder or cone
// axis (one circle) and a plane parallel to a cylinder axis (two lines).
// Tangent planes and oblique sections do not form creases this kernel
// can round and are skipped.
func intersectPlaneAxial(p, c *face) []curve {
	k := r3.Dot(p.normal, c.axis)
	if math.Abs(k) > 1-1e-9 {
		t := -r3.Dot(p.normal, r3.Sub(c.origin, p.origin)) / k
		if t < -patchTol || t > c.height+patchTol {
			return nil
		}
		r := c.radiusAt(t)
		if r <= 1e-9 {
			return nil
		}
		return []curve{newCircle(r3.Add(c.origin, r3.Scale(t, c.axis)), c.axis, r)}
	}
	if math.Abs(k) > 1e-9 || c.kind != surfaceCylinder {
		return nil
	}
	dp := r3.Dot(p.normal, r3.Sub(c.origin, p.origin))
	if math.Abs(dp) >= c.r0-1e-9 {
		return nil
	}
	foot := r3.Sub(c.origin, r3.Scale(dp, p.normal))
	w := r3.Unit(r3.Cross(p.normal, c.axis))
	off := math.Sqrt(c.r0*c.r0 - dp*dp)
	var out []curve
	for _, sign := range []float64{1, -1} {
		base := r3.Add(foot, r3.Scale(sign*off, w))
		dir := canonical(c.axis)
		if cv, ok := clipLine(base, dir, p, c); ok {
			out = append(out, cv)
		}
	}
	return out
}

func intersectFaces(a, b *face) []curve {
	if !boxesOverlap(a.bounds, b.bounds) {
		return nil
	}
	switch {
	case a.kind == surfacePlane && b.kind == surfacePlane:
		return intersectPlanes(a, b)
	case a.kind == surfacePlane:
		return intersectPlaneAxial(a, b)
	case b.kind == surfacePlane:
		return intersectPlaneAxial(b, a)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Surface sampling
// ---------------------------------------------------------------------------

type sampler struct {
	s sdf.SDF3
}

func (pr sampler) eval(p r3.Vec) float64 {
	return pr.s.Evaluate(toV3(p))
}

func (pr sampler) onSurface(p r3.Vec) bool {
	return math.Abs(pr.eval(p)) < surfaceTol
}

// sideDir returns the in-face direction perpendicular to the curve tangent.
func sideDir(f *face, q, t r3.Vec) (r3.Vec, bool) {
	u := r3.Cross(f.normalAt(q), t)
	if r3.Norm(u) < 1e-9 {
		return r3.Vec{}, false
	}
	return r3.Unit(u), true
}

// onFace reports whether stepping from q by dist along u (then projecting
// back onto f) stays on the visible part of f.
func (pr sampler) onFace(f *face, q, u r3.Vec, dist float64) bool {
	p := f.project(r3.Add(q, r3.Scale(dist, u)))
	return f.contains(p) && pr.onSurface(p)
}

// faceSide returns +1 or -1 for the side of the curve on which f is
// visible, or 0 if it is visible on neither.
func (pr sampler) faceSide(f *face, q, t r3.Vec) (r3.Vec, float64) {
	u, ok := sideDir(f, q, t)
	if !ok {
		return u, 0
	}
	if pr.onFace(f, q, u, creaseStep) {
		return u, 1
	}
	if pr.onFace(f, q, r3.Scale(-1, u), creaseStep) {
		return u, -1
	}
	return u, 0
}

func (pr sampler) isEdgePoint(c curve, s float64, a, b *face) bool {
	q := c.at(s)
	if !a.contains(q) || !b.contains(q) || !pr.onSurface(q) {
		return false
	}
	t := c.tangent(s)
	if _, side := pr.faceSide(a, q, t); side == 0 {
		return false
	}
	_, side := pr.faceSide(b, q, t)
	return side != 0
}

// ---------------------------------------------------------------------------
// Curve sampling
// ---------------------------------------------------------------------------

type span struct {
	s0, s1 float64
	full   bool
}

func sampleCount(length float64) int {
	n := int(math.Ceil(length / sampleStep))
	if n < minSamples {
		n = minSamples
	}
	if n > maxSamples {
		n = maxSamples
	}
	return n
}

// bisect narrows the boundary between a failing parameter and a passing
// one and returns the passing side.
func bisect(pred func(float64) bool, bad, good float64) float64 {
	for i := 0; i < bisectIters; i++ {
		mid := (bad + good) / 2
		if pred(mid) {
			good = mid
		} else {
			bad = mid
		}
	}
	return good
}

func lineSpans(c curve, pred func(float64) bool) []span {
	n := sampleCount(c.hi - c.lo)
	ss := make([]float64, n+1)
	ok := make([]bool, n+1)
	for i := range ss {
		ss[i] = c.lo + (c.hi-c.lo)*float64(i)/float64(n)
		ok[i] = pred(ss[i])
	}
	var out []span
	for i := 0; i <= n; {
		if !ok[i] {
			i++
			continue
		}
		j := i
		for j+1 <= n && ok[j+1] {
			j++
		}
		if j > i {
			s0, s1 := ss[i], ss[j]
			if i > 0 {
				s0 = bisect(pred, ss[i-1], ss[i])
			}
			if j < n {
				s1 = bisect(pred, ss[j+1], ss[j])
			}
			out = append(out, span{s0: s0, s1: s1})
		}
		i = j + 1
	}
	return out
}

func circleSpans(c curve, pred func(float64) bool) []span {
	n := sampleCount(2 * math.Pi * c.radius)
	step := 2 * math.Pi / float64(n)
	ok := make([]bool, n)
	first := -1
	for i := range ok {
		ok[i] = pred(step * float64(i))
		if !ok[i] && first < 0 {
			first = i
		}
	}
	if first < 0 {
		return []span{{s0: 0, s1: 2 * math.Pi, full: true}}
	}
	// Walk once around the circle starting just after a failing sample so
	// runs that wrap through angle zero stay contiguous.
	var out []span
	for k := first + 1; k <= first+n; {
		if !ok[k%n] {
			k++
			continue
		}
		j := k
		for j+1 < first+n && ok[(j+1)%n] {
			j++
		}
		if j > k {
			s0 := bisect(pred, step*float64(k-1), step*float64(k))
			s1 := bisect(pred, step*float64(j+1), step*float64(j))
			out = append(out, span{s0: s0, s1: s1})
		}
		k = j + 1
	}
	return out
}

// ---------------------------------------------------------------------------
// Edge assembly
// ---------------------------------------------------------------------------

// edgeRec is a recovered edge with the provenance needed to round it.
type edgeRec struct {
	edge   kernel.Edge
	c      curve
	sp     span
	fa, fb *face
}

func (r edgeRec) mid() float64 {
	return (r.sp.s0 + r.sp.s1) / 2
}

func arcBounds(c curve, sp span) (min, max [3]float64) {
	b := newBox3()
	b.add(c.at(sp.s0))
	b.add(c.at(sp.s1))
	u, v := arr(c.u), arr(c.v)
	for i := 0; i < 3; i++ {
		th := math.Atan2(v[i], u[i])
		for _, a := range []float64{th, th + math.Pi} {
			if sp.full || angleIn(a, sp.s0, sp.s1) {
				b.add(c.at(a))
			}
		}
	}
	return arr(b.min), arr(b.max)
}

func angleIn(a, s0, s1 float64) bool {
	d := math.Mod(a-s0, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= s1-s0+1e-12
}

func buildEdge(c curve, sp span) kernel.Edge {
	var e kernel.Edge
	start, end := c.at(sp.s0), c.at(sp.s1)
	e.Start, e.End = arr(start), arr(end)
	switch {
	case c.kind == curveLine:
		e.Kind = kernel.CurveLine
		e.Length = sp.s1 - sp.s0
		b := newBox3()
		b.add(start)
		b.add(end)
		e.Min, e.Max = arr(b.min), arr(b.max)
	case sp.full:
		e.Kind = kernel.CurveCircle
		e.Length = 2 * math.Pi * c.radius
		e.End = e.Start
		e.Min, e.Max = arcBounds(c, sp)
	default:
		e.Kind = kernel.CurveArc
		e.Length = c.radius * (sp.s1 - sp.s0)
		e.Min, e.Max = arcBounds(c, sp)
	}
	return e
}

func roundKey(v float64) int64 {
	return int64(math.Round(v * 1e4))
}

type lineKey struct {
	dx, dy, dz int64
	fx, fy, fz int64
}

type circleKey struct {
	cx, cy, cz int64
	ax, ay, az int64
	r          int64
	s0, s1     int64
}

func keyOfLine(c curve) (lineKey, r3.Vec, float64) {
	d := c.dir
	foot := r3.Sub(c.p0, r3.Scale(r3.Dot(c.p0, d), d))
	k := lineKey{
		dx: roundKey(d.X), dy: roundKey(d.Y), dz: roundKey(d.Z),
		fx: roundKey(foot.X), fy: roundKey(foot.Y), fz: roundKey(foot.Z),
	}
	return k, foot, r3.Dot(r3.Sub(c.p0, foot), d)
}

// mergeEdges collapses edges recovered more than once from different face
// pairs. Collinear line spans that overlap are fused; arcs are deduplicated
// by exact geometry.
func mergeEdges(recs []edgeRec) []edgeRec {
	var out []edgeRec
	lines := map[lineKey][]int{}
	circles := map[circleKey]bool{}
	for _, r := range recs {
		if r.c.kind == curveCircle {
			k := circleKey{
				cx: roundKey(r.c.center.X), cy: roundKey(r.c.center.Y), cz: roundKey(r.c.center.Z),
				ax: roundKey(r.c.axis.X), ay: roundKey(r.c.axis.Y), az: roundKey(r.c.axis.Z),
				s0: roundKey(r.sp.s0), s1: roundKey(r.sp.s1), r: roundKey(r.c.radius),
			}
			if circles[k] {
				continue
			}
			circles[k] = true
			out = append(out, r)
			continue
		}
		key, foot, off := keyOfLine(r.c)
		t0, t1 := off+r.sp.s0, off+r.sp.s1
		merged := false
		for _, i := range lines[key] {
			o := &out[i]
			_, _, ooff := keyOfLine(o.c)
			u0, u1 := ooff+o.sp.s0, ooff+o.sp.s1
			if t0 <= u1+1e-6 && u0 <= t1+1e-6 {
				lo, hi := math.Min(t0, u0), math.Max(t1, u1)
				o.c.p0 = foot
				o.sp = span{s0: lo, s1: hi}
				merged = true
				break
			}
		}
		if !merged {
			r.c.p0 = foot
			r.sp = span{s0: t0, s1: t1}
			lines[key] = append(lines[key], len(out))
			out = append(out, r)
		}
	}
	return out
}

// recoverEdges computes the edge set of a solid from its CSG provenance.
func recoverEdges(s sdf.SDF3, faces []*face) []edgeRec {
	pr := sampler{s: s}
	var recs []edgeRec
	for i := 0; i < len(faces); i++ {
		for j := i + 1; j < len(faces); j++ {
			a, b := faces[i], faces[j]
			for _, c := range intersectFaces(a, b) {
				c := c
				pred := func(t float64) bool { return pr.isEdgePoint(c, t, a, b) }
				var spans []span
				if c.kind == curveLine {
					spans = lineSpans(c, pred)
				} else {
					spans = circleSpans(c, pred)
				}
				for _, sp := range spans {
					if !sp.full && sp.s1-sp.s0 < 1e-6 {
						continue
					}
					recs = append(recs, edgeRec{c: c, sp: sp, fa: a, fb: b})
				}
			}
		}
	}
	recs = mergeEdges(recs)
	for i := range recs {
		recs[i].edge = buildEdge(recs[i].c, recs[i].sp)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].edge, recs[j].edge
		for k := 2; k >= 0; k-- {
			if math.Abs(a.Min[k]-b.Min[k]) > 1e-9 {
				return a.Min[k] < b.Min[k]
			}
		}
		for k := 2; k >= 0; k-- {
			if math.Abs(a.Max[k]-b.Max[k]) > 1e-9 {
				return a.Max[k] < b.Max[k]
			}
		}
		return a.Kind < b.Kind
	})
	for i := range recs {
		recs[i].edge.ID = i
	}
	return recs
}
