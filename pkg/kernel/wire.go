package kernel

import (
	"fmt"
	"math"
)

// SegmentKind distinguishes straight and circular wire segments.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentArc
)

// Segment is one piece of a planar profile wire. Arcs run counter-clockwise
// from StartAngle to EndAngle (radians, EndAngle > StartAngle).
type Segment struct {
	Kind       SegmentKind
	Start, End [2]float64

	Center     [2]float64
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// Line returns a straight segment from a to b.
func Line(a, b [2]float64) Segment {
	return Segment{Kind: SegmentLine, Start: a, End: b}
}

// Arc returns a counter-clockwise arc around center from startDeg to endDeg.
func Arc(center [2]float64, radius, startDeg, endDeg float64) Segment {
	a0 := startDeg * math.Pi / 180
	a1 := endDeg * math.Pi / 180
	return Segment{
		Kind:       SegmentArc,
		Start:      [2]float64{center[0] + radius*math.Cos(a0), center[1] + radius*math.Sin(a0)},
		End:        [2]float64{center[0] + radius*math.Cos(a1), center[1] + radius*math.Sin(a1)},
		Center:     center,
		Radius:     radius,
		StartAngle: a0,
		EndAngle:   a1,
	}
}

// Sweep returns the arc's angular span in radians.
func (s Segment) Sweep() float64 {
	return s.EndAngle - s.StartAngle
}

// ContainsAngle reports whether angle a (radians) lies on the arc.
func (s Segment) ContainsAngle(a float64) bool {
	d := math.Mod(a-s.StartAngle, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	const tol = 1e-9
	return d <= s.Sweep()+tol || d >= 2*math.Pi-tol
}

// Distance returns the unsigned distance from p to the segment.
func (s Segment) Distance(p [2]float64) float64 {
	switch s.Kind {
	case SegmentArc:
		dx, dy := p[0]-s.Center[0], p[1]-s.Center[1]
		if s.ContainsAngle(math.Atan2(dy, dx)) {
			return math.Abs(math.Hypot(dx, dy) - s.Radius)
		}
		return math.Min(dist2(p, s.Start), dist2(p, s.End))
	default:
		ax, ay := s.End[0]-s.Start[0], s.End[1]-s.Start[1]
		l2 := ax*ax + ay*ay
		if l2 == 0 {
			return dist2(p, s.Start)
		}
		t := ((p[0]-s.Start[0])*ax + (p[1]-s.Start[1])*ay) / l2
		t = math.Max(0, math.Min(1, t))
		return dist2(p, [2]float64{s.Start[0] + t*ax, s.Start[1] + t*ay})
	}
}

// crossings counts intersections of the ray from p towards +X with the
// segment, using a half-open rule at line endpoints.
func (s Segment) crossings(p [2]float64) int {
	switch s.Kind {
	case SegmentArc:
		dy := p[1] - s.Center[1]
		if math.Abs(dy) >= s.Radius {
			return 0
		}
		dx := math.Sqrt(s.Radius*s.Radius - dy*dy)
		n := 0
		for _, x := range []float64{dx, -dx} {
			if s.Center[0]+x > p[0] && s.ContainsAngle(math.Atan2(dy, x)) {
				n++
			}
		}
		return n
	default:
		a, b := s.Start, s.End
		if (a[1] > p[1]) == (b[1] > p[1]) {
			return 0
		}
		x := a[0] + (p[1]-a[1])*(b[0]-a[0])/(b[1]-a[1])
		if x > p[0] {
			return 1
		}
		return 0
	}
}

func dist2(a, b [2]float64) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// Wire is a planar profile made of line and arc segments, used as the
// cross-section of an extrusion.
type Wire struct {
	Segments []Segment
}

// Closed reports whether each segment ends where the next one starts and
// the last segment returns to the first.
func (w Wire) Closed(tol float64) bool {
	n := len(w.Segments)
	if n == 0 {
		return false
	}
	for i, s := range w.Segments {
		next := w.Segments[(i+1)%n]
		if dist2(s.End, next.Start) > tol {
			return false
		}
	}
	return true
}

// Validate checks that the wire is usable as an extrusion profile.
func (w Wire) Validate() error {
	if !w.Closed(1e-6) {
		return fmt.Errorf("kernel: profile wire is not closed")
	}
	if w.SelfIntersects() {
		return fmt.Errorf("kernel: profile wire self-intersects")
	}
	return nil
}

// Contains reports whether p lies inside the closed wire (even-odd rule).
func (w Wire) Contains(p [2]float64) bool {
	n := 0
	for _, s := range w.Segments {
		n += s.crossings(p)
	}
	return n%2 == 1
}

// Distance returns the unsigned distance from p to the wire.
func (w Wire) Distance(p [2]float64) float64 {
	d := math.Inf(1)
	for _, s := range w.Segments {
		d = math.Min(d, s.Distance(p))
	}
	return d
}

// Bounds returns the axis-aligned bounding rectangle of the wire.
func (w Wire) Bounds() (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, p := range w.Polyline(32) {
		min[0], min[1] = math.Min(min[0], p[0]), math.Min(min[1], p[1])
		max[0], max[1] = math.Max(max[0], p[0]), math.Max(max[1], p[1])
	}
	return min, max
}

// Polyline flattens the wire into a closed point loop (first point not
// repeated), subdividing each arc into arcSteps chords.
func (w Wire) Polyline(arcSteps int) [][2]float64 {
	if arcSteps < 1 {
		arcSteps = 1
	}
	var pts [][2]float64
	for _, s := range w.Segments {
		pts = append(pts, s.Start)
		if s.Kind == SegmentArc {
			for i := 1; i < arcSteps; i++ {
				a := s.StartAngle + s.Sweep()*float64(i)/float64(arcSteps)
				pts = append(pts, [2]float64{
					s.Center[0] + s.Radius*math.Cos(a),
					s.Center[1] + s.Radius*math.Sin(a),
				})
			}
		}
	}
	return pts
}

// SelfIntersects reports whether any two non-adjacent edges of the
// flattened wire touch or cross.
func (w Wire) SelfIntersects() bool {
	pts := w.Polyline(16)
	n := len(pts)
	if n < 3 {
		return true
	}
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // closing edge is adjacent to the first
			}
			if segmentsIntersect(a1, a2, pts[j], pts[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p [2]float64) bool {
	return math.Min(a[0], b[0])-1e-12 <= p[0] && p[0] <= math.Max(a[0], b[0])+1e-12 &&
		math.Min(a[1], b[1])-1e-12 <= p[1] && p[1] <= math.Max(a[1], b[1])+1e-12
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	const eps = 1e-12
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	switch {
	case math.Abs(d1) <= eps && onSegment(q1, q2, p1):
		return true
	case math.Abs(d2) <= eps && onSegment(q1, q2, p2):
		return true
	case math.Abs(d3) <= eps && onSegment(p1, p2, q1):
		return true
	case math.Abs(d4) <= eps && onSegment(p1, p2, q2):
		return true
	}
	return false
}
