package kernel

import "fmt"

// CurveKind classifies the geometry underlying an edge.
type CurveKind int

const (
	CurveLine   CurveKind = iota // straight segment
	CurveArc                     // part of a circle
	CurveCircle                  // closed circle
)

func (k CurveKind) String() string {
	switch k {
	case CurveLine:
		return "line"
	case CurveArc:
		return "arc"
	case CurveCircle:
		return "circle"
	default:
		return fmt.Sprintf("CurveKind(%d)", int(k))
	}
}

// Edge describes one edge of a finished solid. Edges are produced by
// Kernel.Edges and are only meaningful for the solid that produced them;
// identities are not stable across rebuilds, so callers select edges by
// geometry rather than by ID.
type Edge struct {
	ID     int
	Kind   CurveKind
	Length float64
	Min    [3]float64 // bounding box
	Max    [3]float64
	Start  [3]float64
	End    [3]float64 // equal to Start for closed circles
}

// Size returns the bounding box extent along each axis.
func (e Edge) Size() [3]float64 {
	return [3]float64{e.Max[0] - e.Min[0], e.Max[1] - e.Min[1], e.Max[2] - e.Min[2]}
}

// Mid returns the centre of the bounding box.
func (e Edge) Mid() [3]float64 {
	return [3]float64{
		(e.Min[0] + e.Max[0]) / 2,
		(e.Min[1] + e.Max[1]) / 2,
		(e.Min[2] + e.Max[2]) / 2,
	}
}

func (e Edge) String() string {
	return fmt.Sprintf("edge %d (%s, len %.3f, min %.3v, max %.3v)", e.ID, e.Kind, e.Length, e.Min, e.Max)
}
