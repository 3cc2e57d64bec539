package edgesel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

func line(id int, a, b [3]float64) kernel.Edge {
	e := kernel.Edge{ID: id, Kind: kernel.CurveLine, Start: a, End: b}
	for i := 0; i < 3; i++ {
		e.Min[i], e.Max[i] = a[i], b[i]
		if b[i] < a[i] {
			e.Min[i], e.Max[i] = b[i], a[i]
		}
	}
	d := e.Size()
	e.Length = d[0] + d[1] + d[2] // axis-aligned in these tests
	return e
}

// sleeveEdges is a C-shape sleeve cross-section: 39.9 deep, 58.2 wide,
// 25 high, 2.5 wall, with a slot cut near the Y max wall. Edges 0-3 are
// the outer corners, 4 an inner corner, 5 a slot side, 6 and 7 the outer
// top and bottom rims, 8 a short vertical and 9 the inner top rim.
func sleeveEdges() []kernel.Edge {
	const d, w, h = 39.9, 58.2, 25.0
	return []kernel.Edge{
		line(0, [3]float64{0, 0, 0}, [3]float64{0, 0, h}),
		line(1, [3]float64{d, 0, 0}, [3]float64{d, 0, h}),
		line(2, [3]float64{0, w, 0}, [3]float64{0, w, h}),
		line(3, [3]float64{d, w, 0}, [3]float64{d, w, h}),
		line(4, [3]float64{2.5, 2.5, 0}, [3]float64{2.5, 2.5, h}),
		line(5, [3]float64{12.95, w, 0}, [3]float64{12.95, w, h}),
		line(6, [3]float64{0, 0, h}, [3]float64{d, 0, h}),
		line(7, [3]float64{0, 0, 0}, [3]float64{d, 0, 0}),
		line(8, [3]float64{0, 0, 10}, [3]float64{0, 0, 14}),
		line(9, [3]float64{2.5, 2.5, h}, [3]float64{37.4, 2.5, h}),
	}
}

func ids(edges []kernel.Edge) []int {
	out := make([]int, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func TestSelect(t *testing.T) {
	const d, w, h, wall = 39.9, 58.2, 25.0, 2.5
	tests := []struct {
		name string
		p    Predicate
		want []int
	}{
		{"vertical full height", IsVerticalFullHeight(h), []int{0, 1, 2, 3, 4, 5}},
		{"outer perimeter", IsOnOuterPerimeter(d, w, wall/2), []int{0, 1, 2, 3, 8}},
		{"outer vertical corners", All(IsVerticalFullHeight(h), IsOnOuterPerimeter(d, w, wall/2)), []int{0, 1, 2, 3}},
		{"top rim", IsAtHeight(h), []int{6, 9}},
		{"bottom rim", IsAtHeight(0), []int{7}},
		{"rim drift", IsAtHeightTol(h-0.3, 0.5), []int{6, 9}},
		{"inner footprint", WithinXY(wall, wall, 37.4, 55.7), []int{4, 9}},
		{"not vertical", Not(IsVerticalFullHeight(h)), []int{6, 7, 8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Select(sleeveEdges(), tt.p))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSafeFilletPredicates(t *testing.T) {
	edges := []kernel.Edge{
		line(0, [3]float64{0, 0, 0}, [3]float64{0.1, 0.1, 0.1}),
		line(1, [3]float64{0, 0, 0}, [3]float64{20, 0, 0}),
		line(2, [3]float64{0, 0, 0}, [3]float64{0, 10, 0}),
	}
	safe := All(Not(IsTiny(0.25)), MaxExtentAtLeast(15))
	if diff := cmp.Diff([]int{1}, ids(Select(edges, safe))); diff != "" {
		t.Errorf("safe fillet mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectEmpty(t *testing.T) {
	if got := Select(nil, IsAtHeight(0)); got != nil {
		t.Errorf("Select(nil) = %v, want nil", got)
	}
	if !All()(kernel.Edge{}) {
		t.Error("All() should match everything")
	}
}
