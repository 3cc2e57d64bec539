package recipe

import (
	"fmt"
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// ProfileEpsilon keeps a rounded-rectangle corner radius strictly below
// half the smaller cross-section dimension so the wire cannot
// self-intersect.
const ProfileEpsilon = 0.1

// EffectiveCornerRadius returns the corner radius actually used for an lx
// by ly profile: r clamped to min(lx, ly)/2 - ProfileEpsilon. A negative
// radius, or a cross-section too small for any corner, is an error.
func EffectiveCornerRadius(lx, ly, r float64) (float64, error) {
	if r < 0 || math.IsNaN(r) {
		return 0, fmt.Errorf("recipe: corner radius %.4f must not be negative", r)
	}
	if !(lx > 0) || !(ly > 0) {
		return 0, fmt.Errorf("recipe: profile %.4f x %.4f must be positive", lx, ly)
	}
	if r == 0 {
		return 0, nil
	}
	limit := math.Min(lx, ly)/2 - ProfileEpsilon
	if limit <= 0 {
		return 0, fmt.Errorf("recipe: profile %.4f x %.4f too small for a corner radius", lx, ly)
	}
	return math.Min(r, limit), nil
}

// RoundedRectWire builds the closed counter-clockwise line and arc profile
// of an lx by ly rectangle with its minimum corner at the origin. It
// returns the wire and the effective corner radius.
func RoundedRectWire(lx, ly, r float64) (kernel.Wire, float64, error) {
	eff, err := EffectiveCornerRadius(lx, ly, r)
	if err != nil {
		return kernel.Wire{}, 0, err
	}
	if eff == 0 {
		return kernel.Wire{Segments: []kernel.Segment{
			kernel.Line([2]float64{0, 0}, [2]float64{lx, 0}),
			kernel.Line([2]float64{lx, 0}, [2]float64{lx, ly}),
			kernel.Line([2]float64{lx, ly}, [2]float64{0, ly}),
			kernel.Line([2]float64{0, ly}, [2]float64{0, 0}),
		}}, 0, nil
	}
	w := kernel.Wire{Segments: []kernel.Segment{
		kernel.Line([2]float64{eff, 0}, [2]float64{lx - eff, 0}),
		kernel.Arc([2]float64{lx - eff, eff}, eff, -90, 0),
		kernel.Line([2]float64{lx, eff}, [2]float64{lx, ly - eff}),
		kernel.Arc([2]float64{lx - eff, ly - eff}, eff, 0, 90),
		kernel.Line([2]float64{lx - eff, ly}, [2]float64{eff, ly}),
		kernel.Arc([2]float64{eff, ly - eff}, eff, 90, 180),
		kernel.Line([2]float64{0, ly - eff}, [2]float64{0, eff}),
		kernel.Arc([2]float64{eff, eff}, eff, 180, 270),
	}}
	// Arc endpoints come from trig; snap them onto the line endpoints.
	snap(w.Segments)
	return w, eff, nil
}

func snap(segs []kernel.Segment) {
	for i := range segs {
		next := &segs[(i+1)%len(segs)]
		if segs[i].Kind == kernel.SegmentArc {
			segs[i].End = next.Start
		}
		if next.Kind == kernel.SegmentArc {
			next.Start = segs[i].End
		}
	}
}
