// Package pattern places repeated features (drain holes, slits, guy-wire
// holes, alignment marks) on circles and lines, and checks each placement
// against the material that hosts it.
package pattern

import (
	"fmt"
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/param"
)

// Point is one circular placement. Angle is in degrees.
type Point struct {
	X, Y  float64
	Angle float64
}

// Circular returns n points evenly spaced on a circle of the given radius
// about the origin. Point i sits at i*360/n + phaseDeg degrees.
func Circular(n int, radius, phaseDeg float64) ([]Point, error) {
	if n < 1 {
		return nil, fmt.Errorf("pattern: circular count %d must be at least 1", n)
	}
	if !(radius >= 0) {
		return nil, fmt.Errorf("pattern: circular radius %.4f must not be negative", radius)
	}
	out := make([]Point, n)
	for i := range out {
		a := float64(i)*360/float64(n) + phaseDeg
		rad := a * math.Pi / 180
		out[i] = Point{X: radius * math.Cos(rad), Y: radius * math.Sin(rad), Angle: a}
	}
	return out, nil
}

// Linear returns n positions start + i*pitch. Every position, the last in
// particular, must lie inside [lo, hi].
func Linear(start, pitch float64, n int, lo, hi float64) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("pattern: linear count %d must be at least 1", n)
	}
	out := make([]float64, n)
	for i := range out {
		p := start + float64(i)*pitch
		if p < lo || p > hi {
			return nil, fmt.Errorf("pattern: item %d at %.4f leaves span [%.4f, %.4f]", i+1, p, lo, hi)
		}
		out[i] = p
	}
	return out, nil
}

// ------------------------------------------------------------------------
// Margin checks
// ------------------------------------------------------------------------

// CheckRadial requires every hole of radius holeR centred on points to keep
// margin of material inside a disc of radius materialR. Each point is
// reported on its own.
func CheckRadial(v *param.Validator, name string, points []Point, holeR, margin, materialR float64) bool {
	ok := true
	bound := materialR - holeR - margin
	for i, p := range points {
		if d := math.Hypot(p.X, p.Y); d > bound {
			v.Fail(fmt.Sprintf("%s[%d]", name, i+1), d, bound, "centre distance + hole radius + margin <= material radius")
			ok = false
		}
	}
	return ok
}

// CheckSpan requires every feature of half-width r centred at positions to
// keep margin inside [lo, hi].
func CheckSpan(v *param.Validator, name string, positions []float64, r, margin, lo, hi float64) bool {
	ok := true
	for i, c := range positions {
		if !v.Margin(fmt.Sprintf("%s[%d]", name, i+1), c, r, margin, lo, hi) {
			ok = false
		}
	}
	return ok
}
