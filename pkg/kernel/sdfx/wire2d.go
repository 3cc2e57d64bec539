package sdfx

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// wireSDF2 is the exact 2D signed distance field of a closed profile wire,
// negative inside.
type wireSDF2 struct {
	w        kernel.Wire
	min, max [2]float64
}

func newWireSDF2(w kernel.Wire) *wireSDF2 {
	min, max := w.Bounds()
	return &wireSDF2{w: w, min: min, max: max}
}

func (s *wireSDF2) Evaluate(p v2.Vec) float64 {
	q := [2]float64{p.X, p.Y}
	d := s.w.Distance(q)
	if s.w.Contains(q) {
		return -d
	}
	return d
}

func (s *wireSDF2) BoundingBox() sdf.Box2 {
	return sdf.Box2{
		Min: v2.Vec{X: s.min[0], Y: s.min[1]},
		Max: v2.Vec{X: s.max[0], Y: s.max[1]},
	}
}
