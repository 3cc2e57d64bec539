package builder

import (
	"fmt"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
)

// StepError reports a fatal primitive or boolean failure at a position in
// the recipe tree.
type StepError struct {
	Path string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Evaluate builds a shape tree through k: primitives are built and placed,
// then each pipeline fuses and cuts its operands left to right. The tree is
// not validated first; use recipe.Validate or Builder.Build for that.
func Evaluate(k kernel.Kernel, s recipe.Shape) (kernel.Solid, error) {
	return evaluate(k, s, DefaultSegments)
}

func evaluate(k kernel.Kernel, s recipe.Shape, segments int) (kernel.Solid, error) {
	e := evaluator{k: k, segments: segments}
	return e.shape(s, "")
}

type evaluator struct {
	k        kernel.Kernel
	segments int
}

func (e *evaluator) shape(s recipe.Shape, prefix string) (kernel.Solid, error) {
	switch v := s.(type) {
	case recipe.Primitive:
		path := recipe.JoinPath(prefix, v.Label())
		solid, err := e.primitive(v)
		if err != nil {
			return nil, &StepError{Path: path, Err: err}
		}
		return e.place(solid, v.Place), nil
	case *recipe.Pipeline:
		if v == nil || v.Base == nil {
			return nil, &StepError{Path: prefix, Err: fmt.Errorf("pipeline has no base shape")}
		}
		path := recipe.JoinPath(prefix, v.Label())
		acc, err := e.shape(v.Base, path)
		if err != nil {
			return nil, err
		}
		for i, st := range v.Steps {
			sp := recipe.StepPath(path, i, st.Op)
			operand, err := e.shape(st.Operand, sp)
			if err != nil {
				return nil, err
			}
			switch st.Op {
			case recipe.Fuse:
				acc, err = e.k.Union(acc, operand)
			case recipe.Cut:
				acc, err = e.k.Difference(acc, operand)
			default:
				err = fmt.Errorf("unknown operation %v", st.Op)
			}
			if err != nil {
				return nil, &StepError{Path: sp, Err: err}
			}
		}
		return e.place(acc, v.Place), nil
	case nil:
		return nil, &StepError{Path: prefix, Err: fmt.Errorf("missing shape")}
	default:
		return nil, &StepError{Path: prefix, Err: fmt.Errorf("unsupported shape %T", s)}
	}
}

func (e *evaluator) primitive(p recipe.Primitive) (kernel.Solid, error) {
	switch p.Kind {
	case recipe.KindBox:
		return e.k.Box(p.Size[0], p.Size[1], p.Size[2])
	case recipe.KindCylinder:
		return e.k.Cylinder(p.Height, p.Radius, e.segments)
	case recipe.KindCone:
		return e.k.Cone(p.Height, p.Radius, p.Radius2, e.segments)
	case recipe.KindDome:
		return e.k.Dome(p.Radius, p.Height, e.segments)
	case recipe.KindRoundedRect:
		w, _, err := recipe.RoundedRectWire(p.Size[0], p.Size[1], p.Radius)
		if err != nil {
			return nil, err
		}
		return e.k.Extrude(w, p.Size[2])
	default:
		return nil, fmt.Errorf("unknown primitive kind %v", p.Kind)
	}
}

// place applies placement steps in order.
func (e *evaluator) place(s kernel.Solid, place []recipe.Transform) kernel.Solid {
	for _, t := range place {
		switch t.Kind {
		case recipe.Translate:
			s = e.k.Translate(s, t.X, t.Y, t.Z)
		case recipe.Rotate:
			s = e.k.Rotate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}
