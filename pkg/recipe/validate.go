package recipe

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks
// evaluation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Path     string             // position of the shape in the recipe tree
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Path    string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("[warning] %s: %s", w.Path, w.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err returns the first blocking error, or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	if len(r.Errors) == 1 {
		return fmt.Errorf("recipe: %w", r.Errors[0])
	}
	return fmt.Errorf("recipe: %w (and %d more)", r.Errors[0], len(r.Errors)-1)
}

// Validate checks a shape tree before any kernel call is issued. It is
// read-only and never mutates the shape.
func Validate(s Shape) ValidationResult {
	var r ValidationResult
	validateShape(&r, s, "")
	return r
}

func (r *ValidationResult) errorf(path, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (r *ValidationResult) warnf(path, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationWarning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func validateShape(r *ValidationResult, s Shape, prefix string) {
	switch v := s.(type) {
	case nil:
		r.errorf(prefix, "missing shape")
	case Primitive:
		validatePrimitive(r, v, JoinPath(prefix, v.Label()))
	case *Pipeline:
		if v == nil {
			r.errorf(prefix, "missing pipeline")
			return
		}
		path := JoinPath(prefix, v.Label())
		if v.Base == nil {
			r.errorf(path, "pipeline has no base shape")
		} else {
			validateShape(r, v.Base, path)
		}
		for i, st := range v.Steps {
			sp := StepPath(path, i, st.Op)
			if st.Op != Fuse && st.Op != Cut {
				r.errorf(sp, "unknown operation %v", st.Op)
			}
			if st.Operand == nil {
				r.errorf(sp, "step has no operand")
				continue
			}
			validateShape(r, st.Operand, sp)
		}
		validatePlacement(r, v.Place, path)
	default:
		r.errorf(prefix, "unsupported shape %T", s)
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func validatePlacement(r *ValidationResult, place []Transform, path string) {
	for i, t := range place {
		if !finite(t.X, t.Y, t.Z) {
			r.errorf(path, "placement %d is not finite", i+1)
		}
	}
}

func validatePrimitive(r *ValidationResult, p Primitive, path string) {
	positive := func(what string, v float64) {
		if !(v > 0) || !finite(v) {
			r.errorf(path, "%s %s is %.4f, must be positive", p.Kind, what, v)
		}
	}
	switch p.Kind {
	case KindBox:
		positive("x", p.Size[0])
		positive("y", p.Size[1])
		positive("z", p.Size[2])
	case KindCylinder:
		positive("radius", p.Radius)
		positive("height", p.Height)
	case KindCone:
		positive("height", p.Height)
		if p.Radius < 0 || p.Radius2 < 0 || p.Radius+p.Radius2 <= 0 || !finite(p.Radius, p.Radius2) {
			r.errorf(path, "cone radii %.4f, %.4f: both must be non-negative and one positive", p.Radius, p.Radius2)
		}
	case KindDome:
		positive("radius", p.Radius)
		positive("height", p.Height)
	case KindRoundedRect:
		positive("lx", p.Size[0])
		positive("ly", p.Size[1])
		positive("height", p.Size[2])
		if p.Size[0] > 0 && p.Size[1] > 0 {
			eff, err := EffectiveCornerRadius(p.Size[0], p.Size[1], p.Radius)
			switch {
			case err != nil:
				r.errorf(path, "%v", err)
			case eff != p.Radius:
				r.warnf(path, "corner radius %.4f clamped to %.4f", p.Radius, eff)
			}
		}
	default:
		r.errorf(path, "unknown primitive kind %v", p.Kind)
	}
	validatePlacement(r, p.Place, path)
}
