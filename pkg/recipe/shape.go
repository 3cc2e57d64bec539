// Package recipe defines build recipes: placed primitive solids and the
// ordered boolean pipelines that combine them. A recipe is pure data; the
// builder evaluates it against a geometry kernel.
package recipe

import "fmt"

// Kind identifies a primitive solid.
type Kind int

const (
	KindBox         Kind = iota // Size = (x, y, z), minimum corner at origin
	KindCylinder                // Radius, Height; base centre at origin along +Z
	KindCone                    // Radius (bottom), Radius2 (top), Height
	KindDome                    // Radius (base), Height (apex)
	KindRoundedRect             // Size = (lx, ly, height), corner Radius
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindCone:
		return "cone"
	case KindDome:
		return "dome"
	case KindRoundedRect:
		return "rounded-rect"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Axis is a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// TransformKind distinguishes placement steps.
type TransformKind int

const (
	Translate TransformKind = iota
	Rotate                  // Euler degrees applied X, then Y, then Z
)

// Transform is one rigid placement step.
type Transform struct {
	Kind    TransformKind
	X, Y, Z float64
}

// Shape is a primitive or a pipeline. The set of implementations is closed.
type Shape interface {
	Label() string
	shape()
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Primitive is a placed primitive solid. Placement steps apply in order
// after the primitive is built in its local frame.
type Primitive struct {
	Kind    Kind
	Name    string
	Size    [3]float64
	Radius  float64
	Radius2 float64
	Height  float64
	Place   []Transform
}

func (Primitive) shape() {}

// Label returns the primitive's name, or its kind when unnamed.
func (p Primitive) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Kind.String()
}

// Box returns an x by y by z box with its minimum corner at the origin.
func Box(name string, x, y, z float64) Primitive {
	return Primitive{Kind: KindBox, Name: name, Size: [3]float64{x, y, z}}
}

// Cylinder returns a cylinder standing on the origin.
func Cylinder(name string, radius, height float64) Primitive {
	return Primitive{Kind: KindCylinder, Name: name, Radius: radius, Height: height}
}

// Cone returns a frustum from radius r1 at z=0 to r2 at z=height.
func Cone(name string, r1, r2, height float64) Primitive {
	return Primitive{Kind: KindCone, Name: name, Radius: r1, Radius2: r2, Height: height}
}

// Dome returns a sphere of radius scaled to height on Z and cut at z=0.
func Dome(name string, radius, height float64) Primitive {
	return Primitive{Kind: KindDome, Name: name, Radius: radius, Height: height}
}

// RoundedRect returns an lx by ly prism of the given height whose vertical
// corners are rounded with radius r. The minimum corner is at the origin.
func RoundedRect(name string, lx, ly, height, r float64) Primitive {
	return Primitive{Kind: KindRoundedRect, Name: name, Size: [3]float64{lx, ly, height}, Radius: r}
}

func (p Primitive) with(t Transform) Primitive {
	place := make([]Transform, len(p.Place), len(p.Place)+1)
	copy(place, p.Place)
	p.Place = append(place, t)
	return p
}

// At returns p translated by (x, y, z).
func (p Primitive) At(x, y, z float64) Primitive {
	return p.with(Transform{Kind: Translate, X: x, Y: y, Z: z})
}

// Rotated returns p rotated by Euler angles in degrees.
func (p Primitive) Rotated(x, y, z float64) Primitive {
	return p.with(Transform{Kind: Rotate, X: x, Y: y, Z: z})
}

// Along reorients a primitive built along +Z so that it extends along the
// positive direction of axis, keeping its base on the origin.
func (p Primitive) Along(axis Axis) Primitive {
	switch axis {
	case AxisX:
		return p.Rotated(0, 90, 0)
	case AxisY:
		return p.Rotated(-90, 0, 0)
	}
	return p
}

// ---------------------------------------------------------------------------
// Pipelines
// ---------------------------------------------------------------------------

// Op is a boolean pipeline operation.
type Op int

const (
	Fuse Op = iota
	Cut
)

func (o Op) String() string {
	switch o {
	case Fuse:
		return "fuse"
	case Cut:
		return "cut"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Step applies Op with Operand to the running accumulator.
type Step struct {
	Op      Op
	Operand Shape
}

// Pipeline starts from Base and applies Steps left to right in
// construction order. Place positions the finished result.
type Pipeline struct {
	Name  string
	Base  Shape
	Steps []Step
	Place []Transform
}

func (*Pipeline) shape() {}

// Label returns the pipeline's name.
func (p *Pipeline) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return "pipeline"
}

// NewPipeline starts a pipeline from base.
func NewPipeline(name string, base Shape) *Pipeline {
	return &Pipeline{Name: name, Base: base}
}

// Fuse appends union steps.
func (p *Pipeline) Fuse(operands ...Shape) *Pipeline {
	for _, s := range operands {
		p.Steps = append(p.Steps, Step{Op: Fuse, Operand: s})
	}
	return p
}

// Cut appends subtraction steps.
func (p *Pipeline) Cut(operands ...Shape) *Pipeline {
	for _, s := range operands {
		p.Steps = append(p.Steps, Step{Op: Cut, Operand: s})
	}
	return p
}

// At appends a translation of the finished pipeline.
func (p *Pipeline) At(x, y, z float64) *Pipeline {
	p.Place = append(p.Place, Transform{Kind: Translate, X: x, Y: y, Z: z})
	return p
}

// Rotated appends a rotation of the finished pipeline.
func (p *Pipeline) Rotated(x, y, z float64) *Pipeline {
	p.Place = append(p.Place, Transform{Kind: Rotate, X: x, Y: y, Z: z})
	return p
}

// Walk calls fn for every primitive reachable from s in evaluation order.
// The path names the primitive's position in the tree.
func Walk(s Shape, fn func(path string, p Primitive)) {
	walk(s, "", fn)
}

func walk(s Shape, prefix string, fn func(string, Primitive)) {
	switch v := s.(type) {
	case Primitive:
		fn(JoinPath(prefix, v.Label()), v)
	case *Pipeline:
		if v == nil {
			return
		}
		path := JoinPath(prefix, v.Label())
		if v.Base != nil {
			walk(v.Base, path, fn)
		}
		for i, st := range v.Steps {
			if st.Operand != nil {
				walk(st.Operand, StepPath(path, i, st.Op), fn)
			}
		}
	}
}

// JoinPath appends name to a tree path.
func JoinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// StepPath names step i (zero-based) of the pipeline at path, e.g.
// "tube/2:fuse".
func StepPath(path string, i int, op Op) string {
	return fmt.Sprintf("%s/%d:%s", path, i+1, op)
}
