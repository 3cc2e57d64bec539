// Package sleeve implements the seatbelt buckle sleeve families: the fully
// enclosed sleeve with rounded inner corners matching the buckle, and the
// C-shape sleeve with a side slot so it slips on from the side.
//
// Both are a nested-cavity part: the cavity is the buckle plus clearance on
// every side, and the outer shell adds one wall on every side.
package sleeve

import (
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/edgesel"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/report"
)

// Family names.
const (
	EnclosedName = "sleeve"
	CShapeName   = "csleeve"
)

// Object names registered in the document.
const (
	EnclosedObject = "BuckleSleeveEnclosed"
	CShapeObject   = "BuckleSleeveC"
)

const (
	// cutterMargin oversizes every through cutter beyond the part on each
	// side.
	cutterMargin = 1.0

	// rimMargin keeps a rim radius below half the wall.
	rimMargin = 0.05

	// cornerMargin keeps an outer corner radius below half the smaller
	// outer side.
	cornerMargin = 0.1

	// leadInFloor is the wall left at the bottom of a lead-in chamfer.
	leadInFloor = 0.5
)

// Compile-time interface checks.
var (
	_ parts.Family = Enclosed{}
	_ parts.Family = CShape{}
)

// Dims are the derived sleeve dimensions. X is depth (front to back) and Y
// is width (left to right).
type Dims struct {
	InnerW, InnerD float64
	OuterW, OuterD float64
	Height         float64
	Wall           float64
	Clearance      float64
}

// Derive computes the cavity and shell sizes for a buckle.
func Derive(buckleW, buckleD, height, clearance, wall float64) Dims {
	d := Dims{Height: height, Wall: wall, Clearance: clearance}
	d.InnerW = buckleW + 2*clearance
	d.InnerD = buckleD + 2*clearance
	d.OuterW = d.InnerW + 2*wall
	d.OuterD = d.InnerD + 2*wall
	return d
}

// common reads and checks the buckle, clearance and wall parameters shared
// by both styles.
func common(r *param.Reader, v *param.Validator) (Dims, bool) {
	bw := r.Number("buckle_width")
	bd := r.Number("buckle_depth")
	h := r.Number("sleeve_height")
	c := r.Number("clearance")
	w := r.Number("wall")
	ok := v.Positive("buckle_width", bw)
	ok = v.Positive("buckle_depth", bd) && ok
	ok = v.Positive("sleeve_height", h) && ok
	ok = v.Positive("clearance", c) && ok
	ok = v.Positive("wall", w) && ok
	return Derive(bw, bd, h, c, w), ok
}

// rim reads a rim fillet radius: negative is fatal, too large is clamped
// below half the wall.
func rim(r *param.Reader, v *param.Validator, name string, d Dims) float64 {
	x := r.Number(name)
	if !v.NonNegative(name, x) {
		return 0
	}
	return v.Clamp(name, x, 0, d.Wall/2-rimMargin, "half the wall")
}

// leadIn reads the inner bottom lead-in chamfer: lead_in is the horizontal
// setback and lead_in_height the vertical one. 0 turns it off.
func leadIn(r *param.Reader, v *param.Validator, d Dims) (float64, float64) {
	in := r.Number("lead_in")
	h := r.Number("lead_in_height")
	if !v.NonNegative("lead_in", in) || !v.NonNegative("lead_in_height", h) {
		return 0, 0
	}
	in = v.Clamp("lead_in", in, 0, d.Wall-leadInFloor, "wall minus floor")
	h = v.Clamp("lead_in_height", h, 0, d.Height/2, "half the sleeve height")
	if in == 0 || h == 0 {
		return 0, 0
	}
	return in, h
}

// insideFootprint matches edges of the cavity, leaving the outer shell out.
func insideFootprint(d Dims) edgesel.Predicate {
	const band = 0.5
	return edgesel.WithinXY(d.Wall-band, d.Wall-band, d.OuterD-d.Wall+band, d.OuterW-d.Wall+band)
}

// rounds returns the rim and lead-in steps. With a lead-in the bottom rim
// stays on the outer shell so the cavity edges are left for the chamfer.
func rounds(d Dims, top, bottom, leadInW, leadInH float64) []builder.Round {
	bottomRim := edgesel.IsAtHeight(0)
	if leadInW > 0 {
		bottomRim = edgesel.All(bottomRim, edgesel.Not(insideFootprint(d)))
	}
	return []builder.Round{
		{Label: "top rim", Kind: builder.Fillet, Radius: top, Select: edgesel.IsAtHeight(d.Height)},
		{Label: "bottom rim", Kind: builder.Fillet, Radius: bottom, Select: bottomRim},
		{
			Label:   "lead-in",
			Kind:    builder.Chamfer,
			Radius:  leadInW,
			Radius2: leadInH,
			Select:  edgesel.All(edgesel.IsAtHeight(0), insideFootprint(d)),
		},
	}
}

func baseReport(title string, d Dims) *report.Report {
	return report.New(title).
		Dims("Outer dimensions", "mm", d.OuterD, d.OuterW, d.Height).
		Dims("Inner cavity", "mm", d.InnerD, d.InnerW).
		Add("Wall thickness", d.Wall, "mm").
		Add("Clearance", d.Clearance, "mm")
}

// ---------------------------------------------------------------------------
// Enclosed
// ---------------------------------------------------------------------------

// Enclosed is the fully enclosed sleeve: a rounded-rectangle shell minus a
// rounded-rectangle cavity open at both ends.
type Enclosed struct{}

func (Enclosed) Name() string { return EnclosedName }

func (Enclosed) Description() string {
	return "enclosed seatbelt buckle sleeve with rounded inner corners"
}

func (Enclosed) Defaults() param.Set {
	return param.NewSet(map[string]param.Value{
		"buckle_width":        param.Number(48.6),
		"buckle_depth":        param.Number(32.3),
		"sleeve_height":       param.Number(28.4),
		"clearance":           param.Number(0.8),
		"wall":                param.Number(2.5),
		"outer_corner_radius": param.Number(6.0),
		"inner_corner_radius": param.Number(8.0),
		"top_rim_radius":      param.Number(1.2),
		"bottom_rim_radius":   param.Number(1.2),
		"lead_in":             param.Number(0),
		"lead_in_height":      param.Number(6.0),
	})
}

func (Enclosed) Plan(p param.Set) (*parts.Plan, error) {
	v := param.NewValidator(EnclosedName)
	r := param.NewReader(p, v)
	d, ok := common(r, v)
	outerR := r.Number("outer_corner_radius")
	innerR := r.Number("inner_corner_radius")
	v.NonNegative("outer_corner_radius", outerR)
	v.NonNegative("inner_corner_radius", innerR)
	var top, bottom, inW, inH float64
	if ok {
		top = rim(r, v, "top_rim_radius", d)
		bottom = rim(r, v, "bottom_rim_radius", d)
		inW, inH = leadIn(r, v, d)
		outerR = v.Clamp("outer_corner_radius", outerR, 0, math.Min(d.OuterD, d.OuterW)/2-recipe.ProfileEpsilon, "half the smaller outer side")
		innerR = v.Clamp("inner_corner_radius", innerR, 0, math.Min(d.InnerD, d.InnerW)/2-recipe.ProfileEpsilon, "half the smaller cavity side")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	shape := recipe.NewPipeline(EnclosedObject, recipe.RoundedRect("outer", d.OuterD, d.OuterW, d.Height, outerR)).
		Cut(recipe.RoundedRect("cavity", d.InnerD, d.InnerW, d.Height+2*cutterMargin, innerR).
			At(d.Wall, d.Wall, -cutterMargin))

	rep := baseReport("Seatbelt Buckle Sleeve (enclosed, rounded inner corners)", d).
		Add("Outer corner radius", outerR, "mm").
		Add("Inner corner radius", innerR, "mm").
		Note("Adjust inner_corner_radius if gaps remain or the fit is too tight.")

	return &parts.Plan{
		Family:   EnclosedName,
		Recipes:  []builder.Recipe{{Name: EnclosedObject, Shape: shape, Rounds: rounds(d, top, bottom, inW, inH)}},
		Report:   rep,
		Warnings: v.Warnings(),
	}, nil
}

// ---------------------------------------------------------------------------
// C-shape
// ---------------------------------------------------------------------------

// CShape is the slip-on sleeve: a box shell minus a box cavity, with a slot
// through one side wall.
type CShape struct{}

func (CShape) Name() string { return CShapeName }

func (CShape) Description() string {
	return "C-shape seatbelt buckle sleeve with a side slot"
}

func (CShape) Defaults() param.Set {
	return param.NewSet(map[string]param.Value{
		"buckle_width":      param.Number(51.6),
		"buckle_depth":      param.Number(33.3),
		"sleeve_height":     param.Number(25.0),
		"clearance":         param.Number(0.8),
		"wall":              param.Number(2.5),
		"corner_radius":     param.Number(6.0),
		"top_rim_radius":    param.Number(1.2),
		"bottom_rim_radius": param.Number(0),
		"lead_in":           param.Number(0),
		"lead_in_height":    param.Number(6.0),
		"slot_width":        param.Number(14.0),
		"slot_side":         param.Enum("right"),
		"slot_relief":       param.Number(0),
	})
}

// SlotOrigin returns the minimum corner of the side slot cutter. The slot
// is centred in X; on the right it starts relief inside the cavity's Y max
// face, on the left it starts outside the Y min face.
func SlotOrigin(d Dims, slotWidth, relief float64, side string) (x, y float64) {
	x = (d.OuterD - slotWidth) / 2
	if side == "right" {
		return x, d.Wall + d.InnerW - relief
	}
	return x, -cutterMargin
}

func (CShape) Plan(p param.Set) (*parts.Plan, error) {
	v := param.NewValidator(CShapeName)
	r := param.NewReader(p, v)
	d, ok := common(r, v)
	slotW := r.Number("slot_width")
	side := r.Enum("slot_side", "left", "right")
	relief := r.Number("slot_relief")
	cornerR := r.Number("corner_radius")
	v.NonNegative("corner_radius", cornerR)
	var top, bottom, inW, inH float64
	if ok {
		if v.Positive("slot_width", slotW) {
			v.AtMost("slot_width", slotW, d.InnerD)
		}
		if v.NonNegative("slot_relief", relief) {
			v.Less("slot_relief", relief, d.InnerW/2)
		}
		top = rim(r, v, "top_rim_radius", d)
		bottom = rim(r, v, "bottom_rim_radius", d)
		inW, inH = leadIn(r, v, d)
		cornerR = v.Clamp("corner_radius", cornerR, 0, math.Min(d.OuterD, d.OuterW)/2-cornerMargin, "half the smaller outer side")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	sx, sy := SlotOrigin(d, slotW, relief, side)
	shape := recipe.NewPipeline(CShapeObject, recipe.Box("outer", d.OuterD, d.OuterW, d.Height)).
		Cut(recipe.Box("cavity", d.InnerD, d.InnerW, d.Height+2*cutterMargin).At(d.Wall, d.Wall, -cutterMargin)).
		Cut(recipe.Box("slot", slotW, d.Wall+2*cutterMargin+relief, d.Height+2*cutterMargin).At(sx, sy, -cutterMargin))

	corners := builder.Round{
		Label:  "outer corners",
		Kind:   builder.Fillet,
		Radius: cornerR,
		Select: edgesel.All(
			edgesel.IsVerticalFullHeight(d.Height),
			edgesel.IsOnOuterPerimeter(d.OuterD, d.OuterW, d.Wall/2),
		),
	}

	rep := baseReport("Seatbelt Buckle Sleeve (C-shape)", d).
		Text("Side slot", "%.1f mm on %s side", slotW, side).
		Add("Slot relief", relief, "mm").
		Add("Corner radius", cornerR, "mm").
		Note("Open bottom allows the buckle to function normally.")

	return &parts.Plan{
		Family:   CShapeName,
		Recipes:  []builder.Recipe{{Name: CShapeObject, Shape: shape, Rounds: append([]builder.Round{corners}, rounds(d, top, bottom, inW, inH)...)}},
		Report:   rep,
		Warnings: v.Warnings(),
	}, nil
}
