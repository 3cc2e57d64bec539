// Package mount implements the sliding-window clip camera mount: an inside
// arm that hooks over the window frame, a horizontal plate across the sill
// with damping recesses, and an outside arm carrying the camera holes.
// Guy-wire holes in the clip lip and at the bottom brace it against wind.
package mount

import (
	"fmt"
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/edgesel"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/pattern"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/report"
)

const (
	// Name is the family name.
	Name = "mount"

	// Object is the registered bracket.
	Object = "WindowCameraMount"
)

// Guy-wire bottom hole placements.
const (
	GuyOutsideArm = "outside_arm"
	GuyHorizontal = "horizontal"
)

const (
	cutterMargin = 1.0

	// minPlateRun is the shortest plate left between the arms.
	minPlateRun = 5.0

	// hostMargin is the material kept around a guy-wire hole inside the
	// feature it is drilled through.
	hostMargin = 0.5

	// Safe fillet edge filter.
	tinyEdge = 0.25
	longEdge = 15.0

	trimOverhang = 400.0
	trimSide     = 20.0
	trimBelow    = 80.0
)

var _ parts.Family = Family{}

// Family is the window clip camera mount.
type Family struct{}

func (Family) Name() string { return Name }

func (Family) Description() string {
	return "sliding window clip camera mount with damping recesses and guy-wire holes"
}

func (Family) Defaults() param.Set {
	m := PlateDefaults()
	for k, v := range map[string]param.Value{
		"inside_height":                param.Number(39.2),
		"inside_thickness":             param.Number(4),
		"inside_top_segment_height":    param.Number(8),
		"inside_connect_height":        param.Number(4),
		"back_trim":                    param.Flag(true),
		"back_trim_extra":              param.Number(0),
		"back_trim_keep_below_connect": param.Flag(true),
		"lip_length":                   param.Number(16.35),
		"lip_thickness":                param.Number(4),
		"outside_length":               param.Number(70),
		"outside_thickness":            param.Number(5),
		"hole_diameter":                param.Number(6.35),
		"hole_offset_from_bottom":      param.Number(20),
		"center_holes_z":               param.Flag(true),
		"second_hole":                  param.Flag(true),
		"hole_spacing_y":               param.Number(35.35),
		"hole_2_offset":                param.Number(3.5),
		"hole_pair_shift":              param.Number(-1.75),
		"min_edge_margin_y":            param.Number(2.5),
		"fillet_radius":                param.Number(0),
		"guy_holes":                    param.Flag(true),
		"guy_hole_diameter":            param.Number(4),
		"guy_edge_margin_y":            param.Number(4),
		"guy_top_in_lip":               param.Flag(true),
		"guy_top_lip_x_frac":           param.Number(0.55),
		"guy_bottom_mode":              param.Enum(GuyOutsideArm),
		"guy_bottom_z_frac":            param.Number(0.7),
		"guy_bottom_x_backoff":         param.Number(10),
	} {
		m[k] = v
	}
	return param.NewSet(m)
}

// Holes are the resolved camera and guy-wire hole positions.
type Holes struct {
	Radius  float64
	X, Z    float64
	Y       []float64
	GuyR    float64
	GuyY    [2]float64
	TopX    float64 // lip hole X, 0 when off
	Bottom  string  // GuyOutsideArm, GuyHorizontal or "" when off
	BottomX float64
	BottomZ float64
}

// CameraHoleY returns the camera hole centres across the width. y2 is
// offset further by hole2Offset to match the camera's asymmetric base.
func CameraHoleY(width, shift, spacing, hole2Offset float64) (y1, y2 float64) {
	c := width/2 + shift
	return c - spacing/2, c + spacing/2 + hole2Offset
}

// GuyY returns the guy-wire hole centres, each margin plus the hole radius
// in from the side faces.
func GuyY(width, r, margin float64) (lo, hi float64) {
	return r + margin, width - r - margin
}

type dims struct {
	Plate

	insideH, insideT float64
	topH, botH       float64
	connH            float64
	trim             bool
	trimX, trimTop   float64
	lipL, lipT       float64
	outL, outT       float64
	fillet           float64
	holes            Holes
}

// armBottom is the Z of the outside arm's lower end.
func (d dims) armBottom() float64 { return d.Thickness - d.outL }

func derive(r *param.Reader, v *param.Validator) dims {
	d := dims{Plate: ReadPlate(r, v)}
	d.insideH = r.Number("inside_height")
	d.insideT = r.Number("inside_thickness")
	topH := r.Number("inside_top_segment_height")
	connH := r.Number("inside_connect_height")
	d.trim = r.Flag("back_trim")
	extra := r.Number("back_trim_extra")
	keepBelow := r.Flag("back_trim_keep_below_connect")
	d.lipL = r.Number("lip_length")
	d.lipT = r.Number("lip_thickness")
	d.outL = r.Number("outside_length")
	d.outT = r.Number("outside_thickness")
	d.fillet = r.Number("fillet_radius")

	ok := v.Positive("inside_height", d.insideH)
	ok = v.Positive("inside_thickness", d.insideT) && ok
	ok = v.Positive("lip_length", d.lipL) && ok
	ok = v.Positive("lip_thickness", d.lipT) && ok
	ok = v.Positive("outside_length", d.outL) && ok
	ok = v.Positive("outside_thickness", d.outT) && ok
	ok = v.NonNegative("fillet_radius", d.fillet) && ok
	ok = v.NonNegative("back_trim_extra", extra) && ok
	ok = v.Greater("horizontal_length", d.Run(), minPlateRun) && ok
	if !ok {
		return d
	}

	d.topH = v.Clamp("inside_top_segment_height", topH, 1, d.insideH, "inside height")
	d.botH = math.Max(0.1, d.insideH-d.topH)
	d.connH = v.Clamp("inside_connect_height", connH, 0.5, d.topH, "top segment height")
	d.trimX = d.Shift - extra
	d.trimTop = d.Thickness + d.botH
	if keepBelow {
		d.trimTop -= d.connH
	}
	d.holes = d.readHoles(r, v)
	return d
}

func (d dims) readHoles(r *param.Reader, v *param.Validator) Holes {
	dia := r.Number("hole_diameter")
	offset := r.Number("hole_offset_from_bottom")
	centre := r.Flag("center_holes_z")
	second := r.Flag("second_hole")
	spacing := r.Number("hole_spacing_y")
	hole2 := r.Number("hole_2_offset")
	shift := r.Number("hole_pair_shift")
	margin := r.Number("min_edge_margin_y")
	guys := r.Flag("guy_holes")
	guyDia := r.Number("guy_hole_diameter")
	guyMargin := r.Number("guy_edge_margin_y")
	inLip := r.Flag("guy_top_in_lip")
	lipFrac := r.Number("guy_top_lip_x_frac")
	mode := r.Enum("guy_bottom_mode", GuyOutsideArm, GuyHorizontal)
	zFrac := r.Number("guy_bottom_z_frac")
	backoff := r.Number("guy_bottom_x_backoff")

	h := Holes{Radius: dia / 2, X: d.Length - d.outT - cutterMargin}
	if !v.Positive("hole_diameter", dia) || !v.NonNegative("min_edge_margin_y", margin) {
		return h
	}
	if centre {
		offset = d.outL / 2
	}
	h.Z = d.armBottom() + offset
	pattern.CheckSpan(v, "hole_z", []float64{h.Z}, h.Radius, margin, d.armBottom(), d.Thickness)

	// Structural: a hole too close to an edge is never moved.
	y1, y2 := CameraHoleY(d.Width, shift, spacing, hole2)
	h.Y = []float64{y1}
	v.Margin("hole_1_y", y1, h.Radius, margin, 0, d.Width)
	if second {
		h.Y = append(h.Y, y2)
		v.Margin("hole_2_y", y2, h.Radius, margin, 0, d.Width)
	}

	if !guys || !v.Positive("guy_hole_diameter", guyDia) || !v.NonNegative("guy_edge_margin_y", guyMargin) {
		return h
	}
	h.GuyR = guyDia / 2
	lo, hi := GuyY(d.Width, h.GuyR, guyMargin)
	if !v.Less("guy_edge_margin_y", lo, hi) {
		return h
	}
	h.GuyY = [2]float64{lo, hi}

	if inLip {
		frac := v.Clamp("guy_top_lip_x_frac", lipFrac, 0.1, 0.9, "along the lip")
		h.TopX = d.insideT + frac*d.lipL
		pattern.CheckSpan(v, "guy_top_x", []float64{h.TopX}, h.GuyR, hostMargin, d.insideT, d.insideT+d.lipL)
	}
	h.Bottom = mode
	switch mode {
	case GuyOutsideArm:
		frac := v.Clamp("guy_bottom_z_frac", zFrac, 0.1, 0.95, "along the outside arm")
		h.BottomX = d.Length - d.outT - 0.5
		h.BottomZ = d.armBottom() + frac*d.outL
		pattern.CheckSpan(v, "guy_bottom_z", []float64{h.BottomZ}, h.GuyR, hostMargin, d.armBottom(), d.Thickness)
	case GuyHorizontal:
		h.BottomX = d.Length - d.outT - v.Clamp("guy_bottom_x_backoff", backoff, 6, 40, "along the plate")
		pattern.CheckSpan(v, "guy_bottom_x", []float64{h.BottomX}, h.GuyR, hostMargin, d.Shift, d.Length-d.outT)
	}
	return h
}

func (Family) Plan(p param.Set) (*parts.Plan, error) {
	v := param.NewValidator(Name)
	r := param.NewReader(p, v)
	d := derive(r, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &parts.Plan{
		Family: Name,
		Recipes: []builder.Recipe{{
			Name:  Object,
			Shape: d.bracket(),
			Rounds: []builder.Round{{
				Label:  "safe fillet",
				Kind:   builder.Fillet,
				Radius: d.fillet,
				Select: edgesel.All(edgesel.Not(edgesel.IsTiny(tinyEdge)), edgesel.MaxExtentAtLeast(longEdge)),
			}},
		}},
		Report:   d.report(),
		Warnings: v.Warnings(),
	}, nil
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

func (d dims) insideArm() *recipe.Pipeline {
	z := d.Thickness
	arm := recipe.NewPipeline("inside-arm", recipe.Box("bottom-segment", d.insideT, d.Width, d.botH).At(d.Shift, 0, z)).
		Fuse(
			recipe.Box("top-segment", d.insideT, d.Width, d.topH).At(0, 0, z+d.botH),
			recipe.Box("connector", d.Shift+d.insideT, d.Width, d.connH).At(0, 0, z+d.botH-d.connH),
		)
	if d.trim {
		arm.Cut(recipe.Box("back-trim", trimOverhang, d.Width+2*trimSide, d.trimTop+trimBelow).
			At(d.trimX-trimOverhang, -trimSide, -trimBelow))
	}
	return arm
}

// plate is cut on its own so the recess cutters may overhang it freely.
func (d dims) plate() *recipe.Pipeline {
	p := recipe.NewPipeline("plate", recipe.Box("horizontal", d.Run(), d.Width, d.Thickness).At(d.Shift, 0, 0))
	if rc := d.TopPocket; rc.Enabled {
		p.Cut(recipe.Box("top-pocket", rc.Length, rc.Width, rc.Depth+cutterMargin).At(rc.X, rc.Y, d.Thickness-rc.Depth))
	}
	if rc := d.BottomPocket; rc.Enabled {
		p.Cut(recipe.Box("bottom-pocket", rc.Length, rc.Width, rc.Depth+cutterMargin).At(rc.X, rc.Y, -cutterMargin))
	}
	if rc := d.Undercut; rc.Enabled {
		p.Cut(recipe.Box("undercut", rc.Length, rc.Width, rc.Depth+cutterMargin).At(rc.X, rc.Y, -cutterMargin))
	}
	return p
}

func (d dims) bracket() *recipe.Pipeline {
	b := recipe.NewPipeline(Object, d.insideArm()).
		Fuse(
			d.plate(),
			recipe.Box("outside-arm", d.outT, d.Width, d.outL).At(d.Length-d.outT, 0, d.armBottom()),
			recipe.Box("lip", d.lipL, d.Width, d.lipT).At(d.insideT, 0, d.Thickness+d.insideH-d.lipT),
		)

	h := d.holes
	for i, y := range h.Y {
		b.Cut(recipe.Cylinder(fmt.Sprintf("camera-hole-%d", i+1), h.Radius, d.outT+2*cutterMargin).
			Along(recipe.AxisX).
			At(h.X, y, h.Z))
	}
	if h.TopX > 0 {
		z := d.Thickness + d.insideH - d.lipT - cutterMargin
		for i, y := range h.GuyY {
			b.Cut(recipe.Cylinder(fmt.Sprintf("guy-top-%d", i+1), h.GuyR, d.lipT+2*cutterMargin).At(h.TopX, y, z))
		}
	}
	if h.Bottom == "" {
		return b
	}
	for i, y := range h.GuyY {
		name := fmt.Sprintf("guy-bottom-%d", i+1)
		if h.Bottom == GuyOutsideArm {
			b.Cut(recipe.Cylinder(name, h.GuyR, d.outT+2*cutterMargin).Along(recipe.AxisX).At(h.BottomX, y, h.BottomZ))
		} else {
			b.Cut(recipe.Cylinder(name, h.GuyR, d.Thickness+2*cutterMargin).At(h.BottomX, y, -cutterMargin))
		}
	}
	return b
}

func (d dims) report() *report.Report {
	h := d.holes
	rep := report.New("Window Clip Camera Mount").
		Dims("Plate", "mm", d.Run(), d.Width, d.Thickness).
		Add("Inside height", d.insideH, "mm").
		Add("Outside arm", d.outL, "mm").
		AddPrec("Camera hole Y", 2, "mm", h.Y...).
		AddPrec("Camera hole Z", 2, "mm", h.Z)
	rep.Section("Damping")
	for _, rc := range []struct {
		label string
		r     Recess
	}{
		{"Top pocket", d.TopPocket},
		{"Bottom pocket", d.BottomPocket},
		{"Undercut", d.Undercut},
	} {
		if rc.r.Enabled {
			rep.AddPrec(rc.label, 2, "mm", rc.r.Length, rc.r.Width, rc.r.Depth)
		} else {
			rep.Text(rc.label, "off")
		}
	}
	rep.Section("Guy wires")
	if h.GuyR == 0 {
		rep.Text("Guy holes", "off")
	} else {
		rep.AddPrec("Guy hole Y", 2, "mm", h.GuyY[0], h.GuyY[1])
		if h.TopX > 0 {
			rep.AddPrec("Top holes in lip at X", 2, "mm", h.TopX)
		}
		rep.Text("Bottom holes", "%s", h.Bottom)
	}
	if d.fillet > 0 {
		rep.Add("Fillet radius", d.fillet, "mm")
	}
	return rep
}
