package mount

import (
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/param"
)

// Recess is one cut-out in the horizontal plate: a rectangle of Length by
// Width with its minimum corner at (X, Y), Depth deep into the plate.
type Recess struct {
	Enabled bool
	X, Y    float64
	Length  float64
	Width   float64
	Depth   float64
}

// Plate is the horizontal plate and its damping recesses. The TPU strips
// are sized from the same values so they always match the printed mount.
type Plate struct {
	Shift     float64 // inside forward shift; the plate starts here
	Length    float64 // horizontal length, measured from x=0
	Thickness float64
	Width     float64

	TopPocket    Recess
	BottomPocket Recess
	Undercut     Recess
}

// Run is the plate's actual length from the inside arm to its end.
func (p Plate) Run() float64 { return p.Length - p.Shift }

// PlateDefaults returns the plate parameters shared by the mount and the TPU
// strips.
func PlateDefaults() map[string]param.Value {
	return map[string]param.Value{
		"inside_forward_shift": param.Number(3.8),
		"horizontal_length":    param.Number(86),
		"horizontal_thickness": param.Number(5),
		"width":                param.Number(54),
		"pocket_top":           param.Flag(true),
		"pocket_bottom":        param.Flag(false),
		"pocket_x_start":       param.Number(2),
		"pocket_length":        param.Number(24),
		"pocket_y_margin":      param.Number(4),
		"pocket_depth":         param.Number(1.8),
		"min_floor_thickness":  param.Number(1.2),
		"undercut":             param.Flag(true),
		"undercut_x_start":     param.Number(6),
		"undercut_length":      param.Number(60),
		"undercut_y_margin":    param.Number(3),
		"undercut_depth":       param.Number(1.2),
		"undercut_min_floor":   param.Number(2),
	}
}

// ReadPlate reads the plate parameters. Recess extents and depths are
// cosmetic and clamped into the plate; the plate sizes themselves must be
// positive.
func ReadPlate(r *param.Reader, v *param.Validator) Plate {
	p := Plate{
		Shift:     r.Number("inside_forward_shift"),
		Length:    r.Number("horizontal_length"),
		Thickness: r.Number("horizontal_thickness"),
		Width:     r.Number("width"),
	}
	ok := v.NonNegative("inside_forward_shift", p.Shift)
	ok = v.Positive("horizontal_length", p.Length) && ok
	ok = v.Positive("horizontal_thickness", p.Thickness) && ok
	ok = v.Positive("width", p.Width) && ok

	top := r.Flag("pocket_top")
	bottom := r.Flag("pocket_bottom")
	pocket := p.recess(r, v, "pocket", "min_floor_thickness", 1, ok)
	p.TopPocket, p.BottomPocket = pocket, pocket
	p.TopPocket.Enabled = top && ok
	p.BottomPocket.Enabled = bottom && ok

	under := r.Flag("undercut")
	p.Undercut = p.recess(r, v, "undercut", "undercut_min_floor", 2, ok)
	p.Undercut.Enabled = under && ok
	return p
}

// recess reads prefix_x_start, prefix_length, prefix_y_margin and
// prefix_depth. minLen is the shortest recess kept.
func (p Plate) recess(r *param.Reader, v *param.Validator, prefix, floorName string, minLen float64, ok bool) Recess {
	x := r.Number(prefix + "_x_start")
	l := r.Number(prefix + "_length")
	m := r.Number(prefix + "_y_margin")
	d := r.Number(prefix + "_depth")
	floor := r.Number(floorName)
	if !ok {
		return Recess{}
	}
	var rc Recess
	rc.X = v.Clamp(prefix+"_x_start", x, 0, math.Max(0, p.Length-minLen), "inside the horizontal length")
	rc.Length = v.Clamp(prefix+"_length", l, minLen, p.Length-rc.X, "inside the horizontal length")
	rc.Y = v.Clamp(prefix+"_y_margin", m, 0, p.Width/2, "half the width")
	rc.Width = math.Max(1, p.Width-2*rc.Y)
	rc.Depth = v.Clamp(prefix+"_depth", d, 0.1, math.Max(0.1, p.Thickness-floor), "plate thickness minus floor")
	return rc
}
