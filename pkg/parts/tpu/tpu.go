// Package tpu implements the TPU damping strips that sit in the window
// mount's recesses: a pad for the top pocket and a strip for the underside
// undercut. Plate and recess sizes are read exactly as the mount reads
// them, so the strips match a mount printed from the same overrides.
package tpu

import (
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/parts/mount"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/report"
)

const (
	// Name is the family name.
	Name = "tpu"

	PadObject   = "TPU_Pocket_Insert"
	StripObject = "TPU_Undercut_Strip"
)

const (
	minThickness   = 0.2
	minStripExtent = 5.0
)

var _ parts.Family = Family{}

// Family is the pair of TPU damping strips.
type Family struct{}

func (Family) Name() string { return Name }

func (Family) Description() string {
	return "TPU damping pad and undercut strip for the window clip mount"
}

func (Family) Defaults() param.Set {
	m := mount.PlateDefaults()
	for k, v := range map[string]param.Value{
		"tpu_pocket_thickness":         param.Number(1.6),
		"tpu_undercut_strip_thickness": param.Number(1.0),
		"tpu_undercut_match_slot":      param.Flag(true),
		"tpu_strip_length":             param.Number(60),
		"tpu_strip_width":              param.Number(30),
		"center_strip_x":               param.Flag(false),
		"center_strip_y":               param.Flag(false),
		"preview_side_by_side":         param.Flag(true),
		"preview_gap":                  param.Number(10),
		"preview_pad":                  param.Number(5),
	} {
		m[k] = v
	}
	return param.NewSet(m)
}

// Block is one strip: a box of Size with its minimum corner at Origin, in
// the mount's frame.
type Block struct {
	Origin [3]float64
	Size   [3]float64
}

// Strips are the derived pad and undercut strip. HasPad is false when the
// mount has no pocket.
type Strips struct {
	HasPad bool
	Pad    Block
	Strip  Block
	Match  bool
}

// Derive sizes the strips from the plate. The undercut must be enabled.
func Derive(r *param.Reader, v *param.Validator) Strips {
	pl := mount.ReadPlate(r, v)
	padT := r.Number("tpu_pocket_thickness")
	stripT := r.Number("tpu_undercut_strip_thickness")
	match := r.Flag("tpu_undercut_match_slot")
	length := r.Number("tpu_strip_length")
	width := r.Number("tpu_strip_width")
	centreX := r.Flag("center_strip_x")
	centreY := r.Flag("center_strip_y")

	s := Strips{Match: match}
	if !r.Flag("undercut") {
		v.Failf("undercut", "must be enabled to size the undercut strip")
	}
	if !v.Greater("horizontal_length", pl.Run(), 0) || !pl.Undercut.Enabled {
		return s
	}

	if pc := pocket(pl); pc.Enabled {
		s.HasPad = true
		t := v.Clamp("tpu_pocket_thickness", padT, minThickness, pc.Depth, "pocket depth")
		z := 0.0
		if pl.TopPocket.Enabled {
			z = pl.Thickness - pc.Depth
		}
		s.Pad = Block{Origin: [3]float64{pc.X, pc.Y, z}, Size: [3]float64{pc.Length, pc.Width, t}}
	}

	uc := pl.Undercut
	run := math.Max(minStripExtent, pl.Run())
	var l, w float64
	if match {
		// The slot is already clamped into the plate.
		l = clamp(uc.Length, minStripExtent, run)
		w = clamp(uc.Width, minStripExtent, math.Max(minStripExtent, pl.Width))
	} else {
		l = v.Clamp("tpu_strip_length", length, minStripExtent, run, "the plate run")
		w = v.Clamp("tpu_strip_width", width, minStripExtent, pl.Width, "the plate width")
	}
	t := v.Clamp("tpu_undercut_strip_thickness", stripT, minThickness, uc.Depth, "undercut depth")

	var x, y float64
	if centreX {
		x = pl.Shift + (pl.Run()-l)/2
	} else {
		x = clamp(uc.X, 0, pl.Length-l)
	}
	if centreY {
		y = (pl.Width - w) / 2
	} else {
		y = clamp(uc.Y, 0, pl.Width-w)
	}
	s.Strip = Block{Origin: [3]float64{x, y, 0}, Size: [3]float64{l, w, t}}
	return s
}

// pocket is the recess the pad fills, the top one when both are enabled.
func pocket(pl mount.Plate) mount.Recess {
	if pl.TopPocket.Enabled {
		return pl.TopPocket
	}
	return pl.BottomPocket
}

func clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(x, hi)) }

// Preview lays the strips out side by side on the bed: the pad at the
// origin and the strip gap plus pad beyond it.
func (s Strips) Preview(gap, pad float64) Strips {
	out := s
	x := 0.0
	if s.HasPad {
		out.Pad.Origin = [3]float64{}
		x = s.Pad.Size[0] + gap + pad
	}
	out.Strip.Origin = [3]float64{x, 0, 0}
	return out
}

func (Family) Plan(p param.Set) (*parts.Plan, error) {
	v := param.NewValidator(Name)
	r := param.NewReader(p, v)
	s := Derive(r, v)
	preview := r.Flag("preview_side_by_side")
	gap := r.Number("preview_gap")
	pad := r.Number("preview_pad")
	if preview {
		v.NonNegative("preview_gap", gap)
		v.NonNegative("preview_pad", pad)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if preview {
		s = s.Preview(gap, pad)
	}

	var recipes []builder.Recipe
	if s.HasPad {
		recipes = append(recipes, builder.Recipe{Name: PadObject, Shape: block("pad", s.Pad)})
	}
	recipes = append(recipes, builder.Recipe{Name: StripObject, Shape: block("strip", s.Strip)})

	rep := report.New("TPU Damping Strips")
	if s.HasPad {
		rep.AddPrec(PadObject, 2, "mm", s.Pad.Size[:]...)
	} else {
		rep.Text(PadObject, "no pocket")
	}
	rep.AddPrec(StripObject, 2, "mm", s.Strip.Size[:]...).
		Text("Undercut match slot", "%t", s.Match).
		Text("Preview side-by-side", "%t", preview)

	return &parts.Plan{
		Family:   Name,
		Recipes:  recipes,
		Report:   rep,
		Warnings: v.Warnings(),
	}, nil
}

func block(name string, b Block) recipe.Primitive {
	return recipe.Box(name, b.Size[0], b.Size[1], b.Size[2]).At(b.Origin[0], b.Origin[1], b.Origin[2])
}
