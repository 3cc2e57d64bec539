package recipe

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrimitivePlacementIsCopied(t *testing.T) {
	base := Box("b", 1, 2, 3).At(1, 0, 0)
	a := base.At(0, 1, 0)
	b := base.Rotated(0, 0, 90)
	if len(base.Place) != 1 {
		t.Fatalf("base placement changed: %v", base.Place)
	}
	if a.Place[1].Kind != Translate || b.Place[1].Kind != Rotate {
		t.Errorf("derived placements share storage: %v %v", a.Place, b.Place)
	}
}

func TestAlong(t *testing.T) {
	tests := []struct {
		axis Axis
		want []Transform
	}{
		{AxisX, []Transform{{Kind: Rotate, Y: 90}}},
		{AxisY, []Transform{{Kind: Rotate, X: -90}}},
		{AxisZ, nil},
	}
	for _, tt := range tests {
		t.Run(tt.axis.String(), func(t *testing.T) {
			got := Cylinder("c", 1, 5).Along(tt.axis).Place
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Along(%v) mismatch (-want +got):\n%s", tt.axis, diff)
			}
		})
	}
}

func TestWalkOrder(t *testing.T) {
	plug := NewPipeline("plug", Cylinder("plug-body", 5, 10)).Cut(Cone("tip", 5, 4, 1))
	p := NewPipeline("tube", Cylinder("outer", 10, 50)).
		Cut(Cylinder("bore", 8, 52)).
		Fuse(plug, Box("key", 2, 4, 10))

	var got []string
	Walk(p, func(path string, _ Primitive) { got = append(got, path) })
	want := []string{
		"tube/outer",
		"tube/1:cut/bore",
		"tube/2:fuse/plug/plug-body",
		"tube/2:fuse/plug/1:cut/tip",
		"tube/3:fuse/key",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectiveCornerRadius(t *testing.T) {
	tests := []struct {
		name    string
		lx, ly  float64
		r       float64
		want    float64
		wantErr bool
	}{
		{"fits", 40, 30, 6, 6, false},
		{"zero is plain rectangle", 40, 30, 0, 0, false},
		{"exactly half clamps", 40, 30, 15, 15 - ProfileEpsilon, false},
		{"too large clamps", 40, 30, 100, 15 - ProfileEpsilon, false},
		{"just under half clamps", 40, 30, 14.95, 15 - ProfileEpsilon, false},
		{"negative", 40, 30, -1, 0, true},
		{"section too small", 0.2, 10, 1, 0, true},
		{"zero section", 0, 10, 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveCornerRadius(tt.lx, tt.ly, tt.r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("EffectiveCornerRadius = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundedRectWireValid(t *testing.T) {
	for _, r := range []float64{0, 2, 8, 15, 50} {
		w, eff, err := RoundedRectWire(39.9, 30, r)
		if err != nil {
			t.Fatalf("r=%v: %v", r, err)
		}
		if !w.Closed(1e-12) {
			t.Errorf("r=%v: wire not closed", r)
		}
		if w.SelfIntersects() {
			t.Errorf("r=%v: wire self-intersects", r)
		}
		if eff >= 15 {
			t.Errorf("r=%v: effective radius %v not below half the section", r, eff)
		}
		min, max := w.Bounds()
		if math.Abs(min[0]) > 1e-9 || math.Abs(min[1]) > 1e-9 || math.Abs(max[0]-39.9) > 1e-9 || math.Abs(max[1]-30) > 1e-9 {
			t.Errorf("r=%v: bounds %v %v", r, min, max)
		}
		wantSegs := 8
		if eff == 0 {
			wantSegs = 4
		}
		if len(w.Segments) != wantSegs {
			t.Errorf("r=%v: %d segments, want %d", r, len(w.Segments), wantSegs)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		errs     []string
		warnings int
	}{
		{"valid", NewPipeline("s", Box("outer", 10, 10, 10)).Cut(Box("inner", 8, 8, 12).At(1, 1, -1)), nil, 0},
		{"zero box", Box("flat", 10, 0, 10), []string{"flat: box y is 0.0000"}, 0},
		{"negative cylinder", Cylinder("c", -1, 10), []string{"cylinder radius"}, 0},
		{"cone no radius", Cone("k", 0, 0, 5), []string{"cone radii"}, 0},
		{"nil base", NewPipeline("p", nil), []string{"no base"}, 0},
		{"nil operand", NewPipeline("p", Box("b", 1, 1, 1)).Cut(nil), []string{"p/1:cut: step has no operand"}, 0},
		{"nan placement", Box("b", 1, 1, 1).At(math.NaN(), 0, 0), []string{"not finite"}, 0},
		{"clamped radius warns", RoundedRect("rr", 10, 10, 5, 9), nil, 1},
		{"negative radius fails", RoundedRect("rr", 10, 10, 5, -2), []string{"negative"}, 0},
		{"nested error path", NewPipeline("outer", Box("b", 1, 1, 1)).Fuse(NewPipeline("inner", Dome("d", 0, 1))), []string{"outer/1:fuse/inner/d"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.shape)
			if len(res.Errors) != len(tt.errs) {
				t.Fatalf("errors = %v, want %d", res.Errors, len(tt.errs))
			}
			for i, want := range tt.errs {
				if !strings.Contains(res.Errors[i].Error(), want) {
					t.Errorf("error %d = %q, want containing %q", i, res.Errors[i].Error(), want)
				}
			}
			if len(res.Warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", res.Warnings, tt.warnings)
			}
			if res.OK() != (len(tt.errs) == 0) {
				t.Errorf("OK() = %v", res.OK())
			}
		})
	}
}
