package antenna

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/stub"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/session"
)

func plan(t *testing.T, overrides map[string]param.Value) *parts.Plan {
	t.Helper()
	p, err := parts.PlanWith(Family{}, param.NewSet(overrides))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return p
}

func TestComputeAirbandCentre(t *testing.T) {
	l := Compute(127, 299792458000, 0.95, 1.02, 240, 25)
	if math.Abs(l.Wavelength-2360.0) > 1 {
		t.Errorf("wavelength = %.2f, want about 2360.0", l.Wavelength)
	}
	if math.Abs(l.QuarterNominal-590.0) > 0.5 {
		t.Errorf("nominal quarter wave = %.2f, want about 590.0", l.QuarterNominal)
	}
	if math.Abs(l.HalfWave-l.Wavelength/2*0.95*1.02) > 1e-9 {
		t.Errorf("half wave = %v", l.HalfWave)
	}
	if math.Abs(l.QuarterWave-l.Wavelength/4*1.02) > 1e-9 {
		t.Errorf("quarter wave = %v", l.QuarterWave)
	}
	if l.SectionBody != 215 || l.Sections != 9 || l.SleeveSections != 3 {
		t.Errorf("sections = %+v", l)
	}
}

func TestComputeNoSectionBody(t *testing.T) {
	l := Compute(127, 299792458000, 0.95, 1.02, 25, 25)
	if l.Sections != 0 || l.SleeveSections != 0 {
		t.Errorf("sections = %d/%d, want none", l.Sections, l.SleeveSections)
	}
}

func TestPlanNames(t *testing.T) {
	p := plan(t, nil)
	want := []string{
		"BottomCap",
		"Section_01_Sleeve",
		"Section_02_Sleeve",
		"Section_03_Sleeve_FP",
		"Section_04",
		"Section_05",
		"Section_06",
		"Section_07",
		"Section_08",
		"Section_09",
		"TopCap",
		"CoaxGuide_1",
		"CoaxGuide_2",
		"CoaxGuide_3",
		"CoaxGuide_4",
		"FeedpointClamp",
		"SleeveGauge",
	}
	if diff := cmp.Diff(want, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func paths(s recipe.Shape) []string {
	var out []string
	recipe.Walk(s, func(path string, _ recipe.Primitive) { out = append(out, path) })
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSectionTree(t *testing.T) {
	p := plan(t, nil)
	r, _ := p.Recipe("Section_01_Sleeve")
	got := paths(r.Shape)
	for _, want := range []string{
		"Section_01_Sleeve/tube/outer",
		"Section_01_Sleeve/tube/1:cut/bore",
		"Section_01_Sleeve/1:cut/socket",
		"Section_01_Sleeve/2:cut/entrance",
		"Section_01_Sleeve/3:cut/keyway",
		"Section_01_Sleeve/4:fuse/plug/2:cut/tip-chamfer/1:cut/taper",
		"Section_01_Sleeve/5:fuse/key",
		"Section_01_Sleeve/6:fuse/liner/outer",
		"Section_01_Sleeve/7:fuse/lip/outer",
	} {
		if !contains(got, want) {
			t.Errorf("missing %s in %v", want, got)
		}
	}

	plain, _ := p.Recipe("Section_04")
	for _, path := range paths(plain.Shape) {
		if strings.Contains(path, "liner") || strings.Contains(path, "groove") {
			t.Errorf("plain section has %s", path)
		}
	}

	fp, _ := p.Recipe("Section_03_Sleeve_FP")
	var marks int
	for _, path := range paths(fp.Shape) {
		if strings.HasSuffix(path, "/outer") && strings.Contains(path, ":cut/mark-") {
			marks++
		}
	}
	if marks != 3 {
		t.Errorf("feedpoint marks = %d, want 3", marks)
	}
}

func TestChamferOff(t *testing.T) {
	p := plan(t, map[string]param.Value{"chamfer_size": param.Number(0)})
	r, _ := p.Recipe("Section_04")
	for _, path := range paths(r.Shape) {
		if strings.Contains(path, "entrance") || strings.Contains(path, "tip-chamfer") {
			t.Errorf("chamfer 0 still cuts %s", path)
		}
	}
}

func TestBuildLayout(t *testing.T) {
	tests := []struct {
		name    string
		layout  bool
		object  string
		wantMin [3]float64
		wantMax [3]float64
	}{
		{"bottom cap", true, "BottomCap", [3]float64{-21, -16, 0}, [3]float64{16, 16, 45}},
		{"stacked section", true, "Section_01_Sleeve", [3]float64{-16, -16, 70}, [3]float64{16, 16, 310}},
		{"stacked top cap", true, "TopCap", [3]float64{-16, -16, 2480}, [3]float64{16, 16, 2517}},
		{"section at origin", false, "Section_01_Sleeve", [3]float64{-16, -16, -25}, [3]float64{16, 16, 215}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(t, map[string]param.Value{"stack_layout": param.Flag(tt.layout)})
			doc := session.New("antenna")
			if _, err := builder.New(stub.New()).BuildPlan(doc, p.Recipes); err != nil {
				t.Fatalf("BuildPlan: %v", err)
			}
			if doc.Len() != len(p.Recipes) {
				t.Fatalf("registered %d objects, want %d", doc.Len(), len(p.Recipes))
			}
			min, max := doc.MustObject(tt.object).Solid.BoundingBox()
			if diff := cmp.Diff([2][3]float64{tt.wantMin, tt.wantMax}, [2][3]float64{min, max}); diff != "" {
				t.Errorf("bounds (-want +got):\n%s", diff)
			}
		})
	}
}

func hasViolation(err error, name string) bool {
	var ce *param.ConfigError
	if !errors.As(err, &ce) {
		return false
	}
	for _, v := range ce.Violations {
		if v.Param == name {
			return true
		}
	}
	return false
}

func TestFatalChecks(t *testing.T) {
	tests := []struct {
		name string
		o    map[string]param.Value
		want string
	}{
		{"unknown sleeve method", map[string]param.Value{"sleeve_method": param.Enum("copper")}, "sleeve_method"},
		{"plug wall too thin", map[string]param.Value{"joint_clearance": param.Number(2.2)}, "wall_thickness"},
		{"channel too wide", map[string]param.Value{"sleeve_channel_id": param.Number(26)}, "sleeve_channel_id"},
		{"coax too thick", map[string]param.Value{"coax_od": param.Number(15)}, "coax_od"},
		{"print height below joint", map[string]param.Value{"max_print_height": param.Number(20)}, "max_print_height"},
		{"drain hole margin", map[string]param.Value{"drain_margin": param.Number(1)}, "drain_holes[1]"},
		{"marks run into the plug", map[string]param.Value{"feedpoint_marks": param.Number(40)}, "feedpoint_marks"},
		{"clamp bolt margin", map[string]param.Value{"clamp_bolt_margin": param.Number(0.5)}, "clamp_bolt_y[1]"},
		{"fractional drain count", map[string]param.Value{"num_drain_holes": param.Number(2.5)}, "num_drain_holes"},
		{"zero frequency", map[string]param.Value{"target_freq_mhz": param.Number(0)}, "target_freq_mhz"},
		{"too many sections", map[string]param.Value{"target_freq_mhz": param.Number(1)}, "sections"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parts.PlanWith(Family{}, param.NewSet(tt.o))
			if !errors.Is(err, param.ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
			if p != nil {
				t.Error("rejected configuration returned a plan")
			}
			if !hasViolation(err, tt.want) {
				t.Errorf("err = %v, want a %s violation", err, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	p := plan(t, nil)
	rows := map[string]string{}
	for _, e := range p.Report.Entries {
		rows[e.Label] = e.Formatted()
	}
	want := map[string]string{
		"Frequency":           "127.0 MHz",
		"Radiator (1/2 wave)": "1143.7 mm (45.0 in)",
		"Sections":            "9 total, 3 sleeve",
		"Tube OD/ID":          "32.0 x 27.0 mm",
		"Sleeve channel ID":   "18.0 mm",
		"Liner wall":          "4.5 mm",
		"Sleeve method":       "foil",
	}
	for label, w := range want {
		if rows[label] != w {
			t.Errorf("%s = %q, want %q", label, rows[label], w)
		}
	}
}
