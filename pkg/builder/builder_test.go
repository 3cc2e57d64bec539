package builder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sixbitdeep/3D-Models/pkg/edgesel"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/stub"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/session"
)

// hollow is a 30x20x10 box with a through cavity and a top rim fillet.
func hollow(radius float64) Recipe {
	shape := recipe.NewPipeline("Hollow", recipe.Box("outer", 30, 20, 10)).
		Cut(recipe.Box("inner", 26, 16, 12).At(2, 2, -1))
	return Recipe{
		Name:  "Hollow",
		Shape: shape,
		Rounds: []Round{
			{Label: "top rim", Kind: Fillet, Radius: radius, Select: edgesel.IsAtHeight(10)},
		},
	}
}

func TestBuildRegisters(t *testing.T) {
	k := stub.New()
	doc := session.New("test")
	res, err := New(k).Build(doc, hollow(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"Box", "Box", "Translate", "Difference", "Edges", "Fillet"}
	if diff := cmp.Diff(want, k.Ops()); diff != "" {
		t.Errorf("kernel calls (-want +got):\n%s", diff)
	}
	o, ok := doc.Object("Hollow")
	if !ok || o.Solid != res.Solid {
		t.Fatalf("document holds %v, want the result solid", o)
	}
	if got := res.Rounds[0]; got.Status != RoundApplied || got.Edges != 4 {
		t.Errorf("round = %+v, want applied on the 4 top box edges", got)
	}
	if res.Replaced {
		t.Error("Replaced on first build")
	}
}

func TestValidationFailureIssuesNoKernelCalls(t *testing.T) {
	k := stub.New()
	doc := session.New("test")
	doc.Put("Flat", &stub.Solid{})

	r := Recipe{Name: "Flat", Shape: recipe.Box("b", 10, 0, 10)}
	_, err := New(k).Build(doc, r)
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("err = %v, want ErrInvalidRecipe", err)
	}
	if len(k.Calls) != 0 {
		t.Errorf("kernel calls on invalid recipe: %v", k.Ops())
	}
	if _, ok := doc.Object("Flat"); ok {
		t.Error("stale object survived a failed build")
	}
}

func TestNegativeRadiusIsFatal(t *testing.T) {
	k := stub.New()
	_, err := New(k).Build(session.New("test"), hollow(-1))
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("err = %v", err)
	}
	if len(k.Calls) != 0 {
		t.Errorf("kernel calls: %v", k.Ops())
	}
}

func TestMissingSelectorIsFatal(t *testing.T) {
	r := hollow(1)
	r.Rounds[0].Select = nil
	if _, err := New(stub.New()).Build(session.New("test"), r); !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("err = %v", err)
	}
}

func TestBooleanFailureIsFatal(t *testing.T) {
	k := stub.New()
	boom := errors.New("boom")
	k.Fail["Difference"] = boom
	doc := session.New("test")

	_, err := New(k).Build(doc, hollow(1))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Path != "Hollow/1:cut" {
		t.Errorf("step error = %v", se)
	}
	if doc.Len() != 0 {
		t.Error("failed build registered an object")
	}
	if k.Count("Fillet") != 0 {
		t.Error("rounding ran after a fatal boolean failure")
	}
}

func TestNestedPrimitiveFailurePath(t *testing.T) {
	k := stub.New()
	k.Fail["Cone"] = errors.New("bad cone")
	plug := recipe.NewPipeline("plug", recipe.Cylinder("body", 5, 10)).Cut(recipe.Cone("tip", 5, 4, 1))
	shape := recipe.NewPipeline("tube", recipe.Cylinder("outer", 10, 50)).
		Cut(recipe.Cylinder("bore", 8, 52)).
		Fuse(plug)

	_, err := Evaluate(k, shape)
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StepError", err)
	}
	if se.Path != "tube/2:fuse/plug/1:cut/tip" {
		t.Errorf("path = %q", se.Path)
	}
}

func TestGracefulFilletDegradation(t *testing.T) {
	k := stub.New()
	k.Fail["Fillet"] = kernel.ErrFilletTooLarge
	core, logs := observer.New(zapcore.WarnLevel)
	doc := session.New("test")

	res, err := New(k, WithLogger(zap.New(core))).Build(doc, hollow(50))
	if err != nil {
		t.Fatalf("degraded fillet must not fail the build: %v", err)
	}
	if res.Solid == nil {
		t.Fatal("no solid")
	}
	if got := res.Solid.(*stub.Solid).Op; got != "Difference" {
		t.Errorf("solid from %s, want the pre-round Difference", got)
	}
	out := res.Rounds[0]
	if out.Status != RoundDegraded || !errors.Is(out.Err, kernel.ErrFilletTooLarge) {
		t.Errorf("outcome = %+v", out)
	}
	if len(res.Degraded()) != 1 {
		t.Errorf("Degraded() = %v", res.Degraded())
	}
	if doc.Len() != 1 {
		t.Error("degraded build not registered")
	}
	if logs.FilterField(zap.String("round", "top rim")).Len() != 1 {
		t.Errorf("want one warning for the degraded round, got %v", logs.All())
	}
}

func TestEmptySelectionDegrades(t *testing.T) {
	k := stub.New()
	r := hollow(1)
	r.Rounds[0].Select = edgesel.IsAtHeight(99)
	res, err := New(k).Build(session.New("test"), r)
	if err != nil {
		t.Fatal(err)
	}
	if out := res.Rounds[0]; out.Status != RoundDegraded || out.Reason != "no edges matched" {
		t.Errorf("outcome = %+v", out)
	}
	if k.Count("Fillet") != 0 {
		t.Error("Fillet called with no edges")
	}
}

func TestEdgeQueryFailureDegrades(t *testing.T) {
	k := stub.New()
	k.Fail["Edges"] = kernel.ErrUnsupported
	res, err := New(k).Build(session.New("test"), hollow(1))
	if err != nil {
		t.Fatal(err)
	}
	if out := res.Rounds[0]; out.Status != RoundDegraded || !errors.Is(out.Err, kernel.ErrUnsupported) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestZeroRadiusSkips(t *testing.T) {
	k := stub.New()
	res, err := New(k).Build(session.New("test"), hollow(0))
	if err != nil {
		t.Fatal(err)
	}
	if res.Rounds[0].Status != RoundSkipped {
		t.Errorf("status = %v", res.Rounds[0].Status)
	}
	if k.Count("Edges") != 0 {
		t.Error("edges queried for a disabled round")
	}
}

func TestChamferDistances(t *testing.T) {
	tests := []struct {
		name   string
		d1, d2 float64
		want   []float64
	}{
		{"symmetric", 1, 0, []float64{1, 1, 4}},
		{"asymmetric", 1, 2, []float64{1, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := stub.New()
			r := hollow(0)
			r.Rounds = []Round{{Label: "lead-in", Kind: Chamfer, Radius: tt.d1, Radius2: tt.d2, Select: edgesel.IsAtHeight(10)}}
			if _, err := New(k).Build(session.New("test"), r); err != nil {
				t.Fatal(err)
			}
			var got []float64
			for _, c := range k.Calls {
				if c.Op == "Chamfer" {
					got = c.Args
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("chamfer args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	k := stub.New()
	doc := session.New("test")
	b := New(k)
	if _, err := b.Build(doc, hollow(1)); err != nil {
		t.Fatal(err)
	}
	res, err := b.Build(doc, hollow(1))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 1 {
		t.Errorf("document has %d objects after rerun", doc.Len())
	}
	if !res.Replaced {
		t.Error("rerun did not report the replaced object")
	}
}

func TestBuildPlanStopsAtFirstFatal(t *testing.T) {
	k := stub.New()
	doc := session.New("test")
	ok := hollow(0)
	bad := Recipe{Name: "Bad", Shape: recipe.Cylinder("c", 0, 1)}
	never := hollow(0)
	never.Name = "Never"

	results, err := New(k).BuildPlan(doc, []Recipe{ok, bad, never})
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("err = %v", err)
	}
	if len(results) != 1 || results[0].Name != "Hollow" {
		t.Errorf("results = %v", results)
	}
	if diff := cmp.Diff([]string{"Hollow"}, doc.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestRoundedRectEvaluatesToExtrude(t *testing.T) {
	k := stub.New()
	s, err := Evaluate(k, recipe.RoundedRect("rr", 40, 30, 10, 6).At(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Extrude", "Translate"}, k.Ops()); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	min, max := s.BoundingBox()
	if diff := cmp.Diff([2][3]float64{{1, 2, 3}, {41, 32, 13}}, [2][3]float64{min, max}); diff != "" {
		t.Errorf("bbox (-want +got):\n%s", diff)
	}
	if got := k.Calls[0].Args; got[1] != 8 {
		t.Errorf("extruded wire has %v segments, want 8", got[1])
	}
}
