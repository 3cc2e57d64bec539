package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sixbitdeep/3D-Models/pkg/config"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/stub"
	"github.com/sixbitdeep/3D-Models/pkg/param"
)

func newTestApp(t *testing.T) (*App, *stub.Kernel) {
	t.Helper()
	k := stub.New()
	return NewApp(k, config.Default(), nil), k
}

// TestE2EMountExample runs the full pipeline: script → engine → families →
// builder → document → STL.
func TestE2EMountExample(t *testing.T) {
	app, _ := newTestApp(t)

	source, err := os.ReadFile("examples/mount.part")
	if err != nil {
		t.Fatalf("failed to read mount.part: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	var families []string
	for _, p := range result.Parts {
		families = append(families, p.Family)
	}
	if diff := cmp.Diff([]string{"mount", "tpu"}, families); diff != "" {
		t.Errorf("families (-want +got):\n%s", diff)
	}
	want := []string{"WindowCameraMount", "TPU_Pocket_Insert", "TPU_Undercut_Strip"}
	if diff := cmp.Diff(want, app.Document().Names()); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	paths, err := app.ExportSTL(dir)
	if err != nil {
		t.Fatalf("ExportSTL: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("wrote %d files, want 3", len(paths))
	}
	if _, err := os.Stat(filepath.Join(dir, "WindowCameraMount.stl")); err != nil {
		t.Error(err)
	}
}

func TestEvaluateClearsDocument(t *testing.T) {
	app, _ := newTestApp(t)

	if r := app.Evaluate("(sleeve)"); len(r.Errors) > 0 {
		t.Fatalf("errors: %v", r.Errors)
	}
	if r := app.Evaluate("(csleeve)"); len(r.Errors) > 0 {
		t.Fatalf("errors: %v", r.Errors)
	}
	if diff := cmp.Diff([]string{"BuckleSleeveC"}, app.Document().Names()); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}
}

func TestEvaluateScriptError(t *testing.T) {
	app, k := newTestApp(t)

	result := app.Evaluate("(sleeve :wall 2.5")
	if len(result.Errors) == 0 {
		t.Fatal("expected a script error")
	}
	if len(result.Parts) != 0 {
		t.Errorf("built %d parts from a broken script", len(result.Parts))
	}
	if k.Count("Box")+k.Count("Extrude") != 0 {
		t.Error("kernel called for a broken script")
	}
}

// A rejected family is reported and later families still build.
func TestEvaluateRejectedFamilyContinues(t *testing.T) {
	app, _ := newTestApp(t)

	result := app.Evaluate(`
(mount :horizontal-length 8)
(csleeve)`)
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one rejection", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "horizontal_length") {
		t.Errorf("error = %q, want it to name horizontal_length", result.Errors[0].Message)
	}
	if len(result.Parts) != 1 || result.Parts[0].Family != "csleeve" {
		t.Errorf("parts = %+v, want csleeve only", result.Parts)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	app, _ := newTestApp(t)

	result := app.Evaluate("")
	if len(result.Errors) != 0 || len(result.Parts) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestBuildFamilyWarnings(t *testing.T) {
	app, _ := newTestApp(t)

	part, warnings, err := app.BuildFamily("mount", param.NewSet(map[string]param.Value{
		"pocket_depth": param.Number(10),
	}))
	if err != nil {
		t.Fatalf("BuildFamily: %v", err)
	}
	if part.Report == nil {
		t.Fatal("no report")
	}
	found := false
	for _, w := range warnings {
		if strings.HasPrefix(w, "mount: pocket_depth clamped") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a pocket_depth clamp", warnings)
	}
}

func TestBuildFamilyFailureKeepsNoPartialObjects(t *testing.T) {
	app, k := newTestApp(t)

	if _, _, err := app.BuildFamily("tpu", param.NewSet(nil)); err != nil {
		t.Fatalf("BuildFamily tpu: %v", err)
	}
	before := app.Document().Names()

	// The top cap is the first antenna object with a dome, after the bottom
	// cap and every section have registered.
	k.Fail["Dome"] = errors.New("dome rejected")
	if _, _, err := app.BuildFamily("antenna", param.NewSet(nil)); err == nil || !strings.Contains(err.Error(), "dome rejected") {
		t.Fatalf("err = %v, want the dome failure", err)
	}
	if k.Count("Dome") == 0 {
		t.Fatal("antenna build never reached the top cap")
	}
	if diff := cmp.Diff(before, app.Document().Names()); diff != "" {
		t.Errorf("objects after failed build (-want +got):\n%s", diff)
	}
}

func TestBuildFamilyUnknown(t *testing.T) {
	app, _ := newTestApp(t)

	if _, _, err := app.BuildFamily("teapot", param.NewSet(nil)); err == nil {
		t.Error("expected an error for an unknown family")
	}
}

func TestExportPDF(t *testing.T) {
	app, _ := newTestApp(t)

	result := app.Evaluate("(sleeve) (tpu)")
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	path := filepath.Join(t.TempDir(), "sheets", "build.pdf")
	if err := app.ExportPDF(path, result.Parts); err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestNewKernel(t *testing.T) {
	cfg := config.Default()
	if _, err := NewKernel(cfg); err != nil {
		t.Errorf("sdfx kernel: %v", err)
	}
	cfg.Kernel = "occt"
	if _, err := NewKernel(cfg); err == nil {
		t.Error("expected an error for an unknown kernel")
	}
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"tpu-strip-length=40", "center_strip_x=true", "guy_bottom_mode=horizontal"})
	if err != nil {
		t.Fatal(err)
	}
	want := param.NewSet(map[string]param.Value{
		"tpu_strip_length": param.Number(40),
		"center_strip_x":   param.Flag(true),
		"guy_bottom_mode":  param.Enum("horizontal"),
	})
	if diff := cmp.Diff(want.Map(), got.Map(), cmp.AllowUnexported(param.Value{})); diff != "" {
		t.Errorf("overrides (-want +got):\n%s", diff)
	}

	if _, err := parseSets([]string{"wall"}); err == nil {
		t.Error("expected an error for a missing value")
	}
}
