package param

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func defaults() Set {
	return NewSet(map[string]Value{
		"wall":      Number(2.5),
		"slot_side": Enum("right"),
		"lead_in":   Flag(false),
	})
}

func TestSetIsImmutableCopy(t *testing.T) {
	m := map[string]Value{"wall": Number(2)}
	s := NewSet(m)
	m["wall"] = Number(99)
	if v, _ := s.Get("wall"); v.Float() != 2 {
		t.Errorf("set changed with source map: wall = %v", v)
	}
	cp := s.Map()
	cp["wall"] = Number(7)
	if v, _ := s.Get("wall"); v.Float() != 2 {
		t.Errorf("set changed with Map copy: wall = %v", v)
	}
}

func TestOverride(t *testing.T) {
	base := defaults()
	tests := []struct {
		name    string
		o       map[string]Value
		wantErr string
	}{
		{"number", map[string]Value{"wall": Number(3)}, ""},
		{"enum", map[string]Value{"slot_side": Enum("left")}, ""},
		{"unknown", map[string]Value{"walls": Number(3)}, "unknown parameter"},
		{"kind change", map[string]Value{"wall": Enum("thick")}, "cannot override"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.Override(NewSet(tt.o))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Override error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Override: %v", err)
			}
			for k, v := range tt.o {
				if g, _ := got.Get(k); g != v {
					t.Errorf("%s = %v, want %v", k, g, v)
				}
			}
			if v, _ := base.Get("wall"); v.Float() != 2.5 {
				t.Errorf("base mutated: wall = %v", v)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"2.5", Number(2.5)},
		{"-1", Number(-1)},
		{"true", Flag(true)},
		{"off", Flag(false)},
		{"right", Enum("right")},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v (%s), want %v (%s)", tt.in, got, got.Kind(), tt.want, tt.want.Kind())
		}
	}
}

func TestReader(t *testing.T) {
	v := NewValidator("test")
	r := NewReader(defaults(), v)
	if got := r.Number("wall"); got != 2.5 {
		t.Errorf("wall = %v", got)
	}
	if got := r.Enum("slot_side", "left", "right"); got != "right" {
		t.Errorf("slot_side = %q", got)
	}
	if r.Flag("lead_in") {
		t.Error("lead_in = true")
	}
	if err := v.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Number("missing")
	r.Number("slot_side")
	r.Enum("slot_side", "up", "down")
	got := v.Violations()
	if len(got) != 3 {
		t.Fatalf("violations = %v, want 3", got)
	}
	for _, want := range []string{"missing parameter", "want number", "not one of"} {
		found := false
		for _, viol := range got {
			if strings.Contains(viol.Error(), want) {
				found = true
			}
		}
		if !found {
			t.Errorf("no violation mentioning %q in %v", want, got)
		}
	}
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator("sleeve")
	v.Positive("wall", 2.5)
	v.Positive("clearance", 0)
	v.NonNegative("relief", -1)
	v.AtMost("slot_width", 40, 34.9)
	v.Less("relief", 30, 26.6)

	err := v.Err()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("Err() = %v, want ErrConfig", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Err() is %T, want *ConfigError", err)
	}
	want := []Violation{
		{Param: "clearance", Value: 0, Bound: 0, Rule: "> 0"},
		{Param: "relief", Value: -1, Bound: 0, Rule: ">= 0"},
		{Param: "slot_width", Value: 40, Bound: 34.9, Rule: "<= bound"},
		{Param: "relief", Value: 30, Bound: 26.6, Rule: "< bound"},
	}
	if diff := cmp.Diff(want, ce.Violations); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
	if ce.Family != "sleeve" {
		t.Errorf("Family = %q", ce.Family)
	}
}

func TestMarginReportsComputedValue(t *testing.T) {
	// Camera hole pair on a 54 wide arm: spacing 35.35, shifted -4.
	const width, spacing, shift, r, margin = 54.0, 35.35, -4.0, 3.175, 2.5
	y1 := width/2 - spacing/2 + shift
	v := NewValidator("mount")
	if v.Margin("camera_hole_y1", y1, r, margin, 0, width) {
		t.Fatal("Margin accepted a hole inside the edge margin")
	}
	got := v.Violations()
	if len(got) != 1 {
		t.Fatalf("violations = %v, want 1", got)
	}
	if got[0].Value != y1 || got[0].Bound != r+margin {
		t.Errorf("violation = %+v, want value %v bound %v", got[0], y1, r+margin)
	}
	if !strings.Contains(got[0].Error(), "5.3250") {
		t.Errorf("message %q does not report y1", got[0].Error())
	}
}

func TestClampIsNeverFatal(t *testing.T) {
	v := NewValidator("sleeve")
	if got := v.Clamp("top_rim_radius", 3, 0, 1.2, "half the wall"); got != 1.2 {
		t.Errorf("Clamp = %v, want 1.2", got)
	}
	if got := v.Clamp("corner_radius", 0, 0, 5, "half the outer size"); got != 0 {
		t.Errorf("Clamp(0) = %v, want 0", got)
	}
	if err := v.Err(); err != nil {
		t.Errorf("Clamp produced an error: %v", err)
	}
	w := v.Warnings()
	if len(w) != 1 || w[0].Param != "top_rim_radius" || w[0].Used != 1.2 {
		t.Errorf("warnings = %v", w)
	}
}
