package param

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrConfig is matched by every fatal configuration error.
var ErrConfig = errors.New("param: invalid configuration")

// Violation is one fatal rule failure. Value is the computed value that
// broke the rule and Bound the limit it crossed.
type Violation struct {
	Param  string
	Value  float64
	Bound  float64
	Rule   string
	Detail string // set for non-numeric failures (missing, wrong kind, bad choice)
}

func (v Violation) Error() string {
	if v.Detail != "" {
		return fmt.Sprintf("%s: %s", v.Param, v.Detail)
	}
	return fmt.Sprintf("%s = %.4f violates %s (bound %.4f)", v.Param, v.Value, v.Rule, v.Bound)
}

// Warning records a cosmetic input that was clamped to its feasible range.
type Warning struct {
	Param     string
	Requested float64
	Used      float64
	Reason    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s clamped from %.4f to %.4f (%s)", w.Param, w.Requested, w.Used, w.Reason)
}

// ConfigError collects the violations that rejected a configuration.
type ConfigError struct {
	Family     string
	Violations []Violation
}

func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Error()
	}
	return fmt.Sprintf("param: %s: invalid configuration: %s", e.Family, strings.Join(parts, "; "))
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Validator accumulates violations and clamp warnings for one part family.
// Structural rules are always fatal; Clamp is reserved for cosmetic inputs.
type Validator struct {
	family     string
	violations []Violation
	warnings   []Warning
}

// NewValidator returns an empty validator for family.
func NewValidator(family string) *Validator {
	return &Validator{family: family}
}

// Fail records a violation directly.
func (v *Validator) Fail(name string, value, bound float64, rule string) {
	v.violations = append(v.violations, Violation{Param: name, Value: value, Bound: bound, Rule: rule})
}

// Failf records a non-numeric violation.
func (v *Validator) Failf(name, format string, args ...any) {
	v.violations = append(v.violations, Violation{Param: name, Detail: fmt.Sprintf(format, args...)})
}

// Positive requires value > 0.
func (v *Validator) Positive(name string, value float64) bool {
	if !(value > 0) {
		v.Fail(name, value, 0, "> 0")
		return false
	}
	return true
}

// NonNegative requires value >= 0.
func (v *Validator) NonNegative(name string, value float64) bool {
	if !(value >= 0) {
		v.Fail(name, value, 0, ">= 0")
		return false
	}
	return true
}

// AtLeast requires value >= lo.
func (v *Validator) AtLeast(name string, value, lo float64) bool {
	if !(value >= lo) {
		v.Fail(name, value, lo, ">= bound")
		return false
	}
	return true
}

// AtMost requires value <= hi.
func (v *Validator) AtMost(name string, value, hi float64) bool {
	if !(value <= hi) {
		v.Fail(name, value, hi, "<= bound")
		return false
	}
	return true
}

// Less requires value < hi.
func (v *Validator) Less(name string, value, hi float64) bool {
	if !(value < hi) {
		v.Fail(name, value, hi, "< bound")
		return false
	}
	return true
}

// Greater requires value > lo.
func (v *Validator) Greater(name string, value, lo float64) bool {
	if !(value > lo) {
		v.Fail(name, value, lo, "> bound")
		return false
	}
	return true
}

// Margin requires a hole of radius r centred at c to keep margin of
// material on both sides within [lo, hi]. Each side is reported on its own
// with the computed centre and the violated bound.
func (v *Validator) Margin(name string, c, r, margin, lo, hi float64) bool {
	ok := true
	if min := lo + r + margin; c < min {
		v.Fail(name, c, min, "hole radius + margin from lower edge")
		ok = false
	}
	if max := hi - r - margin; c > max {
		v.Fail(name, c, max, "hole radius + margin from upper edge")
		ok = false
	}
	return ok
}

// Clamp limits a cosmetic value to [lo, hi] and records a warning when it
// had to change. It never fails; when hi < lo, lo wins.
func (v *Validator) Clamp(name string, value, lo, hi float64, reason string) float64 {
	used := math.Max(lo, math.Min(value, hi))
	if used != value {
		v.warnings = append(v.warnings, Warning{Param: name, Requested: value, Used: used, Reason: reason})
	}
	return used
}

// Violations returns the recorded violations.
func (v *Validator) Violations() []Violation { return v.violations }

// Warnings returns the recorded clamp warnings.
func (v *Validator) Warnings() []Warning { return v.warnings }

// Err returns a *ConfigError when any violation was recorded.
func (v *Validator) Err() error {
	if len(v.violations) == 0 {
		return nil
	}
	out := make([]Violation, len(v.violations))
	copy(out, v.violations)
	return &ConfigError{Family: v.family, Violations: out}
}
