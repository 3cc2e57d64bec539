// Package builder turns recipes into finished, registered solids. A build
// validates the recipe, evaluates its boolean tree, applies the rounding
// steps and registers the result in a host document.
//
// Primitive and boolean failures are fatal. Rounding failures are not: a
// rejected fillet or chamfer leaves the pre-round solid in place and is
// reported as a degraded RoundOutcome.
package builder

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sixbitdeep/3D-Models/pkg/edgesel"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
)

// DefaultSegments is the facet count requested for round primitives.
const DefaultSegments = 64

// ErrInvalidRecipe is matched by every recipe rejected before evaluation.
var ErrInvalidRecipe = errors.New("builder: invalid recipe")

// Host is the document a build registers into. Remove reports whether a
// stale object was dropped.
type Host interface {
	Remove(name string) bool
	Put(name string, s kernel.Solid)
}

// ---------------------------------------------------------------------------
// Recipes
// ---------------------------------------------------------------------------

// RoundKind selects the rounding operation.
type RoundKind int

const (
	Fillet RoundKind = iota
	Chamfer
)

func (k RoundKind) String() string {
	switch k {
	case Fillet:
		return "fillet"
	case Chamfer:
		return "chamfer"
	default:
		return fmt.Sprintf("RoundKind(%d)", int(k))
	}
}

// Round is one rounding step. Radius 0 turns the step off. For a chamfer,
// Radius is the setback on the face closest to Z and Radius2 the setback
// on the other face; Radius2 0 means a symmetric chamfer.
type Round struct {
	Label   string
	Kind    RoundKind
	Radius  float64
	Radius2 float64
	Select  edgesel.Predicate
}

// Recipe names one finished solid: its boolean tree and its rounding steps
// in application order.
type Recipe struct {
	Name   string
	Shape  recipe.Shape
	Rounds []Round
}

// RoundStatus is the outcome of one rounding step.
type RoundStatus int

const (
	RoundApplied  RoundStatus = iota
	RoundSkipped              // radius 0
	RoundDegraded             // kernel rejected the step; pre-round solid kept
)

func (s RoundStatus) String() string {
	switch s {
	case RoundApplied:
		return "applied"
	case RoundSkipped:
		return "skipped"
	case RoundDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("RoundStatus(%d)", int(s))
	}
}

// RoundOutcome reports what happened to one rounding step.
type RoundOutcome struct {
	Label  string
	Kind   RoundKind
	Status RoundStatus
	Edges  int    // edges selected
	Reason string // set when degraded or skipped
	Err    error  // kernel error behind a degraded step
}

// Result is a finished build.
type Result struct {
	Name     string
	Solid    kernel.Solid
	Rounds   []RoundOutcome
	Warnings []recipe.ValidationWarning
	Replaced bool // a stale object of the same name was removed
}

// Degraded returns the rounding steps that did not apply.
func (r *Result) Degraded() []RoundOutcome {
	var out []RoundOutcome
	for _, o := range r.Rounds {
		if o.Status == RoundDegraded {
			out = append(out, o)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

// Builder evaluates recipes against one kernel.
type Builder struct {
	k        kernel.Kernel
	log      *zap.Logger
	segments int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for round outcomes and build completion.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithSegments sets the facet count requested for round primitives.
func WithSegments(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.segments = n
		}
	}
}

// New returns a builder for k.
func New(k kernel.Kernel, opts ...Option) *Builder {
	b := &Builder{k: k, log: zap.NewNop(), segments: DefaultSegments}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Kernel returns the kernel the builder evaluates against.
func (b *Builder) Kernel() kernel.Kernel { return b.k }

// Build runs one recipe and registers the result in host under the recipe
// name. Any stale object of that name is removed first, so a failed build
// leaves nothing registered under it.
func (b *Builder) Build(host Host, r Recipe) (*Result, error) {
	if host == nil {
		return nil, fmt.Errorf("builder: %s: no host document", r.Name)
	}
	if r.Name == "" {
		return nil, fmt.Errorf("%w: recipe has no name", ErrInvalidRecipe)
	}
	res := &Result{Name: r.Name, Replaced: host.Remove(r.Name)}

	if err := checkRecipe(r, res); err != nil {
		return nil, err
	}

	solid, err := evaluate(b.k, r.Shape, b.segments)
	if err != nil {
		return nil, fmt.Errorf("builder: %s: %w", r.Name, err)
	}

	for _, rd := range r.Rounds {
		var out RoundOutcome
		solid, out = b.round(solid, rd)
		res.Rounds = append(res.Rounds, out)
		b.logRound(r.Name, out)
	}

	res.Solid = solid
	host.Put(r.Name, solid)
	b.log.Info("built",
		zap.String("part", r.Name),
		zap.Int("rounds", len(res.Rounds)),
		zap.Int("degraded", len(res.Degraded())),
	)
	return res, nil
}

// BuildPlan builds recipes in order and stops at the first fatal error.
// Results for the recipes built before the failure are returned with it.
func (b *Builder) BuildPlan(host Host, recipes []Recipe) ([]*Result, error) {
	out := make([]*Result, 0, len(recipes))
	for _, r := range recipes {
		res, err := b.Build(host, r)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// checkRecipe runs every check that must pass before the first kernel call.
func checkRecipe(r Recipe, res *Result) error {
	vr := recipe.Validate(r.Shape)
	res.Warnings = vr.Warnings
	for i, rd := range r.Rounds {
		label := roundLabel(rd, i)
		switch {
		case rd.Radius < 0 || rd.Radius2 < 0 || math.IsNaN(rd.Radius) || math.IsNaN(rd.Radius2):
			vr.Errors = append(vr.Errors, recipe.ValidationError{
				Path:     label,
				Message:  fmt.Sprintf("%s distance %.4f, %.4f must not be negative", rd.Kind, rd.Radius, rd.Radius2),
				Severity: recipe.SeverityError,
			})
		case rd.Radius > 0 && rd.Select == nil:
			vr.Errors = append(vr.Errors, recipe.ValidationError{
				Path:     label,
				Message:  "round has no edge selector",
				Severity: recipe.SeverityError,
			})
		case rd.Kind != Fillet && rd.Kind != Chamfer:
			vr.Errors = append(vr.Errors, recipe.ValidationError{
				Path:     label,
				Message:  fmt.Sprintf("unknown round kind %v", rd.Kind),
				Severity: recipe.SeverityError,
			})
		}
	}
	if err := vr.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecipe, r.Name, err)
	}
	return nil
}

func roundLabel(rd Round, i int) string {
	if rd.Label != "" {
		return rd.Label
	}
	return fmt.Sprintf("round %d", i+1)
}

// round applies one rounding step. It never fails: a rejected step returns
// the input solid with a degraded outcome.
func (b *Builder) round(s kernel.Solid, rd Round) (kernel.Solid, RoundOutcome) {
	out := RoundOutcome{Label: rd.Label, Kind: rd.Kind}
	if rd.Radius == 0 {
		out.Status = RoundSkipped
		out.Reason = "radius 0"
		return s, out
	}

	edges, err := b.k.Edges(s)
	if err != nil {
		return s, degrade(out, "edge query failed", err)
	}
	selected := edgesel.Select(edges, rd.Select)
	out.Edges = len(selected)
	if len(selected) == 0 {
		return s, degrade(out, "no edges matched", nil)
	}

	var rounded kernel.Solid
	switch rd.Kind {
	case Chamfer:
		d2 := rd.Radius2
		if d2 == 0 {
			d2 = rd.Radius
		}
		rounded, err = b.k.Chamfer(s, rd.Radius, d2, selected)
	default:
		rounded, err = b.k.Fillet(s, rd.Radius, selected)
	}
	if err != nil {
		return s, degrade(out, fmt.Sprintf("%s rejected", rd.Kind), err)
	}
	if rounded == nil {
		return s, degrade(out, fmt.Sprintf("%s returned no solid", rd.Kind), nil)
	}
	out.Status = RoundApplied
	return rounded, out
}

func degrade(out RoundOutcome, reason string, err error) RoundOutcome {
	out.Status = RoundDegraded
	out.Reason = reason
	out.Err = err
	return out
}

func (b *Builder) logRound(part string, o RoundOutcome) {
	fields := []zap.Field{
		zap.String("part", part),
		zap.String("round", o.Label),
		zap.Stringer("kind", o.Kind),
		zap.Int("edges", o.Edges),
	}
	switch o.Status {
	case RoundDegraded:
		if o.Err != nil {
			fields = append(fields, zap.Error(o.Err))
		}
		b.log.Warn("round degraded, keeping unrounded solid: "+o.Reason, fields...)
	case RoundSkipped:
		b.log.Debug("round skipped", fields...)
	default:
		b.log.Debug("round applied", fields...)
	}
}
