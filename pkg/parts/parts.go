// Package parts defines part families: parameter tables with defaults that
// derive dimensions, run every fatal check, and emit build recipes plus a
// dimension report. Families live in subpackages; the catalog subpackage
// registers them by name.
package parts

import (
	"fmt"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/report"
)

// Family is one parametric part family.
type Family interface {
	Name() string
	Description() string

	// Defaults returns the complete parameter table. Overrides may only
	// replace names it contains.
	Defaults() param.Set

	// Plan validates a complete parameter set and derives the recipes.
	// A *param.ConfigError is returned before any recipe exists when a
	// structural rule fails.
	Plan(p param.Set) (*Plan, error)
}

// Plan is the output of a family: the recipes to build, in order, and the
// dimension report to print after a successful build.
type Plan struct {
	Family   string
	Recipes  []builder.Recipe
	Report   *report.Report
	Warnings []param.Warning
}

// Names returns the recipe names in build order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.Recipes))
	for i, r := range p.Recipes {
		out[i] = r.Name
	}
	return out
}

// Recipe returns the named recipe.
func (p *Plan) Recipe(name string) (builder.Recipe, bool) {
	for _, r := range p.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return builder.Recipe{}, false
}

// Resolve applies overrides to the family defaults.
func Resolve(f Family, overrides param.Set) (param.Set, error) {
	p, err := f.Defaults().Override(overrides)
	if err != nil {
		return param.Set{}, fmt.Errorf("parts: %s: %w", f.Name(), err)
	}
	return p, nil
}

// PlanWith resolves overrides against the family defaults and plans.
func PlanWith(f Family, overrides param.Set) (*Plan, error) {
	p, err := Resolve(f, overrides)
	if err != nil {
		return nil, err
	}
	return f.Plan(p)
}
