package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/config"
	"github.com/sixbitdeep/3D-Models/pkg/engine"
	"github.com/sixbitdeep/3D-Models/pkg/kernel"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/manifold"
	"github.com/sixbitdeep/3D-Models/pkg/kernel/sdfx"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/parts/catalog"
	"github.com/sixbitdeep/3D-Models/pkg/report"
	"github.com/sixbitdeep/3D-Models/pkg/session"
	"github.com/sixbitdeep/3D-Models/pkg/tessellate"
)

// App wires the script engine, the family catalog, the builder and one
// session document.
type App struct {
	engine  *engine.Engine
	kernel  kernel.Kernel
	builder *builder.Builder
	doc     *session.Document
	log     *zap.Logger
}

// PartResult is one built family.
type PartResult struct {
	Family   string
	Objects  []string
	Report   *report.Report
	Degraded []builder.RoundOutcome
}

// EvalErrorData is a script or build error, with the script line when
// known.
type EvalErrorData struct {
	Line    int
	Col     int
	Message string
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Parts    []PartResult
	Errors   []EvalErrorData
	Warnings []string
}

// NewKernel returns the kernel named by cfg.
func NewKernel(cfg *config.Config) (kernel.Kernel, error) {
	switch cfg.Kernel {
	case config.KernelSdfx:
		return sdfx.New(sdfx.WithMeshCells(cfg.MeshCells)), nil
	case config.KernelManifold:
		return manifold.New()
	}
	return nil, fmt.Errorf("app: unknown kernel %q", cfg.Kernel)
}

// NewApp creates an App around k. A nil logger logs nothing.
func NewApp(k kernel.Kernel, cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	eng := engine.NewEngine(catalog.Names()...)
	eng.Log = log
	return &App{
		engine:  eng,
		kernel:  k,
		builder: builder.New(k, builder.WithLogger(log), builder.WithSegments(cfg.Segments)),
		doc:     session.New("models"),
		log:     log,
	}
}

// Document returns the session document builds register into.
func (a *App) Document() *session.Document { return a.doc }

// Evaluate runs a .part script and builds every family it asks for, in
// order. The document is cleared first so it holds exactly the script's
// objects. A rejected or failed family is reported and the rest are still
// built.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Parts:    []PartResult{},
		Errors:   []EvalErrorData{},
		Warnings: []string{},
	}

	reqs, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(evalErrs) > 0 {
		return result
	}

	a.doc.Clear()
	for _, req := range reqs {
		part, warnings, err := a.build(req.Family, req.Overrides)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			a.log.Warn("family rejected", zap.String("family", req.Family), zap.Error(err))
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			continue
		}
		result.Parts = append(result.Parts, *part)
	}
	return result
}

// BuildFamily builds one family from its defaults plus overrides.
func (a *App) BuildFamily(name string, overrides param.Set) (*PartResult, []string, error) {
	return a.build(name, overrides)
}

func (a *App) build(name string, overrides param.Set) (*PartResult, []string, error) {
	f, err := catalog.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	plan, err := parts.PlanWith(f, overrides)
	if err != nil {
		return nil, nil, err
	}
	warnings := make([]string, 0, len(plan.Warnings))
	for _, w := range plan.Warnings {
		warnings = append(warnings, name+": "+w.String())
	}

	results, err := a.builder.BuildPlan(a.doc, plan.Recipes)
	if err != nil {
		// A family registers all of its objects or none.
		removed := a.doc.Acquire(plan.Names()...)
		a.log.Debug("dropped partial build", zap.String("family", name), zap.Strings("objects", removed))
		return nil, warnings, err
	}
	part := &PartResult{Family: name, Report: plan.Report}
	for _, r := range results {
		part.Objects = append(part.Objects, r.Name)
		for _, w := range r.Warnings {
			warnings = append(warnings, w.String())
		}
		for _, o := range r.Degraded() {
			part.Degraded = append(part.Degraded, o)
			warnings = append(warnings, fmt.Sprintf("%s: %s skipped: %s", r.Name, o.Label, o.Reason))
		}
	}
	return part, warnings, nil
}

// ExportSTL writes every registered object to dir as <name>.stl.
func (a *App) ExportSTL(dir string) ([]string, error) {
	paths, err := tessellate.ExportDir(a.doc, a.kernel, dir)
	if err != nil {
		return nil, err
	}
	a.log.Info("exported", zap.String("dir", dir), zap.Int("files", len(paths)))
	return paths, nil
}

// ExportPDF writes one build sheet holding every part's report.
func (a *App) ExportPDF(path string, partResults []PartResult) error {
	reps := make([]*report.Report, 0, len(partResults))
	for _, p := range partResults {
		reps = append(reps, p.Report)
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, reps...); err != nil {
		return fmt.Errorf("app: pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
