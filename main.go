package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sixbitdeep/3D-Models/pkg/config"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts/catalog"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// build flags
	family    string
	sets      []string
	outDir    string
	writeSTL  bool
	pdfPath   string
	plainText bool

	// Logger
	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "models",
	Short: "Build parametric printable parts",
	Long: `models builds printable solids from parametric part families.

A build either takes one family with --set overrides or a .part script
that calls one or more families:

  (csleeve :wall 3 :slot-side :left)
  (mount :fillet-radius 0)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [script.part]",
	Short: "Build a family or a .part script",
	Long: `Builds the named family (--family) or every family a .part script calls,
prints the dimension reports, and optionally writes STL files and a PDF
build sheet.

Example:
  models build --family tpu --set tpu_strip_length=40 --stl
  models build examples/mount.part --pdf out/mount.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "List the part families",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range catalog.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", f.Name(), f.Description())
		}
		return nil
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params [family]",
	Short: "List a family's parameters and defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := catalog.Lookup(args[0])
		if err != nil {
			return err
		}
		defaults := f.Defaults()
		for _, name := range defaults.Names() {
			v, _ := defaults.Get(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-7s %s\n", name, v.Kind(), v)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "models.yaml", "Config file")

	buildCmd.Flags().StringVarP(&family, "family", "f", "", "Family to build instead of a script")
	buildCmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Parameter override name=value (repeatable)")
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "", "STL output directory (default from config)")
	buildCmd.Flags().BoolVar(&writeSTL, "stl", false, "Write one STL per built object")
	buildCmd.Flags().StringVar(&pdfPath, "pdf", "", "Write a PDF build sheet to this path")
	buildCmd.Flags().BoolVar(&plainText, "plain", false, "Print reports without styling")

	rootCmd.AddCommand(buildCmd, familiesCmd, paramsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	if (family == "") == (len(args) == 0) {
		return fmt.Errorf("give either --family or a script")
	}

	k, err := NewKernel(cfg)
	if err != nil {
		return err
	}
	app := NewApp(k, cfg, logger)

	var result EvalResult
	if family != "" {
		overrides, err := parseSets(sets)
		if err != nil {
			return err
		}
		part, warnings, err := app.BuildFamily(family, overrides)
		result.Warnings = warnings
		if err != nil {
			return err
		}
		result.Parts = []PartResult{*part}
	} else {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		result = app.Evaluate(string(src))
	}

	out := cmd.OutOrStdout()
	for _, p := range result.Parts {
		if plainText {
			fmt.Fprintln(out, p.Report.String())
		} else {
			fmt.Fprintln(out, p.Report.Styled())
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", e.Message)
		}
	}

	if writeSTL {
		dir := outDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		paths, err := app.ExportSTL(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(out, "wrote", p)
		}
	}
	if pdfPath != "" && len(result.Parts) > 0 {
		if err := app.ExportPDF(filepath.Clean(pdfPath), result.Parts); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", pdfPath)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d error(s)", len(result.Errors))
	}
	return nil
}

// parseSets turns name=value flags into an override set. Names may use
// hyphens or underscores.
func parseSets(sets []string) (param.Set, error) {
	m := make(map[string]param.Value, len(sets))
	for _, s := range sets {
		name, text, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return param.Set{}, fmt.Errorf("--set %q: want name=value", s)
		}
		m[strings.ReplaceAll(name, "-", "_")] = param.Parse(text)
	}
	return param.NewSet(m), nil
}
