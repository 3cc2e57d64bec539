// Package config loads the build settings: which kernel to use, mesh and
// arc resolution, where output goes, and the log level. Part parameters
// are not configured here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kernel names.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

// ValidKernels lists the supported geometry kernels.
var ValidKernels = []string{KernelSdfx, KernelManifold}

// ValidLevels lists the supported log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Config holds the build settings.
type Config struct {
	// Kernel settings
	Kernel    string `yaml:"kernel"`     // sdfx, manifold
	MeshCells int    `yaml:"mesh_cells"` // marching cubes cells along the longest side
	Segments  int    `yaml:"segments"`   // arc segments for cylinders, cones and domes

	// Output
	OutputDir string `yaml:"output_dir"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Kernel:    KernelSdfx,
		MeshCells: 200,
		Segments:  64,
		OutputDir: "out",
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if k := os.Getenv("MODELS_KERNEL"); k != "" {
		c.Kernel = k
	}
	if dir := os.Getenv("MODELS_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if n, err := strconv.Atoi(os.Getenv("MODELS_MESH_CELLS")); err == nil {
		c.MeshCells = n
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !contains(ValidKernels, c.Kernel) {
		return fmt.Errorf("config: invalid kernel: %s (valid: %v)", c.Kernel, ValidKernels)
	}
	if c.MeshCells < 8 {
		return fmt.Errorf("config: mesh_cells must be at least 8, got %d", c.MeshCells)
	}
	if c.Segments < 3 {
		return fmt.Errorf("config: segments must be at least 3, got %d", c.Segments)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output_dir is empty")
	}
	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("config: invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
