// Package config loads the YAML run configuration of the gmltopo command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

// Environment variables overriding the file.
const (
	EnvWorkers           = "GMLTOPO_WORKERS"
	EnvDatabase          = "GMLTOPO_DB"
	EnvErrorLimit        = "GMLTOPO_ERROR_LIMIT"
	EnvMaxTraversalSteps = "GMLTOPO_MAX_TRAVERSAL_STEPS"
)

// Theme configures one theme of a run.
type Theme struct {
	Name string `yaml:"name"`

	// Inputs are GML, GeoJSON or shapefiles whose features build the graph.
	Inputs []string `yaml:"inputs"`

	// Boundaries are files of declared boundaries checked against the graph
	// after all inputs were loaded.
	Boundaries       []string `yaml:"boundaries"`
	BoundaryStrategy string   `yaml:"boundary_strategy"`

	// Detect names the detectors run after loading, e.g. "holes".
	Detect []string `yaml:"detect"`

	SuppressDuplicates bool `yaml:"suppress_duplicates"`
}

// Strategy returns the parsed boundary strategy.
func (t Theme) Strategy() (gmltopo.Strategy, error) {
	return gmltopo.ParseStrategy(t.BoundaryStrategy)
}

// Detection returns the parsed detector selection.
func (t Theme) Detection() (gmltopo.Detection, error) {
	return gmltopo.ParseDetection(t.Detect...)
}

type Config struct {
	Workers           int     `yaml:"workers"`
	MaxTraversalSteps int     `yaml:"max_traversal_steps"`
	ErrorLimit        int     `yaml:"error_limit"`
	StopOnError       bool    `yaml:"stop_on_error"`
	Database          string  `yaml:"database"`
	Themes            []Theme `yaml:"themes"`
}

// Load reads a configuration file. A .env file next to it is loaded first,
// then GMLTOPO_* variables override the file. Relative input paths are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)

	// 1. Load .env if exists
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	for i := range cfg.Themes {
		cfg.Themes[i].Inputs = resolve(dir, cfg.Themes[i].Inputs)
		cfg.Themes[i].Boundaries = resolve(dir, cfg.Themes[i].Boundaries)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if db := os.Getenv(EnvDatabase); db != "" {
		c.Database = db
	}
	for _, v := range []struct {
		name string
		dst  *int
	}{
		{EnvWorkers, &c.Workers},
		{EnvErrorLimit, &c.ErrorLimit},
		{EnvMaxTraversalSteps, &c.MaxTraversalSteps},
	} {
		s := os.Getenv(v.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
		*v.dst = n
	}
	return nil
}

func resolve(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(dir, p)
		}
	}
	return out
}

// Validate fills in defaults and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxTraversalSteps <= 0 {
		c.MaxTraversalSteps = gmltopo.DefaultOptions().MaxTraversalSteps
	}
	if c.ErrorLimit < 0 {
		errs = append(errs, fmt.Errorf("error_limit must not be negative"))
	}
	if len(c.Themes) == 0 {
		errs = append(errs, errors.New("no themes configured"))
	}

	seen := make(map[string]bool)
	for i := range c.Themes {
		t := &c.Themes[i]
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("theme %d: missing name", i+1))
		} else if seen[t.Name] {
			errs = append(errs, fmt.Errorf("theme %s: duplicate name", t.Name))
		}
		seen[t.Name] = true

		if len(t.Inputs) == 0 {
			errs = append(errs, fmt.Errorf("theme %s: no inputs", t.Name))
		}
		if t.BoundaryStrategy == "" {
			t.BoundaryStrategy = "enclosing"
		}
		strategy, err := t.Strategy()
		if err != nil {
			errs = append(errs, fmt.Errorf("theme %s: %w", t.Name, err))
		}
		d, err := t.Detection()
		if err != nil {
			errs = append(errs, fmt.Errorf("theme %s: %w", t.Name, err))
		}

		// enclosed marking and free-standing detection share the edge marks
		freeStanding := d&(gmltopo.FreeStandingSurfaces|gmltopo.FreeStandingSurfacesWithAllObjects) != 0
		marks := d&gmltopo.UnenclosedBoundaries != 0 ||
			(len(t.Boundaries) > 0 && strategy == gmltopo.EnclosingBoundary)
		if freeStanding && marks {
			errs = append(errs, fmt.Errorf("theme %s: free-standing detection cannot follow enclosed boundary marking", t.Name))
		}
	}

	return errors.Join(errs...)
}

// ThemeOptions returns the engine options for every theme of the run.
func (c *Config) ThemeOptions(t Theme) gmltopo.Options {
	opts := gmltopo.DefaultOptions()
	opts.MaxTraversalSteps = c.MaxTraversalSteps
	opts.ErrorLimit = c.ErrorLimit
	opts.SuppressDuplicates = t.SuppressDuplicates
	return opts
}
