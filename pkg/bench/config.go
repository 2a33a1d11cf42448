// Package bench runs Dijkstra and BMSSP side by side over a series of
// random graphs and reports timings and agreement.
package bench

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("bench: invalid config")

// Config describes a benchmark session. Graph i (counting from 0) has
// StartSize + (i/StepEvery + 1)·StepSize vertices: the size grows before
// the first graph and then every StepEvery graphs.
type Config struct {
	StartSize uint32  `yaml:"start_size"`
	Source    uint32  `yaml:"source"`
	Density   float64 `yaml:"density"`
	Count     int     `yaml:"count"`
	StepEvery int     `yaml:"step_every"`
	StepSize  uint32  `yaml:"step_size"`
	Seed      uint64  `yaml:"seed"`

	// Precision is the number of decimal places distances are rounded to;
	// negative disables rounding.
	Precision int `yaml:"precision"`
	// Tolerance is the largest per-vertex difference still counted as equal.
	Tolerance float64 `yaml:"tolerance"`
	// VerifyOracle also checks both results against Bellman-Ford.
	VerifyOracle bool `yaml:"verify_oracle"`
	// PrintLimit prints full distance vectors for graphs up to this size.
	PrintLimit uint32 `yaml:"print_limit"`
	// Workers bounds concurrent graph generation.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the stock session: ten graphs starting at four
// vertices, growing by one every second graph.
func DefaultConfig() Config {
	return Config{
		StartSize:  3,
		Source:     0,
		Density:    0.5,
		Count:      10,
		StepEvery:  2,
		StepSize:   1,
		Seed:       1,
		Precision:  9,
		Tolerance:  1e-6,
		PrintLimit: 20,
		Workers:    runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the session describes at least one valid graph.
func (c Config) Validate() error {
	switch {
	case c.Count < 1:
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidConfig, c.Count)
	case c.StepEvery < 1:
		return fmt.Errorf("%w: step_every must be at least 1, got %d", ErrInvalidConfig, c.StepEvery)
	case c.Density < 0 || c.Density > 1:
		return fmt.Errorf("%w: density %v outside [0, 1]", ErrInvalidConfig, c.Density)
	case c.Tolerance < 0:
		return fmt.Errorf("%w: negative tolerance %v", ErrInvalidConfig, c.Tolerance)
	case c.Source >= c.SizeOf(0):
		return fmt.Errorf("%w: source %d not in the first graph of %d vertices", ErrInvalidConfig, c.Source, c.SizeOf(0))
	}
	return nil
}

// SizeOf returns the vertex count of graph i.
func (c Config) SizeOf(i int) uint32 {
	steps := uint32(i/max(c.StepEvery, 1)) + 1
	return c.StartSize + steps*c.StepSize
}
