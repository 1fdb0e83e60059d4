// Package config provides configuration loading and management for gabor-features.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/gabor-features/internal/features"
	"github.com/ironsheep/gabor-features/internal/gabor"
)

// ErrConfig is wrapped by every failure to read, parse or apply a config file.
var ErrConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Gabor filter bank parameters
	Gabor struct {
		// KernelSize is the side length of every kernel in pixels (odd)
		KernelSize int `yaml:"kernelSize"`

		// Orientations is the number of kernels in the bank
		Orientations int `yaml:"orientations"`

		// Sigma is the standard deviation of the gaussian envelope
		Sigma float64 `yaml:"sigma"`

		// Theta is the orientation of kernel 0 in radians
		Theta float64 `yaml:"theta"`

		// Lambda is the wavelength of the sinusoidal factor
		Lambda float64 `yaml:"lambda"`

		// Gamma is the spatial aspect ratio
		Gamma float64 `yaml:"gamma"`
	} `yaml:"gabor"`

	// Sampling parameters
	Sampling struct {
		// WindowSize is the side length of the local feature area
		WindowSize int `yaml:"windowSize"`

		// PointsPerRow is the number of anchor points per row and column
		PointsPerRow int `yaml:"pointsPerRow"`

		// Border is the border extension policy: reflect101 or replicate
		Border string `yaml:"border"`
	} `yaml:"sampling"`

	// Processing parameters
	Processing struct {
		// Workers bounds concurrent filtering and assembly (0 = all CPUs)
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// DumpDir receives one heatmap PNG per filter response when set
		DumpDir string `yaml:"dumpDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	p := gabor.DefaultParams()

	cfg.Gabor.KernelSize = p.KernelSize
	cfg.Gabor.Orientations = p.Orientations
	cfg.Gabor.Sigma = p.Sigma
	cfg.Gabor.Theta = p.Theta
	cfg.Gabor.Lambda = p.Lambda
	cfg.Gabor.Gamma = p.Gamma

	cfg.Sampling.WindowSize = 16
	cfg.Sampling.PointsPerRow = 24
	cfg.Sampling.Border = gabor.BorderReflect101.String()

	cfg.Processing.Workers = 0

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
// Fields absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg, err := ReadConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// ReadConfig loads configuration from a YAML file that must exist.
// Fields absent from the file keep their default values.
//
// Every error wraps ErrConfig and the underlying cause, so a missing file
// satisfies both errors.Is(err, ErrConfig) and errors.Is(err, os.ErrNotExist).
func ReadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading config file: %w", ErrConfig, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: error parsing config file: %w", ErrConfig, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Params returns the filter bank parameters.
func (c *Config) Params() gabor.Params {
	return gabor.Params{
		KernelSize:   c.Gabor.KernelSize,
		Orientations: c.Gabor.Orientations,
		Sigma:        c.Gabor.Sigma,
		Theta:        c.Gabor.Theta,
		Lambda:       c.Gabor.Lambda,
		Gamma:        c.Gabor.Gamma,
	}
}

// Options converts the configuration to extractor options and validates them.
// The Logger field is left nil for the caller to set.
func (c *Config) Options() (features.Options, error) {
	border, err := gabor.ParseBorder(c.Sampling.Border)
	if err != nil {
		return features.Options{}, err
	}

	opts := features.DefaultOptions()
	opts.Params = c.Params()
	opts.Window = c.Sampling.WindowSize
	opts.PointsPerRow = c.Sampling.PointsPerRow
	opts.Border = border
	if c.Processing.Workers > 0 {
		opts.Workers = c.Processing.Workers
	}
	opts.DumpDir = c.Output.DumpDir

	if err := opts.Validate(); err != nil {
		return features.Options{}, err
	}
	return opts, nil
}
