// Package config provides configuration loading and management for ctviewer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ColorBand is one of the low/mid/high ("orange/green/blue") bands of the
// ray-cast transfer function.
type ColorBand struct {
	// Threshold is the scalar value the band's opacity point sits at
	Threshold float64 `yaml:"threshold"`

	// Color is the band color name
	Color string `yaml:"color"`
}

// MaskClass describes one class of the detection mask.
type MaskClass struct {
	ID    uint32  `yaml:"id"`
	Name  string  `yaml:"name"`
	Alpha float64 `yaml:"alpha"`

	// Flag is the text shown on the floating label of objects of this class
	Flag string `yaml:"flag"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Rendering parameters
	Rendering struct {
		// OGB holds the three transfer function bands, low to high
		OGB []ColorBand `yaml:"ogb"`

		// Alpha is the base opacity ramp of the volume
		Alpha []float64 `yaml:"alpha"`

		// IsoValue is the initial isosurface value; nil derives it from the scalar range
		IsoValue *float64 `yaml:"isoValue,omitempty"`

		// SliderPos is the screen position preset of the isosurface slider
		SliderPos int `yaml:"sliderPos"`

		// Delayed updates sliders on mouse release only
		Delayed bool `yaml:"delayed"`

		// ProjectionSize is the viewport size projection images are scaled to
		ProjectionSize int `yaml:"projectionSize"`

		// AxesStyle is the initial axes style, 0 to 13
		AxesStyle int `yaml:"axesStyle"`
	} `yaml:"rendering"`

	// MaskClasses maps mask values to names and flag texts
	MaskClasses []MaskClass `yaml:"maskClasses"`

	// Decomposition parameters
	Decomposition struct {
		// ReshapeFactor is the stride used to downsample masks
		ReshapeFactor int `yaml:"reshapeFactor"`

		// Connectivity is 6, 18 or 26
		Connectivity int `yaml:"connectivity"`

		// DilateKernel and ErodeKernel are the closing kernel sizes in
		// full-resolution voxels; zero derives them from ReshapeFactor
		DilateKernel int `yaml:"dilateKernel"`
		ErodeKernel  int `yaml:"erodeKernel"`

		// AnchorOffset lifts label anchors above the object's top face
		AnchorOffset float64 `yaml:"anchorOffset"`

		// EmptyPolicy is "placeholder" or "none"
		EmptyPolicy string `yaml:"emptyPolicy"`

		// LabelPolicy is "majority" or "first"
		LabelPolicy string `yaml:"labelPolicy"`

		// Workers is the number of goroutines used by the morphology passes
		Workers int `yaml:"workers"`
	} `yaml:"decomposition"`

	// Overlay parameters
	Overlay struct {
		// FlagOffset is the vector from an anchor to the top of its flagpost
		FlagOffset [3]float64 `yaml:"flagOffset"`

		// DefaultLabel is shown for unknown classes
		DefaultLabel string `yaml:"defaultLabel"`

		// PickRadius bounds the distance of a picked anchor; zero is unbounded
		PickRadius float64 `yaml:"pickRadius"`
	} `yaml:"overlay"`

	// Reader parameters
	Reader struct {
		// Extensions lists the file extensions offered to the user
		Extensions []string `yaml:"extensions"`
	} `yaml:"reader"`

	// Logging parameters
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Tracing parameters
	Tracing struct {
		// Endpoint is the OTLP/HTTP collector address; empty disables tracing
		Endpoint    string `yaml:"endpoint"`
		ServiceName string `yaml:"serviceName"`
	} `yaml:"tracing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default rendering parameters
	cfg.Rendering.OGB = []ColorBand{
		{Threshold: 1024, Color: "orange"},
		{Threshold: 4096, Color: "green"},
		{Threshold: 16384, Color: "blue"},
	}
	cfg.Rendering.Alpha = []float64{0, 0.2, 0.5, 0.8, 1}
	cfg.Rendering.SliderPos = 4
	cfg.Rendering.Delayed = false
	cfg.Rendering.ProjectionSize = 800
	cfg.Rendering.AxesStyle = 8

	cfg.MaskClasses = []MaskClass{
		{ID: 0, Name: "background", Alpha: 0, Flag: "Background"},
		{ID: 1, Name: "threat", Alpha: 1, Flag: "Threat"},
		{ID: 2, Name: "explosive", Alpha: 1, Flag: "Explosive"},
		{ID: 3, Name: "firearm", Alpha: 1, Flag: "Firearm"},
		{ID: 4, Name: "blade", Alpha: 1, Flag: "Blade"},
	}

	// Set default decomposition parameters
	cfg.Decomposition.ReshapeFactor = 4
	cfg.Decomposition.Connectivity = 26
	cfg.Decomposition.AnchorOffset = 4
	cfg.Decomposition.EmptyPolicy = "placeholder"
	cfg.Decomposition.LabelPolicy = "majority"
	cfg.Decomposition.Workers = runtime.NumCPU()

	cfg.Overlay.FlagOffset = [3]float64{0, 0, 60}
	cfg.Overlay.DefaultLabel = "Threat"
	cfg.Overlay.PickRadius = 50

	cfg.Reader.Extensions = []string{"mhd", "yaml", "yml", "json"}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Tracing.ServiceName = "ctviewer"

	return cfg
}

// Validate checks the configuration for values the viewer cannot work with.
func (c *Config) Validate() error {
	if len(c.Rendering.OGB) != 3 {
		return errors.Errorf("rendering.ogb must have 3 bands, got %d", len(c.Rendering.OGB))
	}
	if len(c.Rendering.Alpha) == 0 {
		return errors.New("rendering.alpha must not be empty")
	}
	if c.Rendering.AxesStyle < 0 || c.Rendering.AxesStyle > 13 {
		return errors.Errorf("rendering.axesStyle must be within 0..13, got %d", c.Rendering.AxesStyle)
	}
	if c.Decomposition.ReshapeFactor < 1 {
		return errors.Errorf("decomposition.reshapeFactor must be positive, got %d", c.Decomposition.ReshapeFactor)
	}
	switch c.Decomposition.Connectivity {
	case 6, 18, 26:
	default:
		return errors.Errorf("decomposition.connectivity must be 6, 18 or 26, got %d", c.Decomposition.Connectivity)
	}
	switch c.Decomposition.EmptyPolicy {
	case "placeholder", "none":
	default:
		return errors.Errorf("decomposition.emptyPolicy must be placeholder or none, got %q", c.Decomposition.EmptyPolicy)
	}
	switch c.Decomposition.LabelPolicy {
	case "majority", "first":
	default:
		return errors.Errorf("decomposition.labelPolicy must be majority or first, got %q", c.Decomposition.LabelPolicy)
	}
	if c.Overlay.PickRadius < 0 {
		return errors.Errorf("overlay.pickRadius must not be negative, got %g", c.Overlay.PickRadius)
	}
	return nil
}

// ClassFlags returns the class id to flag text table.
func (c *Config) ClassFlags() map[uint32]string {
	flags := make(map[uint32]string, len(c.MaskClasses))
	for _, mc := range c.MaskClasses {
		flags[mc.ID] = mc.Flag
	}
	return flags
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", configPath)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "write config file")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
