package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Decomposition.ReshapeFactor)
	assert.Equal(t, 26, cfg.Decomposition.Connectivity)
	assert.Equal(t, [3]float64{0, 0, 60}, cfg.Overlay.FlagOffset)
	assert.Len(t, cfg.Rendering.OGB, 3)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Decomposition, cfg.Decomposition)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ctviewer.yaml")

	cfg := DefaultConfig()
	iso := 1350.0
	cfg.Rendering.IsoValue = &iso
	cfg.Decomposition.ReshapeFactor = 2
	cfg.Decomposition.Connectivity = 6
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Rendering.IsoValue)
	assert.Equal(t, 1350.0, *loaded.Rendering.IsoValue)
	assert.Equal(t, 2, loaded.Decomposition.ReshapeFactor)
	assert.Equal(t, 6, loaded.Decomposition.Connectivity)
	assert.Equal(t, cfg.MaskClasses, loaded.MaskClasses)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decomposition:\n  reshapeFactor: 3\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Decomposition.ReshapeFactor)
	assert.Equal(t, 26, cfg.Decomposition.Connectivity)
	assert.Equal(t, "Threat", cfg.Overlay.DefaultLabel)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decomposition:\n  connectivity: 8\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigWrapsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rendering: [1, 2]\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")

	var typeErr *yaml.TypeError
	assert.True(t, errors.As(err, &typeErr))
	assert.Same(t, typeErr, errors.Cause(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ogb bands", func(c *Config) { c.Rendering.OGB = c.Rendering.OGB[:2] }},
		{"alpha", func(c *Config) { c.Rendering.Alpha = nil }},
		{"axes style", func(c *Config) { c.Rendering.AxesStyle = 14 }},
		{"reshape factor", func(c *Config) { c.Decomposition.ReshapeFactor = 0 }},
		{"empty policy", func(c *Config) { c.Decomposition.EmptyPolicy = "warn" }},
		{"label policy", func(c *Config) { c.Decomposition.LabelPolicy = "vote" }},
		{"pick radius", func(c *Config) { c.Overlay.PickRadius = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClassFlags(t *testing.T) {
	flags := DefaultConfig().ClassFlags()
	assert.Equal(t, "Threat", flags[1])
	assert.Equal(t, "Explosive", flags[2])
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
