package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, SourceLidar, cfg.Data.Source)
	assert.Equal(t, 100, cfg.CV.Repetitions)
	assert.InDelta(t, 0.8, cfg.CV.TrainFraction, 1e-12)
	assert.Equal(t, []string{"linear", "smooth", "wiggly"}, cfg.Models)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flexcv.yaml")
	text := `
data:
  source: data/lidar.csv
  x: range
  y: logratio
  drop_na: true
cv:
  repetitions: 250
  train_fraction: 0.75
  jobs: 4
models: [linear, stiff]
custom_models:
  - name: stiff
    type: pspline
    segments: 10
    lambda: 100
    extrapolation: none
output:
  format: csv
`
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "data/lidar.csv", cfg.Data.Source)
	assert.True(t, cfg.Data.DropNA)
	assert.Equal(t, 250, cfg.CV.Repetitions)
	assert.InDelta(t, 0.75, cfg.CV.TrainFraction, 1e-12)
	assert.Equal(t, 4, cfg.CV.Jobs)
	assert.Equal(t, "holdout", cfg.CV.Scheme, "unset keys keep their defaults")
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, []string{"linear", "stiff"}, cfg.Models)

	stiff, ok := cfg.Custom("stiff")
	require.True(t, ok)
	assert.Equal(t, ModelConfig{Name: "stiff", Type: "pspline", Segments: 10, Lambda: 100, Extrapolation: "none"}, stiff)
	_, ok = cfg.Custom("linear")
	assert.False(t, ok)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("FLEXCV_CV_REPETITIONS", "12")
	t.Setenv("FLEXCV_CV_SCHEME", "kfold")
	t.Setenv("FLEXCV_DATA_SEED", "7")
	t.Setenv("FLEXCV_OUTPUT_LOG_FORMAT", "zerolog")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.CV.Repetitions)
	assert.Equal(t, "kfold", cfg.CV.Scheme)
	assert.Equal(t, uint64(7), cfg.Data.Seed)
	assert.Equal(t, "zerolog", cfg.Output.LogFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero repetitions", func(c *Config) { c.CV.Repetitions = 0 }, "Config.CV.Repetitions"},
		{"fraction of one", func(c *Config) { c.CV.TrainFraction = 1 }, "Config.CV.TrainFraction"},
		{"unknown scheme", func(c *Config) { c.CV.Scheme = "bootstrap" }, "Config.CV.Scheme"},
		{"one fold", func(c *Config) { c.CV.Folds = 1 }, "Config.CV.Folds"},
		{"same x and y", func(c *Config) { c.Data.Y = c.Data.X }, "Config.Data.Y"},
		{"no models", func(c *Config) { c.Models = nil }, "Config.Models"},
		{"repeated model", func(c *Config) { c.Models = []string{"linear", "linear"} }, "Config.Models"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "Config.Output.Format"},
		{"bad log level", func(c *Config) { c.Output.LogLevel = "trace" }, "Config.Output.LogLevel"},
		{"custom without name", func(c *Config) {
			c.CustomModels = []ModelConfig{{Type: "linear"}}
		}, "Config.CustomModels[0].Name"},
		{"custom of unknown type", func(c *Config) {
			c.CustomModels = []ModelConfig{{Name: "x", Type: "forest"}}
		}, "Config.CustomModels[0].Type"},
		{"negative lambda", func(c *Config) {
			c.CustomModels = []ModelConfig{{Name: "x", Type: "pspline", Lambda: -1}}
		}, "Config.CustomModels[0].Lambda"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
			var iae *errors.InvalidArgumentError
			require.True(t, errors.As(err, &iae))
			assert.Equal(t, tt.field, iae.Param)
		})
	}

	assert.NoError(t, Default().Validate())
}
