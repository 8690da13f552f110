// Package config loads the settings of a flexcv run.
//
// Values come, in increasing precedence, from the defaults below, a YAML,
// TOML or JSON file, FLEXCV_* environment variables (FLEXCV_CV_REPETITIONS,
// FLEXCV_DATA_SOURCE, ...) and command-line flags bound to the same keys.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLEXCV"

// Source value selecting the built-in synthetic LIDAR data.
const SourceLidar = "lidar"

// Config is a complete run description.
type Config struct {
	Data   DataConfig `mapstructure:"data"`
	CV     CVConfig   `mapstructure:"cv"`
	Output Output     `mapstructure:"output"`

	// Models lists the kinds to compare, by catalogue name or by the Name
	// of an entry in CustomModels.
	Models       []string      `mapstructure:"models" validate:"required,min=1,unique,dive,required"`
	CustomModels []ModelConfig `mapstructure:"custom_models" validate:"unique=Name,dive"`
}

// DataConfig says where records come from.
type DataConfig struct {
	// Source is "lidar" or the path of a CSV file with a header row.
	Source    string `mapstructure:"source" validate:"required"`
	X         string `mapstructure:"x" validate:"required"`
	Y         string `mapstructure:"y" validate:"required,nefield=X"`
	Delimiter string `mapstructure:"delimiter" validate:"len=1"`
	DropNA    bool   `mapstructure:"drop_na"`
	// Seed drives the synthetic LIDAR noise.
	Seed uint64 `mapstructure:"seed"`
}

// CVConfig holds the resampling settings.
type CVConfig struct {
	Repetitions   int     `mapstructure:"repetitions" validate:"gt=0"`
	TrainFraction float64 `mapstructure:"train_fraction" validate:"gt=0,lt=1"`
	Scheme        string  `mapstructure:"scheme" validate:"oneof=holdout kfold"`
	Folds         int     `mapstructure:"folds" validate:"gte=2"`
	Seed          uint64  `mapstructure:"seed"`
	// Jobs below 1 means one worker per CPU.
	Jobs int `mapstructure:"jobs"`
}

// Output controls reporting and logging.
type Output struct {
	Format    string `mapstructure:"format" validate:"oneof=table csv json"`
	Path      string `mapstructure:"path"`
	Plot      string `mapstructure:"plot"`
	Failures  bool   `mapstructure:"failures"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text zerolog"`
	Progress  bool   `mapstructure:"progress"`
}

// ModelConfig describes a model kind beyond the built-in catalogue.
type ModelConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Type string `mapstructure:"type" validate:"oneof=linear piecewise-linear pspline"`
	// Knots is the number of quantile knots of a piecewise-linear fit.
	Knots int `mapstructure:"knots" validate:"gte=0"`
	// Segments is the number of B-spline intervals of a pspline.
	Segments int `mapstructure:"segments" validate:"gte=0"`
	// Lambda fixes the pspline smoothing parameter; 0 selects it by GCV.
	Lambda        float64 `mapstructure:"lambda" validate:"gte=0"`
	Extrapolation string  `mapstructure:"extrapolation" validate:"omitempty,oneof=linear none"`
}

// Default returns the settings of the reference LIDAR comparison.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source:    SourceLidar,
			X:         "range",
			Y:         "logratio",
			Delimiter: ",",
			Seed:      1,
		},
		CV: CVConfig{
			Repetitions:   100,
			TrainFraction: 0.8,
			Scheme:        "holdout",
			Folds:         5,
			Seed:          42,
			Jobs:          1,
		},
		Output: Output{
			Format:    "table",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Models: []string{"linear", "smooth", "wiggly"},
	}
}

// New returns a viper instance holding the defaults and reading FLEXCV_*
// environment variables. Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.x", d.Data.X)
	v.SetDefault("data.y", d.Data.Y)
	v.SetDefault("data.delimiter", d.Data.Delimiter)
	v.SetDefault("data.drop_na", d.Data.DropNA)
	v.SetDefault("data.seed", d.Data.Seed)
	v.SetDefault("cv.repetitions", d.CV.Repetitions)
	v.SetDefault("cv.train_fraction", d.CV.TrainFraction)
	v.SetDefault("cv.scheme", d.CV.Scheme)
	v.SetDefault("cv.folds", d.CV.Folds)
	v.SetDefault("cv.seed", d.CV.Seed)
	v.SetDefault("cv.jobs", d.CV.Jobs)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.plot", d.Output.Plot)
	v.SetDefault("output.failures", d.Output.Failures)
	v.SetDefault("output.log_level", d.Output.LogLevel)
	v.SetDefault("output.log_format", d.Output.LogFormat)
	v.SetDefault("output.progress", d.Output.Progress)
	v.SetDefault("models", d.Models)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v, decodes everything v
// knows and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and reports the first violation as an
// InvalidArgument error naming the offending key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return errors.NewInvalidArgumentError("config.Validate", fe.Namespace(), "violates "+reason, fe.Value())
	}
	return errors.Wrap(err, "config: validate")
}

// Custom returns the custom model named name.
func (c *Config) Custom(name string) (ModelConfig, bool) {
	for _, m := range c.CustomModels {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}
