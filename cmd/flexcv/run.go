package main

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/flexcv/config"
	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/dataset"
	"github.com/YuminosukeSato/flexcv/models"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/pkg/log"
	"github.com/YuminosukeSato/flexcv/report"
)

// flag name -> config key
var flagKeys = map[string]string{
	"data":           "data.source",
	"x":              "data.x",
	"y":              "data.y",
	"delimiter":      "data.delimiter",
	"drop-na":        "data.drop_na",
	"data-seed":      "data.seed",
	"repetitions":    "cv.repetitions",
	"train-fraction": "cv.train_fraction",
	"scheme":         "cv.scheme",
	"folds":          "cv.folds",
	"seed":           "cv.seed",
	"jobs":           "cv.jobs",
	"models":         "models",
	"format":         "output.format",
	"out":            "output.path",
	"plot":           "output.plot",
	"failures":       "output.failures",
	"log-level":      "output.log_level",
	"log-format":     "output.log_format",
	"progress":       "output.progress",
}

func addRunFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.StringP("config", "c", "", "configuration file (yaml, toml or json)")
	flags.String("data", d.Data.Source, `"lidar" or the path of a CSV file with a header row`)
	flags.String("x", d.Data.X, "explanatory column")
	flags.String("y", d.Data.Y, "response column")
	flags.String("delimiter", d.Data.Delimiter, "CSV field delimiter")
	flags.Bool("drop-na", d.Data.DropNA, "drop CSV records with missing cells instead of failing")
	flags.Uint64("data-seed", d.Data.Seed, "seed of the synthetic lidar noise")
	flags.IntP("repetitions", "n", d.CV.Repetitions, "number of train/test repetitions")
	flags.Float64("train-fraction", d.CV.TrainFraction, "share of records drawn for training (holdout)")
	flags.String("scheme", d.CV.Scheme, "resampling scheme: holdout or kfold")
	flags.Int("folds", d.CV.Folds, "folds per block of repetitions (kfold)")
	flags.Uint64("seed", d.CV.Seed, "random seed of the splits")
	flags.IntP("jobs", "j", d.CV.Jobs, "concurrent repetitions; 0 means one per CPU")
	flags.StringSliceP("models", "m", d.Models, "model kinds to compare")
	flags.StringP("format", "f", d.Output.Format, "output format: table, csv or json")
	flags.StringP("out", "o", d.Output.Path, "write the report to this file instead of stdout")
	flags.String("plot", d.Output.Plot, "save an RMSE box plot (png, svg, pdf)")
	flags.Bool("failures", d.Output.Failures, "list failures below the summary table")
	flags.String("log-level", d.Output.LogLevel, "debug, info, warn or error")
	flags.String("log-format", d.Output.LogFormat, "text, json or zerolog")
	flags.Bool("progress", d.Output.Progress, "show a progress bar")
}

func bindRunFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cross-validate the selected model kinds and report their RMSE.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			if err := bindRunFlags(v, cmd.Flags()); err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(v, path)
			if err != nil {
				return err
			}
			return run(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func setupLogging(cfg *config.Config, stderr io.Writer) log.Logger {
	if cfg.Output.LogFormat == "zerolog" {
		level, err := zerolog.ParseLevel(cfg.Output.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		zl := zerolog.New(stderr).Level(level).With().Timestamp().Logger()
		errors.SetZerologWarnFunc(log.ZerologWarnFunc(zl))
		return log.NewZerologLogger(zl)
	}
	slog.SetDefault(slog.New(log.NewHandler(stderr, stderr, cfg.Output.LogLevel, cfg.Output.LogFormat)))
	// every failure is already logged by the run
	errors.SetWarningHandler(func(error) {})
	return log.GetLogger()
}

func loadData(cfg *config.Config, logger log.Logger) (*dataset.Dataset, error) {
	if cfg.Data.Source == config.SourceLidar {
		ds := dataset.SyntheticLidar(rand.New(rand.NewPCG(cfg.Data.Seed, cfg.Data.Seed)))
		logger.Info("Dataset generated", log.SourceKey, cfg.Data.Source, log.SamplesKey, ds.Len())
		return ds, nil
	}
	opts := &dataset.CSVOptions{
		Comma:   []rune(cfg.Data.Delimiter)[0],
		Columns: []string{cfg.Data.X, cfg.Data.Y},
	}
	if cfg.Data.DropNA {
		opts.NA = dataset.NADrop
	}
	ds, err := dataset.LoadCSV(cfg.Data.Source, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset loaded", log.SourceKey, cfg.Data.Source, log.SamplesKey, ds.Len())
	return ds, nil
}

func splitter(cfg *config.Config) crossval.Splitter {
	if cfg.CV.Scheme == "kfold" {
		return crossval.KFold{K: cfg.CV.Folds}
	}
	return crossval.MonteCarlo{TrainFraction: cfg.CV.TrainFraction}
}

func run(cfg *config.Config, stdout, stderr io.Writer) error {
	logger := setupLogging(cfg, stderr).With(log.ComponentKey, "cli")

	ds, err := loadData(cfg, logger)
	if err != nil {
		return err
	}
	specs, err := models.FromConfig(cfg)
	if err != nil {
		return err
	}

	opts := []crossval.Option{
		crossval.WithSplitter(splitter(cfg)),
		crossval.WithResponse(cfg.Data.Y),
		crossval.WithJobs(cfg.CV.Jobs),
		crossval.WithLogger(logger),
	}
	if cfg.Output.Progress {
		bar := progressbar.NewOptions(cfg.CV.Repetitions,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("cross-validating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		opts = append(opts, crossval.WithProgress(func(done, _ int) {
			_ = bar.Set(done)
		}))
	}

	start := time.Now()
	rng := rand.New(rand.NewPCG(cfg.CV.Seed, cfg.CV.Seed))
	res, err := crossval.Run(ds, cfg.CV.Repetitions, specs, rng, opts...)
	if err != nil {
		return err
	}
	for _, s := range res.Summarize() {
		if s.N == 0 {
			logger.Warn("Model never succeeded", log.ModelKindKey, s.Kind, log.FailuresKey, s.Failed)
			continue
		}
		logger.Info("Model summary",
			log.ModelKindKey, s.Kind,
			log.MedianRMSEKey, s.Median,
			log.FailuresKey, s.Failed,
		)
	}
	logger.Debug("Run complete", log.DurationMsKey, time.Since(start).Milliseconds())

	if err := writeReport(cfg, res, stdout); err != nil {
		return err
	}
	if cfg.Output.Plot != "" {
		if err := report.SaveBoxPlot(res, cfg.Output.Plot, 6*vg.Inch, 4*vg.Inch); err != nil {
			return err
		}
		logger.Info("Box plot saved", "path", cfg.Output.Plot)
	}
	return nil
}

func writeReport(cfg *config.Config, res *crossval.Result, stdout io.Writer) (err error) {
	w := stdout
	if cfg.Output.Path != "" {
		var f *os.File
		f, err = os.Create(cfg.Output.Path)
		if err != nil {
			return errors.Wrapf(err, "create %s", cfg.Output.Path)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return report.Write(w, res, cfg.Output.Format, cfg.Output.Failures)
}
