// Package flexcv compares regression models of increasing flexibility by
// out-of-sample error, using Monte Carlo (repeated holdout) cross-validation.
//
// Each repetition draws a random train subset (80% of the records by
// default), fits every candidate model kind on it, predicts the held-out
// records and records the test RMSE. Over many repetitions the RMSE
// distributions show where extra flexibility stops paying off: a straight
// line underfits a curved signal, a smoothing spline tracks it, and a very
// lightly penalized spline starts to chase noise.
//
// # Quick Start
//
//	ds := dataset.SyntheticLidar(rand.New(rand.NewPCG(1, 1)))
//	specs, err := models.Specs([]string{"linear", "smooth", "wiggly"}, "range", "logratio")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := crossval.Run(ds, 100, specs, rand.New(rand.NewPCG(42, 42)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.WriteSummary(os.Stdout, res.Summarize())
//
// # Packages
//
//   - crossval: the repeated train/test driver, splitters and results
//   - models: the catalogue of model kinds and config-driven kinds
//   - linear: ordinary and penalized least squares
//   - spline: B-spline basis, P-spline smoother, piecewise-linear fit
//   - dataset: columnar datasets, CSV loading, synthetic LIDAR data
//   - metrics: RMSE and other regression metrics
//   - preprocessing: min-max scaling
//   - report: CSV, JSON, table and box plot output
//   - config: viper-backed run settings
//   - core/model, core/parallel: estimator interfaces and worker fan-out
//   - pkg/errors, pkg/log: structured errors and logging
//
// The flexcv command (cmd/flexcv) wraps all of this behind
// "flexcv run", "flexcv models" and "flexcv version".
package flexcv
