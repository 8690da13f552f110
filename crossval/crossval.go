// Package crossval compares regression model kinds by out-of-sample RMSE
// over repeated train/test splits.
//
// Run partitions a dataset once per repetition, fits every candidate model
// kind on the train subset, predicts the held-out subset and records
//
//	RMSE = sqrt(mean((y - ŷ)²))
//
// per (repetition, model kind). A failure of one kind in one repetition is
// recorded and the run moves on; only malformed arguments abort a run.
//
// Example:
//
//	rng := rand.New(rand.NewPCG(seed, seed))
//	res, err := crossval.Run(ds, 100, []crossval.ModelSpec{
//	    crossval.EstimatorSpec("linear", []string{"range"}, "logratio",
//	        func() model.Regressor { return linear.NewLinearRegression() }),
//	    crossval.EstimatorSpec("smooth", []string{"range"}, "logratio",
//	        func() model.Regressor { return spline.NewPSpline() }),
//	}, rng)
package crossval

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flexcv/core/parallel"
	"github.com/YuminosukeSato/flexcv/dataset"
	"github.com/YuminosukeSato/flexcv/metrics"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/pkg/log"
)

// Run performs repetitions train/test trials of every spec on ds, drawing
// all randomness from rng.
//
// It fails with an InvalidArgument error, before any fitting, when
// repetitions <= 0, ds is nil or empty, specs is empty or has an empty,
// duplicate or nil-fit kind, rng is nil, the response column is unknown, or
// the splitter is malformed. Otherwise it returns a Result whose Failures
// list every InsufficientData and FitFailure encountered.
func Run(ds *dataset.Dataset, repetitions int, specs []ModelSpec, rng *rand.Rand, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	splitter, err := validate(ds, repetitions, specs, rng, o)
	if err != nil {
		return nil, err
	}

	kinds := lo.Map(specs, func(s ModelSpec, _ int) string { return s.Kind })
	logger := o.logger.With(log.ComponentKey, "crossval", log.SchemeKey, splitter.Name())
	logger.Info("Cross-validation started",
		log.RepetitionsKey, repetitions,
		log.SamplesKey, ds.Len(),
		log.ModelKindsKey, kinds,
		log.JobsKey, parallel.Workers(o.jobs, repetitions),
	)
	start := time.Now()

	// draw every split before fitting anything: the outcome depends only on
	// rng, never on scheduling
	splits := splitter.Splits(rng, ds.Len(), repetitions)

	outcomes := make([]repetitionOutcome, repetitions)
	var (
		mu   sync.Mutex
		done int
	)
	parallel.ForEach(repetitions, o.jobs, func(r int) {
		outcomes[r] = runRepetition(ds, r, splits[r], specs, o.response, logger)
		if o.progress != nil {
			mu.Lock()
			done++
			o.progress(done, repetitions)
			mu.Unlock()
		}
	})

	res := &Result{
		Kinds:       kinds,
		Repetitions: repetitions,
		Scheme:      splitter.Name(),
		Response:    o.response,
	}
	for _, out := range outcomes {
		res.Records = append(res.Records, out.records...)
		res.Failures = append(res.Failures, out.failures...)
	}

	for _, f := range res.Failures {
		logFailure(logger, f)
		errors.Warn(f.Err)
	}
	logger.Info("Cross-validation finished",
		log.RepetitionsKey, repetitions,
		log.RecordsKey, len(res.Records),
		log.FailuresKey, len(res.Failures),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func validate(ds *dataset.Dataset, repetitions int, specs []ModelSpec, rng *rand.Rand, o *options) (Splitter, error) {
	if repetitions <= 0 {
		return nil, errors.NewInvalidArgumentError("crossval.Run", "repetitions", "must be positive", repetitions)
	}
	if ds == nil || ds.Len() == 0 {
		return nil, errors.NewInvalidArgumentError("crossval.Run", "dataset", "must contain at least one record", ds)
	}
	if len(specs) == 0 {
		return nil, errors.NewInvalidArgumentError("crossval.Run", "specs", "at least one model kind is required", len(specs))
	}
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Kind == "" {
			return nil, errors.NewInvalidArgumentError("crossval.Run", fmt.Sprintf("specs[%d].Kind", i), "must be non-empty", s.Kind)
		}
		if seen[s.Kind] {
			return nil, errors.NewInvalidArgumentError("crossval.Run", fmt.Sprintf("specs[%d].Kind", i), "duplicate model kind", s.Kind)
		}
		seen[s.Kind] = true
		if s.Fit == nil {
			return nil, errors.NewInvalidArgumentError("crossval.Run", fmt.Sprintf("specs[%d].Fit", i), "fit function is required", s.Kind)
		}
	}
	if rng == nil {
		return nil, errors.NewInvalidArgumentError("crossval.Run", "rng", "a random source is required", nil)
	}

	if o.response == "" {
		names := ds.Names()
		o.response = names[len(names)-1]
	}
	if !ds.Has(o.response) {
		return nil, errors.NewInvalidArgumentError("crossval.Run", "response", fmt.Sprintf("unknown column; have %v", ds.Names()), o.response)
	}

	splitter := o.splitter
	if splitter == nil {
		splitter = MonteCarlo{TrainFraction: o.trainFraction}
	}
	if err := splitter.Validate(); err != nil {
		return nil, err
	}
	return splitter, nil
}

type repetitionOutcome struct {
	records  []Record
	failures []Failure
}

func runRepetition(ds *dataset.Dataset, r int, split Split, specs []ModelSpec, response string, logger log.Logger) repetitionOutcome {
	var out repetitionOutcome
	if len(split.Train) == 0 || len(split.Test) == 0 {
		out.failures = append(out.failures, Failure{
			Repetition: r,
			Err:        errors.NewInsufficientDataError(r, len(split.Train), len(split.Test)),
		})
		return out
	}

	start := time.Now()
	// splits come from the splitter, so a bad index is a programming error
	train, err := ds.Subset(split.Train)
	if err != nil {
		panic(errors.Wrapf(err, "crossval: repetition %d", r))
	}
	test, err := ds.Subset(split.Test)
	if err != nil {
		panic(errors.Wrapf(err, "crossval: repetition %d", r))
	}
	out = scoreAll(train, test, r, specs, response)

	logger.Debug("Repetition finished",
		log.RepetitionKey, r,
		log.TrainSizeKey, len(split.Train),
		log.TestSizeKey, len(split.Test),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out
}

func scoreAll(train, test *dataset.Dataset, r int, specs []ModelSpec, response string) repetitionOutcome {
	var out repetitionOutcome
	actual, _ := test.Column(response)
	for _, spec := range specs {
		rmse, err := score(spec, train, test, actual, r)
		if err != nil {
			out.failures = append(out.failures, Failure{Repetition: r, Kind: spec.Kind, Err: err})
			continue
		}
		out.records = append(out.records, Record{Repetition: r, Kind: spec.Kind, RMSE: rmse})
	}
	return out
}

// score fits one kind and returns its test RMSE. Every error, including a
// panic inside the model's own code, comes back as a FitFailure.
func score(spec ModelSpec, train, test *dataset.Dataset, actual []float64, r int) (float64, error) {
	fitted, err := errors.SafeCall(spec.Kind+" fit", func() (FittedModel, error) {
		return spec.Fit(train)
	})
	if err == nil && fitted == nil {
		err = errors.New("fit returned no model")
	}
	if err != nil {
		return 0, errors.NewFitFailureError(spec.Kind, r, errors.StageFit, err)
	}

	pred, err := errors.SafeCall(spec.Kind+" predict", func() ([]float64, error) {
		return fitted.Predict(test)
	})
	if err == nil && len(pred) != len(actual) {
		err = errors.NewDimensionError("crossval.Predict", len(actual), len(pred), 0)
	}
	if err != nil {
		return 0, errors.NewFitFailureError(spec.Kind, r, errors.StagePredict, err)
	}

	rmse, err := metrics.RMSE(mat.NewVecDense(len(actual), actual), mat.NewVecDense(len(pred), pred))
	if err != nil {
		return 0, errors.NewFitFailureError(spec.Kind, r, errors.StageScore, err)
	}
	return rmse, nil
}

func logFailure(logger log.Logger, f Failure) {
	fields := []any{log.RepetitionKey, f.Repetition, log.ErrAttrKey, f.Err}
	var fitErr *errors.FitFailureError
	switch {
	case errors.As(f.Err, &fitErr):
		fields = append(fields,
			log.ModelKindKey, f.Kind,
			log.StageKey, fitErr.Stage,
			log.ErrorTypeKey, log.ErrorFitFailure,
		)
	case errors.Is(f.Err, errors.ErrInsufficientData):
		fields = append(fields, log.ErrorTypeKey, log.ErrorInsufficientData)
	}
	logger.Warn("Repetition failed", fields...)
}
