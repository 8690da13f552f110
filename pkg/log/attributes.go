// Package log defines standard attribute keys for cross-validation runs.
//
// Using these keys across packages keeps log output filterable: every record
// about a repetition carries RepetitionKey, every record about a model kind
// carries ModelKindKey, and so on. Keys follow a hierarchical naming
// convention (e.g. "cv.repetition", "data.samples").

package log

// Run and component context
const (
	// ComponentKey identifies which package is logging.
	// Examples: "crossval", "spline", "cli"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "split"
	OperationKey = "ml.operation"

	// ModelKindKey identifies the candidate model kind under comparison.
	// Examples: "linear", "piecewise-linear", "smooth", "wiggly"
	ModelKindKey = "model.kind"

	// ModelKindsKey lists every model kind of a run in declaration order.
	ModelKindsKey = "model.kinds"

	// ModelNameKey identifies the estimator type behind a model kind.
	// Examples: "LinearRegression", "PSpline"
	ModelNameKey = "model.name"
)

// Cross-validation context
const (
	// SchemeKey names the resampling scheme ("holdout" or "kfold").
	SchemeKey = "cv.scheme"

	// RepetitionKey is the zero-based repetition index.
	RepetitionKey = "cv.repetition"

	// RepetitionsKey is the total number of repetitions requested.
	RepetitionsKey = "cv.repetitions"

	// TrainFractionKey is the fraction of records drawn into the train subset.
	TrainFractionKey = "cv.train_fraction"

	// TrainSizeKey and TestSizeKey are the subset sizes of a split.
	TrainSizeKey = "cv.train_size"
	TestSizeKey  = "cv.test_size"

	// JobsKey is the number of concurrent workers.
	JobsKey = "cv.jobs"

	// RecordsKey counts RMSE records produced by a run.
	RecordsKey = "cv.records"

	// FailuresKey counts failures collected during a run.
	FailuresKey = "cv.failures"
)

// Data shape
const (
	// SamplesKey indicates the number of records in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of explanatory columns.
	FeaturesKey = "data.features"

	// SourceKey names where a dataset came from (a file path or "lidar").
	SourceKey = "data.source"
)

// Metrics and performance
const (
	// RMSEKey records a root-mean-squared error.
	RMSEKey = "metrics.rmse"

	// MedianRMSEKey records the median RMSE of a model kind over a run.
	MedianRMSEKey = "metrics.median_rmse"

	// LambdaKey records the smoothing parameter chosen for a penalized fit.
	LambdaKey = "hyperparams.lambda"

	// EDFKey records the effective degrees of freedom of a penalized fit.
	EDFKey = "metrics.edf"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "InsufficientData", "FitFailure"
	ErrorTypeKey = "error.type"

	// StageKey records whether a fit failure happened in fit, predict or score.
	StageKey = "error.stage"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSplit   = "split"

	ErrorInsufficientData = "InsufficientData"
	ErrorFitFailure       = "FitFailure"
)
