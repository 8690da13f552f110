package crossval

import (
	"github.com/YuminosukeSato/flexcv/pkg/log"
)

// DefaultTrainFraction is the share of records drawn into each train subset.
const DefaultTrainFraction = 0.8

type options struct {
	trainFraction float64
	splitter      Splitter
	response      string
	jobs          int
	logger        log.Logger
	progress      func(done, total int)
}

// Option configures Run.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		trainFraction: DefaultTrainFraction,
		jobs:          1,
		logger:        log.GetLogger(),
	}
}

// WithTrainFraction sets the Monte Carlo train fraction, which must lie in (0, 1).
// It is ignored when WithSplitter supplies another scheme.
func WithTrainFraction(f float64) Option {
	return func(o *options) { o.trainFraction = f }
}

// WithSplitter replaces the default MonteCarlo scheme.
func WithSplitter(s Splitter) Option {
	return func(o *options) { o.splitter = s }
}

// WithResponse names the response column RMSE is computed against.
// The default is the dataset's last column.
func WithResponse(name string) Option {
	return func(o *options) { o.response = name }
}

// WithJobs sets how many repetitions run concurrently. Values below 1 mean
// one per CPU. Results do not depend on it.
func WithJobs(n int) Option {
	return func(o *options) { o.jobs = n }
}

// WithLogger sets the logger; nil silences the run.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = log.NopLogger{}
		}
		o.logger = l
	}
}

// WithProgress registers a callback invoked after each repetition completes.
// Calls are serialized; done counts completed repetitions.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}
