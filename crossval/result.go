package crossval

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Record is the RMSE of one model kind in one repetition.
type Record struct {
	Repetition int     `json:"repetition"`
	Kind       string  `json:"model"`
	RMSE       float64 `json:"rmse"`
}

// Failure is a repetition, or one model kind within it, that produced no
// RMSE. Kind is empty when the whole repetition failed (InsufficientData).
type Failure struct {
	Repetition int
	Kind       string
	Err        error
}

// Result is the outcome of Run: a results table with one row per successful
// (repetition, model kind) pair, plus the failures.
//
// Records are ordered by repetition, then by the declaration order of the
// kinds. Failures follow the same order. Nothing about the comparison should
// rely on that order.
type Result struct {
	Kinds       []string
	Repetitions int
	Scheme      string
	Response    string
	Records     []Record
	Failures    []Failure
}

// ByKind maps every declared model kind to its RMSE values in repetition
// order. Kinds that never succeeded map to an empty slice.
func (r *Result) ByKind() map[string][]float64 {
	out := make(map[string][]float64, len(r.Kinds))
	for _, k := range r.Kinds {
		out[k] = []float64{}
	}
	for _, rec := range r.Records {
		out[rec.Kind] = append(out[rec.Kind], rec.RMSE)
	}
	return out
}

// RMSE returns the RMSE values of one kind in repetition order.
func (r *Result) RMSE(kind string) []float64 {
	return lo.FilterMap(r.Records, func(rec Record, _ int) (float64, bool) {
		return rec.RMSE, rec.Kind == kind
	})
}

// Succeeded counts the repetitions in which kind produced an RMSE.
func (r *Result) Succeeded(kind string) int {
	return lo.CountBy(r.Records, func(rec Record) bool { return rec.Kind == kind })
}

// Failed counts the repetitions in which kind produced no RMSE, including
// repetitions that failed as a whole. Kinds not declared for the run have
// no failures.
func (r *Result) Failed(kind string) int {
	if !lo.Contains(r.Kinds, kind) {
		return 0
	}
	return lo.CountBy(r.Failures, func(f Failure) bool { return f.Kind == kind || f.Kind == "" })
}

// FailuresFor returns the failures attributed to kind.
func (r *Result) FailuresFor(kind string) []Failure {
	return lo.Filter(r.Failures, func(f Failure, _ int) bool { return f.Kind == kind })
}

// Summary describes the RMSE distribution of one model kind. Statistics are
// NaN when N is zero; StdDev is NaN when N is below two. Quartiles
// interpolate linearly between order statistics, so the median of an even
// number of values is the mean of the middle two.
type Summary struct {
	Kind   string
	N      int
	Failed int
	Mean   float64
	StdDev float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Summarize returns one Summary per kind, in declaration order.
func (r *Result) Summarize() []Summary {
	byKind := r.ByKind()
	return lo.Map(r.Kinds, func(kind string, _ int) Summary {
		return summarize(kind, byKind[kind], r.Failed(kind))
	})
}

func summarize(kind string, values []float64, failed int) Summary {
	s := Summary{Kind: kind, N: len(values), Failed: failed}
	nan := math.NaN()
	if len(values) == 0 {
		s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.StdDev = nan
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = quantile(0.25, sorted)
	s.Median = quantile(0.5, sorted)
	s.Q3 = quantile(0.75, sorted)
	return s
}

// quantile is the p-quantile of sorted at position p·(n-1).
// stat.Quantile offers only the step and CDF-interpolation rules.
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	i := int(math.Floor(h))
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// Median returns the median RMSE of kind, or NaN if it never succeeded.
func (r *Result) Median(kind string) float64 {
	return summarize(kind, r.RMSE(kind), 0).Median
}
