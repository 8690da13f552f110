package spline

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/linear"
	"github.com/YuminosukeSato/flexcv/metrics"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/preprocessing"
)

// PiecewiseLinear is a continuous broken-line fit: ordinary least squares on
// the truncated power basis [x, (x-k₁)₊, ..., (x-k_K)₊] plus an intercept.
//
// Knots are either given explicitly (in the units of x) or placed at the
// i/(K+1) quantiles of the training sample. A training subset with no points
// beyond some knot makes the design rank deficient and Fit fails.
type PiecewiseLinear struct {
	model.BaseEstimator

	// NumKnots is used when Knots is empty.
	NumKnots int
	// Knots fixes the break points.
	Knots []float64

	scaler *preprocessing.MinMaxScaler
	knots  []float64 // scaled, ascending
	ols    *linear.LinearRegression
}

// NewPiecewiseLinear returns a fit with numKnots quantile knots.
func NewPiecewiseLinear(numKnots int) *PiecewiseLinear {
	return &PiecewiseLinear{NumKnots: numKnots}
}

// NewPiecewiseLinearAt returns a fit with fixed knots.
func NewPiecewiseLinearAt(knots ...float64) *PiecewiseLinear {
	return &PiecewiseLinear{Knots: append([]float64(nil), knots...)}
}

// Fit places the knots and solves the least-squares problem.
func (pl *PiecewiseLinear) Fit(X, y mat.Matrix) error {
	pl.Reset()

	u, err := fitUnit(&pl.scaler, "PiecewiseLinear.Fit", X, y)
	if err != nil {
		return err
	}

	var knots []float64
	if len(pl.Knots) > 0 {
		raw := mat.NewDense(len(pl.Knots), 1, append([]float64(nil), pl.Knots...))
		if knots, err = toUnit(pl.scaler, raw); err != nil {
			return err
		}
	} else {
		if pl.NumKnots < 0 {
			return errors.NewInvalidArgumentError("PiecewiseLinear.Fit", "NumKnots", "must be non-negative", pl.NumKnots)
		}
		sorted := append([]float64(nil), u...)
		sort.Float64s(sorted)
		knots = make([]float64, pl.NumKnots)
		for i := range knots {
			knots[i] = stat.Quantile(float64(i+1)/float64(pl.NumKnots+1), stat.Empirical, sorted, nil)
		}
	}
	for _, k := range knots {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return errors.NewInvalidArgumentError("PiecewiseLinear.Fit", "Knots", "must be finite", pl.Knots)
		}
	}
	knots = lo.Uniq(knots)
	sort.Float64s(knots)

	ols := linear.NewLinearRegression()
	if err := ols.Fit(truncatedPower(u, knots), y); err != nil {
		return err
	}

	pl.knots = knots
	pl.ols = ols
	pl.SetFitted()
	return nil
}

// truncatedPower builds [u, (u-k₁)₊, ...].
func truncatedPower(u, knots []float64) *mat.Dense {
	m := mat.NewDense(len(u), len(knots)+1, nil)
	for i, v := range u {
		m.Set(i, 0, v)
		for j, k := range knots {
			m.Set(i, j+1, math.Max(0, v-k))
		}
	}
	return m
}

// Predict evaluates the broken line; outside the training range the first
// and last segments are extended.
func (pl *PiecewiseLinear) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := pl.RequireFitted("PiecewiseLinear", "Predict"); err != nil {
		return nil, err
	}
	u, err := toUnit(pl.scaler, X)
	if err != nil {
		return nil, err
	}
	return pl.ols.Predict(truncatedPower(u, pl.knots))
}

// Score returns R² on (X, y).
func (pl *PiecewiseLinear) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := pl.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// FittedKnots returns the break points in the units of x.
func (pl *PiecewiseLinear) FittedKnots() []float64 {
	if !pl.IsFitted() || len(pl.knots) == 0 {
		return nil
	}
	scaled := mat.NewDense(len(pl.knots), 1, append([]float64(nil), pl.knots...))
	orig, err := pl.scaler.InverseTransform(scaled)
	if err != nil {
		return nil
	}
	return mat.Col(nil, 0, orig)
}

// EffectiveDF is the number of coefficients: intercept, slope and one per knot.
func (pl *PiecewiseLinear) EffectiveDF() float64 {
	if pl.ols == nil {
		return 0
	}
	return pl.ols.EffectiveDF()
}

// GetParams returns the hyperparameters.
func (pl *PiecewiseLinear) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_knots": pl.NumKnots,
		"knots":     pl.Knots,
	}
}

func (pl *PiecewiseLinear) String() string {
	if len(pl.Knots) > 0 {
		return fmt.Sprintf("PiecewiseLinear(knots=%v)", pl.Knots)
	}
	return fmt.Sprintf("PiecewiseLinear(num_knots=%d)", pl.NumKnots)
}
