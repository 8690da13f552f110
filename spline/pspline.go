package spline

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/linear"
	"github.com/YuminosukeSato/flexcv/metrics"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/preprocessing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Extrapolation is the policy for predictions outside the training range.
type Extrapolation int

const (
	// ExtrapolateLinear continues the fitted curve along its boundary tangent.
	ExtrapolateLinear Extrapolation = iota
	// ExtrapolateNone predicts NaN outside the training range.
	ExtrapolateNone
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateLinear:
		return "linear"
	case ExtrapolateNone:
		return "none"
	default:
		return fmt.Sprintf("Extrapolation(%d)", int(e))
	}
}

// ParseExtrapolation accepts "linear" or "none".
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch s {
	case "linear", "":
		return ExtrapolateLinear, nil
	case "none":
		return ExtrapolateNone, nil
	}
	return 0, errors.NewInvalidArgumentError("spline.ParseExtrapolation", "extrapolation", `must be "linear" or "none"`, s)
}

// DefaultLambdaGrid is the GCV search grid: 10^-6 ... 10^4 in steps of 10^0.25.
func DefaultLambdaGrid() []float64 {
	grid := make([]float64, 41)
	floats.LogSpan(grid, 1e-6, 1e4)
	return grid
}

// boundary tolerance in scaled units
const edgeTol = 1e-9

// PSpline is a penalized B-spline smoother of a single explanatory variable
// (Eilers and Marx). The curve is a combination of Segments+Degree B-splines
// on equally spaced knots; roughness is controlled by a difference penalty of
// order PenaltyOrder on adjacent coefficients, weighted by Lambda.
//
// With a nil LambdaGrid the fixed Lambda is used. Otherwise Lambda is chosen
// from the grid by minimizing the generalized cross-validation score on the
// training data.
type PSpline struct {
	model.BaseEstimator

	Segments      int
	Degree        int
	PenaltyOrder  int
	Lambda        float64
	LambdaGrid    []float64
	Extrapolation Extrapolation

	scaler *preprocessing.MinMaxScaler
	basis  *Basis
	solver *linear.PenalizedRegression

	// value and slope at u=0 and u=1, for linear extrapolation
	f0, d0, f1, d1 float64
}

// PSplineOption configures a PSpline.
type PSplineOption func(*PSpline)

// WithSegments sets the number of equal knot intervals.
func WithSegments(n int) PSplineOption { return func(p *PSpline) { p.Segments = n } }

// WithDegree sets the B-spline degree.
func WithDegree(d int) PSplineOption { return func(p *PSpline) { p.Degree = d } }

// WithPenaltyOrder sets the order of the coefficient difference penalty.
func WithPenaltyOrder(o int) PSplineOption { return func(p *PSpline) { p.PenaltyOrder = o } }

// WithLambda fixes the smoothing parameter and disables GCV selection.
func WithLambda(lambda float64) PSplineOption {
	return func(p *PSpline) {
		p.Lambda = lambda
		p.LambdaGrid = nil
	}
}

// WithGCV selects lambda from grid by GCV. A nil grid means DefaultLambdaGrid.
func WithGCV(grid []float64) PSplineOption {
	return func(p *PSpline) {
		if grid == nil {
			grid = DefaultLambdaGrid()
		}
		p.LambdaGrid = append([]float64(nil), grid...)
	}
}

// WithExtrapolation sets the out-of-range prediction policy.
func WithExtrapolation(e Extrapolation) PSplineOption {
	return func(p *PSpline) { p.Extrapolation = e }
}

// NewPSpline returns a cubic P-spline with 20 segments, a second order
// penalty and GCV-selected lambda, adjusted by opts.
func NewPSpline(opts ...PSplineOption) *PSpline {
	p := &PSpline{
		Segments:     20,
		Degree:       3,
		PenaltyOrder: 2,
		LambdaGrid:   DefaultLambdaGrid(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit fits the smoother. X must have exactly one column with at least two
// distinct values.
func (p *PSpline) Fit(X, y mat.Matrix) error {
	p.Reset()

	u, err := fitUnit(&p.scaler, "PSpline.Fit", X, y)
	if err != nil {
		return err
	}

	basis, err := NewBasis(p.Segments, p.Degree)
	if err != nil {
		return err
	}
	if p.PenaltyOrder < 0 || p.PenaltyOrder >= basis.Size() {
		return errors.NewInvalidArgumentError("PSpline.Fit", "PenaltyOrder",
			fmt.Sprintf("must be in [0, %d)", basis.Size()), p.PenaltyOrder)
	}
	B := basis.Design(u)
	penalty := linear.DifferencePenalty(basis.Size(), p.PenaltyOrder)

	solver, err := p.solve(B, y, penalty)
	if err != nil {
		return err
	}

	p.basis = basis
	p.solver = solver
	p.Lambda = solver.Lambda

	const h = 1e-6
	p.f0, p.f1 = p.curve(0), p.curve(1)
	p.d0 = (p.curve(h) - p.f0) / h
	p.d1 = (p.f1 - p.curve(1-h)) / h

	p.SetFitted()
	return nil
}

func (p *PSpline) solve(B *mat.Dense, y mat.Matrix, penalty *mat.SymDense) (*linear.PenalizedRegression, error) {
	if p.LambdaGrid == nil {
		solver := linear.NewPenalizedRegression(penalty, p.Lambda)
		if err := solver.Fit(B, y); err != nil {
			return nil, err
		}
		return solver, nil
	}

	var (
		best    *linear.PenalizedRegression
		lastErr error
	)
	for _, lambda := range p.LambdaGrid {
		solver := linear.NewPenalizedRegression(penalty, lambda)
		if err := solver.Fit(B, y); err != nil {
			lastErr = err
			continue
		}
		// edf == n leaves GCV undefined
		if err := errors.CheckScalar("PSpline.GCV", solver.GCV()); err != nil {
			lastErr = err
			continue
		}
		if best == nil || solver.GCV() < best.GCV() {
			best = solver
		}
	}
	if best == nil {
		if lastErr == nil {
			return nil, errors.NewInvalidArgumentError("PSpline.Fit", "LambdaGrid", "must not be empty", p.LambdaGrid)
		}
		return nil, errors.Wrap(lastErr, "PSpline.Fit: no lambda in the grid gave a solution")
	}
	return best, nil
}

// curve evaluates the fitted spline at scaled position u in [0, 1].
func (p *PSpline) curve(u float64) float64 {
	row := make([]float64, p.basis.Size())
	p.basis.Eval(u, row)
	return floats.Dot(row, p.solver.Coef.RawVector().Data)
}

// Predict returns fitted values as an (n, 1) matrix. Positions outside the
// training range follow the Extrapolation policy.
func (p *PSpline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := p.RequireFitted("PSpline", "Predict"); err != nil {
		return nil, err
	}
	u, err := toUnit(p.scaler, X)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(u), 1, nil)
	for i, v := range u {
		var pred float64
		switch {
		case v < -edgeTol && p.Extrapolation == ExtrapolateNone,
			v > 1+edgeTol && p.Extrapolation == ExtrapolateNone:
			pred = math.NaN()
		case v < 0:
			pred = p.f0 + p.d0*v
		case v > 1:
			pred = p.f1 + p.d1*(v-1)
		default:
			pred = p.curve(v)
		}
		out.Set(i, 0, pred)
	}
	return out, nil
}

// Score returns R² on (X, y).
func (p *PSpline) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// EffectiveDF is the trace of the smoother matrix of the final fit.
func (p *PSpline) EffectiveDF() float64 {
	if p.solver == nil {
		return 0
	}
	return p.solver.EffectiveDF()
}

// GCV is the generalized cross-validation score of the final fit.
func (p *PSpline) GCV() float64 {
	if p.solver == nil {
		return math.Inf(1)
	}
	return p.solver.GCV()
}

// GetParams returns the hyperparameters; lambda is the selected value once fitted.
func (p *PSpline) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"segments":      p.Segments,
		"degree":        p.Degree,
		"penalty_order": p.PenaltyOrder,
		"lambda":        p.Lambda,
		"gcv":           p.LambdaGrid != nil,
		"extrapolation": p.Extrapolation.String(),
	}
}

func (p *PSpline) String() string {
	if p.LambdaGrid != nil && !p.IsFitted() {
		return fmt.Sprintf("PSpline(segments=%d, degree=%d, lambda=gcv)", p.Segments, p.Degree)
	}
	return fmt.Sprintf("PSpline(segments=%d, degree=%d, lambda=%g)", p.Segments, p.Degree, p.Lambda)
}

// fitUnit validates a single-column X against y, fits a [0,1] scaler into
// *scaler and returns the scaled positions.
func fitUnit(scaler **preprocessing.MinMaxScaler, op string, X, y mat.Matrix) ([]float64, error) {
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}
	ry, cy := y.Dims()
	if ry != r {
		return nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}

	s := preprocessing.NewMinMaxScalerDefault()
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	if s.DataMax[0]-s.DataMin[0] < 1e-8 {
		return nil, errors.NewValueError(op, "explanatory variable has no spread in the training data")
	}
	*scaler = s
	return toUnit(s, X)
}

func toUnit(s *preprocessing.MinMaxScaler, X mat.Matrix) ([]float64, error) {
	scaled, err := s.Transform(X)
	if err != nil {
		return nil, err
	}
	r, _ := scaled.Dims()
	return mat.Col(make([]float64, r), 0, scaled), nil
}
