package linear

import (
	"math"

	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/metrics"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PenalizedRegression solves the generalized ridge problem
//
//	minimize ||y - Xβ||² + λ βᵀPβ
//
// through the normal equations (XᵀX + λP)β = Xᵀy and a Cholesky
// factorization. No intercept is added: X is expected to span the constant
// already (a B-spline basis does).
type PenalizedRegression struct {
	model.BaseEstimator

	// Penalty is the p×p positive semi-definite matrix P.
	Penalty mat.Symmetric
	// Lambda is the smoothing parameter λ >= 0.
	Lambda float64

	Coef *mat.VecDense

	edf     float64
	rss     float64
	samples int
}

// NewPenalizedRegression returns an unfitted solver for the given penalty.
func NewPenalizedRegression(penalty mat.Symmetric, lambda float64) *PenalizedRegression {
	return &PenalizedRegression{Penalty: penalty, Lambda: lambda}
}

// Fit solves for the coefficients and records the effective degrees of
// freedom tr((XᵀX+λP)⁻¹XᵀX) and the training residual sum of squares.
func (pr *PenalizedRegression) Fit(X, y mat.Matrix) error {
	pr.Reset()

	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PenalizedRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("PenalizedRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("PenalizedRegression.Fit", "y must be a column vector")
	}
	if pr.Lambda < 0 || math.IsNaN(pr.Lambda) || math.IsInf(pr.Lambda, 0) {
		return errors.NewInvalidArgumentError("PenalizedRegression.Fit", "Lambda", "must be finite and non-negative", pr.Lambda)
	}
	if pr.Penalty != nil {
		if p := pr.Penalty.SymmetricDim(); p != c {
			return errors.NewDimensionError("PenalizedRegression.Fit", c, p, 1)
		}
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, X.T())

	a := mat.NewSymDense(c, nil)
	if pr.Penalty != nil && pr.Lambda > 0 {
		var scaled mat.SymDense
		scaled.ScaleSym(pr.Lambda, pr.Penalty)
		a.AddSym(&xtx, &scaled)
	} else {
		a.CopySym(&xtx)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return errors.NewModelError("PenalizedRegression.Fit", "penalized normal equations are not positive definite", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)

	coef := mat.NewVecDense(c, nil)
	if err := chol.SolveVecTo(coef, &xty); err != nil {
		return errors.NewModelError("PenalizedRegression.Fit", "solve failed", errors.Wrap(errors.ErrSingularMatrix, err.Error()))
	}
	if err := errors.CheckNumericalStability("PenalizedRegression.Fit", coef.RawVector().Data); err != nil {
		return errors.NewModelError("PenalizedRegression.Fit", "unstable solution", err)
	}

	// hat matrix trace
	var s mat.Dense
	if err := chol.SolveTo(&s, &xtx); err != nil {
		return errors.NewModelError("PenalizedRegression.Fit", "solve failed", errors.Wrap(errors.ErrSingularMatrix, err.Error()))
	}

	var fitted mat.VecDense
	fitted.MulVec(X, coef)
	var resid mat.VecDense
	resid.SubVec(yVec, &fitted)

	pr.Coef = coef
	pr.edf = mat.Trace(&s)
	pr.rss = mat.Dot(&resid, &resid)
	pr.samples = r
	pr.SetFitted()
	return nil
}

// Predict returns Xβ as an (n, 1) matrix.
func (pr *PenalizedRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := pr.RequireFitted("PenalizedRegression", "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != pr.Coef.Len() {
		return nil, errors.NewDimensionError("PenalizedRegression.Predict", pr.Coef.Len(), c, 1)
	}
	out := mat.NewVecDense(r, nil)
	out.MulVec(X, pr.Coef)
	return mat.NewDense(r, 1, out.RawVector().Data), nil
}

// Score returns R² on (X, y).
func (pr *PenalizedRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := pr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// EffectiveDF is the trace of the hat matrix. It equals the number of
// coefficients at λ = 0 and falls towards the penalty's null-space dimension
// as λ grows.
func (pr *PenalizedRegression) EffectiveDF() float64 {
	return pr.edf
}

// RSS is the training residual sum of squares.
func (pr *PenalizedRegression) RSS() float64 {
	return pr.rss
}

// GCV returns the generalized cross-validation score n·RSS/(n − edf)².
// It is +Inf when the fit interpolates (edf >= n).
func (pr *PenalizedRegression) GCV() float64 {
	n := float64(pr.samples)
	if !pr.IsFitted() || pr.edf >= n {
		return math.Inf(1)
	}
	d := n - pr.edf
	return n * pr.rss / (d * d)
}

// GetParams returns the hyperparameters.
func (pr *PenalizedRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{"lambda": pr.Lambda}
}

// DifferencePenalty returns DᵀD for the order-th difference matrix D of
// size (p-order)×p, the standard P-spline roughness penalty.
func DifferencePenalty(p, order int) *mat.SymDense {
	if order < 0 || order >= p {
		panic(errors.NewInvalidArgumentError("DifferencePenalty", "order", "must be in [0, p)", order))
	}
	d := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		d.Set(i, i, 1)
	}
	rows := p
	for k := 0; k < order; k++ {
		next := mat.NewDense(rows-1, p, nil)
		for i := 0; i < rows-1; i++ {
			for j := 0; j < p; j++ {
				next.Set(i, j, d.At(i+1, j)-d.At(i, j))
			}
		}
		d = next
		rows--
	}
	var pen mat.SymDense
	pen.SymOuterK(1, d.T())
	return &pen
}
