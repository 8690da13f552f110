// Package linear provides the least-squares solvers behind every model kind:
// ordinary least squares for the linear and piecewise-linear fits, and a
// generalized ridge solver for penalized splines.
package linear

import (
	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/core/parallel"
	"github.com/YuminosukeSato/flexcv/metrics"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator               // BaseEstimatorを埋め込み
	Weights             *mat.VecDense // 重み（係数）
	Intercept           float64       // 切片
	NFeatures           int           // 特徴量の数

	fitIntercept bool
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用
//
// 設計行列がランク落ちしている場合（例：ある区間に訓練点が一つもない）は
// ErrSingularMatrix を包んだ ModelError を返す。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	lr.Reset()

	// 入力の検証
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// 切片項の列（fitIntercept が false の場合は付けない）
	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	design := mat.NewDense(r, c+offset, nil)

	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	// (X^T * X)^(-1) * X^T * y
	var XTX mat.Dense
	XTX.Mul(design.T(), design)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(design.T(), yVec)

	weights := mat.NewVecDense(c+offset, nil)
	weights.MulVec(&XTXInv, &XTy)
	if err := errors.CheckNumericalStability("LinearRegression.Fit", weights.RawVector().Data); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "unstable solution", err)
	}

	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = weights.AtVec(0)
	}
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+offset))
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// 予測: y = X * weights + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// GetWeights は学習された重み（係数）を返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// EffectiveDF は自由度（係数の数、切片を含む）を返す
func (lr *LinearRegression) EffectiveDF() float64 {
	if lr.fitIntercept {
		return float64(lr.NFeatures + 1)
	}
	return float64(lr.NFeatures)
}

// GetParams はハイパーパラメータを返す
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{"fit_intercept": lr.fitIntercept}
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}
