package model

import (
	"gonum.org/v1/gonum/mat"
)

// Regressor is what the cross-validator needs from a numeric estimator:
// it can be trained on a matrix and then predict a column of responses.
// Every estimator in linear and spline satisfies it.
type Regressor interface {
	Fitter
	Predictor
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Complexity is implemented by estimators that can report how flexible
// their fitted curve is, measured in effective degrees of freedom.
type Complexity interface {
	EffectiveDF() float64
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
