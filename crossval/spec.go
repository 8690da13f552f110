package crossval

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/dataset"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// FittedModel is a model trained on one repetition's train subset. Predict
// returns one value per record of ds, in record order.
type FittedModel interface {
	Predict(ds *dataset.Dataset) ([]float64, error)
}

// PredictFunc adapts a function to FittedModel.
type PredictFunc func(ds *dataset.Dataset) ([]float64, error)

func (f PredictFunc) Predict(ds *dataset.Dataset) ([]float64, error) { return f(ds) }

// FitFunc trains a model kind on a train subset.
type FitFunc func(train *dataset.Dataset) (FittedModel, error)

// ModelSpec is one candidate model kind. Kind must be unique within a run.
type ModelSpec struct {
	Kind string
	Fit  FitFunc
}

// NewModelSpec pairs a fit function producing any model value with the
// prediction function for that value.
func NewModelSpec[M any](kind string, fit func(train *dataset.Dataset) (M, error), predict func(m M, ds *dataset.Dataset) ([]float64, error)) ModelSpec {
	if fit == nil || predict == nil {
		return ModelSpec{Kind: kind}
	}
	return ModelSpec{
		Kind: kind,
		Fit: func(train *dataset.Dataset) (FittedModel, error) {
			m, err := fit(train)
			if err != nil {
				return nil, err
			}
			return PredictFunc(func(ds *dataset.Dataset) ([]float64, error) {
				return predict(m, ds)
			}), nil
		},
	}
}

// EstimatorSpec adapts a matrix estimator: each repetition builds a fresh
// estimator from factory, fits it on the features and response columns of
// the train subset and predicts from the features of the test subset.
func EstimatorSpec(kind string, features []string, response string, factory func() model.Regressor) ModelSpec {
	if factory == nil {
		return ModelSpec{Kind: kind}
	}
	features = append([]string(nil), features...)
	return ModelSpec{
		Kind: kind,
		Fit: func(train *dataset.Dataset) (FittedModel, error) {
			X, err := train.Matrix(features...)
			if err != nil {
				return nil, err
			}
			r, c := X.Dims()
			if err := errors.CheckMatrix("crossval.Fit", X, r, c); err != nil {
				return nil, err
			}
			y, err := train.Vector(response)
			if err != nil {
				return nil, err
			}
			est := factory()
			if est == nil {
				return nil, errors.NewModelError("crossval.EstimatorSpec", kind, errors.New("factory returned nil"))
			}
			if err := est.Fit(X, y); err != nil {
				return nil, err
			}
			return &estimatorModel{est: est, features: features}, nil
		},
	}
}

type estimatorModel struct {
	est      model.Regressor
	features []string
}

func (m *estimatorModel) Predict(ds *dataset.Dataset) ([]float64, error) {
	X, err := ds.Matrix(m.features...)
	if err != nil {
		return nil, err
	}
	pred, err := m.est.Predict(X)
	if err != nil {
		return nil, err
	}
	r, c := pred.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("crossval.Predict", 1, c, 1)
	}
	return mat.Col(make([]float64, r), 0, pred), nil
}

// Estimator returns the fitted estimator behind a model built by
// EstimatorSpec, for inspection in tests and reports.
func Estimator(m FittedModel) (model.Regressor, bool) {
	em, ok := m.(*estimatorModel)
	if !ok {
		return nil, false
	}
	return em.est, true
}
