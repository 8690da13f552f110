// Package models is the catalogue of model kinds flexcv compares, ordered
// from least to most flexible.
//
//	linear            straight line, 2 degrees of freedom
//	piecewise-linear  broken line with 3 knots at sample quantiles
//	smooth            cubic P-spline, 20 segments, lambda chosen by GCV
//	wiggly            cubic P-spline, 40 segments, lambda fixed at 1e-4
//
// Further kinds can be described with config.ModelConfig.
package models

import (
	"fmt"
	"slices"

	"github.com/YuminosukeSato/flexcv/config"
	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/linear"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/spline"
)

// Catalogue kind names.
const (
	Linear          = "linear"
	PiecewiseLinear = "piecewise-linear"
	Smooth          = "smooth"
	Wiggly          = "wiggly"
)

// Custom model types accepted in config.ModelConfig.Type.
const (
	TypeLinear          = "linear"
	TypePiecewiseLinear = "piecewise-linear"
	TypePSpline         = "pspline"
)

// WigglyLambda is the fixed, deliberately small smoothing parameter of the
// wiggly kind.
const WigglyLambda = 1e-4

// Entry is one catalogue kind.
type Entry struct {
	Name        string
	Description string
	New         func() model.Regressor
}

var catalogue = []Entry{
	{Linear, "ordinary least squares line",
		func() model.Regressor { return linear.NewLinearRegression() }},
	{PiecewiseLinear, "continuous broken line, 3 knots at sample quantiles",
		func() model.Regressor { return spline.NewPiecewiseLinear(3) }},
	{Smooth, "cubic P-spline, 20 segments, GCV-selected lambda",
		func() model.Regressor { return spline.NewPSpline() }},
	{Wiggly, fmt.Sprintf("cubic P-spline, 40 segments, lambda=%g", WigglyLambda),
		func() model.Regressor {
			return spline.NewPSpline(spline.WithSegments(40), spline.WithLambda(WigglyLambda))
		}},
}

// Catalogue returns the built-in kinds in flexibility order.
func Catalogue() []Entry {
	return slices.Clone(catalogue)
}

// Names returns the built-in kind names in flexibility order.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, e := range catalogue {
		names[i] = e.Name
	}
	return names
}

// New returns a fresh unfitted estimator of the named built-in kind.
func New(name string) (model.Regressor, error) {
	i := slices.IndexFunc(catalogue, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		return nil, errors.NewInvalidArgumentError("models.New", "name", fmt.Sprintf("unknown model kind; have %v", Names()), name)
	}
	return catalogue[i].New(), nil
}

// Spec returns the cross-validation spec of a built-in kind regressing y on x.
func Spec(name, x, y string) (crossval.ModelSpec, error) {
	if _, err := New(name); err != nil {
		return crossval.ModelSpec{}, err
	}
	return crossval.EstimatorSpec(name, []string{x}, y, func() model.Regressor {
		m, _ := New(name)
		return m
	}), nil
}

// Specs returns the specs of several built-in kinds, in the given order.
func Specs(names []string, x, y string) ([]crossval.ModelSpec, error) {
	specs := make([]crossval.ModelSpec, 0, len(names))
	for _, name := range names {
		s, err := Spec(name, x, y)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Factory turns a custom model description into an estimator constructor.
func Factory(mc config.ModelConfig) (func() model.Regressor, error) {
	switch mc.Type {
	case TypeLinear:
		return func() model.Regressor { return linear.NewLinearRegression() }, nil
	case TypePiecewiseLinear:
		knots := mc.Knots
		if knots == 0 {
			knots = 3
		}
		return func() model.Regressor { return spline.NewPiecewiseLinear(knots) }, nil
	case TypePSpline:
		ext, err := spline.ParseExtrapolation(mc.Extrapolation)
		if err != nil {
			return nil, err
		}
		opts := []spline.PSplineOption{spline.WithExtrapolation(ext)}
		if mc.Segments > 0 {
			opts = append(opts, spline.WithSegments(mc.Segments))
		}
		if mc.Lambda > 0 {
			opts = append(opts, spline.WithLambda(mc.Lambda))
		}
		return func() model.Regressor { return spline.NewPSpline(opts...) }, nil
	}
	return nil, errors.NewInvalidArgumentError("models.Factory", "type",
		fmt.Sprintf("must be one of %q, %q, %q", TypeLinear, TypePiecewiseLinear, TypePSpline), mc.Type)
}

// FromConfig resolves cfg.Models against cfg.CustomModels first and the
// catalogue second, regressing cfg.Data.Y on cfg.Data.X.
func FromConfig(cfg *config.Config) ([]crossval.ModelSpec, error) {
	x, y := cfg.Data.X, cfg.Data.Y
	specs := make([]crossval.ModelSpec, 0, len(cfg.Models))
	for _, name := range cfg.Models {
		if mc, ok := cfg.Custom(name); ok {
			factory, err := Factory(mc)
			if err != nil {
				return nil, errors.Wrapf(err, "custom model %q", name)
			}
			specs = append(specs, crossval.EstimatorSpec(name, []string{x}, y, factory))
			continue
		}
		s, err := Spec(name, x, y)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
