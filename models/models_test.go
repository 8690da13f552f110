package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/config"
	"github.com/YuminosukeSato/flexcv/core/model"
	"github.com/YuminosukeSato/flexcv/crossval"
	"github.com/YuminosukeSato/flexcv/dataset"
	"github.com/YuminosukeSato/flexcv/linear"
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"github.com/YuminosukeSato/flexcv/pkg/log"
	"github.com/YuminosukeSato/flexcv/spline"
)

func TestCatalogue(t *testing.T) {
	assert.Equal(t, []string{Linear, PiecewiseLinear, Smooth, Wiggly}, Names())

	for _, e := range Catalogue() {
		t.Run(e.Name, func(t *testing.T) {
			m, err := New(e.Name)
			require.NoError(t, err)
			assert.NotSame(t, m, e.New(), "every call builds a fresh estimator")
			assert.NotEmpty(t, e.Description)
		})
	}

	w, err := New(Wiggly)
	require.NoError(t, err)
	ps, ok := w.(*spline.PSpline)
	require.True(t, ok)
	assert.Equal(t, 40, ps.Segments)
	assert.Equal(t, WigglyLambda, ps.Lambda)
	assert.Nil(t, ps.LambdaGrid)

	s, err := New(Smooth)
	require.NoError(t, err)
	assert.NotNil(t, s.(*spline.PSpline).LambdaGrid)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("forest")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = Specs([]string{Linear, "forest"}, "x", "y")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestFactory(t *testing.T) {
	f, err := Factory(config.ModelConfig{Name: "a", Type: TypeLinear})
	require.NoError(t, err)
	assert.IsType(t, &linear.LinearRegression{}, f())

	f, err = Factory(config.ModelConfig{Name: "b", Type: TypePiecewiseLinear})
	require.NoError(t, err)
	assert.Equal(t, 3, f().(*spline.PiecewiseLinear).NumKnots)

	f, err = Factory(config.ModelConfig{Name: "c", Type: TypePSpline, Segments: 8, Lambda: 2, Extrapolation: "none"})
	require.NoError(t, err)
	ps := f().(*spline.PSpline)
	assert.Equal(t, 8, ps.Segments)
	assert.Equal(t, 2.0, ps.Lambda)
	assert.Equal(t, spline.ExtrapolateNone, ps.Extrapolation)

	_, err = Factory(config.ModelConfig{Name: "d", Type: TypePSpline, Extrapolation: "cubic"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	_, err = Factory(config.ModelConfig{Name: "e", Type: "tree"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Models = []string{"stiff", Linear}
	cfg.CustomModels = []config.ModelConfig{{Name: "stiff", Type: TypePSpline, Segments: 10, Lambda: 1e3}}

	specs, err := FromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "stiff", specs[0].Kind)
	assert.Equal(t, Linear, specs[1].Kind)

	ds := dataset.SyntheticLidar(rand.New(rand.NewPCG(1, 1)))
	fitted, err := specs[0].Fit(ds)
	require.NoError(t, err)
	est, ok := crossval.Estimator(fitted)
	require.True(t, ok)
	assert.Equal(t, 10, est.(*spline.PSpline).Segments)

	cfg.Models = []string{"missing"}
	_, err = FromConfig(cfg)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestCatalogueOnLidar(t *testing.T) {
	ds := dataset.SyntheticLidar(rand.New(rand.NewPCG(3, 3)))
	specs, err := Specs(Names(), dataset.LidarRange, dataset.LidarLogratio)
	require.NoError(t, err)

	res, err := crossval.Run(ds, 40, specs, rand.New(rand.NewPCG(8, 8)),
		crossval.WithLogger(log.NopLogger{}), crossval.WithJobs(-1))
	require.NoError(t, err)
	assert.Empty(t, res.Failures)

	linearMedian := res.Median(Linear)
	for _, kind := range []string{PiecewiseLinear, Smooth, Wiggly} {
		assert.Less(t, res.Median(kind), linearMedian, kind)
	}
}

func TestFlexibilityOrder(t *testing.T) {
	ds := dataset.SyntheticLidar(rand.New(rand.NewPCG(4, 4)))
	X, err := ds.Matrix(dataset.LidarRange)
	require.NoError(t, err)
	y, err := ds.Vector(dataset.LidarLogratio)
	require.NoError(t, err)

	edf := map[string]float64{}
	for _, name := range Names() {
		m, err := New(name)
		require.NoError(t, err)
		require.NoError(t, m.Fit(X, y))
		c, ok := m.(model.Complexity)
		require.True(t, ok, name)
		edf[name] = c.EffectiveDF()
	}
	assert.InDelta(t, 2, edf[Linear], 1e-9)
	assert.InDelta(t, 5, edf[PiecewiseLinear], 1e-9)
	assert.Greater(t, edf[Smooth], edf[Linear])
	assert.Greater(t, edf[Wiggly], edf[Smooth])
}
