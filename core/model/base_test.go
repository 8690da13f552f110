package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func TestBaseEstimator_Lifecycle(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())
	assert.Equal(t, "not-fitted", e.State().String())

	err := e.RequireFitted("PSpline", "Predict")
	require.Error(t, err)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "PSpline", nf.ModelName)

	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.NoError(t, e.RequireFitted("PSpline", "Predict"))

	e.Reset()
	assert.Equal(t, NotFitted, e.State())
}
