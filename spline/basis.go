// Package spline implements the flexible model kinds compared by the
// cross-validator: a continuous piecewise-linear fit and a penalized
// B-spline smoother (P-spline).
//
// Both fit a single explanatory variable. The variable is first mapped onto
// [0, 1] with the training sample's minimum and maximum, so knot placement
// and penalty strength do not depend on the variable's units.
package spline

import (
	"github.com/YuminosukeSato/flexcv/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Basis is a B-spline basis of the given degree on equally spaced knots over
// [0, 1]. It has Segments+Degree functions, which are non-negative and sum to
// one at every point of [0, 1].
type Basis struct {
	Segments int
	Degree   int

	knots []float64
}

// NewBasis returns the basis for segments intervals of width 1/segments.
func NewBasis(segments, degree int) (*Basis, error) {
	if segments < 1 {
		return nil, errors.NewInvalidArgumentError("spline.NewBasis", "segments", "must be at least 1", segments)
	}
	if degree < 0 {
		return nil, errors.NewInvalidArgumentError("spline.NewBasis", "degree", "must be non-negative", degree)
	}
	h := 1 / float64(segments)
	knots := make([]float64, segments+2*degree+1)
	for j := range knots {
		knots[j] = float64(j-degree) * h
	}
	return &Basis{Segments: segments, Degree: degree, knots: knots}, nil
}

// Size is the number of basis functions.
func (b *Basis) Size() int {
	return b.Segments + b.Degree
}

// span returns k with knots[k] <= u < knots[k+1], restricted to the
// intervals inside [0, 1].
func (b *Basis) span(u float64) int {
	k := b.Degree + int(u*float64(b.Segments))
	if k < b.Degree {
		k = b.Degree
	}
	if last := b.Degree + b.Segments - 1; k > last {
		k = last
	}
	return k
}

// Eval writes the value of every basis function at u into out, which must
// have length Size(). u is expected in [0, 1]; values outside are evaluated
// on the nearest boundary polynomial piece.
func (b *Basis) Eval(u float64, out []float64) {
	for i := range out {
		out[i] = 0
	}
	k := b.span(u)
	d := b.Degree

	// de Boor's triangular scheme for the d+1 non-zero functions
	n := make([]float64, d+1)
	left := make([]float64, d+1)
	right := make([]float64, d+1)
	n[0] = 1
	for j := 1; j <= d; j++ {
		left[j] = u - b.knots[k+1-j]
		right[j] = b.knots[k+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			tmp := n[r] / (right[r+1] + left[j-r])
			n[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		n[j] = saved
	}
	copy(out[k-d:], n)
}

// Design returns the (len(u), Size()) matrix of basis values.
func (b *Basis) Design(u []float64) *mat.Dense {
	m := mat.NewDense(len(u), b.Size(), nil)
	row := make([]float64, b.Size())
	for i, v := range u {
		b.Eval(v, row)
		m.SetRow(i, row)
	}
	return m
}
