// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

// Package transform estimates similarity transformations between
// corresponding point sets and packages the result as raw element rows
// for the batched engine in lie/batch.
//
// The estimator is the Umeyama least-squares solution: given n paired
// points {x_i} and {y_i}, it finds scale c, rotation R and translation t
// minimizing the mean squared error of y_i ~ c R x_i + t.
//
// Reference: "Least-Squares Estimation of Transformation Parameters
// Between Two Point Patterns", Umeyama, IEEE PAMI 1991.
package transform

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShape is returned when the two point sets do not share the same
	// nonzero dimensions or hold fewer points than dimensions.
	ErrShape = errors.New("transform: point sets must be n x m with matching dims and n >= m")

	// ErrDegenerate is returned when the source points carry too little
	// variance to determine a transformation.
	ErrDegenerate = errors.New("transform: source point variance too small")
)

// minVariance is the default variance guard used by Fit.
const minVariance = 1e-12

// Umeyama holds the sufficient statistics of a point-set pair. It allows
// inspecting the source variance before committing to a transformation,
// which is how degenerate inputs (coincident points) are caught.
type Umeyama struct {
	n, m     int
	muX, muY []float64
	sigma    *mat.Dense // cross-covariance (1/n) sum (y-muY)(x-muX)^T
	varX     float64
}

// NewUmeyama computes the statistics for the n x m point matrices x and y
// (one point per row, m is the spatial dimension, typically 3).
func NewUmeyama(x, y mat.Matrix) (*Umeyama, error) {
	n, m := x.Dims()
	yn, ym := y.Dims()
	if n == 0 || m == 0 || n != yn || m != ym || n < m {
		return nil, ErrShape
	}

	u := &Umeyama{
		n:   n,
		m:   m,
		muX: make([]float64, m),
		muY: make([]float64, m),
	}
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j, x)
		u.muX[j] = stat.Mean(col, nil)
		mat.Col(col, j, y)
		u.muY[j] = stat.Mean(col, nil)
	}

	u.sigma = mat.NewDense(m, m, nil)
	for i := 0; i < n; i++ {
		for r := 0; r < m; r++ {
			dy := y.At(i, r) - u.muY[r]
			for c := 0; c < m; c++ {
				dx := x.At(i, c) - u.muX[c]
				u.sigma.Set(r, c, u.sigma.At(r, c)+dy*dx/float64(n))
			}
		}
		for c := 0; c < m; c++ {
			dx := x.At(i, c) - u.muX[c]
			u.varX += dx * dx / float64(n)
		}
	}
	return u, nil
}

// Var returns the mean squared deviation of the source points from their
// centroid. Callers wanting a custom degeneracy threshold check this
// before Transform.
func (u *Umeyama) Var() float64 { return u.varX }

// Transform solves for the similarity parameters. r is m x m with
// det(r) = +1; t has length m.
func (u *Umeyama) Transform() (c float64, r *mat.Dense, t []float64, err error) {
	var svd mat.SVD
	if !svd.Factorize(u.sigma, mat.SVDFull) {
		return 0, nil, nil, ErrDegenerate
	}
	var uu, vv mat.Dense
	svd.UTo(&uu)
	svd.VTo(&vv)
	vals := svd.Values(nil)

	// Reflection guard: force a proper rotation by flipping the weakest
	// singular direction when det(U)det(V) < 0.
	sign := 1.0
	if mat.Det(&uu)*mat.Det(&vv) < 0 {
		sign = -1
		for i := 0; i < u.m; i++ {
			uu.Set(i, u.m-1, -uu.At(i, u.m-1))
		}
	}

	r = mat.NewDense(u.m, u.m, nil)
	r.Mul(&uu, vv.T())

	trDS := 0.0
	for i, d := range vals {
		if i == u.m-1 {
			trDS += d * sign
		} else {
			trDS += d
		}
	}
	if u.varX == 0 {
		return 0, nil, nil, ErrDegenerate
	}
	c = trDS / u.varX

	t = make([]float64, u.m)
	for i := 0; i < u.m; i++ {
		s := 0.0
		for j := 0; j < u.m; j++ {
			s += r.At(i, j) * u.muX[j]
		}
		t[i] = u.muY[i] - c*s
	}
	return c, r, t, nil
}

// Fit is the one-call interface with the default variance guard.
func Fit(x, y mat.Matrix) (c float64, r *mat.Dense, t []float64, err error) {
	u, err := NewUmeyama(x, y)
	if err != nil {
		return 0, nil, nil, err
	}
	if u.Var() < minVariance {
		return 0, nil, nil, ErrDegenerate
	}
	return u.Transform()
}

// Sim3Element packages (c, r, t) as a similarity-transform element row
// (tx ty tz qx qy qz qw s) for lie/batch with group lie.Sim3.
func Sim3Element(c float64, r mat.Matrix, t []float64) []float64 {
	q := quatFromRotation(r)
	return []float64{t[0], t[1], t[2], q[0], q[1], q[2], q[3], c}
}

// SE3Element packages (r, t) as a rigid-transform element row
// (tx ty tz qx qy qz qw) for lie/batch with group lie.SE3.
func SE3Element(r mat.Matrix, t []float64) []float64 {
	q := quatFromRotation(r)
	return []float64{t[0], t[1], t[2], q[0], q[1], q[2], q[3]}
}

// quatFromRotation converts a proper 3x3 rotation matrix to a unit
// quaternion (x, y, z, w), branching on the largest diagonal term for
// stability.
func quatFromRotation(r mat.Matrix) [4]float64 {
	m00, m01, m02 := r.At(0, 0), r.At(0, 1), r.At(0, 2)
	m10, m11, m12 := r.At(1, 0), r.At(1, 1), r.At(1, 2)
	m20, m21, m22 := r.At(2, 0), r.At(2, 1), r.At(2, 2)

	tr := m00 + m11 + m22
	var q [4]float64
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q[3] = s / 4
		q[0] = (m21 - m12) / s
		q[1] = (m02 - m20) / s
		q[2] = (m10 - m01) / s
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q[3] = (m21 - m12) / s
		q[0] = s / 4
		q[1] = (m01 + m10) / s
		q[2] = (m02 + m20) / s
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q[3] = (m02 - m20) / s
		q[0] = (m01 + m10) / s
		q[1] = s / 4
		q[2] = (m12 + m21) / s
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q[3] = (m10 - m01) / s
		q[0] = (m02 + m20) / s
		q[1] = (m12 + m21) / s
		q[2] = s / 4
	}
	return q
}
