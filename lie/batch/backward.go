// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import "github.com/ajroetker/go-lie/lie"

// Backward kernels. Each implements the exact reverse-mode rule of its
// forward operation. grad is the upstream gradient shaped like the
// forward output; outputs are gradients with respect to each
// differentiable input, element gradients in local tangent coordinates
// (width K). Scratch buffers are allocated once per lane and reused
// across that lane's rows.

// expBackwardKernel: da = grad_X * J_l(a).
func expBackwardKernel[T lie.Floats](g lie.Group[T], a, grad, da []T) func(start, end int) {
	k := g.TangentDim()
	return func(start, end int) {
		jac := make([]T, k*k)
		for i := start; i < end; i++ {
			g.LeftJacobian(jac, a[i*k:i*k+k])
			rowTimesMat(da[i*k:i*k+k], grad[i*k:i*k+k], jac, k, k)
		}
	}
}

// logBackwardKernel: dX = grad_a * J_l(Log(X))^-1.
func logBackwardKernel[T lie.Floats](g lie.Group[T], x, grad, dx []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		tan := make([]T, k)
		jac := make([]T, k*k)
		for i := start; i < end; i++ {
			g.Log(tan, x[i*n:i*n+n])
			g.LeftJacobianInverse(jac, tan)
			rowTimesMat(dx[i*k:i*k+k], grad[i*k:i*k+k], jac, k, k)
		}
	}
}

// invBackwardKernel: dX = -grad_Y * Adj(X^-1), applied matrix-free as
// -Adj(X^-1)^T grad_Y.
func invBackwardKernel[T lie.Floats](g lie.Group[T], x, grad, dx []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		y := make([]T, n)
		for i := start; i < end; i++ {
			g.Inv(y, x[i*n:i*n+n])
			d := dx[i*k : i*k+k]
			g.AdjT(d, y, grad[i*k:i*k+k])
			for j := range d {
				d[j] = -d[j]
			}
		}
	}
}

// mulBackwardYKernel: dY = grad_Z * Adj(X), applied matrix-free as
// Adj(X)^T grad_Z. The X gradient is the identity pass-through and is
// handled by the entry point with a copy.
func mulBackwardYKernel[T lie.Floats](g lie.Group[T], x, grad, dy []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.AdjT(dy[i*k:i*k+k], x[i*n:i*n+n], grad[i*k:i*k+k])
		}
	}
}

// adjBackwardAKernel: da = grad_b * Adj(X) = Adj(X)^T grad_b.
func adjBackwardAKernel[T lie.Floats](g lie.Group[T], x, grad, da []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.AdjT(da[i*k:i*k+k], x[i*n:i*n+n], grad[i*k:i*k+k])
		}
	}
}

// adjBackwardXKernel: dX = -grad_b * ad(Adj(X) a).
func adjBackwardXKernel[T lie.Floats](g lie.Group[T], x, a, grad, dx []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		v := make([]T, k)
		ad := make([]T, k*k)
		for i := start; i < end; i++ {
			g.Adj(v, x[i*n:i*n+n], a[i*k:i*k+k])
			g.Ad(ad, v)
			d := dx[i*k : i*k+k]
			rowTimesMat(d, grad[i*k:i*k+k], ad, k, k)
			for j := range d {
				d[j] = -d[j]
			}
		}
	}
}

// adjTBackwardAKernel: da = Adj(X) grad_b.
func adjTBackwardAKernel[T lie.Floats](g lie.Group[T], x, grad, da []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Adj(da[i*k:i*k+k], x[i*n:i*n+n], grad[i*k:i*k+k])
		}
	}
}

// adjTBackwardXKernel: dX = -a * ad(Adj(X) grad_b), the adjoint rule with
// the roles of the input tangent and the upstream gradient swapped.
func adjTBackwardXKernel[T lie.Floats](g lie.Group[T], x, a, grad, dx []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		v := make([]T, k)
		ad := make([]T, k*k)
		for i := start; i < end; i++ {
			g.Adj(v, x[i*n:i*n+n], grad[i*k:i*k+k])
			g.Ad(ad, v)
			d := dx[i*k : i*k+k]
			rowTimesMat(d, a[i*k:i*k+k], ad, k, k)
			for j := range d {
				d[j] = -d[j]
			}
		}
	}
}

// actBackwardKernel fuses both gradients of the point action, sharing the
// transformed point and the matrix form per row:
//
//	dp = grad_q * M3(X)    (M3 is the top-left 3x3 of the 4x4 form)
//	dX = grad_q * actJacobian(X p)
func actBackwardKernel[T lie.Floats](g lie.Group[T], x, p, grad, dx, dp []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		q := make([]T, 3)
		m := make([]T, 16)
		jac := make([]T, 3*k)
		for i := start; i < end; i++ {
			xi := x[i*n : i*n+n]
			gi := grad[i*3 : i*3+3]
			g.Act(q, xi, p[i*3:i*3+3])
			g.Matrix(m, xi)
			for j := 0; j < 3; j++ {
				dp[i*3+j] = gi[0]*m[j] + gi[1]*m[4+j] + gi[2]*m[8+j]
			}
			g.ActJacobian(jac, q)
			rowTimesMat(dx[i*k:i*k+k], gi, jac, 3, k)
		}
	}
}

// act4BackwardKernel is the homogeneous counterpart, using the full 4x4
// matrix and the 4 x K action Jacobian.
func act4BackwardKernel[T lie.Floats](g lie.Group[T], x, p, grad, dx, dp []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		q := make([]T, 4)
		m := make([]T, 16)
		jac := make([]T, 4*k)
		for i := start; i < end; i++ {
			xi := x[i*n : i*n+n]
			gi := grad[i*4 : i*4+4]
			g.Act4(q, xi, p[i*4:i*4+4])
			g.Matrix(m, xi)
			rowTimesMat(dp[i*4:i*4+4], gi, m, 4, 4)
			g.Act4Jacobian(jac, q)
			rowTimesMat(dx[i*k:i*k+k], gi, jac, 4, k)
		}
	}
}
