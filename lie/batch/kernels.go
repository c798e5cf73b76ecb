// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import "github.com/ajroetker/go-lie/lie"

// Forward kernels. Each returns the body run by every worker lane: a
// strided walk over the lane's rows that reads the row's input slices,
// applies the group's closed-form math and writes the row's output slice.
// No lane reads or writes another lane's rows.

func expKernel[T lie.Floats](g lie.Group[T], a, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Exp(out[i*n:i*n+n], a[i*k:i*k+k])
		}
	}
}

func logKernel[T lie.Floats](g lie.Group[T], x, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Log(out[i*k:i*k+k], x[i*n:i*n+n])
		}
	}
}

func invKernel[T lie.Floats](g lie.Group[T], x, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Inv(out[i*n:i*n+n], x[i*n:i*n+n])
		}
	}
}

func mulKernel[T lie.Floats](g lie.Group[T], x, y, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Mul(out[i*n:i*n+n], x[i*n:i*n+n], y[i*n:i*n+n])
		}
	}
}

func adjKernel[T lie.Floats](g lie.Group[T], x, a, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Adj(out[i*k:i*k+k], x[i*n:i*n+n], a[i*k:i*k+k])
		}
	}
}

func adjTKernel[T lie.Floats](g lie.Group[T], x, a, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.AdjT(out[i*k:i*k+k], x[i*n:i*n+n], a[i*k:i*k+k])
		}
	}
}

func actKernel[T lie.Floats](g lie.Group[T], x, p, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Act(out[i*3:i*3+3], x[i*n:i*n+n], p[i*3:i*3+3])
		}
	}
}

func act4Kernel[T lie.Floats](g lie.Group[T], x, p, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Act4(out[i*4:i*4+4], x[i*n:i*n+n], p[i*4:i*4+4])
		}
	}
}

func matrixKernel[T lie.Floats](g lie.Group[T], x, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Matrix(out[i*16:i*16+16], x[i*n:i*n+n])
		}
	}
}

func projectorKernel[T lie.Floats](g lie.Group[T], x, out []T) func(start, end int) {
	n := g.EmbeddedDim()
	nn := n * n
	return func(start, end int) {
		for i := start; i < end; i++ {
			g.Projector(out[i*nn:i*nn+nn], x[i*n:i*n+n])
		}
	}
}

// jlKernel applies the left Jacobian at Log(x) to tangent a:
// out = J_l(Log(x)) a.
func jlKernel[T lie.Floats](g lie.Group[T], x, a, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		tan := make([]T, k)
		jac := make([]T, k*k)
		for i := start; i < end; i++ {
			g.Log(tan, x[i*n:i*n+n])
			g.LeftJacobian(jac, tan)
			matTimesCol(out[i*k:i*k+k], jac, a[i*k:i*k+k], k, k)
		}
	}
}

// jinvKernel applies the inverse left Jacobian at Log(x) to tangent a:
// out = J_l(Log(x))^-1 a.
func jinvKernel[T lie.Floats](g lie.Group[T], x, a, out []T) func(start, end int) {
	n, k := g.EmbeddedDim(), g.TangentDim()
	return func(start, end int) {
		tan := make([]T, k)
		jac := make([]T, k*k)
		for i := start; i < end; i++ {
			g.Log(tan, x[i*n:i*n+n])
			g.LeftJacobianInverse(jac, tan)
			matTimesCol(out[i*k:i*k+k], jac, a[i*k:i*k+k], k, k)
		}
	}
}

// rowTimesMat writes dst = row * m for a 1 x rows row vector and a
// rows x cols row-major matrix. This is the chain-rule primitive for all
// backward kernels: upstream gradients are row vectors.
func rowTimesMat[T lie.Floats](dst, row, m []T, rows, cols int) {
	for j := 0; j < cols; j++ {
		var s T
		for i := 0; i < rows; i++ {
			s += row[i] * m[i*cols+j]
		}
		dst[j] = s
	}
}

// matTimesCol writes dst = m * col for a rows x cols row-major matrix and
// a column vector.
func matTimesCol[T lie.Floats](dst, m, col []T, rows, cols int) {
	for i := 0; i < rows; i++ {
		var s T
		for j := 0; j < cols; j++ {
			s += m[i*cols+j] * col[j]
		}
		dst[i] = s
	}
}
