// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import (
	"github.com/ajroetker/go-lie/lie"
	"golang.org/x/sync/errgroup"
)

// Exp maps B tangent rows (width K) to B element rows (width N).
func Exp[T lie.Floats](id lie.GroupID, a []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("exp", a, g.TangentDim())
	if err != nil {
		return nil, err
	}
	out := make([]T, b*g.EmbeddedDim())
	if err := launch("exp", b, expKernel(g, a, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpBackward returns the tangent gradient da = grad * J_l(a), with grad
// shaped like the tangent input (width K).
func ExpBackward[T lie.Floats](id lie.GroupID, a, grad []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("exp_backward", a, g.TangentDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("exp_backward", grad, g.TangentDim(), b); err != nil {
		return nil, err
	}
	da := make([]T, b*g.TangentDim())
	if err := launch("exp_backward", b, expBackwardKernel(g, a, grad, da)); err != nil {
		return nil, err
	}
	return da, nil
}

// Log maps B element rows to B tangent rows.
func Log[T lie.Floats](id lie.GroupID, x []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("log", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	out := make([]T, b*g.TangentDim())
	if err := launch("log", b, logKernel(g, x, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// LogBackward returns the element gradient dX = grad * J_l(Log(X))^-1 in
// the element's local coordinates (width K).
func LogBackward[T lie.Floats](id lie.GroupID, x, grad []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("log_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("log_backward", grad, g.TangentDim(), b); err != nil {
		return nil, err
	}
	dx := make([]T, b*g.TangentDim())
	if err := launch("log_backward", b, logBackwardKernel(g, x, grad, dx)); err != nil {
		return nil, err
	}
	return dx, nil
}

// Inv inverts B elements.
func Inv[T lie.Floats](id lie.GroupID, x []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("inv", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	out := make([]T, b*g.EmbeddedDim())
	if err := launch("inv", b, invKernel(g, x, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// InvBackward returns dX = -grad * Adj(X^-1).
func InvBackward[T lie.Floats](id lie.GroupID, x, grad []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("inv_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("inv_backward", grad, g.TangentDim(), b); err != nil {
		return nil, err
	}
	dx := make([]T, b*g.TangentDim())
	if err := launch("inv_backward", b, invBackwardKernel(g, x, grad, dx)); err != nil {
		return nil, err
	}
	return dx, nil
}

// Mul composes B element pairs rowwise: out_i = x_i * y_i.
func Mul[T lie.Floats](id lie.GroupID, x, y []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("mul", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("mul", y, g.EmbeddedDim(), b); err != nil {
		return nil, err
	}
	out := make([]T, b*g.EmbeddedDim())
	if err := launch("mul", b, mulKernel(g, x, y, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// MulBackward returns (dX, dY) for Z = X * Y: dX is the identity
// pass-through of grad, dY = grad * Adj(X). Only X is needed; Y does not
// enter either rule.
func MulBackward[T lie.Floats](id lie.GroupID, x, grad []T) (dX, dY []T, err error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, nil, err
	}
	b, err := rowCount("mul_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, nil, err
	}
	if err := wantRows("mul_backward", grad, g.TangentDim(), b); err != nil {
		return nil, nil, err
	}
	dX = make([]T, b*g.TangentDim())
	dY = make([]T, b*g.TangentDim())
	copy(dX, grad)
	if err := launch("mul_backward", b, mulBackwardYKernel(g, x, grad, dY)); err != nil {
		return nil, nil, err
	}
	return dX, dY, nil
}

// Adj applies the adjoint of each element to the paired tangent row:
// out_i = Adj(x_i) a_i.
func Adj[T lie.Floats](id lie.GroupID, x, a []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("adj", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("adj", a, g.TangentDim(), b); err != nil {
		return nil, err
	}
	out := make([]T, b*g.TangentDim())
	if err := launch("adj", b, adjKernel(g, x, a, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// AdjBackward returns (dX, da) for b = Adj(X) a:
// da = grad * Adj(X), dX = -grad * ad(Adj(X) a). The two gradients share
// no scratch and run as concurrent launches.
func AdjBackward[T lie.Floats](id lie.GroupID, x, a, grad []T) (dX, da []T, err error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, nil, err
	}
	b, err := rowCount("adj_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, nil, err
	}
	if err := wantRows("adj_backward", a, g.TangentDim(), b); err != nil {
		return nil, nil, err
	}
	if err := wantRows("adj_backward", grad, g.TangentDim(), b); err != nil {
		return nil, nil, err
	}
	dX = make([]T, b*g.TangentDim())
	da = make([]T, b*g.TangentDim())
	var eg errgroup.Group
	eg.Go(func() error { return launch("adj_backward", b, adjBackwardAKernel(g, x, grad, da)) })
	eg.Go(func() error { return launch("adj_backward", b, adjBackwardXKernel(g, x, a, grad, dX)) })
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return dX, da, nil
}

// AdjT applies the transposed adjoint rowwise: out_i = Adj(x_i)^T a_i.
func AdjT[T lie.Floats](id lie.GroupID, x, a []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("adjT", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("adjT", a, g.TangentDim(), b); err != nil {
		return nil, err
	}
	out := make([]T, b*g.TangentDim())
	if err := launch("adjT", b, adjTKernel(g, x, a, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// AdjTBackward returns (dX, da) for b = Adj(X)^T a:
// da = Adj(X) grad, dX = -a * ad(Adj(X) grad).
func AdjTBackward[T lie.Floats](id lie.GroupID, x, a, grad []T) (dX, da []T, err error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, nil, err
	}
	b, err := rowCount("adjT_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, nil, err
	}
	if err := wantRows("adjT_backward", a, g.TangentDim(), b); err != nil {
		return nil, nil, err
	}
	if err := wantRows("adjT_backward", grad, g.TangentDim(), b); err != nil {
		return nil, nil, err
	}
	dX = make([]T, b*g.TangentDim())
	da = make([]T, b*g.TangentDim())
	var eg errgroup.Group
	eg.Go(func() error { return launch("adjT_backward", b, adjTBackwardAKernel(g, x, grad, da)) })
	eg.Go(func() error { return launch("adjT_backward", b, adjTBackwardXKernel(g, x, a, grad, dX)) })
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return dX, da, nil
}

// Act applies each element to the paired 3D point row.
func Act[T lie.Floats](id lie.GroupID, x, p []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("act", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("act", p, 3, b); err != nil {
		return nil, err
	}
	out := make([]T, b*3)
	if err := launch("act", b, actKernel(g, x, p, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// ActBackward returns (dX, dp) for q = X p:
// dp = grad * R(X) (the 3x3 block of the matrix form, scale included),
// dX = grad * actJacobian(X p).
func ActBackward[T lie.Floats](id lie.GroupID, x, p, grad []T) (dX, dp []T, err error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, nil, err
	}
	b, err := rowCount("act_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, nil, err
	}
	if err := wantRows("act_backward", p, 3, b); err != nil {
		return nil, nil, err
	}
	if err := wantRows("act_backward", grad, 3, b); err != nil {
		return nil, nil, err
	}
	dX = make([]T, b*g.TangentDim())
	dp = make([]T, b*3)
	if err := launch("act_backward", b, actBackwardKernel(g, x, p, grad, dX, dp)); err != nil {
		return nil, nil, err
	}
	return dX, dp, nil
}

// Act4 applies each element to the paired homogeneous point row.
func Act4[T lie.Floats](id lie.GroupID, x, p []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("act4", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("act4", p, 4, b); err != nil {
		return nil, err
	}
	out := make([]T, b*4)
	if err := launch("act4", b, act4Kernel(g, x, p, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Act4Backward returns (dX, dp) for q = X p in homogeneous coordinates,
// using the full 4x4 matrix and the 4 x K action Jacobian.
func Act4Backward[T lie.Floats](id lie.GroupID, x, p, grad []T) (dX, dp []T, err error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, nil, err
	}
	b, err := rowCount("act4_backward", x, g.EmbeddedDim())
	if err != nil {
		return nil, nil, err
	}
	if err := wantRows("act4_backward", p, 4, b); err != nil {
		return nil, nil, err
	}
	if err := wantRows("act4_backward", grad, 4, b); err != nil {
		return nil, nil, err
	}
	dX = make([]T, b*g.TangentDim())
	dp = make([]T, b*4)
	if err := launch("act4_backward", b, act4BackwardKernel(g, x, p, grad, dX, dp)); err != nil {
		return nil, nil, err
	}
	return dX, dp, nil
}

// Matrix converts B elements to their dense 4x4 row-major forms (width 16).
func Matrix[T lie.Floats](id lie.GroupID, x []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("matrix", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	out := make([]T, b*16)
	if err := launch("matrix", b, matrixKernel(g, x, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Projector writes each element's N x N orthogonal projector (width N*N).
func Projector[T lie.Floats](id lie.GroupID, x []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("projector", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	n := g.EmbeddedDim()
	out := make([]T, b*n*n)
	if err := launch("projector", b, projectorKernel(g, x, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Jl applies the left Jacobian at each element's logarithm to the paired
// tangent row: out_i = J_l(Log(x_i)) a_i.
func Jl[T lie.Floats](id lie.GroupID, x, a []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("jl", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("jl", a, g.TangentDim(), b); err != nil {
		return nil, err
	}
	out := make([]T, b*g.TangentDim())
	if err := launch("jl", b, jlKernel(g, x, a, out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Jinv applies the inverse left Jacobian at each element's logarithm to
// the paired tangent row: out_i = J_l(Log(x_i))^-1 a_i.
func Jinv[T lie.Floats](id lie.GroupID, x, a []T) ([]T, error) {
	g, err := lie.New[T](id)
	if err != nil {
		return nil, err
	}
	b, err := rowCount("jinv", x, g.EmbeddedDim())
	if err != nil {
		return nil, err
	}
	if err := wantRows("jinv", a, g.TangentDim(), b); err != nil {
		return nil, err
	}
	out := make([]T, b*g.TangentDim())
	if err := launch("jinv", b, jinvKernel(g, x, a, out)); err != nil {
		return nil, err
	}
	return out, nil
}
