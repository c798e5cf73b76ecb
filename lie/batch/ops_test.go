// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ajroetker/go-lie/lie"
)

const fdStep = 1e-6

// gradRows is the batch size for the gradient checks: large enough to
// spread across every worker lane and to exercise the whole random
// tangent range.
const gradRows = 1000

var allGroups = []lie.GroupID{lie.SO3, lie.RxSO3, lie.SE3, lie.Sim3}

// gradTol is the acceptable gap between analytic and finite-difference
// gradients in float64. Sim3 carries a wider tolerance where its series
// left Jacobians enter.
func gradTol(id lie.GroupID, usesJacobian bool) float64 {
	if id == lie.Sim3 && usesJacobian {
		return 1e-5
	}
	return 1e-6
}

// tangentScale keeps Sim3 tangents small enough for its truncated series
// Jacobians to stay inside gradTol.
func tangentScale(id lie.GroupID, usesJacobian bool) float64 {
	if id == lie.Sim3 && usesJacobian {
		return 0.05
	}
	return 0.6
}

func randRows(rng *rand.Rand, b, width int, scale float64) []float64 {
	out := make([]float64, b*width)
	for i := range out {
		out[i] = scale * (2*rng.Float64() - 1)
	}
	return out
}

func randElements(g lie.Group[float64], rng *rand.Rand, b int, scale float64) []float64 {
	n, k := g.EmbeddedDim(), g.TangentDim()
	out := make([]float64, b*n)
	for r := 0; r < b; r++ {
		g.Exp(out[r*n:(r+1)*n], randRows(rng, 1, k, scale))
	}
	return out
}

func toF32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i := range v {
		out[i] = float32(v[i])
	}
	return out
}

// numGradVec central-differences a loss over one plain vector row.
func numGradVec(v []float64, loss func([]float64) float64) []float64 {
	grad := make([]float64, len(v))
	w := make([]float64, len(v))
	for j := range v {
		copy(w, v)
		w[j] = v[j] + fdStep
		lp := loss(w)
		w[j] = v[j] - fdStep
		lm := loss(w)
		grad[j] = (lp - lm) / (2 * fdStep)
	}
	return grad
}

// numGradElem central-differences a loss over one element row using left
// tangent perturbations Exp(h e_j) * x, matching the backward convention
// for element gradients.
func numGradElem(g lie.Group[float64], x []float64, loss func([]float64) float64) []float64 {
	n, k := g.EmbeddedDim(), g.TangentDim()
	grad := make([]float64, k)
	eps := make([]float64, k)
	d := make([]float64, n)
	xp := make([]float64, n)
	for j := 0; j < k; j++ {
		eps[j] = fdStep
		g.Exp(d, eps)
		g.Mul(xp, d, x)
		lp := loss(xp)
		eps[j] = -fdStep
		g.Exp(d, eps)
		g.Mul(xp, d, x)
		lm := loss(xp)
		eps[j] = 0
		grad[j] = (lp - lm) / (2 * fdStep)
	}
	return grad
}

// elemLoss builds L(Y) = <w, Log(Y * y0^-1)>, whose element gradient at
// y0 in local coordinates is exactly w.
func elemLoss(g lie.Group[float64], w, y0 []float64) func([]float64) float64 {
	n, k := g.EmbeddedDim(), g.TangentDim()
	inv0 := make([]float64, n)
	g.Inv(inv0, y0)
	return func(y []float64) float64 {
		d := make([]float64, n)
		tan := make([]float64, k)
		g.Mul(d, y, inv0)
		g.Log(tan, d)
		var s float64
		for i := range tan {
			s += w[i] * tan[i]
		}
		return s
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func checkClose(t *testing.T, name string, got, want []float64, tol float64) {
	t.Helper()
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > tol {
			t.Fatalf("%s[%d]: analytic %g, finite diff %g (delta %g)", name, i, got[i], want[i], d)
		}
	}
}

// checkF32 compares a float32 batch result against the float64 analytic
// reference.
func checkF32(t *testing.T, name string, got []float32, want []float64, tol float64) {
	t.Helper()
	for i := range got {
		if d := math.Abs(float64(got[i]) - want[i]); d > tol {
			t.Fatalf("%s[%d]: float32 %g, float64 %g (delta %g)", name, i, got[i], want[i], d)
		}
	}
}

func TestExpBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		k := g.TangentDim()
		a := randRows(rng, gradRows, k, tangentScale(id, true))
		grad := randRows(rng, gradRows, k, 1)
		da, err := ExpBackward(id, a, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			row := a[r*k : (r+1)*k]
			w := grad[r*k : (r+1)*k]
			y0 := make([]float64, g.EmbeddedDim())
			g.Exp(y0, row)
			loss := elemLoss(g, w, y0)
			num := numGradVec(row, func(v []float64) float64 {
				y := make([]float64, g.EmbeddedDim())
				g.Exp(y, v)
				return loss(y)
			})
			checkClose(t, id.String()+"/exp dA", da[r*k:(r+1)*k], num, gradTol(id, true))
		}
		da32, err := ExpBackward(id, toF32(a), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/exp dA", da32, da, 1e-3)
	}
}

func TestLogBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, tangentScale(id, true))
		grad := randRows(rng, gradRows, k, 1)
		dx, err := LogBackward(id, x, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			row := x[r*n : (r+1)*n]
			w := grad[r*k : (r+1)*k]
			num := numGradElem(g, row, func(y []float64) float64 {
				tan := make([]float64, k)
				g.Log(tan, y)
				return dot(w, tan)
			})
			checkClose(t, id.String()+"/log dX", dx[r*k:(r+1)*k], num, gradTol(id, true))
		}
		dx32, err := LogBackward(id, toF32(x), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/log dX", dx32, dx, 1e-3)
	}
}

func TestInvBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		grad := randRows(rng, gradRows, k, 1)
		dx, err := InvBackward(id, x, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			row := x[r*n : (r+1)*n]
			w := grad[r*k : (r+1)*k]
			y0 := make([]float64, n)
			g.Inv(y0, row)
			loss := elemLoss(g, w, y0)
			num := numGradElem(g, row, func(y []float64) float64 {
				inv := make([]float64, n)
				g.Inv(inv, y)
				return loss(inv)
			})
			checkClose(t, id.String()+"/inv dX", dx[r*k:(r+1)*k], num, gradTol(id, false))
		}
		dx32, err := InvBackward(id, toF32(x), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/inv dX", dx32, dx, 1e-3)
	}
}

func TestMulBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		y := randElements(g, rng, gradRows, 0.8)
		grad := randRows(rng, gradRows, k, 1)
		dX, dY, err := MulBackward(id, x, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			xr := x[r*n : (r+1)*n]
			yr := y[r*n : (r+1)*n]
			w := grad[r*k : (r+1)*k]
			z0 := make([]float64, n)
			g.Mul(z0, xr, yr)
			loss := elemLoss(g, w, z0)
			numX := numGradElem(g, xr, func(v []float64) float64 {
				z := make([]float64, n)
				g.Mul(z, v, yr)
				return loss(z)
			})
			numY := numGradElem(g, yr, func(v []float64) float64 {
				z := make([]float64, n)
				g.Mul(z, xr, v)
				return loss(z)
			})
			checkClose(t, id.String()+"/mul dX", dX[r*k:(r+1)*k], numX, gradTol(id, false))
			checkClose(t, id.String()+"/mul dY", dY[r*k:(r+1)*k], numY, gradTol(id, false))
		}
		dX32, dY32, err := MulBackward(id, toF32(x), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/mul dX", dX32, dX, 1e-3)
		checkF32(t, id.String()+"/mul dY", dY32, dY, 1e-3)
	}
}

func TestAdjBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(24))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		a := randRows(rng, gradRows, k, 1)
		grad := randRows(rng, gradRows, k, 1)
		dX, da, err := AdjBackward(id, x, a, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			xr := x[r*n : (r+1)*n]
			ar := a[r*k : (r+1)*k]
			w := grad[r*k : (r+1)*k]
			out := make([]float64, k)
			numA := numGradVec(ar, func(v []float64) float64 {
				g.Adj(out, xr, v)
				return dot(w, out)
			})
			numX := numGradElem(g, xr, func(y []float64) float64 {
				g.Adj(out, y, ar)
				return dot(w, out)
			})
			checkClose(t, id.String()+"/adj dA", da[r*k:(r+1)*k], numA, gradTol(id, false))
			checkClose(t, id.String()+"/adj dX", dX[r*k:(r+1)*k], numX, gradTol(id, false))
		}
		dX32, da32, err := AdjBackward(id, toF32(x), toF32(a), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/adj dA", da32, da, 1e-3)
		checkF32(t, id.String()+"/adj dX", dX32, dX, 1e-3)
	}
}

func TestAdjTBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(25))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		a := randRows(rng, gradRows, k, 1)
		grad := randRows(rng, gradRows, k, 1)
		dX, da, err := AdjTBackward(id, x, a, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			xr := x[r*n : (r+1)*n]
			ar := a[r*k : (r+1)*k]
			w := grad[r*k : (r+1)*k]
			out := make([]float64, k)
			numA := numGradVec(ar, func(v []float64) float64 {
				g.AdjT(out, xr, v)
				return dot(w, out)
			})
			numX := numGradElem(g, xr, func(y []float64) float64 {
				g.AdjT(out, y, ar)
				return dot(w, out)
			})
			checkClose(t, id.String()+"/adjT dA", da[r*k:(r+1)*k], numA, gradTol(id, false))
			checkClose(t, id.String()+"/adjT dX", dX[r*k:(r+1)*k], numX, gradTol(id, false))
		}
		dX32, da32, err := AdjTBackward(id, toF32(x), toF32(a), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/adjT dA", da32, da, 1e-3)
		checkF32(t, id.String()+"/adjT dX", dX32, dX, 1e-3)
	}
}

func TestActBackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(26))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		p := randRows(rng, gradRows, 3, 2)
		grad := randRows(rng, gradRows, 3, 1)
		dX, dp, err := ActBackward(id, x, p, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			xr := x[r*n : (r+1)*n]
			pr := p[r*3 : (r+1)*3]
			w := grad[r*3 : (r+1)*3]
			out := make([]float64, 3)
			numP := numGradVec(pr, func(v []float64) float64 {
				g.Act(out, xr, v)
				return dot(w, out)
			})
			numX := numGradElem(g, xr, func(y []float64) float64 {
				g.Act(out, y, pr)
				return dot(w, out)
			})
			checkClose(t, id.String()+"/act dP", dp[r*3:(r+1)*3], numP, gradTol(id, false))
			checkClose(t, id.String()+"/act dX", dX[r*k:(r+1)*k], numX, gradTol(id, false))
		}
		dX32, dp32, err := ActBackward(id, toF32(x), toF32(p), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/act dP", dp32, dp, 1e-3)
		checkF32(t, id.String()+"/act dX", dX32, dX, 1e-3)
	}
}

func TestAct4BackwardFiniteDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(27))
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n, k := g.EmbeddedDim(), g.TangentDim()
		x := randElements(g, rng, gradRows, 0.8)
		p := randRows(rng, gradRows, 4, 2)
		grad := randRows(rng, gradRows, 4, 1)
		dX, dp, err := Act4Backward(id, x, p, grad)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < gradRows; r++ {
			xr := x[r*n : (r+1)*n]
			pr := p[r*4 : (r+1)*4]
			w := grad[r*4 : (r+1)*4]
			out := make([]float64, 4)
			numP := numGradVec(pr, func(v []float64) float64 {
				g.Act4(out, xr, v)
				return dot(w, out)
			})
			numX := numGradElem(g, xr, func(y []float64) float64 {
				g.Act4(out, y, pr)
				return dot(w, out)
			})
			checkClose(t, id.String()+"/act4 dP", dp[r*4:(r+1)*4], numP, gradTol(id, false))
			checkClose(t, id.String()+"/act4 dX", dX[r*k:(r+1)*k], numX, gradTol(id, false))
		}
		dX32, dp32, err := Act4Backward(id, toF32(x), toF32(p), toF32(grad))
		if err != nil {
			t.Fatal(err)
		}
		checkF32(t, id.String()+"/act4 dP", dp32, dp, 1e-3)
		checkF32(t, id.String()+"/act4 dX", dX32, dX, 1e-3)
	}
}

func TestExpLogBatchRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(28))
	const b = 64
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		a := randRows(rng, b, g.TangentDim(), 1)
		x, err := Exp(id, a)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Log(id, x)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a {
			if d := math.Abs(a[i] - back[i]); d > 1e-10 {
				t.Fatalf("%s: Log(Exp(a))[%d] off by %g", id, i, d)
			}
		}
	}
}

func TestJlJinvBatchRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	const b = 16
	tol := map[lie.GroupID]float64{lie.SO3: 1e-12, lie.RxSO3: 1e-12, lie.SE3: 1e-12, lie.Sim3: 1e-5}
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		x := randElements(g, rng, b, tangentScale(id, true))
		a := randRows(rng, b, g.TangentDim(), 1)
		ja, err := Jl(id, x, a)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Jinv(id, x, ja)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a {
			if d := math.Abs(a[i] - back[i]); d > tol[id] {
				t.Fatalf("%s: Jinv(Jl(a))[%d] off by %g", id, i, d)
			}
		}
	}
}

// Rows must not influence each other: running a batch concatenated or
// split row by row gives identical bytes.
func TestBatchIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(30))
	const b = 33
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n := g.EmbeddedDim()
		x := randElements(g, rng, b, 1)
		y := randElements(g, rng, b, 1)
		whole, err := Mul(id, x, y)
		if err != nil {
			t.Fatal(err)
		}
		for r := 0; r < b; r++ {
			one, err := Mul(id, x[r*n:(r+1)*n], y[r*n:(r+1)*n])
			if err != nil {
				t.Fatal(err)
			}
			for i := range one {
				if whole[r*n+i] != one[i] {
					t.Fatalf("%s: row %d differs between batched and single runs", id, r)
				}
			}
		}
	}
}

func TestMatrixProjectorBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	const b = 8
	for _, id := range allGroups {
		g, _ := lie.New[float64](id)
		n := g.EmbeddedDim()
		x := randElements(g, rng, b, 1)
		ms, err := Matrix(id, x)
		if err != nil {
			t.Fatal(err)
		}
		if len(ms) != b*16 {
			t.Fatalf("%s: matrix batch length %d", id, len(ms))
		}
		ps, err := Projector(id, x)
		if err != nil {
			t.Fatal(err)
		}
		if len(ps) != b*n*n {
			t.Fatalf("%s: projector batch length %d", id, len(ps))
		}
		want := make([]float64, 16)
		wantP := make([]float64, n*n)
		for r := 0; r < b; r++ {
			g.Matrix(want, x[r*n:(r+1)*n])
			for i := range want {
				if ms[r*16+i] != want[i] {
					t.Fatalf("%s: matrix row %d entry %d differs", id, r, i)
				}
			}
			g.Projector(wantP, x[r*n:(r+1)*n])
			for i := range wantP {
				if ps[r*n*n+i] != wantP[i] {
					t.Fatalf("%s: projector row %d entry %d differs", id, r, i)
				}
			}
		}
	}
}

// Four random rotations act on the fixed point (1, 0, 0); the backward
// pass with a unit upstream gradient must match finite differences in
// double precision and the single-precision path must track the
// double-precision gradients.
func TestRotationActEndToEnd(t *testing.T) {
	rng := rand.New(rand.NewSource(32))
	const b = 4
	g, _ := lie.New[float64](lie.SO3)
	x := randElements(g, rng, b, 1.2)
	p := make([]float64, b*3)
	for r := 0; r < b; r++ {
		p[r*3] = 1
	}
	grad := make([]float64, b*3)
	for i := range grad {
		grad[i] = 1
	}

	q, err := Act(lie.SO3, x, p)
	if err != nil {
		t.Fatal(err)
	}
	dX, dp, err := ActBackward(lie.SO3, x, p, grad)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < b; r++ {
		xr := x[r*4 : (r+1)*4]
		pr := p[r*3 : (r+1)*3]
		out := make([]float64, 3)
		sum := func() float64 { return out[0] + out[1] + out[2] }
		numP := numGradVec(pr, func(v []float64) float64 {
			g.Act(out, xr, v)
			return sum()
		})
		numX := numGradElem(g, xr, func(y []float64) float64 {
			g.Act(out, y, pr)
			return sum()
		})
		checkClose(t, "so3 act dP", dp[r*3:(r+1)*3], numP, 1e-9)
		checkClose(t, "so3 act dX", dX[r*3:(r+1)*3], numX, 1e-9)
	}

	// Single precision against the double-precision analytic gradients.
	q32, err := Act(lie.SO3, toF32(x), toF32(p))
	if err != nil {
		t.Fatal(err)
	}
	dX32, dp32, err := ActBackward(lie.SO3, toF32(x), toF32(p), toF32(grad))
	if err != nil {
		t.Fatal(err)
	}
	checkF32(t, "so3 act forward", q32, q, 1e-4)
	checkF32(t, "so3 act dX", dX32, dX, 1e-4)
	checkF32(t, "so3 act dP", dp32, dp, 1e-4)
}
