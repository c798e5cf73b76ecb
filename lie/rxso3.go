// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

// rxso3 is the group of scaled rotations, the direct product SO3 x R+.
// Elements are (qx, qy, qz, qw, s); tangents are (phi, sigma) with
// sigma = log s. Because the factors commute, Exp, Log and the left
// Jacobians split blockwise over rotation and scale.
type rxso3[T Floats] struct{}

func (rxso3[T]) ID() GroupID      { return RxSO3 }
func (rxso3[T]) EmbeddedDim() int { return 5 }
func (rxso3[T]) TangentDim() int  { return 4 }

func (rxso3[T]) Identity(out []T) {
	out[0], out[1], out[2], out[3], out[4] = 0, 0, 0, 1, 1
}

func (rxso3[T]) Exp(out, a []T) {
	storeQ(out, so3Exp(loadV3(a)))
	out[4] = exp(a[3])
}

func (rxso3[T]) Log(out, x []T) {
	storeV3(out, so3Log(loadQ(x)))
	out[3] = logT(x[4])
}

func (rxso3[T]) Inv(out, x []T) {
	storeQ(out, qconj(loadQ(x)))
	out[4] = 1 / x[4]
}

func (rxso3[T]) Mul(out, x, y []T) {
	storeQ(out, qmul(loadQ(x), loadQ(y)))
	out[4] = x[4] * y[4]
}

func (rxso3[T]) Adj(out, x, a []T) {
	storeV3(out, qrotate(loadQ(x), loadV3(a)))
	out[3] = a[3]
}

func (rxso3[T]) AdjT(out, x, a []T) {
	storeV3(out, qrotate(qconj(loadQ(x)), loadV3(a)))
	out[3] = a[3]
}

func (rxso3[T]) Ad(out, a []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, hat(loadV3(a)))
}

func (rxso3[T]) LeftJacobian(out, a []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, so3LeftJac(loadV3(a)))
	out[15] = 1
}

func (rxso3[T]) LeftJacobianInverse(out, a []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, so3LeftJacInv(loadV3(a)))
	out[15] = 1
}

func (rxso3[T]) Act(out, x, p []T) {
	storeV3(out, scale3(x[4], qrotate(loadQ(x), loadV3(p))))
}

func (rxso3[T]) Act4(out, x, p []T) {
	storeV3(out, scale3(x[4], qrotate(loadQ(x), loadV3(p))))
	out[3] = p[3]
}

// ActJacobian is [-hat(q) | q]: rotation columns plus the scale column,
// both evaluated at the transformed point q.
func (rxso3[T]) ActJacobian(out, q []T) {
	storeBlock3(out, 4, 0, 0, hat(vec3[T]{-q[0], -q[1], -q[2]}))
	out[3], out[7], out[11] = q[0], q[1], q[2]
}

func (rxso3[T]) Act4Jacobian(out, q []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, hat(vec3[T]{-q[0], -q[1], -q[2]}))
	out[3], out[7], out[11] = q[0], q[1], q[2]
}

func (rxso3[T]) Matrix(out, x []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, scaleM3(x[4], rotmat(loadQ(x))))
	out[15] = 1
}

func (rxso3[T]) Projector(out, x []T) {
	zero(out[:25])
	storeQuatBlock(out, 5, 0, 0, loadQ(x))
	out[4*5+3] = x[4] // ds/dsigma = s
}
