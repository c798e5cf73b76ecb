// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

// so3 is the rotation group. Elements are unit quaternions (x, y, z, w);
// tangents are rotation vectors phi with |phi| the rotation angle.
type so3[T Floats] struct{}

func (so3[T]) ID() GroupID      { return SO3 }
func (so3[T]) EmbeddedDim() int { return 4 }
func (so3[T]) TangentDim() int  { return 3 }

func (so3[T]) Identity(out []T) {
	out[0], out[1], out[2], out[3] = 0, 0, 0, 1
}

// so3Exp maps a rotation vector to a unit quaternion. Below the threshold
// the half-angle factors use their series through theta^4 so the map stays
// exact at phi = 0.
func so3Exp[T Floats](phi vec3[T]) quat[T] {
	thetaSq := dot3(phi, phi)
	var imag, real T
	if thetaSq < epsSq[T]() {
		theta4 := thetaSq * thetaSq
		imag = T(0.5) - thetaSq/48 + theta4/3840
		real = 1 - thetaSq/8 + theta4/384
	} else {
		theta := sqrt(thetaSq)
		imag = sin(theta/2) / theta
		real = cos(theta / 2)
	}
	return quat[T]{X: imag * phi[0], Y: imag * phi[1], Z: imag * phi[2], W: real}
}

// so3Log maps a unit quaternion to a rotation vector. atan2 stays exact
// through w = 0 (rotations by pi), so only the small-norm series needs a
// branch.
func so3Log[T Floats](q quat[T]) vec3[T] {
	qv := vec3[T]{q.X, q.Y, q.Z}
	squaredN := dot3(qv, qv)
	w := q.W
	var k T
	if squaredN < epsSq[T]() {
		k = 2/w - 2*squaredN/(3*w*w*w)
	} else {
		n := sqrt(squaredN)
		k = 2 * atan2(n, w) / n
	}
	return scale3(k, qv)
}

// so3LeftJac returns J_l(phi) = I + a*Phi + b*Phi^2 with
// a = (1-cos)/theta^2 and b = (theta-sin)/theta^3.
func so3LeftJac[T Floats](phi vec3[T]) mat3[T] {
	thetaSq := dot3(phi, phi)
	Phi := hat(phi)
	Phi2 := mulM3(Phi, Phi)
	var a, b T
	if thetaSq < epsSq[T]() {
		a = T(0.5) - thetaSq/24
		b = T(1.0/6.0) - thetaSq/120
	} else {
		theta := sqrt(thetaSq)
		a = (1 - cos(theta)) / thetaSq
		b = (theta - sin(theta)) / (thetaSq * theta)
	}
	return addM3(ident3[T](), addM3(scaleM3(a, Phi), scaleM3(b, Phi2)))
}

// so3LeftJacInv returns J_l(phi)^-1 = I - Phi/2 + c*Phi^2 with
// c = 1/theta^2 - (1+cos)/(2 theta sin).
func so3LeftJacInv[T Floats](phi vec3[T]) mat3[T] {
	thetaSq := dot3(phi, phi)
	Phi := hat(phi)
	Phi2 := mulM3(Phi, Phi)
	var c T
	if thetaSq < epsSq[T]() {
		c = T(1.0/12.0) + thetaSq/720
	} else {
		theta := sqrt(thetaSq)
		c = 1/thetaSq - (1+cos(theta))/(2*theta*sin(theta))
	}
	return addM3(ident3[T](), addM3(scaleM3(T(-0.5), Phi), scaleM3(c, Phi2)))
}

func (so3[T]) Exp(out, a []T) {
	storeQ(out, so3Exp(loadV3(a)))
}

func (so3[T]) Log(out, x []T) {
	storeV3(out, so3Log(loadQ(x)))
}

func (so3[T]) Inv(out, x []T) {
	storeQ(out, qconj(loadQ(x)))
}

func (so3[T]) Mul(out, x, y []T) {
	storeQ(out, qmul(loadQ(x), loadQ(y)))
}

func (so3[T]) Adj(out, x, a []T) {
	storeV3(out, qrotate(loadQ(x), loadV3(a)))
}

func (so3[T]) AdjT(out, x, a []T) {
	storeV3(out, qrotate(qconj(loadQ(x)), loadV3(a)))
}

func (so3[T]) Ad(out, a []T) {
	m := hat(loadV3(a))
	copy(out, m[:])
}

func (so3[T]) LeftJacobian(out, a []T) {
	m := so3LeftJac(loadV3(a))
	copy(out, m[:])
}

func (so3[T]) LeftJacobianInverse(out, a []T) {
	m := so3LeftJacInv(loadV3(a))
	copy(out, m[:])
}

func (so3[T]) Act(out, x, p []T) {
	storeV3(out, qrotate(loadQ(x), loadV3(p)))
}

func (so3[T]) Act4(out, x, p []T) {
	storeV3(out, qrotate(loadQ(x), loadV3(p)))
	out[3] = p[3]
}

// ActJacobian is -hat(q): the derivative of Exp(eps) . q at eps = 0.
func (so3[T]) ActJacobian(out, q []T) {
	m := hat(vec3[T]{-q[0], -q[1], -q[2]})
	copy(out, m[:])
}

func (so3[T]) Act4Jacobian(out, q []T) {
	zero(out[:12])
	m := hat(vec3[T]{-q[0], -q[1], -q[2]})
	storeBlock3(out, 3, 0, 0, m)
}

func (so3[T]) Matrix(out, x []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, rotmat(loadQ(x)))
	out[15] = 1
}

func (so3[T]) Projector(out, x []T) {
	zero(out[:16])
	storeQuatBlock(out, 4, 0, 0, loadQ(x))
}

// storeQuatBlock writes the 4x3 derivative of the quaternion coordinates
// with respect to a left tangent perturbation,
//
//	d/d(eps) [Exp(eps) q]  =  0.5 * [ w I - hat(qv) ; -qv^T ],
//
// into a row-major matrix of the given stride at (row, col). This block is
// the quaternion part of every group's orthogonal projector.
func storeQuatBlock[T Floats](dst []T, stride, row, col int, q quat[T]) {
	qv := vec3[T]{q.X, q.Y, q.Z}
	m := scaleM3(T(0.5), addM3(scaleM3(q.W, ident3[T]()), hat(vec3[T]{-qv[0], -qv[1], -qv[2]})))
	storeBlock3(dst, stride, row, col, m)
	for j := 0; j < 3; j++ {
		dst[(row+3)*stride+col+j] = T(-0.5) * qv[j]
	}
}
