// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

// se3 is the group of rigid transforms. Elements are
// (tx, ty, tz, qx, qy, qz, qw); tangents are (tau, phi) with the
// translational part first.
type se3[T Floats] struct{}

func (se3[T]) ID() GroupID      { return SE3 }
func (se3[T]) EmbeddedDim() int { return 7 }
func (se3[T]) TangentDim() int  { return 6 }

func (se3[T]) Identity(out []T) {
	zero(out[:7])
	out[6] = 1
}

func (se3[T]) Exp(out, a []T) {
	tau, phi := loadV3(a), loadV3(a[3:])
	storeV3(out, mulV3(so3LeftJac(phi), tau))
	storeQ(out[3:], so3Exp(phi))
}

func (se3[T]) Log(out, x []T) {
	phi := so3Log(loadQ(x[3:]))
	storeV3(out, mulV3(so3LeftJacInv(phi), loadV3(x)))
	storeV3(out[3:], phi)
}

func (se3[T]) Inv(out, x []T) {
	qi := qconj(loadQ(x[3:]))
	storeV3(out, scale3(-1, qrotate(qi, loadV3(x))))
	storeQ(out[3:], qi)
}

func (se3[T]) Mul(out, x, y []T) {
	t := add3(loadV3(x), qrotate(loadQ(x[3:]), loadV3(y)))
	q := qmul(loadQ(x[3:]), loadQ(y[3:]))
	storeV3(out, t)
	storeQ(out[3:], q)
}

// Adj applies [[R, hat(t) R], [0, R]] to (tau, phi).
func (se3[T]) Adj(out, x, a []T) {
	t, q := loadV3(x), loadQ(x[3:])
	rphi := qrotate(q, loadV3(a[3:]))
	storeV3(out, add3(qrotate(q, loadV3(a)), cross3(t, rphi)))
	storeV3(out[3:], rphi)
}

func (se3[T]) AdjT(out, x, a []T) {
	t, q := loadV3(x), loadQ(x[3:])
	qi := qconj(q)
	at, ap := loadV3(a), loadV3(a[3:])
	storeV3(out, qrotate(qi, at))
	storeV3(out[3:], qrotate(qi, add3(ap, scale3(-1, cross3(t, at)))))
}

func (se3[T]) Ad(out, a []T) {
	zero(out[:36])
	tau, phi := loadV3(a), loadV3(a[3:])
	Phi := hat(phi)
	storeBlock3(out, 6, 0, 0, Phi)
	storeBlock3(out, 6, 0, 3, hat(tau))
	storeBlock3(out, 6, 3, 3, Phi)
}

// se3Q is Barfoot's Q matrix, the off-diagonal block of the SE3 left
// Jacobian. Coefficients switch to their series below the threshold.
func se3Q[T Floats](tau, phi vec3[T]) mat3[T] {
	Tau, Phi := hat(tau), hat(phi)
	thetaSq := dot3(phi, phi)
	var c1, c2, c3 T
	if thetaSq < epsSq[T]() {
		c1 = T(1.0/6.0) - thetaSq/120
		c2 = T(1.0/24.0) - thetaSq/720
		c3 = T(1.0/120.0) - thetaSq/2520
	} else {
		theta := sqrt(thetaSq)
		sinT, cosT := sin(theta), cos(theta)
		theta4 := thetaSq * thetaSq
		c1 = (theta - sinT) / (thetaSq * theta)
		c2 = (thetaSq + 2*cosT - 2) / (2 * theta4)
		c3 = (2*theta + theta*cosT - 3*sinT) / (2 * theta4 * theta)
	}
	PT, TP := mulM3(Phi, Tau), mulM3(Tau, Phi)
	PTP := mulM3(PT, Phi)
	Q := scaleM3(T(0.5), Tau)
	Q = addM3(Q, scaleM3(c1, addM3(addM3(PT, TP), PTP)))
	Q = addM3(Q, scaleM3(c2, addM3(addM3(mulM3(Phi, PT), mulM3(TP, Phi)), scaleM3(-3, PTP))))
	Q = addM3(Q, scaleM3(c3, addM3(mulM3(PTP, Phi), mulM3(Phi, PTP))))
	return Q
}

func (se3[T]) LeftJacobian(out, a []T) {
	zero(out[:36])
	tau, phi := loadV3(a), loadV3(a[3:])
	J := so3LeftJac(phi)
	storeBlock3(out, 6, 0, 0, J)
	storeBlock3(out, 6, 0, 3, se3Q(tau, phi))
	storeBlock3(out, 6, 3, 3, J)
}

func (se3[T]) LeftJacobianInverse(out, a []T) {
	zero(out[:36])
	tau, phi := loadV3(a), loadV3(a[3:])
	Ji := so3LeftJacInv(phi)
	storeBlock3(out, 6, 0, 0, Ji)
	storeBlock3(out, 6, 0, 3, scaleM3(-1, mulM3(Ji, mulM3(se3Q(tau, phi), Ji))))
	storeBlock3(out, 6, 3, 3, Ji)
}

func (se3[T]) Act(out, x, p []T) {
	storeV3(out, add3(qrotate(loadQ(x[3:]), loadV3(p)), loadV3(x)))
}

func (se3[T]) Act4(out, x, p []T) {
	r := add3(qrotate(loadQ(x[3:]), loadV3(p)), scale3(p[3], loadV3(x)))
	storeV3(out, r)
	out[3] = p[3]
}

// ActJacobian is [I | -hat(q)] at the transformed point q.
func (se3[T]) ActJacobian(out, q []T) {
	zero(out[:18])
	storeBlock3(out, 6, 0, 0, ident3[T]())
	storeBlock3(out, 6, 0, 3, hat(vec3[T]{-q[0], -q[1], -q[2]}))
}

func (se3[T]) Act4Jacobian(out, q []T) {
	zero(out[:24])
	storeBlock3(out, 6, 0, 0, scaleM3(q[3], ident3[T]()))
	storeBlock3(out, 6, 0, 3, hat(vec3[T]{-q[0], -q[1], -q[2]}))
}

func (se3[T]) Matrix(out, x []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, rotmat(loadQ(x[3:])))
	out[3], out[7], out[11] = x[0], x[1], x[2]
	out[15] = 1
}

func (se3[T]) Projector(out, x []T) {
	zero(out[:49])
	t := loadV3(x)
	storeBlock3(out, 7, 0, 0, ident3[T]())
	storeBlock3(out, 7, 0, 3, hat(vec3[T]{-t[0], -t[1], -t[2]}))
	storeQuatBlock(out, 7, 3, 3, loadQ(x[3:]))
}
