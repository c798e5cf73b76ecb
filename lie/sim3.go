// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

// sim3 is the group of similarity transforms. Elements are
// (tx, ty, tz, qx, qy, qz, qw, s); tangents are (tau, phi, sigma).
type sim3[T Floats] struct{}

func (sim3[T]) ID() GroupID      { return Sim3 }
func (sim3[T]) EmbeddedDim() int { return 8 }
func (sim3[T]) TangentDim() int  { return 7 }

func (sim3[T]) Identity(out []T) {
	zero(out[:8])
	out[6], out[7] = 1, 1
}

// sim3W is the similarity translation operator: Exp maps tau to W*tau.
// W = A*Phi + B*Phi^2 + C*I with W = integral of exp(sigma s) Exp(s Phi)
// over s in [0,1]; the coefficient branches cover the four combinations
// of small/large rotation angle and log-scale. The small-sigma branches
// carry the series through the first order in sigma so the coefficients
// stay continuous across the threshold.
func sim3W[T Floats](phi vec3[T], sigma T) mat3[T] {
	thetaSq := dot3(phi, phi)
	scale := exp(sigma)
	var A, B, C T
	if sigma*sigma < epsSq[T]() {
		C = 1 + sigma/2 + sigma*sigma/6
		if thetaSq < epsSq[T]() {
			A = T(0.5) + sigma/3 - thetaSq/24
			B = T(1.0/6.0) + sigma/8 - thetaSq/120
		} else {
			theta := sqrt(thetaSq)
			sinT, cosT := sin(theta), cos(theta)
			A = (1-cosT)/thetaSq + sigma*(sinT-theta*cosT)/(thetaSq*theta)
			B = (theta-sinT)/(thetaSq*theta) +
				sigma*(thetaSq/2+1-cosT-theta*sinT)/(thetaSq*thetaSq)
		}
	} else {
		C = (scale - 1) / sigma
		if thetaSq < epsSq[T]() {
			sigmaSq := sigma * sigma
			A = ((sigma-1)*scale + 1) / sigmaSq
			B = ((T(0.5)*sigmaSq-sigma+1)*scale - 1) / (sigmaSq * sigma)
		} else {
			theta := sqrt(thetaSq)
			a := scale * sin(theta)
			b := scale * cos(theta)
			c := thetaSq + sigma*sigma
			A = (a*sigma + (1-b)*theta) / (theta * c)
			B = (C - ((b-1)*sigma+a*theta)/c) / thetaSq
		}
	}
	Phi := hat(phi)
	W := scaleM3(C, ident3[T]())
	W = addM3(W, scaleM3(A, Phi))
	return addM3(W, scaleM3(B, mulM3(Phi, Phi)))
}

func (sim3[T]) Exp(out, a []T) {
	tau, phi, sigma := loadV3(a), loadV3(a[3:]), a[6]
	storeV3(out, mulV3(sim3W(phi, sigma), tau))
	storeQ(out[3:], so3Exp(phi))
	out[7] = exp(sigma)
}

// Log inverts the translation through the exact cofactor inverse of W so
// that Exp and Log stay mutually inverse to rounding.
func (sim3[T]) Log(out, x []T) {
	phi := so3Log(loadQ(x[3:]))
	sigma := logT(x[7])
	storeV3(out, mulV3(inv3(sim3W(phi, sigma)), loadV3(x)))
	storeV3(out[3:], phi)
	out[6] = sigma
}

func (sim3[T]) Inv(out, x []T) {
	qi := qconj(loadQ(x[3:]))
	si := 1 / x[7]
	storeV3(out, scale3(-si, qrotate(qi, loadV3(x))))
	storeQ(out[3:], qi)
	out[7] = si
}

func (sim3[T]) Mul(out, x, y []T) {
	t := add3(loadV3(x), scale3(x[7], qrotate(loadQ(x[3:]), loadV3(y))))
	q := qmul(loadQ(x[3:]), loadQ(y[3:]))
	storeV3(out, t)
	storeQ(out[3:], q)
	out[7] = x[7] * y[7]
}

// Adj applies [[s R, hat(t) R, -t], [0, R, 0], [0, 0, 1]] to (tau, phi, sigma).
func (sim3[T]) Adj(out, x, a []T) {
	t, q, s := loadV3(x), loadQ(x[3:]), x[7]
	rphi := qrotate(q, loadV3(a[3:]))
	tau := add3(scale3(s, qrotate(q, loadV3(a))), cross3(t, rphi))
	storeV3(out, add3(tau, scale3(-a[6], t)))
	storeV3(out[3:], rphi)
	out[6] = a[6]
}

func (sim3[T]) AdjT(out, x, a []T) {
	t, q, s := loadV3(x), loadQ(x[3:]), x[7]
	qi := qconj(q)
	at, ap := loadV3(a), loadV3(a[3:])
	storeV3(out, scale3(s, qrotate(qi, at)))
	storeV3(out[3:], qrotate(qi, add3(ap, scale3(-1, cross3(t, at)))))
	out[6] = a[6] - dot3(t, at)
}

func (sim3[T]) Ad(out, a []T) {
	zero(out[:49])
	tau, phi, sigma := loadV3(a), loadV3(a[3:]), a[6]
	Phi := hat(phi)
	storeBlock3(out, 7, 0, 0, addM3(Phi, scaleM3(sigma, ident3[T]())))
	storeBlock3(out, 7, 0, 3, hat(tau))
	out[6], out[13], out[20] = -tau[0], -tau[1], -tau[2]
	storeBlock3(out, 7, 3, 3, Phi)
}

// mul7 multiplies two 7x7 row-major matrices.
func mul7[T Floats](a, b *[49]T) [49]T {
	var r [49]T
	for i := 0; i < 7; i++ {
		for k := 0; k < 7; k++ {
			aik := a[i*7+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < 7; j++ {
				r[i*7+j] += aik * b[k*7+j]
			}
		}
	}
	return r
}

// LeftJacobian uses the truncated exponential series in ad(a),
// I + X/2 + X^2/6 + X^3/24 + X^4/120. The similarity group has no compact
// closed form for this operator; the series is the contract and its
// truncation error is fifth order in the tangent.
func (s sim3[T]) LeftJacobian(out, a []T) {
	var X [49]T
	s.Ad(X[:], a)
	X2 := mul7(&X, &X)
	X3 := mul7(&X2, &X)
	X4 := mul7(&X2, &X2)
	for i := range X {
		out[i] = X[i]/2 + X2[i]/6 + X3[i]/24 + X4[i]/120
	}
	for i := 0; i < 7; i++ {
		out[i*7+i]++
	}
}

// LeftJacobianInverse is the matching truncated inverse series,
// I - X/2 + X^2/12 - X^4/720.
func (s sim3[T]) LeftJacobianInverse(out, a []T) {
	var X [49]T
	s.Ad(X[:], a)
	X2 := mul7(&X, &X)
	X4 := mul7(&X2, &X2)
	for i := range X {
		out[i] = -X[i]/2 + X2[i]/12 - X4[i]/720
	}
	for i := 0; i < 7; i++ {
		out[i*7+i]++
	}
}

func (sim3[T]) Act(out, x, p []T) {
	storeV3(out, add3(scale3(x[7], qrotate(loadQ(x[3:]), loadV3(p))), loadV3(x)))
}

func (sim3[T]) Act4(out, x, p []T) {
	r := add3(scale3(x[7], qrotate(loadQ(x[3:]), loadV3(p))), scale3(p[3], loadV3(x)))
	storeV3(out, r)
	out[3] = p[3]
}

// ActJacobian is [I | -hat(q) | q] at the transformed point q.
func (sim3[T]) ActJacobian(out, q []T) {
	zero(out[:21])
	storeBlock3(out, 7, 0, 0, ident3[T]())
	storeBlock3(out, 7, 0, 3, hat(vec3[T]{-q[0], -q[1], -q[2]}))
	out[6], out[13], out[20] = q[0], q[1], q[2]
}

func (sim3[T]) Act4Jacobian(out, q []T) {
	zero(out[:28])
	storeBlock3(out, 7, 0, 0, scaleM3(q[3], ident3[T]()))
	storeBlock3(out, 7, 0, 3, hat(vec3[T]{-q[0], -q[1], -q[2]}))
	out[6], out[13], out[20] = q[0], q[1], q[2]
}

func (sim3[T]) Matrix(out, x []T) {
	zero(out[:16])
	storeBlock3(out, 4, 0, 0, scaleM3(x[7], rotmat(loadQ(x[3:]))))
	out[3], out[7], out[11] = x[0], x[1], x[2]
	out[15] = 1
}

func (sim3[T]) Projector(out, x []T) {
	zero(out[:64])
	t := loadV3(x)
	storeBlock3(out, 8, 0, 0, ident3[T]())
	storeBlock3(out, 8, 0, 3, hat(vec3[T]{-t[0], -t[1], -t[2]}))
	out[6], out[14], out[22] = t[0], t[1], t[2]
	storeQuatBlock(out, 8, 3, 3, loadQ(x[3:]))
	out[7*8+6] = x[7] // ds/dsigma = s
}
