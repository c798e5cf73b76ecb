// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

import "math"

// Small fixed-size linear algebra shared by the group representations.
// Everything is value-typed and allocation free; matrices are row-major.

type vec3[T Floats] [3]T

type mat3[T Floats] [9]T

// quat is a quaternion with scalar part W, stored (x, y, z, w) in raw form.
type quat[T Floats] struct {
	X, Y, Z, W T
}

// epsSq is the squared small-angle/small-scale threshold below which
// trigonometric coefficients switch to their Taylor-series limits.
// The values are chosen so that the direct formula is still accurate just
// above the threshold at the respective precision.
func epsSq[T Floats]() T {
	var z T
	if _, ok := any(z).(float32); ok {
		return 1e-3
	}
	return 1e-8
}

func sqrt[T Floats](x T) T { return T(math.Sqrt(float64(x))) }
func sin[T Floats](x T) T { return T(math.Sin(float64(x))) }
func cos[T Floats](x T) T { return T(math.Cos(float64(x))) }
func exp[T Floats](x T) T { return T(math.Exp(float64(x))) }
func logT[T Floats](x T) T { return T(math.Log(float64(x))) }

func atan2[T Floats](y, x T) T { return T(math.Atan2(float64(y), float64(x))) }

func add3[T Floats](a, b vec3[T]) vec3[T] {
	return vec3[T]{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale3[T Floats](s T, a vec3[T]) vec3[T] {
	return vec3[T]{s * a[0], s * a[1], s * a[2]}
}

func dot3[T Floats](a, b vec3[T]) T {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3[T Floats](a, b vec3[T]) vec3[T] {
	return vec3[T]{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// hat returns the skew-symmetric matrix of v, the 3x3 form of the SO3 bracket.
func hat[T Floats](v vec3[T]) mat3[T] {
	return mat3[T]{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	}
}

func ident3[T Floats]() mat3[T] {
	return mat3[T]{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func addM3[T Floats](a, b mat3[T]) mat3[T] {
	var r mat3[T]
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

func scaleM3[T Floats](s T, a mat3[T]) mat3[T] {
	var r mat3[T]
	for i := range r {
		r[i] = s * a[i]
	}
	return r
}

func mulM3[T Floats](a, b mat3[T]) mat3[T] {
	var r mat3[T]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = a[i*3]*b[j] + a[i*3+1]*b[3+j] + a[i*3+2]*b[6+j]
		}
	}
	return r
}

func transpose3[T Floats](a mat3[T]) mat3[T] {
	return mat3[T]{
		a[0], a[3], a[6],
		a[1], a[4], a[7],
		a[2], a[5], a[8],
	}
}

func mulV3[T Floats](m mat3[T], v vec3[T]) vec3[T] {
	return vec3[T]{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// inv3 returns the inverse of m by cofactor expansion. The caller
// guarantees m is well conditioned (here: similarity W matrices, which are
// near identity for small tangents and nonsingular below the branch cut).
func inv3[T Floats](m mat3[T]) mat3[T] {
	c00 := m[4]*m[8] - m[5]*m[7]
	c01 := m[5]*m[6] - m[3]*m[8]
	c02 := m[3]*m[7] - m[4]*m[6]
	det := m[0]*c00 + m[1]*c01 + m[2]*c02
	inv := 1 / det
	return mat3[T]{
		c00 * inv, (m[2]*m[7] - m[1]*m[8]) * inv, (m[1]*m[5] - m[2]*m[4]) * inv,
		c01 * inv, (m[0]*m[8] - m[2]*m[6]) * inv, (m[2]*m[3] - m[0]*m[5]) * inv,
		c02 * inv, (m[1]*m[6] - m[0]*m[7]) * inv, (m[0]*m[4] - m[1]*m[3]) * inv,
	}
}

func qmul[T Floats](a, b quat[T]) quat[T] {
	return quat[T]{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

func qconj[T Floats](q quat[T]) quat[T] {
	return quat[T]{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// qrotate applies the unit quaternion q to p: q p q*.
func qrotate[T Floats](q quat[T], p vec3[T]) vec3[T] {
	qv := vec3[T]{q.X, q.Y, q.Z}
	t := scale3(2, cross3(qv, p))
	return add3(p, add3(scale3(q.W, t), cross3(qv, t)))
}

// rotmat returns the rotation matrix of a unit quaternion.
func rotmat[T Floats](q quat[T]) mat3[T] {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	return mat3[T]{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

func loadV3[T Floats](s []T) vec3[T] { return vec3[T]{s[0], s[1], s[2]} }

func storeV3[T Floats](dst []T, v vec3[T]) {
	dst[0], dst[1], dst[2] = v[0], v[1], v[2]
}

func loadQ[T Floats](s []T) quat[T] {
	return quat[T]{X: s[0], Y: s[1], Z: s[2], W: s[3]}
}

func storeQ[T Floats](dst []T, q quat[T]) {
	dst[0], dst[1], dst[2], dst[3] = q.X, q.Y, q.Z, q.W
}

// storeBlock3 writes a 3x3 block into a row-major matrix of the given
// stride at (row, col).
func storeBlock3[T Floats](dst []T, stride, row, col int, m mat3[T]) {
	for i := 0; i < 3; i++ {
		copy(dst[(row+i)*stride+col:(row+i)*stride+col+3], m[i*3:i*3+3])
	}
}

func zero[T Floats](dst []T) {
	for i := range dst {
		dst[i] = 0
	}
}
