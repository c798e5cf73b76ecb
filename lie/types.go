// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

// Floats is a constraint for the scalar precisions the engine supports.
type Floats interface {
	~float32 | ~float64
}

// GroupID selects one of the four group representations at call time.
type GroupID int

const (
	// SO3 is the group of 3D rotations, stored as a unit quaternion.
	SO3 GroupID = 1 + iota

	// RxSO3 is the group of scaled rotations, stored as a unit
	// quaternion plus a positive scale.
	RxSO3

	// SE3 is the group of rigid transforms, stored as a translation
	// plus a unit quaternion.
	SE3

	// Sim3 is the group of similarity transforms, stored as a
	// translation, a unit quaternion and a positive scale.
	Sim3
)

// String returns a human-readable name for the group identifier.
func (g GroupID) String() string {
	switch g {
	case SO3:
		return "SO3"
	case RxSO3:
		return "RxSO3"
	case SE3:
		return "SE3"
	case Sim3:
		return "Sim3"
	default:
		return "unknown"
	}
}

// Group is the value-semantics interface every group representation
// implements. All methods are pure: they read their input slices, write
// the result into out and touch nothing else. Slice lengths are the
// caller's responsibility; they follow the layouts in the package
// documentation. Matrices are row-major.
//
// Gradient-flavoured methods (Ad, LeftJacobian, ActJacobian, ...) exist
// so that the exact backward rule of every forward operation can be
// assembled from closed-form pieces; see lie/batch.
type Group[T Floats] interface {
	// ID returns the group's identifier tag.
	ID() GroupID

	// EmbeddedDim returns N, the number of raw scalars per element.
	EmbeddedDim() int

	// TangentDim returns K, the degrees of freedom of the group.
	TangentDim() int

	// Identity writes the identity element (len N).
	Identity(out []T)

	// Exp writes the exponential of tangent a (len K) as an element (len N).
	Exp(out, a []T)

	// Log writes the tangent (len K) of element x (len N).
	Log(out, x []T)

	// Inv writes the inverse of element x.
	Inv(out, x []T)

	// Mul writes the composition x * y.
	Mul(out, x, y []T)

	// Adj applies the adjoint of x to tangent a: out = Adj(x) a.
	Adj(out, x, a []T)

	// AdjT applies the transposed adjoint of x: out = Adj(x)^T a.
	AdjT(out, x, a []T)

	// Ad writes the K x K matrix form of the Lie bracket ad(a).
	Ad(out, a []T)

	// LeftJacobian writes the K x K left Jacobian at tangent a.
	LeftJacobian(out, a []T)

	// LeftJacobianInverse writes the K x K inverse left Jacobian at a.
	LeftJacobianInverse(out, a []T)

	// Act applies x to a 3D point p: out = x . p (len 3).
	Act(out, x, p []T)

	// Act4 applies x to a homogeneous point p (len 4).
	Act4(out, x, p []T)

	// ActJacobian writes the 3 x K derivative of the point action with
	// respect to a left tangent perturbation, evaluated at the already
	// transformed point q.
	ActJacobian(out, q []T)

	// Act4Jacobian is the homogeneous counterpart of ActJacobian (4 x K).
	Act4Jacobian(out, q []T)

	// Matrix writes the dense 4x4 form of x (len 16).
	Matrix(out, x []T)

	// Projector writes the N x N orthogonal projector onto the tangent
	// space of the embedding at x. Only the first K columns are nonzero.
	Projector(out, x []T)
}

// New returns the group representation for id at precision T.
// This is the closed dispatch table: four groups, two precisions, nothing
// else. An unknown id yields an UnsupportedError before any work happens.
func New[T Floats](id GroupID) (Group[T], error) {
	switch id {
	case SO3:
		return so3[T]{}, nil
	case RxSO3:
		return rxso3[T]{}, nil
	case SE3:
		return se3[T]{}, nil
	case Sim3:
		return sim3[T]{}, nil
	default:
		return nil, &UnsupportedError{Group: id}
	}
}

// Dims returns (N, K) for id, or an UnsupportedError for an unknown id.
func Dims(id GroupID) (n, k int, err error) {
	switch id {
	case SO3:
		return 4, 3, nil
	case RxSO3:
		return 5, 4, nil
	case SE3:
		return 7, 6, nil
	case Sim3:
		return 8, 7, nil
	default:
		return 0, 0, &UnsupportedError{Group: id}
	}
}
