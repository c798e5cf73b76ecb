// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

// Package lie implements the closed-form algebra of four matrix Lie groups
// used in robotics and vision pipelines: 3D rotations (SO3), scaled
// rotations (RxSO3), rigid transforms (SE3) and similarity transforms (Sim3).
//
// Each group provides the exponential and logarithm maps between the
// manifold and its tangent space, composition, inversion, the adjoint
// representation, left Jacobians, actions on 3D and homogeneous points,
// a dense 4x4 matrix form and an orthogonal projector onto the embedding
// tangent space. All formulas are closed form; coefficients that vanish at
// the identity switch to Taylor-series limits below a fixed threshold so
// that no operation ever divides by a vanishing angle or scale.
//
// Elements and tangent vectors are raw scalar slices. Quaternions are
// stored (x, y, z, w); layouts per group:
//
//	SO3:   [qx qy qz qw]                  N=4, K=3
//	RxSO3: [qx qy qz qw s]                N=5, K=4
//	SE3:   [tx ty tz qx qy qz qw]         N=7, K=6
//	Sim3:  [tx ty tz qx qy qz qw s]       N=8, K=7
//
// Operations assume well-formed input (unit quaternion part, positive
// scale) and preserve it; construction from raw storage never
// re-normalizes.
//
// The batched, parallel entry points built on these primitives live in
// the lie/batch package.
package lie
