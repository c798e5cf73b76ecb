// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

// Package batch provides the batched, parallel entry points of the Lie
// group engine. Every operation takes dense row-major buffers holding B
// contiguous rows (N scalars per element, K per tangent, 3 or 4 per
// point), infers B from the buffer length, allocates freshly shaped
// outputs and runs one closed-form kernel per row on a persistent worker
// pool. Rows never interact, so batch order is the only ordering
// guarantee and also the output layout.
//
// For each differentiable forward operation there is a paired *Backward
// entry implementing the exact hand-derived reverse-mode rule. Upstream
// gradients are row vectors shaped like the forward output; gradients
// with respect to a group element are expressed in the element's local
// tangent coordinates and therefore have width K, not N.
//
// The group is selected by a lie.GroupID resolved once per call, and the
// scalar precision by the buffer element type; together with the Floats
// constraint this forms a closed dispatch table of four groups by two
// precisions. Failures surface as lie.ErrUnsupported, lie.ErrShape or
// lie.ErrLaunch; numerical degeneracy near the identity is not a failure
// and is absorbed by the series fallbacks in package lie.
package batch
