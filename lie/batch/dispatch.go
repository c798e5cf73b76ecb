// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"

	"github.com/ajroetker/go-lie/lie"
)

// Precision dispatch normally happens at compile time through the Floats
// type parameter, which closes the instantiation set to exactly
// {four groups} x {float32, float64}. The *Any entry points below give
// callers that hold untyped buffers (an autodiff graph binding, a tensor
// bridge) the same closed table at run time: a type switch selects the
// compiled instantiation and anything else is rejected as unsupported
// before any kernel launch.

// DType identifies the scalar precision of a raw buffer.
type DType int

const (
	// Float32 is 32-bit IEEE-754 precision.
	Float32 DType = 1 + iota

	// Float64 is 64-bit IEEE-754 precision.
	Float64
)

// String returns a human-readable name for the precision tag.
func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// DTypeOf reports the precision of a raw buffer, or an unsupported-type
// error for anything that is not []float32 or []float64.
func DTypeOf(buf any) (DType, error) {
	switch buf.(type) {
	case []float32:
		return Float32, nil
	case []float64:
		return Float64, nil
	default:
		return 0, &lie.UnsupportedError{DType: fmt.Sprintf("%T", buf)}
	}
}

func unaryAny(id lie.GroupID, in any,
	f32 func(lie.GroupID, []float32) ([]float32, error),
	f64 func(lie.GroupID, []float64) ([]float64, error)) (any, error) {
	switch t := in.(type) {
	case []float32:
		return f32(id, t)
	case []float64:
		return f64(id, t)
	default:
		return nil, &lie.UnsupportedError{DType: fmt.Sprintf("%T", in)}
	}
}

func binaryAny(id lie.GroupID, x, y any,
	f32 func(lie.GroupID, []float32, []float32) ([]float32, error),
	f64 func(lie.GroupID, []float64, []float64) ([]float64, error)) (any, error) {
	switch xt := x.(type) {
	case []float32:
		yt, ok := y.([]float32)
		if !ok {
			return nil, &lie.UnsupportedError{DType: fmt.Sprintf("%T/%T", x, y)}
		}
		return f32(id, xt, yt)
	case []float64:
		yt, ok := y.([]float64)
		if !ok {
			return nil, &lie.UnsupportedError{DType: fmt.Sprintf("%T/%T", x, y)}
		}
		return f64(id, xt, yt)
	default:
		return nil, &lie.UnsupportedError{DType: fmt.Sprintf("%T", x)}
	}
}

// ExpAny is Exp over an untyped buffer.
func ExpAny(id lie.GroupID, a any) (any, error) {
	return unaryAny(id, a, Exp[float32], Exp[float64])
}

// LogAny is Log over an untyped buffer.
func LogAny(id lie.GroupID, x any) (any, error) {
	return unaryAny(id, x, Log[float32], Log[float64])
}

// InvAny is Inv over an untyped buffer.
func InvAny(id lie.GroupID, x any) (any, error) {
	return unaryAny(id, x, Inv[float32], Inv[float64])
}

// MatrixAny is Matrix over an untyped buffer.
func MatrixAny(id lie.GroupID, x any) (any, error) {
	return unaryAny(id, x, Matrix[float32], Matrix[float64])
}

// ProjectorAny is Projector over an untyped buffer.
func ProjectorAny(id lie.GroupID, x any) (any, error) {
	return unaryAny(id, x, Projector[float32], Projector[float64])
}

// MulAny is Mul over untyped buffers of matching precision.
func MulAny(id lie.GroupID, x, y any) (any, error) {
	return binaryAny(id, x, y, Mul[float32], Mul[float64])
}

// AdjAny is Adj over untyped buffers of matching precision.
func AdjAny(id lie.GroupID, x, a any) (any, error) {
	return binaryAny(id, x, a, Adj[float32], Adj[float64])
}

// AdjTAny is AdjT over untyped buffers of matching precision.
func AdjTAny(id lie.GroupID, x, a any) (any, error) {
	return binaryAny(id, x, a, AdjT[float32], AdjT[float64])
}

// ActAny is Act over untyped buffers of matching precision.
func ActAny(id lie.GroupID, x, p any) (any, error) {
	return binaryAny(id, x, p, Act[float32], Act[float64])
}

// Act4Any is Act4 over untyped buffers of matching precision.
func Act4Any(id lie.GroupID, x, p any) (any, error) {
	return binaryAny(id, x, p, Act4[float32], Act4[float64])
}

// JlAny is Jl over untyped buffers of matching precision.
func JlAny(id lie.GroupID, x, a any) (any, error) {
	return binaryAny(id, x, a, Jl[float32], Jl[float64])
}

// JinvAny is Jinv over untyped buffers of matching precision.
func JinvAny(id lie.GroupID, x, a any) (any, error) {
	return binaryAny(id, x, a, Jinv[float32], Jinv[float64])
}
