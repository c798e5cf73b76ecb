// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package lie

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is matched by errors.Is for any unsupported group
	// identifier or scalar precision.
	ErrUnsupported = errors.New("lie: unsupported group or type")

	// ErrLaunch is matched by errors.Is when the parallel execution of a
	// batched kernel fails.
	ErrLaunch = errors.New("lie: kernel launch failed")

	// ErrShape is matched by errors.Is when an input buffer's length does
	// not fit the operation's row layout.
	ErrShape = errors.New("lie: bad batch shape")
)

// UnsupportedError indicates an unknown group identifier or an unsupported
// scalar precision. It is raised before any kernel launch and never retried.
type UnsupportedError struct {
	Group GroupID
	DType string // empty when the group identifier is at fault
}

func (e *UnsupportedError) Error() string {
	if e.DType != "" {
		return fmt.Sprintf("lie: unsupported element type %s", e.DType)
	}
	return fmt.Sprintf("lie: unsupported group identifier %d", int(e.Group))
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// LaunchError indicates that the parallel backend reported a failure while
// executing a batched kernel. The triggering fault is available via
// errors.Unwrap.
type LaunchError struct {
	Op    string
	cause error
}

// NewLaunchError wraps a backend fault for operation op.
func NewLaunchError(op string, cause error) *LaunchError {
	return &LaunchError{Op: op, cause: cause}
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("lie: %s: kernel launch failed: %v", e.Op, e.cause)
}

func (e *LaunchError) Unwrap() error { return e.cause }

// Is reports true for ErrLaunch so callers can match the category without
// knowing the cause.
func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// ShapeError indicates a buffer whose length is not a multiple of the row
// width an operation expects, or two buffers whose row counts disagree.
type ShapeError struct {
	Op    string
	Len   int // offending buffer length, in scalars
	Width int // expected row width, in scalars
	Rows  int // expected row count; 0 when only divisibility was checked
}

func (e *ShapeError) Error() string {
	if e.Rows > 0 {
		return fmt.Sprintf("lie: %s: buffer of length %d does not hold %d rows of width %d",
			e.Op, e.Len, e.Rows, e.Width)
	}
	return fmt.Sprintf("lie: %s: buffer length %d is not a multiple of row width %d",
		e.Op, e.Len, e.Width)
}

// Is reports true for ErrShape.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }
