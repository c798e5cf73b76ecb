// Copyright 2025 go-lie Authors. SPDX-License-Identifier: Apache-2.0

package batch

import (
	"github.com/ajroetker/go-lie/internal/workerpool"
	"github.com/ajroetker/go-lie/lie"
)

// defaultPool is the shared lane pool for all batched launches. Sized from
// LIE_NUM_WORKERS or GOMAXPROCS; LIE_NO_PARALLEL forces sequential runs.
// Both variables are read once when the package initializes; changing them
// later in the process has no effect.
var defaultPool = workerpool.New(0)

// launch runs a kernel body over rows on the pool and maps a backend
// fault to the operation's LaunchError. The call returns only after
// every row has been processed.
func launch(op string, rows int, body func(start, end int)) error {
	if err := defaultPool.ParallelFor(rows, body); err != nil {
		return lie.NewLaunchError(op, err)
	}
	return nil
}

// rowCount infers the batch row count from a buffer length, rejecting
// lengths that do not tile into rows of the given width.
func rowCount[T lie.Floats](op string, buf []T, width int) (int, error) {
	if len(buf)%width != 0 {
		return 0, &lie.ShapeError{Op: op, Len: len(buf), Width: width}
	}
	return len(buf) / width, nil
}

// wantRows checks that a companion buffer holds exactly rows rows of the
// given width.
func wantRows[T lie.Floats](op string, buf []T, width, rows int) error {
	if len(buf) != rows*width {
		return &lie.ShapeError{Op: op, Len: len(buf), Width: width, Rows: rows}
	}
	return nil
}
