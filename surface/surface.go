// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

// Surface is a presentable drawable.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Present shows the frame rendered since the previous Present.
	Present() error

	// Release frees the drawable. Release is idempotent.
	Release() error
}

// ClearSink is implemented by surfaces that want to observe the clear
// values applied to each frame.
type ClearSink interface {
	SetClear(color [4]float32, depth float32, stencil uint32)
}

// Options configures surface creation through the registry.
type Options struct {
	Width  int
	Height int
}

// ErrReleased is returned when presenting a released surface.
var ErrReleased = errors.New("surface: released")
