// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the presentable target the render goroutine
// draws into, plus a registry of surface backends.
//
// A Surface is handed to the engine at construction. The render goroutine
// calls Present once per drawn frame and Release when the context shuts
// down; no other goroutine touches it afterwards.
//
// The built-in "headless" backend presents nowhere and counts frames,
// which is what tests and offscreen tools use:
//
//	s := surface.NewHeadless(640, 480)
//	rs, _ := gfxrt.New(gfxrt.WithSurface(s))
//	defer rs.Destroy()
//	...
//	fmt.Println(s.Presents())
package surface
