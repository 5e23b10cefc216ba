// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package engine is the render side of gfxrt.
//
// A Context owns one render goroutine, locked to its OS thread, that drains
// the command ring in order and applies each record to the objects it owns:
// elements and types, allocations and their adapters, samplers, programs
// and scripts. Objects are addressed by uint32 handles; 0 is never valid.
//
// The loop blocks while nothing is pending and no root script is bound.
// Once a command mutates state the root script runs once per frame, each
// frame is presented, and the loop keeps drawing for as long as the script
// asks for another frame. Synchronous commands are answered on the return
// ring.
//
// Lifecycle:
//
//	Uninitialized -> Starting -> Running -> Exiting -> Terminated
//
// Destroy moves a running context to Exiting. The render goroutine then
// presents a final cleared frame, releases every object and the surface,
// and the context becomes Terminated.
//
// Scripts are produced by a Compiler from source text prefixed with a
// generated preamble. The binder guarantees that the vertex, fragment and
// store bindings in effect before a script runs are back in effect after
// it returns, aborts or panics.
package engine
