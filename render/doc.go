// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the integration point between gfxrt and GPU frameworks.
//
// gfxrt can RECEIVE a GPU device from the host application instead of
// creating its own. The host implements DeviceHandle (an alias of
// gpucontext.DeviceProvider) and passes it to gfxrt.WithDevice; the render
// goroutine then records and submits its frames on the shared device.
//
// Without a handle, or with NullDeviceHandle, a context opens the wgpu
// noop backend and draws headless.
package render
