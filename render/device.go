// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host owns the device. A context created with a DeviceHandle draws
// with the shared device and never destroys it.
//
// Example implementation:
//
//	type appDevice struct {
//	    app *gogpu.App
//	}
//
//	func (h appDevice) Device() gpucontext.Device { return h.app.HalDevice() }
//	func (h appDevice) Queue() gpucontext.Queue   { return h.app.HalQueue() }
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// DeviceInfo summarizes a DeviceHandle for logging and backend selection.
type DeviceInfo struct {
	Name          string
	Type          gpucontext.AdapterType
	SurfaceFormat gputypes.TextureFormat
	Headless      bool
}

// Software reports whether the adapter is a CPU renderer.
func (i DeviceInfo) Software() bool { return i.Type == gpucontext.AdapterTypeSoftware }

// Info describes h. A nil handle or one without a device is headless.
func Info(h DeviceHandle) DeviceInfo {
	if h == nil || h.Device() == nil {
		return DeviceInfo{Name: "none", Type: gpucontext.AdapterTypeUnknown, Headless: true}
	}
	ai := h.AdapterInfo()
	return DeviceInfo{
		Name:          ai.Name,
		Type:          ai.Type,
		SurfaceFormat: h.SurfaceFormat(),
		Headless:      h.SurfaceFormat() == gputypes.TextureFormatUndefined,
	}
}

// halHandle exposes the Device and Queue of a DeviceHandle under the
// HalDevice and HalQueue names the GPU layer looks for.
type halHandle struct{ h DeviceHandle }

func (a halHandle) HalDevice() any { return a.h.Device() }
func (a halHandle) HalQueue() any  { return a.h.Queue() }

// Provider returns h in the form accepted by the GPU layer: h itself when
// it already has HalDevice and HalQueue methods, otherwise a view whose
// HalDevice and HalQueue return h.Device() and h.Queue().
func Provider(h DeviceHandle) any {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if _, ok := h.(halProvider); ok {
		return h
	}
	return halHandle{h: h}
}

// NullDeviceHandle is a DeviceHandle without a device. Contexts given one
// fall back to their own noop device.
type NullDeviceHandle struct{}

// Device returns nil.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns TextureFormatUndefined.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}
