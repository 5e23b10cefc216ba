// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil || handle.Queue() != nil || handle.Adapter() != nil {
		t.Error("NullDeviceHandle returned a non-nil resource")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
	info := Info(handle)
	if !info.Headless || info.Software() {
		t.Errorf("Info(NullDeviceHandle) = %+v", info)
	}
}

type fakeHandle struct {
	NullDeviceHandle
	device, queue any
	format        gputypes.TextureFormat
}

func (h fakeHandle) Device() gpucontext.Device              { return h.device }
func (h fakeHandle) Queue() gpucontext.Queue                { return h.queue }
func (h fakeHandle) SurfaceFormat() gputypes.TextureFormat { return h.format }
func (h fakeHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "soft", Type: gpucontext.AdapterTypeSoftware}
}

type halFakeHandle struct{ fakeHandle }

func (halFakeHandle) HalDevice() any { return "hal-device" }
func (halFakeHandle) HalQueue() any  { return "hal-queue" }

func TestInfo(t *testing.T) {
	h := fakeHandle{device: "d", queue: "q", format: gputypes.TextureFormatBGRA8Unorm}
	info := Info(h)
	if info.Name != "soft" || !info.Software() || info.Headless {
		t.Errorf("Info() = %+v", info)
	}
	if info.SurfaceFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v", info.SurfaceFormat)
	}
	if !Info(nil).Headless {
		t.Error("Info(nil) is not headless")
	}
}

func TestProvider(t *testing.T) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	p, ok := Provider(fakeHandle{device: "d", queue: "q"}).(halProvider)
	if !ok {
		t.Fatal("Provider() result has no HalDevice/HalQueue")
	}
	if p.HalDevice() != "d" || p.HalQueue() != "q" {
		t.Errorf("adapted provider = %v, %v", p.HalDevice(), p.HalQueue())
	}

	direct := halFakeHandle{}
	p = Provider(direct).(halProvider)
	if p.HalDevice() != "hal-device" {
		t.Error("Provider() wrapped a handle that already exposes hal types")
	}
}
