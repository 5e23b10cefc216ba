package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetSet holds the frame color target and its depth/stencil companion.
type targetSet struct {
	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
	width     uint32
	height    uint32
	recreated int
}

// ensure recreates the targets when the frame size changes.
func (ts *targetSet) ensure(device hal.Device, w, h uint32) error {
	if ts.width == w && ts.height == h && ts.colorTex != nil {
		return nil
	}
	ts.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "frame_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create frame color texture: %w", err)
	}
	ts.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "frame_color_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create frame color view: %w", err)
	}
	ts.colorView = colorView

	depthTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "frame_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create frame depth/stencil texture: %w", err)
	}
	ts.depthTex = depthTex

	depthView, err := device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "frame_depth_stencil_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create frame depth/stencil view: %w", err)
	}
	ts.depthView = depthView

	ts.width = w
	ts.height = h
	ts.recreated++
	return nil
}

func (ts *targetSet) destroy(device hal.Device) {
	if ts.depthView != nil {
		device.DestroyTextureView(ts.depthView)
		ts.depthView = nil
	}
	if ts.depthTex != nil {
		device.DestroyTexture(ts.depthTex)
		ts.depthTex = nil
	}
	if ts.colorView != nil {
		device.DestroyTextureView(ts.colorView)
		ts.colorView = nil
	}
	if ts.colorTex != nil {
		device.DestroyTexture(ts.colorTex)
		ts.colorTex = nil
	}
	ts.width = 0
	ts.height = 0
}
