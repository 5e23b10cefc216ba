package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a sampled 2D texture with its default view.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	mips   uint32
	format gputypes.TextureFormat
	size   uint64
	label  string
}

func (t *Texture) Width() uint32                  { return t.width }
func (t *Texture) Height() uint32                 { return t.height }
func (t *Texture) MipLevels() uint32              { return t.mips }
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// BytesPerPixel returns the texel size of the formats allocations map to.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

// CreateTexture allocates a sampled texture with mips levels.
func (d *Device) CreateTexture(label string, w, h, mips uint32, format gputypes.TextureFormat) (*Texture, error) {
	if d.device == nil {
		return nil, ErrClosed
	}
	mips = max(mips, 1)
	var size uint64
	lw, lh := w, h
	for range mips {
		size += uint64(lw) * uint64(lh) * uint64(BytesPerPixel(format))
		lw, lh = max(lw/2, 1), max(lh/2, 1)
	}
	if err := d.budget.reserve(size, true); err != nil {
		return nil, err
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		d.budget.release(size, true)
		return nil, fmt.Errorf("gpu: create texture %s: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		d.budget.release(size, true)
		return nil, fmt.Errorf("gpu: create texture view %s: %w", label, err)
	}
	return &Texture{
		tex:    tex,
		view:   view,
		width:  w,
		height: h,
		mips:   mips,
		format: format,
		size:   size,
		label:  label,
	}, nil
}

// WriteTexture uploads one tightly packed mip level.
func (d *Device) WriteTexture(t *Texture, mip uint32, data []byte) {
	if d.queue == nil || len(data) == 0 || mip >= t.mips {
		return
	}
	w, h := max(t.width>>mip, 1), max(t.height>>mip, 1)
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: mip,
			Origin:   hal.Origin3D{},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * uint32(BytesPerPixel(t.format)),
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		slogger().Error("write texture", "label", t.label, "mip", mip, "err", err)
		return
	}
	d.stats.TextureWrites++
}

// DestroyTexture releases t and its view.
func (d *Device) DestroyTexture(t *Texture) {
	if t == nil || t.tex == nil {
		return
	}
	if d.device != nil {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.tex)
	}
	d.budget.release(t.size, true)
	t.tex, t.view = nil, nil
}
