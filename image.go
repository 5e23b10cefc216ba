package gfxrt

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gfxrt/schema"
)

// MipmapControl selects how NewAllocationFromImage fills mip levels.
type MipmapControl int

const (
	// MipmapNone creates a single level.
	MipmapNone MipmapControl = iota

	// MipmapBox creates a full chain and box filters it on the engine.
	MipmapBox

	// MipmapSmooth creates a full chain scaled on the client with a
	// Catmull-Rom filter.
	MipmapSmooth
)

// NewAllocationFromImage creates an RGBA_8888 texture allocation holding
// img. The image is converted to non-premultiplied RGBA first.
func NewAllocationFromImage(rs *Context, img image.Image, mips MipmapControl, usage Usage) (*Allocation, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("gfxrt: image: %w: empty bounds %v", ErrZeroCount, b)
	}
	elem, err := rs.PredefinedElement(schema.PredefinedRGBA8888)
	if err != nil {
		return nil, err
	}
	t, err := rs.CreateType(elem, TypeBuilder{
		X:    uint32(b.Dx()),
		Y:    uint32(b.Dy()),
		Mips: mips != MipmapNone,
	})
	if err != nil {
		return nil, err
	}
	a, err := rs.CreateTyped(t, usage|UsageGraphicsTexture)
	if err != nil {
		return nil, err
	}

	level := toNRGBA(img)
	if err := Copy2DRangeFrom(a, 0, 0, uint32(b.Dx()), uint32(b.Dy()), level.Pix); err != nil {
		return nil, err
	}
	switch mips {
	case MipmapBox:
		err = a.GenerateMipmaps()
	case MipmapSmooth:
		err = a.scaleMips(level)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// toNRGBA returns img as a tightly packed *image.NRGBA at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if m, ok := img.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) && m.Stride == 4*b.Dx() {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

// scaleMips fills every level below the base by scaling the level above.
func (a *Allocation) scaleMips(base *image.NRGBA) error {
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()
	st := a.typ.typ
	prev := base
	for lod := 1; lod < st.LODCount(); lod++ {
		l := st.LOD(lod)
		w, h := int(l.X), int(max(l.Y, 1))
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(next, next.Rect, prev, prev.Rect, draw.Src, nil)
		if err := a.write2DLocked(lod, 0, 0, 0, uint32(w), uint32(h), next.Pix); err != nil {
			return err
		}
		prev = next
	}
	return nil
}
