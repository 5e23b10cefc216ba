package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SamplerDesc selects filtering and wrapping for a sampler.
type SamplerDesc struct {
	Label     string
	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode
	WrapS     gputypes.AddressMode
	WrapT     gputypes.AddressMode
}

// Sampler is a GPU sampler.
type Sampler struct {
	s    hal.Sampler
	desc SamplerDesc
}

// Desc returns the descriptor the sampler was created from.
func (s *Sampler) Desc() SamplerDesc { return s.desc }

// CreateSampler creates a sampler.
func (d *Device) CreateSampler(desc SamplerDesc) (*Sampler, error) {
	if d.device == nil {
		return nil, ErrClosed
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.WrapS,
		AddressModeV: desc.WrapT,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MinFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create sampler %s: %w", desc.Label, err)
	}
	return &Sampler{s: s, desc: desc}, nil
}

// DestroySampler releases s.
func (d *Device) DestroySampler(s *Sampler) {
	if s == nil || s.s == nil {
		return
	}
	if d.device != nil {
		d.device.DestroySampler(s.s)
	}
	s.s = nil
}
