package gfxrt

import (
	"fmt"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/cmd"
)

// Filter selects texture minification and magnification filtering.
type Filter uint8

const (
	FilterNearest = Filter(engine.FilterNearest)
	FilterLinear  = Filter(engine.FilterLinear)
)

// Wrap selects texture coordinate wrapping.
type Wrap uint8

const (
	WrapRepeat = Wrap(engine.WrapRepeat)
	WrapClamp  = Wrap(engine.WrapClamp)
	WrapMirror = Wrap(engine.WrapMirror)
)

// DepthFunc is the depth comparison of a ProgramStore.
type DepthFunc uint32

const (
	DepthAlways DepthFunc = iota
	DepthLess
	DepthLessEqual
	DepthGreater
	DepthGreaterEqual
	DepthEqual
	DepthNotEqual
	DepthNever
)

// Sampler is a created texture sampler.
type Sampler struct{ object }

// CreateSampler creates a sampler.
func (rs *Context) CreateSampler(minFilter, magFilter Filter, wrapS, wrapT Wrap) (*Sampler, error) {
	id, err := rs.handle(cmd.OpSamplerCreate, func(e *cmd.Encoder) {
		e.U8(uint8(minFilter)).U8(uint8(magFilter)).U8(uint8(wrapS)).U8(uint8(wrapT))
	})
	if err != nil {
		return nil, err
	}
	return &Sampler{object{rs: rs, id: id}}, nil
}

// ProgramVertex is vertex pipeline state.
type ProgramVertex struct{ object }

// CreateProgramVertex creates vertex state. With projection set, vertices
// are transformed by the projection of the root script.
func (rs *Context) CreateProgramVertex(projection bool) (*ProgramVertex, error) {
	id, err := rs.handle(cmd.OpProgramVertexCreate, func(e *cmd.Encoder) { e.Bool(projection) })
	if err != nil {
		return nil, err
	}
	return &ProgramVertex{object{rs: rs, id: id}}, nil
}

// ProgramFragment is fragment pipeline state with texture and sampler
// slots.
type ProgramFragment struct {
	object
	slots int
}

// CreateProgramFragment creates fragment state with the given number of
// texture slots, at most Config.FragmentSlots.
func (rs *Context) CreateProgramFragment(slots int) (*ProgramFragment, error) {
	if limit := rs.eng.Config().FragmentSlots; slots < 0 || slots > limit {
		err := fmt.Errorf("gfxrt: program fragment: %w: %d slots, limit %d", ErrOutOfRange, slots, limit)
		slogger().Error("gfxrt: createProgramFragment rejected", "slots", slots, "limit", limit)
		return nil, err
	}
	id, err := rs.handle(cmd.OpProgramFragmentCreate, func(e *cmd.Encoder) { e.U32(uint32(slots)) })
	if err != nil {
		return nil, err
	}
	return &ProgramFragment{object: object{rs: rs, id: id}, slots: slots}, nil
}

// Slots returns the number of texture slots.
func (p *ProgramFragment) Slots() int { return p.slots }

func (p *ProgramFragment) checkSlot(slot int) error {
	if slot < 0 || slot >= p.slots {
		return fmt.Errorf("gfxrt: program fragment %d: %w: slot %d of %d", p.id, ErrOutOfRange, slot, p.slots)
	}
	return nil
}

// BindTexture binds a texture allocation to slot. Nil clears the slot.
func (p *ProgramFragment) BindTexture(slot int, a *Allocation) error {
	if err := p.checkSlot(slot); err != nil {
		return err
	}
	var id uint32
	if a != nil {
		if a.usage&UsageGraphicsTexture == 0 {
			return a.reject("bindTexture", fmt.Errorf("%w: %s", ErrInvalidUsage, a.usage))
		}
		id = a.id
	}
	return p.rs.send(cmd.OpProgramFragmentBindTexture, func(e *cmd.Encoder) { e.U32(p.id).U32(uint32(slot)).U32(id) })
}

// BindSampler binds s to slot. Nil clears the slot.
func (p *ProgramFragment) BindSampler(slot int, s *Sampler) error {
	if err := p.checkSlot(slot); err != nil {
		return err
	}
	var id uint32
	if s != nil {
		id = s.id
	}
	return p.rs.send(cmd.OpProgramFragmentBindSampler, func(e *cmd.Encoder) { e.U32(p.id).U32(uint32(slot)).U32(id) })
}

// ProgramStore is depth and blend state.
type ProgramStore struct{ object }

// CreateProgramStore creates depth and blend state.
func (rs *Context) CreateProgramStore(depth DepthFunc, depthWrite, blend bool) (*ProgramStore, error) {
	if depth > DepthNever {
		return nil, fmt.Errorf("gfxrt: program store: %w: depth func %d", ErrOutOfRange, depth)
	}
	id, err := rs.handle(cmd.OpProgramStoreCreate, func(e *cmd.Encoder) {
		e.U32(uint32(depth)).Bool(depthWrite).Bool(blend)
	})
	if err != nil {
		return nil, err
	}
	return &ProgramStore{object{rs: rs, id: id}}, nil
}
