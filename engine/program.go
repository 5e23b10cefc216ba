package engine

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxrt/internal/gpu"
)

// Program is pipeline state the binder can make active.
type Program interface {
	// ID returns the registry handle of the program.
	ID() uint32
	stage() gpu.Stage
	setup(c *Context)
}

type programBase struct{ id uint32 }

// ID returns the registry handle.
func (p *programBase) ID() uint32 { return p.id }

// ProgramVertex transforms vertices. Projection selects the context
// projection; otherwise vertices are passed through.
type ProgramVertex struct {
	programBase
	Projection bool
}

func (*ProgramVertex) stage() gpu.Stage { return gpu.StageVertex }

func (p *ProgramVertex) setup(c *Context) {
	if c.dev != nil {
		c.dev.BindProgram(gpu.StageVertex, p.id)
	}
}

// ProgramFragment shades fragments from a fixed number of texture and
// sampler slots.
type ProgramFragment struct {
	programBase
	textures []*Allocation
	samplers []*Sampler
}

func newProgramFragment(slots int) *ProgramFragment {
	return &ProgramFragment{
		textures: make([]*Allocation, slots),
		samplers: make([]*Sampler, slots),
	}
}

// Slots returns the number of texture slots.
func (p *ProgramFragment) Slots() int { return len(p.textures) }

// Texture returns the allocation bound to slot.
func (p *ProgramFragment) Texture(slot int) *Allocation { return p.textures[slot] }

// Sampler returns the sampler bound to slot.
func (p *ProgramFragment) Sampler(slot int) *Sampler { return p.samplers[slot] }

// BindTexture binds a to slot. A nil allocation clears the slot.
func (p *ProgramFragment) BindTexture(slot int, a *Allocation) error {
	if slot < 0 || slot >= len(p.textures) {
		return fmt.Errorf("engine: texture slot %d of %d", slot, len(p.textures))
	}
	p.textures[slot] = a
	return nil
}

// BindSampler binds s to slot. A nil sampler clears the slot.
func (p *ProgramFragment) BindSampler(slot int, s *Sampler) error {
	if slot < 0 || slot >= len(p.samplers) {
		return fmt.Errorf("engine: sampler slot %d of %d", slot, len(p.samplers))
	}
	p.samplers[slot] = s
	return nil
}

func (*ProgramFragment) stage() gpu.Stage { return gpu.StageFragment }

// setup uploads bound textures that have no mirror yet.
func (p *ProgramFragment) setup(c *Context) {
	if c.dev == nil {
		return
	}
	for slot, a := range p.textures {
		if a == nil {
			continue
		}
		r := a.root()
		if r.tex != nil && !r.texDirty {
			continue
		}
		if err := a.UploadToTexture(c.dev, r.texBase); err != nil {
			slogger().Error("fragment program texture", "program", p.id, "slot", slot, "err", err)
		}
	}
	c.dev.BindProgram(gpu.StageFragment, p.id)
}

// ProgramStore configures depth testing and blending of fragment output.
type ProgramStore struct {
	programBase
	DepthFunc  gputypes.CompareFunction
	DepthWrite bool
	Blend      bool
}

func (*ProgramStore) stage() gpu.Stage { return gpu.StageFragmentStore }

func (p *ProgramStore) setup(c *Context) {
	if c.dev != nil {
		c.dev.BindProgram(gpu.StageFragmentStore, p.id)
	}
}

// Sampler filters texture reads.
type Sampler struct {
	id   uint32
	desc gpu.SamplerDesc
	s    *gpu.Sampler
}

// ID returns the registry handle.
func (s *Sampler) ID() uint32 { return s.id }

// Desc returns the sampler configuration.
func (s *Sampler) Desc() gpu.SamplerDesc { return s.desc }

// Filter and wrap codes carried on the wire.
const (
	FilterNearest uint8 = iota
	FilterLinear
)

const (
	WrapRepeat uint8 = iota
	WrapClamp
	WrapMirror
)

func filterMode(v uint8) gputypes.FilterMode {
	if v == FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func addressMode(v uint8) gputypes.AddressMode {
	switch v {
	case WrapClamp:
		return gputypes.AddressModeClampToEdge
	case WrapMirror:
		return gputypes.AddressModeMirrorRepeat
	}
	return gputypes.AddressModeRepeat
}

// Depth compare codes carried on the wire.
var depthFuncs = [...]gputypes.CompareFunction{
	gputypes.CompareFunctionAlways,
	gputypes.CompareFunctionLess,
	gputypes.CompareFunctionLessEqual,
	gputypes.CompareFunctionGreater,
	gputypes.CompareFunctionGreaterEqual,
	gputypes.CompareFunctionEqual,
	gputypes.CompareFunctionNotEqual,
	gputypes.CompareFunctionNever,
}

func depthFunc(v uint32) gputypes.CompareFunction {
	if int(v) < len(depthFuncs) {
		return depthFuncs[v]
	}
	return gputypes.CompareFunctionAlways
}

func (c *Context) newSampler(minF, magF, wrapS, wrapT uint8) *Sampler {
	s := &Sampler{desc: gpu.SamplerDesc{
		Label:     "sampler",
		MinFilter: filterMode(minF),
		MagFilter: filterMode(magF),
		WrapS:     addressMode(wrapS),
		WrapT:     addressMode(wrapT),
	}}
	if c.dev != nil {
		gs, err := c.dev.CreateSampler(s.desc)
		if err != nil {
			slogger().Warn("sampler has no GPU object", "err", err)
		} else {
			s.s = gs
		}
	}
	s.id = c.reg.add(KindSampler, s).ID
	return s
}

// defaults holds the built-in programs bound when a binding is cleared.
type defaults struct {
	vertex   *ProgramVertex
	fragment *ProgramFragment
	store    *ProgramStore
}

func (c *Context) initDefaults() {
	v := &ProgramVertex{Projection: true}
	v.id = c.reg.add(KindProgramVertex, v).ID
	f := newProgramFragment(0)
	f.id = c.reg.add(KindProgramFragment, f).ID
	s := &ProgramStore{DepthFunc: gputypes.CompareFunctionAlways}
	s.id = c.reg.add(KindProgramStore, s).ID
	c.defaults = defaults{vertex: v, fragment: f, store: s}
}
