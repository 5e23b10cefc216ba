package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Env is the execution context of one script launch. Programs reach slot
// memory, pipeline state and drawing through it. Slot accessors do not
// check bounds; the program is trusted.
//
// An Env is only valid during the Invoke call it was passed to. Any use
// afterwards panics.
type Env struct {
	c      *Context
	s      *Script
	launch uint32
	color  [4]float32
	done   bool
}

// scriptAbort is raised by Abort and recovered by RunScript.
type scriptAbort struct{ msg string }

func (e *Env) live() {
	if e.done {
		panic("engine: Env used outside of its script invocation")
	}
}

func (e *Env) end() { e.done = true }

func (e *Env) mem(bank int) []byte {
	e.live()
	a := e.s.slots[bank]
	if a.stale() {
		e.Abort("slot %d: %v", bank, ErrStaleView)
	}
	return a.Bytes()[a.offset(0, 0, 0, 0, 0):]
}

// LaunchIndex returns the launch number passed to Invoke.
func (e *Env) LaunchIndex() uint32 { e.live(); return e.launch }

// Script returns the handle of the running script.
func (e *Env) Script() uint32 { e.live(); return e.s.id }

// LoadI32 reads the 32-bit word at word offset off of slot bank.
func (e *Env) LoadI32(bank, off int) int32 {
	return int32(binary.NativeEndian.Uint32(e.mem(bank)[off*4:]))
}

// LoadU32 reads an unsigned word.
func (e *Env) LoadU32(bank, off int) uint32 {
	return binary.NativeEndian.Uint32(e.mem(bank)[off*4:])
}

// LoadF reads a float32 word.
func (e *Env) LoadF(bank, off int) float32 {
	return math.Float32frombits(binary.NativeEndian.Uint32(e.mem(bank)[off*4:]))
}

// StoreI32 writes a signed word.
func (e *Env) StoreI32(bank, off int, v int32) {
	binary.NativeEndian.PutUint32(e.mem(bank)[off*4:], uint32(v))
	e.s.slots[bank].touch()
}

// StoreU32 writes an unsigned word.
func (e *Env) StoreU32(bank, off int, v uint32) {
	binary.NativeEndian.PutUint32(e.mem(bank)[off*4:], v)
	e.s.slots[bank].touch()
}

// StoreF writes a float32 word.
func (e *Env) StoreF(bank, off int, v float32) {
	binary.NativeEndian.PutUint32(e.mem(bank)[off*4:], math.Float32bits(v))
	e.s.slots[bank].touch()
}

// LoadVp returns slot memory from byte offset off onwards. Writes through
// the slice are not tracked for GPU mirrors; call UploadToTexture or
// UploadToBufferObject on the context when needed.
func (e *Env) LoadVp(bank, off int) []byte { return e.mem(bank)[off:] }

// LoadEnvVec4 reads four floats starting at word offset off.
func (e *Env) LoadEnvVec4(bank, off int) [4]float32 {
	var v [4]float32
	for i := range v {
		v[i] = e.LoadF(bank, off+i)
	}
	return v
}

// StoreEnvVec4 writes four floats starting at word offset off.
func (e *Env) StoreEnvVec4(bank, off int, v [4]float32) {
	for i := range v {
		e.StoreF(bank, off+i, v[i])
	}
}

// LoadEnvMatrix reads a column-major matrix starting at word offset off.
func (e *Env) LoadEnvMatrix(bank, off int, m *Matrix) {
	for i := range m.M {
		m.M[i] = e.LoadF(bank, off+i)
	}
}

// StoreEnvMatrix writes m starting at word offset off.
func (e *Env) StoreEnvMatrix(bank, off int, m *Matrix) {
	for i := range m.M {
		e.StoreF(bank, off+i, m.M[i])
	}
}

// Rand returns a pseudo random number in [0, limit).
func (e *Env) Rand(limit float32) float32 {
	e.live()
	return e.s.rng.Float32() * limit
}

// Time returns the seconds elapsed since launch 0.
func (e *Env) Time() float32 {
	e.live()
	return float32(time.Since(e.s.startTime).Seconds())
}

// FrameSize returns the size of the surface being drawn.
func (e *Env) FrameSize() (int, int) {
	e.live()
	return e.c.frameSize()
}

// Lookup returns the handle of the object registered under name, or 0.
func (e *Env) Lookup(name string) uint32 {
	e.live()
	if o := e.c.reg.lookupName(name); o != nil {
		return o.ID
	}
	return 0
}

// Abort stops the running program. The launch reports no frame.
func (e *Env) Abort(format string, args ...any) {
	e.live()
	panic(scriptAbort{msg: fmt.Sprintf(format, args...)})
}

// Color sets the color of subsequent draws.
func (e *Env) Color(r, g, b, a float32) {
	e.live()
	e.color = [4]float32{r, g, b, a}
}

// BindProgramVertex makes the vertex program h current. 0 selects the
// built-in default.
func (e *Env) BindProgramVertex(h uint32) {
	e.live()
	if h == 0 {
		e.c.SetVertex(nil)
	} else if p := e.c.programVertex(h); p != nil {
		e.c.SetVertex(p)
	} else {
		slogger().Error("bindProgramVertex: unknown program", "handle", h)
	}
}

// BindProgramFragment makes the fragment program h current. 0 selects the
// built-in default.
func (e *Env) BindProgramFragment(h uint32) {
	e.live()
	if h == 0 {
		e.c.SetFragment(nil)
	} else if p := e.c.programFragment(h); p != nil {
		e.c.SetFragment(p)
	} else {
		slogger().Error("bindProgramFragment: unknown program", "handle", h)
	}
}

// BindProgramFragmentStore makes the store program h current. 0 selects
// the built-in default.
func (e *Env) BindProgramFragmentStore(h uint32) {
	e.live()
	if h == 0 {
		e.c.SetFragmentStore(nil)
	} else if p := e.c.programStore(h); p != nil {
		e.c.SetFragmentStore(p)
	} else {
		slogger().Error("bindProgramFragmentStore: unknown program", "handle", h)
	}
}

// BindTexture binds allocation a to slot of fragment program pf.
func (e *Env) BindTexture(pf uint32, slot int, a uint32) {
	e.live()
	p := e.c.programFragment(pf)
	if p == nil {
		slogger().Error("bindTexture: unknown program", "handle", pf)
		return
	}
	var alloc *Allocation
	if a != 0 {
		if alloc = e.c.allocation(a); alloc == nil {
			slogger().Error("bindTexture: unknown allocation", "handle", a)
			return
		}
	}
	if err := p.BindTexture(slot, alloc); err != nil {
		slogger().Error("bindTexture", "err", err)
	}
}

// BindSampler binds sampler s to slot of fragment program pf.
func (e *Env) BindSampler(pf uint32, slot int, s uint32) {
	e.live()
	p := e.c.programFragment(pf)
	if p == nil {
		slogger().Error("bindSampler: unknown program", "handle", pf)
		return
	}
	var smp *Sampler
	if s != 0 {
		if smp = e.c.sampler(s); smp == nil {
			slogger().Error("bindSampler: unknown sampler", "handle", s)
			return
		}
	}
	if err := p.BindSampler(slot, smp); err != nil {
		slogger().Error("bindSampler", "err", err)
	}
}

// DrawRect draws an axis aligned rectangle at depth z in the current color.
func (e *Env) DrawRect(x1, y1, x2, y2, z float32) {
	e.live()
	e.c.drawColored([][3]float32{
		{x1, y1, z}, {x2, y1, z}, {x1, y2, z},
		{x2, y1, z}, {x2, y2, z}, {x1, y2, z},
	}, e.color)
}

// DrawTriangleArray draws count triangles whose vertices are the
// instances of allocation a.
func (e *Env) DrawTriangleArray(a uint32, count int) {
	e.live()
	alloc := e.c.allocation(a)
	if alloc == nil {
		slogger().Error("drawTriangleArray: unknown allocation", "handle", a)
		return
	}
	e.c.drawArray(alloc, count*3)
}

// UploadToTexture refreshes the texture mirror of allocation a.
func (e *Env) UploadToTexture(a uint32, baseMip int) {
	e.live()
	alloc := e.c.allocation(a)
	if alloc == nil {
		slogger().Error("uploadToTexture: unknown allocation", "handle", a)
		return
	}
	if err := alloc.UploadToTexture(e.c.dev, baseMip); err != nil {
		slogger().Error("uploadToTexture", "alloc", a, "err", err)
	}
}
