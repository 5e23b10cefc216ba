package engine

import (
	"encoding/binary"
	"math"
	"runtime/debug"
)

// SetVertex binds p, or the built-in default when p is nil, and applies it
// immediately.
func (c *Context) SetVertex(p *ProgramVertex) {
	if p == nil {
		p = c.defaults.vertex
	}
	c.vertex = p
	p.setup(c)
}

// SetFragment binds p, or the built-in default when p is nil.
func (c *Context) SetFragment(p *ProgramFragment) {
	if p == nil {
		p = c.defaults.fragment
	}
	c.fragment = p
	p.setup(c)
}

// SetFragmentStore binds p, or the built-in default when p is nil.
func (c *Context) SetFragmentStore(p *ProgramStore) {
	if p == nil {
		p = c.defaults.store
	}
	c.store = p
	p.setup(c)
}

// Vertex returns the bound vertex program. It is never nil.
func (c *Context) Vertex() *ProgramVertex { return c.vertex }

// Fragment returns the bound fragment program. It is never nil.
func (c *Context) Fragment() *ProgramFragment { return c.fragment }

// FragmentStore returns the bound store program. It is never nil.
func (c *Context) FragmentStore() *ProgramStore { return c.store }

type bindings struct {
	vertex   *ProgramVertex
	fragment *ProgramFragment
	store    *ProgramStore
}

func (c *Context) snapshot() bindings {
	return bindings{vertex: c.vertex, fragment: c.fragment, store: c.store}
}

func (c *Context) restore(b bindings) {
	if c.vertex != b.vertex {
		c.SetVertex(b.vertex)
	}
	if c.fragment != b.fragment {
		c.SetFragment(b.fragment)
	}
	if c.store != b.store {
		c.SetFragmentStore(b.store)
	}
}

// RunScript invokes s once and restores the vertex, fragment and store
// bindings that were current before the call, whatever the script bound
// and however it returned. A program that aborts or panics reports no
// frame.
func (c *Context) RunScript(s *Script, launch uint32) (frame bool) {
	saved := c.snapshot()
	defer c.restore(saved)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		frame = false
		if a, ok := r.(scriptAbort); ok {
			slogger().Error("script aborted", "script", s.id, "launch", launch, "reason", a.msg)
			return
		}
		slogger().Error("script faulted", "script", s.id, "launch", launch, "panic", r, "stack", string(debug.Stack()))
	}()
	return s.run(c, launch)
}

// drawColored emits position + color vertices through the bound vertex
// program.
func (c *Context) drawColored(pos [][3]float32, color [4]float32) {
	if c.dev == nil {
		return
	}
	verts := make([]float32, 0, len(pos)*7)
	for _, p := range pos {
		x, y, z := c.project(p[0], p[1], p[2])
		verts = append(verts, x, y, z, color[0], color[1], color[2], color[3])
	}
	c.dev.Draw(verts)
}

// drawArray emits n vertices read from the instances of a. Each instance
// must be a whole number of float32 words.
func (c *Context) drawArray(a *Allocation, n int) {
	if c.dev == nil || n <= 0 {
		return
	}
	e := a.typ.Element()
	if e.SizeBytes()%4 != 0 {
		slogger().Error("drawTriangleArray: element is not float aligned", "element", e)
		return
	}
	mem := a.Bytes()[a.offset(0, 0, 0, 0, 0):]
	n = min(n, a.typ.Count(), len(mem)/e.SizeBytes())
	if n == 0 {
		return
	}
	words := n * e.SizeBytes() / 4
	out := make([]float32, words)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(mem[i*4:]))
	}
	if c.vertex.Projection {
		stride := e.SizeBytes() / 4
		for i := 0; i+2 < words && stride >= 3; i += stride {
			out[i], out[i+1], out[i+2] = c.project(out[i], out[i+1], out[i+2])
		}
	}
	c.dev.Draw(out)
}

func (c *Context) project(x, y, z float32) (float32, float32, float32) {
	if !c.vertex.Projection {
		return x, y, z
	}
	px, py, pz, w := c.projection.Transform(x, y, z)
	if w != 0 && w != 1 {
		px, py, pz = px/w, py/w, pz/w
	}
	return px, py, pz
}
