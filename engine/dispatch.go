package engine

import (
	"fmt"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/schema"
)

var handlers [cmd.OpCount]handler

func init() {
	handlers = [cmd.OpCount]handler{
		cmd.OpContextFinish:                   (*Context).opFinish,
		cmd.OpContextDestroy:                  func(*Context, *cmd.Decoder, uint32) {},
		cmd.OpContextBindRootScript:           (*Context).opBindRoot,
		cmd.OpContextBindProgramFragment:      (*Context).opBindFragment,
		cmd.OpContextBindProgramFragmentStore: (*Context).opBindStore,
		cmd.OpContextBindProgramVertex:        (*Context).opBindVertex,
		cmd.OpAssignName:                      (*Context).opAssignName,
		cmd.OpRemoveName:                      (*Context).opRemoveName,
		cmd.OpObjDestroy:                      (*Context).opObjDestroy,

		cmd.OpElementBegin:      (*Context).opElementBegin,
		cmd.OpElementAdd:        (*Context).opElementAdd,
		cmd.OpElementPredefined: (*Context).opElementPredefined,
		cmd.OpElementCreate:     (*Context).opElementCreate,
		cmd.OpTypeBegin:         (*Context).opTypeBegin,
		cmd.OpTypeAdd:           (*Context).opTypeAdd,
		cmd.OpTypeCreate:        (*Context).opTypeCreate,

		cmd.OpAllocationCreateTyped:          (*Context).opAllocationCreate,
		cmd.OpAllocationData1D:               (*Context).opData1D,
		cmd.OpAllocationData2D:               (*Context).opData2D,
		cmd.OpAllocationRead1D:               (*Context).opRead1D,
		cmd.OpAllocationRead2D:               (*Context).opRead2D,
		cmd.OpAllocationCopy1D:               (*Context).opCopy1D,
		cmd.OpAllocationCopy2D:               (*Context).opCopy2D,
		cmd.OpAllocationResize1D:             (*Context).opResize1D,
		cmd.OpAllocationResize2D:             (*Context).opResize2D,
		cmd.OpAllocationGetType:              (*Context).opGetType,
		cmd.OpAllocationUploadToTexture:      (*Context).opUploadToTexture,
		cmd.OpAllocationUploadToBufferObject: (*Context).opUploadToBufferObject,
		cmd.OpAllocationGenerateMipmaps:      (*Context).opGenerateMipmaps,
		cmd.OpAllocationSyncAll:              (*Context).opSyncAll,
		cmd.OpAllocationIOSend:               (*Context).opIOSend,
		cmd.OpAllocationIOReceive:            (*Context).opIOReceive,
		cmd.OpAdapter1DCreate:                (*Context).opAdapter1D,
		cmd.OpAdapter2DCreate:                (*Context).opAdapter2D,

		cmd.OpSamplerCreate:              (*Context).opSamplerCreate,
		cmd.OpProgramVertexCreate:        (*Context).opProgramVertexCreate,
		cmd.OpProgramFragmentCreate:      (*Context).opProgramFragmentCreate,
		cmd.OpProgramFragmentBindTexture: (*Context).opProgramFragmentBindTexture,
		cmd.OpProgramFragmentBindSampler: (*Context).opProgramFragmentBindSampler,
		cmd.OpProgramStoreCreate:         (*Context).opProgramStoreCreate,

		cmd.OpScriptCBegin:          (*Context).opScriptCBegin,
		cmd.OpScriptSetClearColor:   (*Context).opScriptSetClearColor,
		cmd.OpScriptSetClearDepth:   (*Context).opScriptSetClearDepth,
		cmd.OpScriptSetClearStencil: (*Context).opScriptSetClearStencil,
		cmd.OpScriptSetRoot:         (*Context).opScriptSetRoot,
		cmd.OpScriptSetOrtho:        (*Context).opScriptSetOrtho,
		cmd.OpScriptAddType:         (*Context).opScriptAddType,
		cmd.OpScriptDefineInt:       (*Context).opScriptDefineInt,
		cmd.OpScriptDefineFloat:     (*Context).opScriptDefineFloat,
		cmd.OpScriptCAppendText:     (*Context).opScriptAppendText,
		cmd.OpScriptCCreate:         (*Context).opScriptCreate,
		cmd.OpScriptBindAllocation:  (*Context).opScriptBindAllocation,
		cmd.OpContextUpdateSurface:  (*Context).opUpdateSurface,
	}
}

// dispatch applies one record. Unknown opcodes mean the ring is corrupt.
func (c *Context) dispatch(op cmd.Op, payload []byte) {
	if !op.Valid() || handlers[op] == nil {
		panic(fmt.Sprintf("engine: unknown command %s", op))
	}
	d, seq := cmd.NewDecoder(payload)
	handlers[op](c, d, seq)
}

func (c *Context) replyHandle(op cmd.Op, seq, id uint32) {
	c.reply(op, seq, func(e *cmd.Encoder) { e.U32(id) })
}

func (c *Context) opFinish(_ *cmd.Decoder, seq uint32) {
	c.finish = append(c.finish, seq)
}

func (c *Context) opUpdateSurface(_ *cmd.Decoder, seq uint32) {
	c.stageMu.Lock()
	s := c.staged
	c.staged = nil
	c.stageMu.Unlock()

	if s == nil {
		slogger().Error("update surface: nothing staged")
		c.reply(cmd.OpContextUpdateSurface, seq, func(e *cmd.Encoder) { e.Bool(false) })
		return
	}
	if s != c.surf {
		if err := c.surf.Release(); err != nil {
			slogger().Warn("release surface", "err", err)
		}
		c.surf = s
	}
	w, h := s.Size()
	slogger().Debug("surface updated", "width", w, "height", h)
	c.reply(cmd.OpContextUpdateSurface, seq, func(e *cmd.Encoder) { e.Bool(true) })
}

func (c *Context) opBindRoot(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	if id == 0 {
		c.root = nil
		return
	}
	s := c.script(id)
	if s == nil {
		slogger().Error("bind root: unknown script", "handle", id)
		return
	}
	if !s.env.Root {
		slogger().Warn("binding a script not declared as root", "script", id)
	}
	c.root = s
}

func (c *Context) opBindFragment(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	p := c.programFragment(id)
	if id != 0 && p == nil {
		slogger().Error("bind fragment: unknown program", "handle", id)
		return
	}
	c.SetFragment(p)
}

func (c *Context) opBindStore(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	p := c.programStore(id)
	if id != 0 && p == nil {
		slogger().Error("bind fragment store: unknown program", "handle", id)
		return
	}
	c.SetFragmentStore(p)
}

func (c *Context) opBindVertex(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	p := c.programVertex(id)
	if id != 0 && p == nil {
		slogger().Error("bind vertex: unknown program", "handle", id)
		return
	}
	c.SetVertex(p)
}

func (c *Context) opAssignName(d *cmd.Decoder, _ uint32) {
	id, name := d.U32(), d.Str()
	o := c.reg.objects[id]
	if o == nil || name == "" {
		slogger().Error("assign name: unknown object or empty name", "handle", id, "name", name)
		return
	}
	c.reg.assignName(o, name)
}

func (c *Context) opRemoveName(d *cmd.Decoder, _ uint32) {
	if o := c.reg.objects[d.U32()]; o != nil {
		c.reg.removeName(o)
	}
}

func (c *Context) opObjDestroy(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	o := c.reg.objects[id]
	if o == nil {
		slogger().Error("destroy: unknown object", "handle", id)
		return
	}
	switch v := o.Value.(type) {
	case *ProgramVertex:
		if v == c.defaults.vertex {
			slogger().Error("destroy: built-in program", "handle", id)
			return
		}
		if c.vertex == v {
			c.SetVertex(nil)
		}
	case *ProgramFragment:
		if v == c.defaults.fragment {
			slogger().Error("destroy: built-in program", "handle", id)
			return
		}
		if c.fragment == v {
			c.SetFragment(nil)
		}
	case *ProgramStore:
		if v == c.defaults.store {
			slogger().Error("destroy: built-in program", "handle", id)
			return
		}
		if c.store == v {
			c.SetFragmentStore(nil)
		}
	case *schema.Type:
		delete(c.typeIDs, v)
	}
	c.release(c.reg.remove(id))
}

func (c *Context) opElementBegin(*cmd.Decoder, uint32) { c.elemB.Begin() }

func (c *Context) opElementAdd(d *cmd.Decoder, _ uint32) {
	kind, dt, norm, bits, name := schema.DataKind(d.U8()), schema.DataType(d.U8()), d.Bool(), d.U32(), d.Str()
	c.elemB.AddNamed(name, kind, dt, norm, bits)
}

func (c *Context) opElementPredefined(d *cmd.Decoder, _ uint32) {
	c.elemB.AddPredefined(schema.Predefined(d.U8()))
}

func (c *Context) opElementCreate(_ *cmd.Decoder, seq uint32) {
	var id uint32
	if e, err := c.elemB.Create(); err != nil {
		slogger().Error("element create", "err", err)
	} else {
		id = c.reg.add(KindElement, e).ID
	}
	c.replyHandle(cmd.OpElementCreate, seq, id)
}

func (c *Context) opTypeBegin(d *cmd.Decoder, _ uint32) {
	id := d.U32()
	e := c.element(id)
	if e == nil {
		slogger().Error("type begin: unknown element", "handle", id)
	}
	c.typeB.Begin(e)
}

func (c *Context) opTypeAdd(d *cmd.Decoder, _ uint32) {
	c.typeB.Add(schema.Dimension(d.U8()), d.U32())
}

func (c *Context) opTypeCreate(_ *cmd.Decoder, seq uint32) {
	var id uint32
	if t, err := c.typeB.Create(); err != nil {
		slogger().Error("type create", "err", err)
	} else {
		id = c.typeID(t)
	}
	c.replyHandle(cmd.OpTypeCreate, seq, id)
}

// typeID returns the handle of t, registering it on first use.
func (c *Context) typeID(t *schema.Type) uint32 {
	if id, ok := c.typeIDs[t]; ok {
		return id
	}
	id := c.reg.add(KindType, t).ID
	c.typeIDs[t] = id
	return id
}

func (c *Context) opAllocationCreate(d *cmd.Decoder, seq uint32) {
	tid, usage := d.U32(), Usage(d.U32())
	var id uint32
	if t := c.typ(tid); t == nil {
		slogger().Error("allocation create: unknown type", "handle", tid)
	} else {
		id = c.reg.add(KindAllocation, newAllocation(t, usage)).ID
	}
	c.replyHandle(cmd.OpAllocationCreateTyped, seq, id)
}

// allocArg decodes an allocation handle, logging unknown ones.
func (c *Context) allocArg(d *cmd.Decoder, op string) (*Allocation, uint32) {
	id := d.U32()
	a := c.allocation(id)
	if a == nil {
		slogger().Error(op+": unknown allocation", "handle", id)
	}
	return a, id
}

func (c *Context) opData1D(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "data1D")
	lod, face, off, count, data := int(d.U32()), int(d.U32()), d.U32(), d.U32(), d.Blob()
	if a == nil {
		return
	}
	if !a.writeAllowed {
		slogger().Error("data1D: allocation is not writable", "alloc", id, "usage", a.usage)
		return
	}
	if err := a.Write1D(lod, face, off, count, data); err != nil {
		slogger().Error("data1D", "alloc", id, "offset", off, "count", count, "err", err)
	}
}

func (c *Context) opData2D(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "data2D")
	lod, face := int(d.U32()), int(d.U32())
	xoff, yoff, w, h, data := d.U32(), d.U32(), d.U32(), d.U32(), d.Blob()
	if a == nil {
		return
	}
	if !a.writeAllowed {
		slogger().Error("data2D: allocation is not writable", "alloc", id, "usage", a.usage)
		return
	}
	if err := a.Write2D(lod, face, xoff, yoff, w, h, data); err != nil {
		slogger().Error("data2D", "alloc", id, "xoff", xoff, "yoff", yoff, "w", w, "h", h, "err", err)
	}
}

// Read replies carry an ok flag followed by the bytes.
func (c *Context) replyBytes(op cmd.Op, seq uint32, data []byte, err error) {
	c.reply(op, seq, func(e *cmd.Encoder) {
		e.Bool(err == nil).Blob(data)
	})
}

func (c *Context) opRead1D(d *cmd.Decoder, seq uint32) {
	a, id := c.allocArg(d, "read1D")
	lod, face, off, count := int(d.U32()), int(d.U32()), d.U32(), d.U32()
	var (
		data []byte
		err  = ErrOutOfBounds
	)
	if a != nil {
		if data, err = a.Read1D(lod, face, off, count); err != nil {
			slogger().Error("read1D", "alloc", id, "offset", off, "count", count, "err", err)
		}
	}
	c.replyBytes(cmd.OpAllocationRead1D, seq, data, err)
}

func (c *Context) opRead2D(d *cmd.Decoder, seq uint32) {
	a, id := c.allocArg(d, "read2D")
	lod, face := int(d.U32()), int(d.U32())
	xoff, yoff, w, h := d.U32(), d.U32(), d.U32(), d.U32()
	var (
		data []byte
		err  = ErrOutOfBounds
	)
	if a != nil {
		if data, err = a.Read2D(lod, face, xoff, yoff, w, h); err != nil {
			slogger().Error("read2D", "alloc", id, "err", err)
		}
	}
	c.replyBytes(cmd.OpAllocationRead2D, seq, data, err)
}

func (c *Context) sliceArg(d *cmd.Decoder, op string) (Slice, bool) {
	a, _ := c.allocArg(d, op)
	s := Slice{Alloc: a, LOD: int(d.U32()), Face: int(d.U32())}
	return s, a != nil
}

func (c *Context) opCopy1D(d *cmd.Decoder, _ uint32) {
	dst, okDst := c.sliceArg(d, "copy1D")
	dstOff, count := d.U32(), d.U32()
	src, okSrc := c.sliceArg(d, "copy1D")
	srcOff := d.U32()
	if !okDst || !okSrc {
		return
	}
	if !dst.Alloc.writeAllowed {
		slogger().Error("copy1D: destination is not writable", "usage", dst.Alloc.usage)
		return
	}
	if err := Copy1D(dst, dstOff, src, srcOff, count); err != nil {
		slogger().Error("copy1D", "count", count, "err", err)
	}
}

func (c *Context) opCopy2D(d *cmd.Decoder, _ uint32) {
	dst, okDst := c.sliceArg(d, "copy2D")
	dx, dy, w, h := d.U32(), d.U32(), d.U32(), d.U32()
	src, okSrc := c.sliceArg(d, "copy2D")
	sx, sy := d.U32(), d.U32()
	if !okDst || !okSrc {
		return
	}
	if !dst.Alloc.writeAllowed {
		slogger().Error("copy2D: destination is not writable", "usage", dst.Alloc.usage)
		return
	}
	if err := Copy2D(dst, dx, dy, src, sx, sy, w, h); err != nil {
		slogger().Error("copy2D", "w", w, "h", h, "err", err)
	}
}

func (c *Context) opResize1D(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "resize1D")
	x := d.U32()
	if a == nil {
		return
	}
	if err := a.Resize1D(x); err != nil {
		slogger().Error("resize1D", "alloc", id, "x", x, "err", err)
	}
}

func (c *Context) opResize2D(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "resize2D")
	x, y := d.U32(), d.U32()
	if a == nil {
		return
	}
	if err := a.Resize2D(x, y); err != nil {
		slogger().Error("resize2D", "alloc", id, "x", x, "y", y, "err", err)
	}
}

// opGetType replies with the handle of the current type of an allocation.
func (c *Context) opGetType(d *cmd.Decoder, seq uint32) {
	a, _ := c.allocArg(d, "getType")
	var id uint32
	if a != nil {
		id = c.typeID(a.typ)
	}
	c.replyHandle(cmd.OpAllocationGetType, seq, id)
}

func (c *Context) opUploadToTexture(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "uploadToTexture")
	base := int(d.U32())
	if a == nil {
		return
	}
	if err := a.UploadToTexture(c.dev, base); err != nil {
		slogger().Error("uploadToTexture", "alloc", id, "err", err)
	}
}

func (c *Context) opUploadToBufferObject(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "uploadToBufferObject")
	if a == nil {
		return
	}
	if err := a.UploadToBufferObject(c.dev); err != nil {
		slogger().Error("uploadToBufferObject", "alloc", id, "err", err)
	}
}

func (c *Context) opGenerateMipmaps(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "generateMipmaps")
	if a == nil {
		return
	}
	if err := a.generateMipmaps(c.workers()); err != nil {
		slogger().Error("generateMipmaps", "alloc", id, "err", err)
	}
}

func (c *Context) opSyncAll(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "syncAll")
	src := Usage(d.U32())
	if a == nil {
		return
	}
	if err := a.SyncAll(c.dev, src); err != nil {
		slogger().Error("syncAll", "alloc", id, "source", src, "err", err)
	}
}

func (c *Context) opIOSend(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "ioSend")
	if a == nil {
		return
	}
	if a.usage&UsageIOOutput == 0 {
		slogger().Error("ioSend", "alloc", id, "err", ErrIODisabled)
		return
	}
	if c.io == nil {
		slogger().Warn("ioSend: no IO endpoint", "alloc", id)
		return
	}
	c.io.Send(id, append([]byte(nil), a.Bytes()...))
}

func (c *Context) opIOReceive(d *cmd.Decoder, _ uint32) {
	a, id := c.allocArg(d, "ioReceive")
	if a == nil {
		return
	}
	if a.usage&UsageIOInput == 0 {
		slogger().Error("ioReceive", "alloc", id, "err", ErrIODisabled)
		return
	}
	if c.io == nil {
		slogger().Warn("ioReceive: no IO endpoint", "alloc", id)
		return
	}
	if c.io.Receive(id, a.Bytes()) {
		a.touch()
	}
}

func (c *Context) opAdapter1D(d *cmd.Decoder, seq uint32) {
	c.adapter(d, seq, cmd.OpAdapter1DCreate, 1)
}

func (c *Context) opAdapter2D(d *cmd.Decoder, seq uint32) {
	c.adapter(d, seq, cmd.OpAdapter2DCreate, 2)
}

func (c *Context) adapter(d *cmd.Decoder, seq uint32, op cmd.Op, dims int) {
	parent, pid := c.allocArg(d, "adapter")
	lod, face, yz := int(d.U32()), int(d.U32()), d.U32()
	var id uint32
	if parent != nil {
		if a, err := newAdapter(parent, dims, lod, face, yz); err != nil {
			slogger().Error("adapter create", "parent", pid, "err", err)
		} else {
			id = c.reg.add(KindAllocation, a).ID
		}
	}
	c.replyHandle(op, seq, id)
}

func (c *Context) opSamplerCreate(d *cmd.Decoder, seq uint32) {
	s := c.newSampler(d.U8(), d.U8(), d.U8(), d.U8())
	c.replyHandle(cmd.OpSamplerCreate, seq, s.id)
}

func (c *Context) opProgramVertexCreate(d *cmd.Decoder, seq uint32) {
	p := &ProgramVertex{Projection: d.Bool()}
	p.id = c.reg.add(KindProgramVertex, p).ID
	c.replyHandle(cmd.OpProgramVertexCreate, seq, p.id)
}

func (c *Context) opProgramFragmentCreate(d *cmd.Decoder, seq uint32) {
	slots := d.U32()
	if slots > uint32(c.cfg.FragmentSlots) {
		slogger().Error("program fragment create", "slots", slots, "max", c.cfg.FragmentSlots)
		c.replyHandle(cmd.OpProgramFragmentCreate, seq, 0)
		return
	}
	p := newProgramFragment(int(slots))
	p.id = c.reg.add(KindProgramFragment, p).ID
	c.replyHandle(cmd.OpProgramFragmentCreate, seq, p.id)
}

func (c *Context) opProgramFragmentBindTexture(d *cmd.Decoder, _ uint32) {
	pid, slot, aid := d.U32(), int(d.U32()), d.U32()
	p := c.programFragment(pid)
	if p == nil {
		slogger().Error("bind texture: unknown program", "handle", pid)
		return
	}
	a := c.allocation(aid)
	if aid != 0 && a == nil {
		slogger().Error("bind texture: unknown allocation", "handle", aid)
		return
	}
	if err := p.BindTexture(slot, a); err != nil {
		slogger().Error("bind texture", "err", err)
		return
	}
	if c.fragment == p {
		p.setup(c)
	}
}

func (c *Context) opProgramFragmentBindSampler(d *cmd.Decoder, _ uint32) {
	pid, slot, sid := d.U32(), int(d.U32()), d.U32()
	p := c.programFragment(pid)
	if p == nil {
		slogger().Error("bind sampler: unknown program", "handle", pid)
		return
	}
	s := c.sampler(sid)
	if sid != 0 && s == nil {
		slogger().Error("bind sampler: unknown sampler", "handle", sid)
		return
	}
	if err := p.BindSampler(slot, s); err != nil {
		slogger().Error("bind sampler", "err", err)
	}
}

func (c *Context) opProgramStoreCreate(d *cmd.Decoder, seq uint32) {
	p := &ProgramStore{DepthFunc: depthFunc(d.U32()), DepthWrite: d.Bool(), Blend: d.Bool()}
	p.id = c.reg.add(KindProgramStore, p).ID
	c.replyHandle(cmd.OpProgramStoreCreate, seq, p.id)
}

func (c *Context) opScriptCBegin(*cmd.Decoder, uint32) { c.scriptC.begin(c.cfg.ScriptSlots) }

func (c *Context) opScriptSetClearColor(d *cmd.Decoder, _ uint32) {
	c.scriptC.env.ClearColor = [4]float32{d.F32(), d.F32(), d.F32(), d.F32()}
}

func (c *Context) opScriptSetClearDepth(d *cmd.Decoder, _ uint32) {
	c.scriptC.env.ClearDepth = d.F32()
}

func (c *Context) opScriptSetClearStencil(d *cmd.Decoder, _ uint32) {
	c.scriptC.env.ClearStencil = d.U32()
}

func (c *Context) opScriptSetRoot(d *cmd.Decoder, _ uint32) { c.scriptC.env.Root = d.Bool() }

func (c *Context) opScriptSetOrtho(d *cmd.Decoder, _ uint32) { c.scriptC.env.Ortho = d.Bool() }

func (c *Context) opScriptAddType(d *cmd.Decoder, _ uint32) {
	slot, tid := int(d.U32()), d.U32()
	t := c.typ(tid)
	if t == nil || slot < 0 || slot >= len(c.scriptC.slotTypes) {
		slogger().Error("script add type: bad slot or type", "slot", slot, "type", tid)
		return
	}
	c.scriptC.slotTypes[slot] = t
}

func (c *Context) opScriptDefineInt(d *cmd.Decoder, _ uint32) {
	c.scriptC.ints = append(c.scriptC.ints, intDefine{name: d.Str(), v: d.I32()})
}

func (c *Context) opScriptDefineFloat(d *cmd.Decoder, _ uint32) {
	c.scriptC.floats = append(c.scriptC.floats, floatDefine{name: d.Str(), v: d.F32()})
}

func (c *Context) opScriptAppendText(d *cmd.Decoder, _ uint32) {
	c.scriptC.text.Write(d.Blob())
}

func (c *Context) opScriptCreate(_ *cmd.Decoder, seq uint32) {
	var id uint32
	if s := c.createScript(); s != nil {
		id = s.id
	}
	c.replyHandle(cmd.OpScriptCCreate, seq, id)
}

func (c *Context) opScriptBindAllocation(d *cmd.Decoder, _ uint32) {
	sid, aid, slot := d.U32(), d.U32(), int(d.U32())
	s := c.script(sid)
	if s == nil {
		slogger().Error("script bind allocation: unknown script", "handle", sid)
		return
	}
	a := c.allocation(aid)
	if aid != 0 && a == nil {
		slogger().Error("script bind allocation: unknown allocation", "handle", aid)
		return
	}
	s.BindAllocation(a, slot)
}
