package gfxrt

import (
	"fmt"
	"sync"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/internal/gpu"
	"github.com/gogpu/gfxrt/render"
	"github.com/gogpu/gfxrt/surface"
)

// Context is the client side of a running engine. It encodes API calls as
// command records and waits on the return ring for calls that produce a
// handle or data.
//
// A Context is safe for concurrent use; calls are serialized so the engine
// sees a single producer.
type Context struct {
	eng     *engine.Context
	hostDev *gpu.Device

	mu        sync.Mutex
	enc       cmd.Encoder
	seq       uint32
	destroyed bool
}

// New starts an engine and returns its client.
//
// Example:
//
//	c := compiler.New()
//	c.Register("root", drawFrame)
//	rs, err := gfxrt.New(gfxrt.WithCompiler(c))
//	if err != nil {
//	    return err
//	}
//	defer rs.Destroy()
func New(opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	var engOpts []engine.Option
	if o.surface != nil {
		engOpts = append(engOpts, engine.WithSurface(o.surface))
	}
	if o.compiler != nil {
		engOpts = append(engOpts, engine.WithCompiler(o.compiler))
	}
	if o.io != nil {
		engOpts = append(engOpts, engine.WithIO(o.io))
	}

	rs := &Context{}
	if o.device != nil && o.device.Device() != nil {
		info := render.Info(o.device)
		dev, err := gpu.FromProvider(render.Provider(o.device))
		if err != nil {
			return nil, fmt.Errorf("gfxrt: host device %s: %w", info.Name, err)
		}
		slogger().Info("gfxrt: using host device", "adapter", info.Name, "type", info.Type, "format", info.SurfaceFormat)
		rs.hostDev = dev
		engOpts = append(engOpts, engine.WithDevice(dev))
	}

	eng, err := engine.New(o.cfg, engOpts...)
	if err != nil {
		if rs.hostDev != nil {
			rs.hostDev.Close()
		}
		return nil, fmt.Errorf("gfxrt: start engine: %w", err)
	}
	rs.eng = eng
	return rs, nil
}

// Engine returns the engine behind the client.
func (rs *Context) Engine() *engine.Context { return rs.eng }

// State returns the lifecycle state of the engine.
func (rs *Context) State() engine.State { return rs.eng.State() }

// Frames returns the number of frames presented so far.
func (rs *Context) Frames() uint64 { return rs.eng.Frames() }

// Finish blocks until every command issued before it has been applied and
// the frame they caused, if any, has been presented.
func (rs *Context) Finish() error {
	return rs.call(cmd.OpContextFinish, nil, nil)
}

// Destroy stops the engine. The render goroutine presents a cleared frame,
// releases every object and exits. Later calls on rs return ErrDestroyed.
func (rs *Context) Destroy() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.destroyed {
		return
	}
	rs.destroyed = true
	rs.eng.Destroy()
	if rs.hostDev != nil {
		rs.hostDev.Close()
	}
}

// UpdateSurface replaces the surface the engine draws on. The previous
// surface is released and the next frame is drawn on s.
func (rs *Context) UpdateSurface(s surface.Surface) error {
	if s == nil {
		return fmt.Errorf("gfxrt: update surface: nil surface")
	}
	if err := rs.lock(); err != nil {
		return err
	}
	defer rs.mu.Unlock()
	rs.eng.StageSurface(s)
	var ok bool
	rs.roundTrip(cmd.OpContextUpdateSurface, nil, func(d *cmd.Decoder) { ok = d.Bool() })
	if !ok {
		return fmt.Errorf("gfxrt: update surface: %w", ErrCreateFailed)
	}
	return nil
}

// BindRootScript selects the script drawn every frame. Nil stops drawing.
func (rs *Context) BindRootScript(s *Script) error {
	var id uint32
	if s != nil {
		id = s.id
	}
	return rs.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(id) })
}

// BindProgramVertex binds p outside of scripts. Nil selects the built-in
// default.
func (rs *Context) BindProgramVertex(p *ProgramVertex) error {
	var id uint32
	if p != nil {
		id = p.id
	}
	return rs.send(cmd.OpContextBindProgramVertex, func(e *cmd.Encoder) { e.U32(id) })
}

// BindProgramFragment binds p outside of scripts. Nil selects the built-in
// default.
func (rs *Context) BindProgramFragment(p *ProgramFragment) error {
	var id uint32
	if p != nil {
		id = p.id
	}
	return rs.send(cmd.OpContextBindProgramFragment, func(e *cmd.Encoder) { e.U32(id) })
}

// BindProgramStore binds p outside of scripts. Nil selects the built-in
// default.
func (rs *Context) BindProgramStore(p *ProgramStore) error {
	var id uint32
	if p != nil {
		id = p.id
	}
	return rs.send(cmd.OpContextBindProgramFragmentStore, func(e *cmd.Encoder) { e.U32(id) })
}

// lock takes the producer lock. It fails once the context is destroyed.
func (rs *Context) lock() error {
	rs.mu.Lock()
	if rs.destroyed {
		rs.mu.Unlock()
		return ErrDestroyed
	}
	return nil
}

// enqueue writes one record. rs.mu must be held.
func (rs *Context) enqueue(op cmd.Op, seq uint32, body func(e *cmd.Encoder)) {
	e := rs.enc.Reset(seq)
	if body != nil {
		body(e)
	}
	rs.eng.Commands().Enqueue(uint32(op), e.Bytes())
}

// roundTrip writes a synchronous record and waits for its reply. rs.mu
// must be held.
func (rs *Context) roundTrip(op cmd.Op, body func(e *cmd.Encoder), reply func(d *cmd.Decoder)) {
	rs.seq++
	if rs.seq == 0 {
		rs.seq = 1
	}
	seq := rs.seq
	rs.enqueue(op, seq, body)

	rets := rs.eng.Returns()
	rop, payload, _ := rets.Get(true)
	d, got := cmd.NewDecoder(payload)
	if cmd.Op(rop) != op || got != seq {
		panic(fmt.Sprintf("gfxrt: return sequence mismatch: got %s/%d, want %s/%d", cmd.Op(rop), got, op, seq))
	}
	if reply != nil {
		reply(d)
	}
	rets.Next()
}

func (rs *Context) send(op cmd.Op, body func(e *cmd.Encoder)) error {
	if err := rs.lock(); err != nil {
		return err
	}
	defer rs.mu.Unlock()
	rs.enqueue(op, 0, body)
	return nil
}

func (rs *Context) call(op cmd.Op, body func(e *cmd.Encoder), reply func(d *cmd.Decoder)) error {
	if err := rs.lock(); err != nil {
		return err
	}
	defer rs.mu.Unlock()
	rs.roundTrip(op, body, reply)
	return nil
}

// handleLocked issues a creating command and returns the new handle.
func (rs *Context) handleLocked(op cmd.Op, body func(e *cmd.Encoder)) (uint32, error) {
	var id uint32
	rs.roundTrip(op, body, func(d *cmd.Decoder) { id = d.U32() })
	if id == 0 {
		return 0, fmt.Errorf("%w: %s", ErrCreateFailed, op)
	}
	return id, nil
}

func (rs *Context) handle(op cmd.Op, body func(e *cmd.Encoder)) (uint32, error) {
	if err := rs.lock(); err != nil {
		return 0, err
	}
	defer rs.mu.Unlock()
	return rs.handleLocked(op, body)
}

// Object is implemented by every engine object proxy.
type Object interface {
	Handle() uint32
}

// object is the part shared by all proxies.
type object struct {
	rs   *Context
	id   uint32
	name string
}

// Handle returns the engine handle of the object.
func (o *object) Handle() uint32 { return o.id }

// Name returns the name assigned with SetName.
func (o *object) Name() string { return o.name }

// SetName registers the object under name. Scripts see the name as a
// constant and may look it up at run time. An object can be named once;
// naming it again panics.
func (o *object) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("gfxrt: empty name for object %d", o.id)
	}
	if o.name != "" {
		panic(fmt.Sprintf("gfxrt: object %d already named %q", o.id, o.name))
	}
	if err := o.rs.send(cmd.OpAssignName, func(e *cmd.Encoder) { e.U32(o.id).Str(name) }); err != nil {
		return err
	}
	o.name = name
	return nil
}

// RemoveName drops the name of the object so it can be named again.
func (o *object) RemoveName() error {
	if err := o.rs.send(cmd.OpRemoveName, func(e *cmd.Encoder) { e.U32(o.id) }); err != nil {
		return err
	}
	o.name = ""
	return nil
}

// Destroy releases the object on the engine. Built-in programs cannot be
// destroyed.
func (o *object) Destroy() error {
	return o.rs.send(cmd.OpObjDestroy, func(e *cmd.Encoder) { e.U32(o.id) })
}
