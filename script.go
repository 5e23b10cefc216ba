package gfxrt

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxrt/internal/cmd"
)

// ScriptC collects the environment, slot types, constants and source text
// of a script. Nothing reaches the engine until Create, which sends the
// whole description at once.
type ScriptC struct {
	rs *Context

	clearColor   [4]float32
	clearDepth   float32
	clearStencil uint32
	root         bool
	ortho        bool

	types  map[int]*Type
	ints   []intConst
	floats []floatConst
	text   string
	err    error
}

type intConst struct {
	name string
	v    int32
}

type floatConst struct {
	name string
	v    float32
}

// NewScriptC returns a script builder with the default environment: clear
// to opaque black, depth 1, stencil 0, orthographic projection, not root.
func (rs *Context) NewScriptC() *ScriptC {
	return &ScriptC{
		rs:         rs,
		clearColor: [4]float32{0, 0, 0, 1},
		clearDepth: 1,
		ortho:      true,
		types:      make(map[int]*Type),
	}
}

func (b *ScriptC) SetClearColor(r, g, bl, a float32) *ScriptC {
	b.clearColor = [4]float32{r, g, bl, a}
	return b
}

func (b *ScriptC) SetClearDepth(d float32) *ScriptC { b.clearDepth = d; return b }

func (b *ScriptC) SetClearStencil(s uint32) *ScriptC { b.clearStencil = s; return b }

// SetRoot marks the script as drawable by BindRootScript.
func (b *ScriptC) SetRoot(root bool) *ScriptC { b.root = root; return b }

// SetOrtho selects a pixel space orthographic projection for root frames.
func (b *ScriptC) SetOrtho(ortho bool) *ScriptC { b.ortho = ortho; return b }

// AddType declares the type of the allocation expected in slot. The
// preamble gets SLOT<n>_<component> offsets and SLOT<n>_STRIDE.
func (b *ScriptC) AddType(slot int, t *Type) *ScriptC {
	slots := b.rs.eng.Config().ScriptSlots
	switch {
	case slot < 0 || slot >= slots:
		b.err = errors.Join(b.err, fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, slot, slots))
	case t == nil:
		b.err = errors.Join(b.err, fmt.Errorf("gfxrt: nil type for slot %d", slot))
	default:
		b.types[slot] = t
	}
	return b
}

// DefineInt adds an integer constant to the preamble.
func (b *ScriptC) DefineInt(name string, v int32) *ScriptC {
	if name == "" {
		b.err = errors.Join(b.err, errors.New("gfxrt: empty constant name"))
		return b
	}
	b.ints = append(b.ints, intConst{name, v})
	return b
}

// DefineFloat adds a float constant to the preamble.
func (b *ScriptC) DefineFloat(name string, v float32) *ScriptC {
	if name == "" {
		b.err = errors.Join(b.err, errors.New("gfxrt: empty constant name"))
		return b
	}
	b.floats = append(b.floats, floatConst{name, v})
	return b
}

// SetText sets the script source.
func (b *ScriptC) SetText(src string) *ScriptC { b.text = src; return b }

// Create compiles the script on the engine. A script that fails to compile
// is still created; it draws nothing when bound.
func (b *ScriptC) Create() (*Script, error) {
	if b.err != nil {
		return nil, fmt.Errorf("gfxrt: script: %w", b.err)
	}
	rs := b.rs
	if err := rs.lock(); err != nil {
		return nil, err
	}
	defer rs.mu.Unlock()

	rs.enqueue(cmd.OpScriptCBegin, 0, nil)
	rs.enqueue(cmd.OpScriptSetClearColor, 0, func(e *cmd.Encoder) {
		e.F32(b.clearColor[0]).F32(b.clearColor[1]).F32(b.clearColor[2]).F32(b.clearColor[3])
	})
	rs.enqueue(cmd.OpScriptSetClearDepth, 0, func(e *cmd.Encoder) { e.F32(b.clearDepth) })
	rs.enqueue(cmd.OpScriptSetClearStencil, 0, func(e *cmd.Encoder) { e.U32(b.clearStencil) })
	rs.enqueue(cmd.OpScriptSetRoot, 0, func(e *cmd.Encoder) { e.Bool(b.root) })
	rs.enqueue(cmd.OpScriptSetOrtho, 0, func(e *cmd.Encoder) { e.Bool(b.ortho) })
	for slot, t := range b.types {
		rs.enqueue(cmd.OpScriptAddType, 0, func(e *cmd.Encoder) { e.U32(uint32(slot)).U32(t.id) })
	}
	for _, c := range b.ints {
		rs.enqueue(cmd.OpScriptDefineInt, 0, func(e *cmd.Encoder) { e.Str(c.name).I32(c.v) })
	}
	for _, c := range b.floats {
		rs.enqueue(cmd.OpScriptDefineFloat, 0, func(e *cmd.Encoder) { e.Str(c.name).F32(c.v) })
	}
	chunk := rs.eng.Commands().MaxPayload() - 8
	for text := b.text; text != ""; {
		n := min(len(text), chunk)
		part := text[:n]
		rs.enqueue(cmd.OpScriptCAppendText, 0, func(e *cmd.Encoder) { e.Str(part) })
		text = text[n:]
	}
	id, err := rs.handleLocked(cmd.OpScriptCCreate, nil)
	if err != nil {
		return nil, err
	}
	return &Script{object: object{rs: rs, id: id}, root: b.root, slots: rs.eng.Config().ScriptSlots}, nil
}

// Script is a created script.
type Script struct {
	object
	root  bool
	slots int
}

// Root reports whether the script was created with SetRoot(true).
func (s *Script) Root() bool { return s.root }

// BindAllocation binds a to slot. Nil clears the slot.
func (s *Script) BindAllocation(a *Allocation, slot int) error {
	if slot < 0 || slot >= s.slots {
		return fmt.Errorf("gfxrt: script %d: %w: slot %d of %d", s.id, ErrOutOfRange, slot, s.slots)
	}
	var id uint32
	if a != nil {
		id = a.id
	}
	return s.rs.send(cmd.OpScriptBindAllocation, func(e *cmd.Encoder) { e.U32(s.id).U32(id).U32(uint32(slot)) })
}
