package gfxrt

import (
	"fmt"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/schema"
)

// Element is a created element layout.
type Element struct {
	object
	elem *schema.Element
}

// Schema returns the layout.
func (e *Element) Schema() *schema.Element { return e.elem }

// CreateElement builds an element from components. The layout is validated
// before anything reaches the engine.
func (rs *Context) CreateElement(components ...schema.Component) (*Element, error) {
	var b schema.ElementBuilder
	b.Begin()
	for _, c := range components {
		b.AddNamed(c.Name, c.Kind, c.Type, c.Normalized, c.Bits)
	}
	elem, err := b.Create()
	if err != nil {
		return nil, fmt.Errorf("gfxrt: create element: %w", err)
	}

	if err := rs.lock(); err != nil {
		return nil, err
	}
	defer rs.mu.Unlock()
	rs.enqueue(cmd.OpElementBegin, 0, nil)
	for _, c := range elem.Components() {
		rs.enqueue(cmd.OpElementAdd, 0, func(e *cmd.Encoder) {
			e.U8(uint8(c.Kind)).U8(uint8(c.Type)).Bool(c.Normalized).U32(c.Bits).Str(c.Name)
		})
	}
	id, err := rs.handleLocked(cmd.OpElementCreate, nil)
	if err != nil {
		return nil, err
	}
	return &Element{object: object{rs: rs, id: id}, elem: elem}, nil
}

// PredefinedElement creates one of the built-in layouts.
func (rs *Context) PredefinedElement(p schema.Predefined) (*Element, error) {
	elem := p.Element()
	if elem == nil {
		return nil, fmt.Errorf("gfxrt: unknown predefined element %d", p)
	}
	if err := rs.lock(); err != nil {
		return nil, err
	}
	defer rs.mu.Unlock()
	rs.enqueue(cmd.OpElementBegin, 0, nil)
	rs.enqueue(cmd.OpElementPredefined, 0, func(e *cmd.Encoder) { e.U8(uint8(p)) })
	id, err := rs.handleLocked(cmd.OpElementCreate, nil)
	if err != nil {
		return nil, err
	}
	return &Element{object: object{rs: rs, id: id}, elem: elem}, nil
}

// Type is a created type.
type Type struct {
	object
	elem *Element
	typ  *schema.Type
}

// Element returns the element of the type.
func (t *Type) Element() *Element { return t.elem }

// Schema returns the layout and extents.
func (t *Type) Schema() *schema.Type { return t.typ }

// Count returns the instance count of the base mip level.
func (t *Type) Count() int { return t.typ.Count() }

// TypeBuilder collects the extents of a type before CreateType.
type TypeBuilder struct {
	X, Y, Z uint32
	Faces   bool
	Mips    bool
}

// CreateType combines e with the extents in b.
func (rs *Context) CreateType(e *Element, b TypeBuilder) (*Type, error) {
	if e == nil {
		return nil, fmt.Errorf("gfxrt: create type: %w", schema.ErrNoElement)
	}
	st, err := schema.NewType(e.elem, b.X, b.Y, b.Z, b.Faces, b.Mips)
	if err != nil {
		return nil, fmt.Errorf("gfxrt: create type: %w", err)
	}
	if err := rs.lock(); err != nil {
		return nil, err
	}
	defer rs.mu.Unlock()
	id, err := rs.createTypeLocked(e, st)
	if err != nil {
		return nil, err
	}
	return &Type{object: object{rs: rs, id: id}, elem: e, typ: st}, nil
}

func (rs *Context) createTypeLocked(e *Element, st *schema.Type) (uint32, error) {
	rs.enqueue(cmd.OpTypeBegin, 0, func(enc *cmd.Encoder) { enc.U32(e.id) })
	add := func(d schema.Dimension, v uint32) {
		rs.enqueue(cmd.OpTypeAdd, 0, func(enc *cmd.Encoder) { enc.U8(uint8(d)).U32(v) })
	}
	add(schema.DimX, st.X())
	if st.Y() > 0 {
		add(schema.DimY, st.Y())
	}
	if st.Z() > 0 {
		add(schema.DimZ, st.Z())
	}
	if st.HasMips() {
		add(schema.DimLOD, 1)
	}
	if st.HasFaces() {
		add(schema.DimFace, 1)
	}
	return rs.handleLocked(cmd.OpTypeCreate, nil)
}
