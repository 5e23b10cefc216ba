package engine

import (
	"fmt"

	"github.com/gogpu/gfxrt/schema"
)

// Kind classifies registry objects.
type Kind uint8

const (
	KindElement Kind = iota + 1
	KindType
	KindAllocation
	KindSampler
	KindScript
	KindProgramVertex
	KindProgramFragment
	KindProgramStore
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindType:
		return "type"
	case KindAllocation:
		return "allocation"
	case KindSampler:
		return "sampler"
	case KindScript:
		return "script"
	case KindProgramVertex:
		return "program_vertex"
	case KindProgramFragment:
		return "program_fragment"
	case KindProgramStore:
		return "program_store"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Object is a registry entry. Handles handed to the client are Object IDs;
// 0 is never a valid handle.
type Object struct {
	ID    uint32
	Kind  Kind
	Name  string
	Value any
}

// registry maps handles to objects. It is owned by the render goroutine.
type registry struct {
	objects map[uint32]*Object
	next    uint32
	named   []*Object // assignment order, scanned linearly by lookupName
}

func newRegistry() registry {
	return registry{objects: make(map[uint32]*Object), next: 1}
}

func (r *registry) add(kind Kind, v any) *Object {
	o := &Object{ID: r.next, Kind: kind, Value: v}
	r.next++
	r.objects[o.ID] = o
	return o
}

func (r *registry) get(id uint32, kind Kind) *Object {
	o := r.objects[id]
	if o == nil || o.Kind != kind {
		return nil
	}
	return o
}

func (r *registry) remove(id uint32) *Object {
	o := r.objects[id]
	if o == nil {
		return nil
	}
	delete(r.objects, id)
	r.removeName(o)
	return o
}

// assignName names o. Names are assign-once; naming an object twice is a
// broken invariant of the caller.
func (r *registry) assignName(o *Object, name string) {
	if o.Name != "" {
		panic(fmt.Sprintf("engine: %s %d already named %q, cannot rename to %q", o.Kind, o.ID, o.Name, name))
	}
	o.Name = name
	r.named = append(r.named, o)
}

func (r *registry) removeName(o *Object) {
	for i, n := range r.named {
		if n == o {
			r.named = append(r.named[:i], r.named[i+1:]...)
			break
		}
	}
	o.Name = ""
}

func (r *registry) lookupName(name string) *Object {
	for _, o := range r.named {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Lookups by kind. Each returns nil for unknown handles or kind mismatches.

func (c *Context) element(id uint32) *schema.Element {
	if o := c.reg.get(id, KindElement); o != nil {
		return o.Value.(*schema.Element)
	}
	return nil
}

func (c *Context) typ(id uint32) *schema.Type {
	if o := c.reg.get(id, KindType); o != nil {
		return o.Value.(*schema.Type)
	}
	return nil
}

func (c *Context) allocation(id uint32) *Allocation {
	if o := c.reg.get(id, KindAllocation); o != nil {
		return o.Value.(*Allocation)
	}
	return nil
}

func (c *Context) sampler(id uint32) *Sampler {
	if o := c.reg.get(id, KindSampler); o != nil {
		return o.Value.(*Sampler)
	}
	return nil
}

func (c *Context) script(id uint32) *Script {
	if o := c.reg.get(id, KindScript); o != nil {
		return o.Value.(*Script)
	}
	return nil
}

func (c *Context) programVertex(id uint32) *ProgramVertex {
	if o := c.reg.get(id, KindProgramVertex); o != nil {
		return o.Value.(*ProgramVertex)
	}
	return nil
}

func (c *Context) programFragment(id uint32) *ProgramFragment {
	if o := c.reg.get(id, KindProgramFragment); o != nil {
		return o.Value.(*ProgramFragment)
	}
	return nil
}

func (c *Context) programStore(id uint32) *ProgramStore {
	if o := c.reg.get(id, KindProgramStore); o != nil {
		return o.Value.(*ProgramStore)
	}
	return nil
}

// LookupName returns the object registered under name, or nil. Render
// goroutine only.
func (c *Context) LookupName(name string) *Object { return c.reg.lookupName(name) }
