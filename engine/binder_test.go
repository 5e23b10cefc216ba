package engine

import (
	"strings"
	"testing"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/internal/gpu"
	"github.com/gogpu/gfxrt/schema"
)

func (h *harness) programVertex(projection bool) uint32 {
	return h.handle(cmd.OpProgramVertexCreate, func(e *cmd.Encoder) { e.Bool(projection) })
}

func (h *harness) programStore() uint32 {
	return h.handle(cmd.OpProgramStoreCreate, func(e *cmd.Encoder) { e.U32(1).Bool(true).Bool(false) })
}

// directScript registers a script running fn without going through a
// compiler.
func (h *harness) directScript(fn EntryPoint) *Script {
	s := newScript(h.c.cfg.ScriptSlots, 1)
	s.id = h.c.reg.add(KindScript, s).ID
	s.program = fn
	return s
}

func TestSetNilSelectsDefault(t *testing.T) {
	h := newHarness(t)
	c := h.c
	pv := c.programVertex(h.programVertex(false))
	c.SetVertex(pv)
	if c.Vertex() != pv {
		t.Fatal("SetVertex did not bind")
	}
	c.SetVertex(nil)
	if c.Vertex() != c.defaults.vertex || c.Vertex() == nil {
		t.Errorf("SetVertex(nil) bound %v, want the default", c.Vertex())
	}
	c.SetFragment(nil)
	c.SetFragmentStore(nil)
	if c.Fragment() != c.defaults.fragment || c.FragmentStore() != c.defaults.store {
		t.Error("nil fragment bindings did not select the defaults")
	}
}

func TestRunScriptRestoresBindings(t *testing.T) {
	tests := []struct {
		name  string
		end   func(env *Env) bool
		frame bool
	}{
		{"returns", func(*Env) bool { return true }, true},
		{"aborts", func(env *Env) bool { env.Abort("bad slot %d", 3); return true }, false},
		{"panics", func(*Env) bool { panic("boom") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			c := h.c
			outerV := c.programVertex(h.programVertex(true))
			innerV := h.programVertex(false)
			innerS := h.programStore()
			c.SetVertex(outerV)
			before := c.snapshot()

			s := h.directScript(func(env *Env, _ uint32) bool {
				env.BindProgramVertex(innerV)
				env.BindProgramFragmentStore(innerS)
				if c.Vertex().ID() != innerV {
					t.Error("binding inside the script did not take effect")
				}
				return tt.end(env)
			})
			if got := c.RunScript(s, 0); got != tt.frame {
				t.Errorf("RunScript() = %v, want %v", got, tt.frame)
			}
			if c.snapshot() != before {
				t.Errorf("bindings after run = %+v, want %+v", c.snapshot(), before)
			}
			if c.dev.Active(gpu.StageVertex) != outerV.id {
				t.Errorf("device vertex program = %d, want %d", c.dev.Active(gpu.StageVertex), outerV.id)
			}
		})
	}
}

func TestScriptEnvPrograms(t *testing.T) {
	h := newHarness(t)
	c := h.c
	pv := c.programVertex(h.programVertex(false))
	var seen *ProgramVertex
	s := h.directScript(func(*Env, uint32) bool {
		seen = c.Vertex()
		return false
	})
	s.env.Vertex = pv
	c.RunScript(s, 0)
	if seen != pv {
		t.Errorf("script ran with vertex program %v, want its env program", seen)
	}
	if c.Vertex() != c.defaults.vertex {
		t.Error("env program leaked past the run")
	}
}

func TestEnvAfterEndPanics(t *testing.T) {
	h := newHarness(t)
	var kept *Env
	s := h.directScript(func(env *Env, launch uint32) bool {
		kept = env
		return env.LaunchIndex() == launch
	})
	if !h.c.RunScript(s, 5) {
		t.Fatal("LaunchIndex did not match the launch")
	}
	defer func() {
		if recover() == nil {
			t.Error("Env used after its invocation did not panic")
		}
	}()
	kept.LaunchIndex()
}

func TestEnvSlots(t *testing.T) {
	h := newHarness(t)
	c := h.c
	typ, _ := schema.NewType(schema.PredefinedF32.Element(), 20, 0, 0, false, false)
	a := newAllocation(typ, UsageScript)
	c.reg.add(KindAllocation, a)

	var m Matrix
	m.LoadTranslate(1, 2, 3)
	s := h.directScript(func(env *Env, _ uint32) bool {
		env.StoreF(0, 0, 1.5)
		env.StoreI32(0, 1, -7)
		env.StoreEnvMatrix(0, 4, &m)
		if env.LoadF(0, 0) != 1.5 || env.LoadI32(0, 1) != -7 {
			t.Error("slot words did not round trip")
		}
		var back Matrix
		env.LoadEnvMatrix(0, 4, &back)
		if back != m {
			t.Errorf("matrix = %v, want %v", back, m)
		}
		if r := env.Rand(2); r < 0 || r >= 2 {
			t.Errorf("Rand(2) = %v", r)
		}
		return true
	})
	s.BindAllocation(a, 0)
	if !c.RunScript(s, 0) {
		t.Fatal("script failed")
	}
	if s.BindAllocation(a, c.cfg.ScriptSlots) {
		t.Error("binding past the last slot succeeded")
	}
}

func TestRunScriptWithoutProgram(t *testing.T) {
	h := newHarness(t)
	s := h.directScript(nil)
	s.program = nil
	if h.c.RunScript(s, 0) {
		t.Error("script without a program reported a frame")
	}
}

func TestNamesAssignOnce(t *testing.T) {
	h := newHarness(t)
	a := h.alloc(h.typ(h.element(schema.PredefinedU8), 1, 0, false), UsageScript)
	h.exec(cmd.OpAssignName, func(e *cmd.Encoder) { e.U32(a).Str("particles") })
	if o := h.c.LookupName("particles"); o == nil || o.ID != a {
		t.Fatalf("LookupName = %v, want allocation %d", o, a)
	}

	func() {
		defer func() {
			r := recover()
			if r == nil || !strings.Contains(r.(string), "already named") {
				t.Errorf("renaming recovered %v, want an already named panic", r)
			}
		}()
		h.exec(cmd.OpAssignName, func(e *cmd.Encoder) { e.U32(a).Str("other") })
	}()
}

func TestNamesRemoved(t *testing.T) {
	h := newHarness(t)
	a := h.alloc(h.typ(h.element(schema.PredefinedU8), 1, 0, false), UsageScript)
	h.exec(cmd.OpAssignName, func(e *cmd.Encoder) { e.U32(a).Str("a") })
	h.exec(cmd.OpRemoveName, func(e *cmd.Encoder) { e.U32(a) })
	if h.c.LookupName("a") != nil {
		t.Error("name survived RemoveName")
	}
	h.exec(cmd.OpAssignName, func(e *cmd.Encoder) { e.U32(a).Str("b") })
	h.exec(cmd.OpObjDestroy, func(e *cmd.Encoder) { e.U32(a) })
	if h.c.LookupName("b") != nil {
		t.Error("name survived ObjDestroy")
	}
}

func TestDestroyBoundProgramRebindsDefault(t *testing.T) {
	h := newHarness(t)
	pv := h.programVertex(false)
	h.exec(cmd.OpContextBindProgramVertex, func(e *cmd.Encoder) { e.U32(pv) })
	if h.c.Vertex().ID() != pv {
		t.Fatal("bind over the wire did not take effect")
	}
	h.exec(cmd.OpObjDestroy, func(e *cmd.Encoder) { e.U32(pv) })
	if h.c.Vertex() != h.c.defaults.vertex {
		t.Error("destroying the bound program left it bound")
	}
	h.exec(cmd.OpObjDestroy, func(e *cmd.Encoder) { e.U32(h.c.defaults.vertex.id) })
	if h.c.programVertex(h.c.defaults.vertex.id) == nil {
		t.Error("built-in program was destroyed")
	}
}

func TestProgramFragmentSlotLimit(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name  string
		slots uint32
		ok    bool
	}{
		{"none", 0, true},
		{"at limit", uint32(h.c.cfg.FragmentSlots), true},
		{"over limit", uint32(h.c.cfg.FragmentSlots) + 1, false},
		{"huge", 1 << 31, false},
	}
	for _, tt := range tests {
		id := h.call(cmd.OpProgramFragmentCreate, func(e *cmd.Encoder) { e.U32(tt.slots) }).U32()
		if got := id != 0; got != tt.ok {
			t.Errorf("%s: handle %d for %d slots, want ok %v", tt.name, id, tt.slots, tt.ok)
		}
	}
}
