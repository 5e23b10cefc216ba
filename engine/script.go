package engine

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gogpu/gfxrt/schema"
)

// ScriptEnv is the per-script environment applied around each launch. A
// nil program leaves the context binding of that stage untouched.
type ScriptEnv struct {
	Root         bool
	Ortho        bool
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil uint32

	Vertex   *ProgramVertex
	Fragment *ProgramFragment
	Store    *ProgramStore
}

func defaultScriptEnv() ScriptEnv {
	return ScriptEnv{
		Ortho:      true,
		ClearColor: [4]float32{0, 0, 0, 1},
		ClearDepth: 1,
	}
}

// Script is a compiled program plus its slots and environment.
type Script struct {
	id        uint32
	env       ScriptEnv
	slots     []*Allocation
	slotTypes []*schema.Type
	program   CompiledProgram
	pragmas   []Pragma
	log       string

	startTime time.Time
	launches  uint32
	rng       *rand.Rand
}

func newScript(slots int, seed uint64) *Script {
	return &Script{
		env:       defaultScriptEnv(),
		slots:     make([]*Allocation, slots),
		slotTypes: make([]*schema.Type, slots),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// ID returns the registry handle.
func (s *Script) ID() uint32 { return s.id }

// Env returns the script environment.
func (s *Script) Env() ScriptEnv { return s.env }

// Runnable reports whether the compiler produced a program.
func (s *Script) Runnable() bool { return s.program != nil }

// Log returns the compiler log.
func (s *Script) Log() string { return s.log }

// Pragmas returns the pragmas declared by the source.
func (s *Script) Pragmas() []Pragma { return s.pragmas }

// Slot returns the allocation bound to slot, or nil.
func (s *Script) Slot(slot int) *Allocation {
	if slot < 0 || slot >= len(s.slots) {
		return nil
	}
	return s.slots[slot]
}

// BindAllocation binds a to slot. A nil allocation clears the slot.
func (s *Script) BindAllocation(a *Allocation, slot int) bool {
	if slot < 0 || slot >= len(s.slots) {
		slogger().Error("script slot out of range", "script", s.id, "slot", slot, "slots", len(s.slots))
		return false
	}
	s.slots[slot] = a
	return true
}

// run applies the environment and invokes the program once. The caller
// restores bindings.
func (s *Script) run(c *Context, launch uint32) bool {
	if s.program == nil {
		slogger().Error("script has no entry point", "script", s.id, "log", s.log)
		return false
	}
	if launch == 0 {
		s.startTime = time.Now()
	}
	if s.env.Vertex != nil {
		c.SetVertex(s.env.Vertex)
	}
	if s.env.Fragment != nil {
		c.SetFragment(s.env.Fragment)
	}
	if s.env.Store != nil {
		c.SetFragmentStore(s.env.Store)
	}
	env := &Env{c: c, s: s, launch: launch, color: [4]float32{1, 1, 1, 1}}
	defer env.end()
	return s.program.Invoke(env, launch)
}

func (s *Script) release() {
	if r, ok := s.program.(Releaser); ok {
		r.Release()
	}
	s.program = nil
}

// scriptCState accumulates the ScriptC builder commands.
type scriptCState struct {
	active    bool
	env       ScriptEnv
	slotTypes []*schema.Type
	ints      []intDefine
	floats    []floatDefine
	text      strings.Builder
}

func (st *scriptCState) begin(slots int) {
	st.active = true
	st.env = defaultScriptEnv()
	st.slotTypes = make([]*schema.Type, slots)
	st.ints = st.ints[:0]
	st.floats = st.floats[:0]
	st.text.Reset()
}

// createScript compiles the accumulated state into a registered Script. A
// failed compile still yields a script; running it logs and draws nothing.
func (c *Context) createScript() *Script {
	st := &c.scriptC
	if !st.active {
		slogger().Error("ScriptC create without begin")
		return nil
	}
	st.active = false

	s := newScript(c.cfg.ScriptSlots, uint64(c.reg.next))
	s.env = st.env
	copy(s.slotTypes, st.slotTypes)
	s.id = c.reg.add(KindScript, s).ID

	req := CompileRequest{
		Label:    "script",
		Preamble: c.preamble(st),
		Source:   st.text.String(),
	}
	if c.dev != nil {
		req.Modules = c.dev
	}
	if c.compiler == nil {
		s.log = "no compiler configured"
		slogger().Error("script not compiled", "script", s.id, "reason", s.log)
		return s
	}
	res := c.compiler.Compile(req)
	s.program, s.pragmas, s.log = res.Program, res.Pragmas, res.Log
	if s.program == nil {
		slogger().Error("script compile failed", "script", s.id, "log", res.Log)
	}
	c.applyPragmas(s)
	return s
}

// applyPragmas resolves the state pragmas. "default" selects the built-in
// program, "parent" inherits the context binding, anything else is a name.
func (c *Context) applyPragmas(s *Script) {
	for _, p := range s.pragmas {
		switch p.Key {
		case "stateVertex":
			s.env.Vertex = resolvePragma(c, p, KindProgramVertex, c.defaults.vertex)
		case "stateFragment":
			s.env.Fragment = resolvePragma(c, p, KindProgramFragment, c.defaults.fragment)
		case "stateFragmentStore":
			s.env.Store = resolvePragma(c, p, KindProgramStore, c.defaults.store)
		default:
			slogger().Debug("ignoring pragma", "script", s.id, "key", p.Key, "value", p.Value)
		}
	}
}

func resolvePragma[T any](c *Context, p Pragma, kind Kind, def *T) *T {
	switch p.Value {
	case "default":
		return def
	case "parent":
		return nil
	}
	if o := c.reg.lookupName(p.Value); o != nil && o.Kind == kind {
		return o.Value.(*T)
	}
	slogger().Warn("unresolved pragma name, using default", "pragma", p.Key, "name", p.Value)
	return def
}
