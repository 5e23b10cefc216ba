package engine

import (
	"testing"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/schema"
	"github.com/gogpu/gfxrt/surface"
)

// harness drives a context on the test goroutine: commands are enqueued,
// then drained explicitly.
type harness struct {
	t    *testing.T
	c    *Context
	surf *surface.Headless
	seq  uint32
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	surf := surface.NewHeadless(64, 32)
	o := options{surface: surf}
	for _, opt := range opts {
		opt(&o)
	}
	c, err := newContext(DefaultConfig(), o)
	if err != nil {
		t.Fatalf("newContext() error = %v", err)
	}
	t.Cleanup(func() {
		if c.ownDevice {
			c.dev.Close()
		}
	})
	return &harness{t: t, c: c, surf: surf}
}

func (h *harness) send(op cmd.Op, body func(e *cmd.Encoder)) uint32 {
	h.seq++
	var e cmd.Encoder
	e.Reset(h.seq)
	if body != nil {
		body(&e)
	}
	h.c.cmds.Enqueue(uint32(op), e.Bytes())
	return h.seq
}

// exec sends an asynchronous command and applies it.
func (h *harness) exec(op cmd.Op, body func(e *cmd.Encoder)) {
	h.send(op, body)
	h.c.drain(false)
}

// call sends a synchronous command, applies it and decodes the reply.
func (h *harness) call(op cmd.Op, body func(e *cmd.Encoder)) *cmd.Decoder {
	h.t.Helper()
	seq := h.send(op, body)
	h.c.drain(false)
	rop, payload, ok := h.c.rets.Get(false)
	if !ok {
		h.t.Fatalf("no reply to %s", op)
	}
	payload = append([]byte(nil), payload...)
	h.c.rets.Next()
	if cmd.Op(rop) != op {
		h.t.Fatalf("reply op = %s, want %s", cmd.Op(rop), op)
	}
	d, got := cmd.NewDecoder(payload)
	if got != seq {
		h.t.Fatalf("reply seq = %d, want %d", got, seq)
	}
	return d
}

func (h *harness) handle(op cmd.Op, body func(e *cmd.Encoder)) uint32 {
	h.t.Helper()
	id := h.call(op, body).U32()
	if id == 0 {
		h.t.Fatalf("%s returned no handle", op)
	}
	return id
}

func (h *harness) element(p schema.Predefined) uint32 {
	h.t.Helper()
	h.exec(cmd.OpElementBegin, nil)
	h.exec(cmd.OpElementPredefined, func(e *cmd.Encoder) { e.U8(uint8(p)) })
	return h.handle(cmd.OpElementCreate, nil)
}

func (h *harness) typ(elem, x, y uint32, mips bool) uint32 {
	h.t.Helper()
	h.exec(cmd.OpTypeBegin, func(e *cmd.Encoder) { e.U32(elem) })
	h.exec(cmd.OpTypeAdd, func(e *cmd.Encoder) { e.U8(uint8(schema.DimX)).U32(x) })
	if y > 0 {
		h.exec(cmd.OpTypeAdd, func(e *cmd.Encoder) { e.U8(uint8(schema.DimY)).U32(y) })
	}
	if mips {
		h.exec(cmd.OpTypeAdd, func(e *cmd.Encoder) { e.U8(uint8(schema.DimLOD)).U32(1) })
	}
	return h.handle(cmd.OpTypeCreate, nil)
}

func (h *harness) alloc(typ uint32, usage Usage) uint32 {
	h.t.Helper()
	return h.handle(cmd.OpAllocationCreateTyped, func(e *cmd.Encoder) { e.U32(typ).U32(uint32(usage)) })
}

func (h *harness) write1D(a, off, count uint32, data []byte) {
	h.exec(cmd.OpAllocationData1D, func(e *cmd.Encoder) {
		e.U32(a).U32(0).U32(0).U32(off).U32(count).Blob(data)
	})
}

func (h *harness) read1D(a, off, count uint32) ([]byte, bool) {
	h.t.Helper()
	d := h.call(cmd.OpAllocationRead1D, func(e *cmd.Encoder) {
		e.U32(a).U32(0).U32(0).U32(off).U32(count)
	})
	ok := d.Bool()
	return append([]byte(nil), d.Blob()...), ok
}

// fakeCompiler returns a fixed program and records the last request.
type fakeCompiler struct {
	entry   EntryPoint
	pragmas []Pragma
	last    CompileRequest
}

func (f *fakeCompiler) Compile(req CompileRequest) CompileResult {
	f.last = req
	if f.entry == nil {
		return CompileResult{Log: "no entry point"}
	}
	return CompileResult{Program: f.entry, Pragmas: f.pragmas}
}

func (h *harness) script(root bool, src string) uint32 {
	h.t.Helper()
	h.exec(cmd.OpScriptCBegin, nil)
	h.exec(cmd.OpScriptSetRoot, func(e *cmd.Encoder) { e.Bool(root) })
	h.exec(cmd.OpScriptCAppendText, func(e *cmd.Encoder) { e.Str(src) })
	return h.handle(cmd.OpScriptCCreate, nil)
}
