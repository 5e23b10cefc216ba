package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/schema"
	"github.com/gogpu/gfxrt/surface"
)

// client plays the producer side against a running render goroutine.
type client struct {
	t   *testing.T
	c   *Context
	seq uint32
}

func (cl *client) send(op cmd.Op, body func(e *cmd.Encoder)) uint32 {
	cl.seq++
	var e cmd.Encoder
	e.Reset(cl.seq)
	if body != nil {
		body(&e)
	}
	cl.c.Commands().Enqueue(uint32(op), e.Bytes())
	return cl.seq
}

func (cl *client) call(op cmd.Op, body func(e *cmd.Encoder)) *cmd.Decoder {
	cl.t.Helper()
	seq := cl.send(op, body)
	rop, payload, _ := cl.c.Returns().Get(true)
	payload = append([]byte(nil), payload...)
	cl.c.Returns().Next()
	d, got := cmd.NewDecoder(payload)
	if cmd.Op(rop) != op || got != seq {
		cl.t.Fatalf("reply %s/%d, want %s/%d", cmd.Op(rop), got, op, seq)
	}
	return d
}

func (cl *client) finish() { cl.call(cmd.OpContextFinish, nil) }

func (cl *client) rootScript() uint32 {
	cl.t.Helper()
	cl.send(cmd.OpScriptCBegin, nil)
	cl.send(cmd.OpScriptSetRoot, func(e *cmd.Encoder) { e.Bool(true) })
	cl.send(cmd.OpScriptCAppendText, func(e *cmd.Encoder) { e.Str("fn root() {}") })
	id := cl.call(cmd.OpScriptCCreate, nil).U32()
	if id == 0 {
		cl.t.Fatal("script create failed")
	}
	return id
}

func startContext(t *testing.T, entry EntryPoint) (*client, *surface.Headless) {
	t.Helper()
	surf := surface.NewHeadless(32, 32)
	c, err := New(DefaultConfig(), WithSurface(surf), WithCompiler(&fakeCompiler{entry: entry}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Destroy)
	if got := c.State(); got != StateRunning {
		t.Fatalf("State() = %s, want running", got)
	}
	return &client{t: t, c: c}, surf
}

func TestContextLifecycle(t *testing.T) {
	var launches atomic.Int32
	cl, surf := startContext(t, func(env *Env, _ uint32) bool {
		launches.Add(1)
		env.DrawRect(0, 0, 10, 10, 0)
		return false
	})
	c := cl.c

	root := cl.rootScript()
	cl.finish()
	if surf.Presents() != 0 {
		t.Fatalf("presented %d frames without a root script", surf.Presents())
	}

	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(root) })
	cl.finish()
	if surf.Presents() != 1 || launches.Load() != 1 {
		t.Fatalf("after bind: presents %d, launches %d, want 1, 1", surf.Presents(), launches.Load())
	}

	// Finish does not mutate, so no frame is drawn.
	cl.finish()
	cl.finish()
	if surf.Presents() != 1 {
		t.Errorf("idle finishes drew: presents %d, want 1", surf.Presents())
	}

	cl.send(cmd.OpContextBindProgramVertex, func(e *cmd.Encoder) { e.U32(0) })
	cl.finish()
	if surf.Presents() != 2 {
		t.Errorf("mutation did not redraw: presents %d, want 2", surf.Presents())
	}

	c.Destroy()
	if got := c.State(); got != StateTerminated {
		t.Errorf("State() after Destroy = %s, want terminated", got)
	}
	if !surf.Released() {
		t.Error("surface not released")
	}
	if surf.Presents() != 3 || c.Frames() != 3 {
		t.Errorf("presents %d, frames %d after Destroy, want a final cleared frame (3)", surf.Presents(), c.Frames())
	}
	if got := surf.LastClear(); got != [4]float32{} {
		t.Errorf("final clear = %v, want zero", got)
	}
	c.Destroy()
}

func TestContextUploadAfterIdleDrawsOnce(t *testing.T) {
	var launches atomic.Int32
	cl, surf := startContext(t, func(*Env, uint32) bool {
		launches.Add(1)
		return false
	})

	cl.send(cmd.OpElementBegin, nil)
	cl.send(cmd.OpElementPredefined, func(e *cmd.Encoder) { e.U8(uint8(schema.PredefinedU8)) })
	elem := cl.call(cmd.OpElementCreate, nil).U32()
	cl.send(cmd.OpTypeBegin, func(e *cmd.Encoder) { e.U32(elem) })
	cl.send(cmd.OpTypeAdd, func(e *cmd.Encoder) { e.U8(uint8(schema.DimX)).U32(8) })
	typ := cl.call(cmd.OpTypeCreate, nil).U32()
	alloc := cl.call(cmd.OpAllocationCreateTyped, func(e *cmd.Encoder) { e.U32(typ).U32(uint32(UsageScript)) }).U32()
	if elem == 0 || typ == 0 || alloc == 0 {
		t.Fatalf("create failed: element %d, type %d, allocation %d", elem, typ, alloc)
	}

	root := cl.rootScript()
	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(root) })
	cl.finish()
	presents, runs := surf.Presents(), launches.Load()
	if presents != 1 || runs != 1 {
		t.Fatalf("after bind: presents %d, launches %d, want 1, 1", presents, runs)
	}

	cl.finish()
	cl.finish()
	if surf.Presents() != presents || launches.Load() != runs {
		t.Fatalf("idle finishes drew: presents %d, launches %d", surf.Presents(), launches.Load())
	}

	cl.send(cmd.OpAllocationData1D, func(e *cmd.Encoder) {
		e.U32(alloc).U32(0).U32(0).U32(2).U32(3).Blob([]byte{7, 8, 9})
	})
	cl.finish()
	if got := surf.Presents(); got != presents+1 {
		t.Errorf("presents after upload = %d, want %d", got, presents+1)
	}
	if got := launches.Load(); got != runs+1 {
		t.Errorf("launches after upload = %d, want %d", got, runs+1)
	}
}

func TestContextUpdateSurface(t *testing.T) {
	var width atomic.Int32
	cl, first := startContext(t, func(env *Env, _ uint32) bool {
		w, _ := env.FrameSize()
		width.Store(int32(w))
		return false
	})

	if d := cl.call(cmd.OpContextUpdateSurface, nil); d.Bool() {
		t.Error("update without a staged surface succeeded")
	}

	root := cl.rootScript()
	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(root) })
	cl.finish()
	if got := width.Load(); got != 32 {
		t.Fatalf("frame width = %d, want 32", got)
	}

	second := surface.NewHeadless(48, 16)
	cl.c.StageSurface(second)
	if d := cl.call(cmd.OpContextUpdateSurface, nil); !d.Bool() {
		t.Fatal("update surface failed")
	}
	cl.finish()
	if !first.Released() {
		t.Error("previous surface not released")
	}
	if got := second.Presents(); got != 1 {
		t.Errorf("presents on new surface = %d, want 1", got)
	}
	if got := width.Load(); got != 48 {
		t.Errorf("frame width = %d, want 48", got)
	}
}

func TestContextContinuousRendering(t *testing.T) {
	cl, surf := startContext(t, func(_ *Env, launch uint32) bool {
		return launch < 3
	})
	root := cl.rootScript()
	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(root) })

	deadline := time.Now().Add(5 * time.Second)
	for surf.Presents() < 4 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cl.finish()
	if got := surf.Presents(); got != 4 {
		t.Errorf("presents = %d, want 4 (three continued frames plus the last)", got)
	}
	if got := cl.c.Root().launches; got != 4 {
		t.Errorf("launches = %d, want 4", got)
	}
}

func TestContextUnbindRoot(t *testing.T) {
	cl, surf := startContext(t, func(*Env, uint32) bool { return true })
	root := cl.rootScript()
	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(root) })
	cl.send(cmd.OpContextBindRootScript, func(e *cmd.Encoder) { e.U32(0) })
	cl.finish()
	n := surf.Presents()
	cl.finish()
	if surf.Presents() != n {
		t.Errorf("frames drawn after the root was unbound: %d then %d", n, surf.Presents())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptSlots = 0
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateUninitialized, "uninitialized"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StateExiting, "exiting"},
		{StateTerminated, "terminated"},
		{State(42), "State(42)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int32(tt.s), got, tt.want)
		}
	}
}
