package engine

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/internal/fifo"
	"github.com/gogpu/gfxrt/internal/gpu"
	"github.com/gogpu/gfxrt/internal/parallel"
	"github.com/gogpu/gfxrt/schema"
	"github.com/gogpu/gfxrt/surface"
)

// State is the lifecycle state of a Context.
type State int32

const (
	StateUninitialized State = iota
	StateStarting
	StateRunning
	StateExiting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExiting:
		return "exiting"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// IO moves the contents of IO usage allocations in and out of the engine.
type IO interface {
	// Send receives the contents of an IO output allocation.
	Send(alloc uint32, data []byte)

	// Receive fills dst for an IO input allocation and reports whether new
	// data was available.
	Receive(alloc uint32, dst []byte) bool
}

// Option configures a Context.
type Option func(*options)

type options struct {
	surface  surface.Surface
	device   *gpu.Device
	compiler Compiler
	io       IO
}

// WithSurface sets the surface frames are presented to. Without it a
// surface is taken from the surface registry.
func WithSurface(s surface.Surface) Option {
	return func(o *options) { o.surface = s }
}

// WithDevice sets the GPU device. The caller keeps ownership. Without it
// the context opens and owns a noop device.
func WithDevice(d *gpu.Device) Option {
	return func(o *options) { o.device = d }
}

// WithCompiler sets the script compiler.
func WithCompiler(c Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// WithIO sets the IO endpoint of IO usage allocations.
func WithIO(io IO) Option {
	return func(o *options) { o.io = io }
}

type handler func(c *Context, d *cmd.Decoder, seq uint32)

// Context owns the render goroutine, the command and return rings and all
// engine objects. Apart from the ring producers, Commands, Returns, State,
// Frames, StageSurface and Destroy, its methods are render goroutine only.
type Context struct {
	cfg  Config
	cmds *fifo.Fifo
	rets *fifo.Fifo

	state   atomic.Int32
	exit    atomic.Bool
	frames  atomic.Uint64
	started chan struct{}
	done    chan struct{}
	destroy sync.Once

	stageMu sync.Mutex
	staged  surface.Surface

	// render goroutine
	dev       *gpu.Device
	ownDevice bool
	surf      surface.Surface
	compiler  Compiler
	io        IO

	reg        registry
	typeIDs    map[*schema.Type]uint32
	defaults   defaults
	vertex     *ProgramVertex
	fragment   *ProgramFragment
	store      *ProgramStore
	root       *Script
	projection Matrix

	pool *parallel.WorkerPool

	elemB   schema.ElementBuilder
	typeB   schema.TypeBuilder
	scriptC scriptCState
	enc     cmd.Encoder
	finish  []uint32
}

// New starts a context. It returns once the render goroutine is ready to
// drain commands.
func New(cfg Config, opts ...Option) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c, err := newContext(cfg, o)
	if err != nil {
		return nil, err
	}
	c.state.Store(int32(StateStarting))
	go c.loop()
	<-c.started
	return c, nil
}

// newContext builds a context without starting the render goroutine.
func newContext(cfg Config, o options) (*Context, error) {
	c := &Context{
		cfg:      cfg,
		cmds:     fifo.New(cfg.FifoBytes),
		rets:     fifo.New(cfg.ReturnBytes),
		started:  make(chan struct{}),
		done:     make(chan struct{}),
		dev:      o.device,
		surf:     o.surface,
		compiler: o.compiler,
		io:       o.io,
	}
	if c.surf == nil {
		s, err := surface.New(surface.Options{Width: 640, Height: 480})
		if err != nil {
			return nil, fmt.Errorf("engine: no surface: %w", err)
		}
		c.surf = s
	}
	if c.dev == nil {
		dev, err := gpu.OpenNoop()
		if err != nil {
			slogger().Warn("running without a GPU device", "err", err)
		} else {
			c.dev, c.ownDevice = dev, true
		}
	}
	if c.dev != nil {
		c.dev.SetMemoryBudget(cfg.GPUMemoryMB)
	}
	c.init()
	return c, nil
}

func (c *Context) init() {
	c.reg = newRegistry()
	c.typeIDs = make(map[*schema.Type]uint32)
	c.initDefaults()
	c.SetVertex(nil)
	c.SetFragment(nil)
	c.SetFragmentStore(nil)
	c.projection = Identity()
}

// workers returns the CPU pool used for image work, starting it on first
// use.
func (c *Context) workers() *parallel.WorkerPool {
	if c.pool == nil {
		c.pool = parallel.NewWorkerPool(c.cfg.Workers)
	}
	return c.pool
}

// StageSurface hands s to the render goroutine. The next
// OpContextUpdateSurface record releases the current surface and draws on s
// from then on. Like the ring, it belongs to the producer.
func (c *Context) StageSurface(s surface.Surface) {
	c.stageMu.Lock()
	c.staged = s
	c.stageMu.Unlock()
}

// Commands returns the command ring. The client is its only producer.
func (c *Context) Commands() *fifo.Fifo { return c.cmds }

// Returns returns the return ring. The client is its only consumer.
func (c *Context) Returns() *fifo.Fifo { return c.rets }

// State returns the lifecycle state.
func (c *Context) State() State { return State(c.state.Load()) }

// Frames returns the number of frames presented.
func (c *Context) Frames() uint64 { return c.frames.Load() }

// Config returns the configuration the context was started with.
func (c *Context) Config() Config { return c.cfg }

// Device returns the GPU device, or nil.
func (c *Context) Device() *gpu.Device { return c.dev }

// Root returns the bound root script, or nil.
func (c *Context) Root() *Script { return c.root }

func (c *Context) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := setThreadPriority(c.cfg.ThreadPriority); err != nil {
		slogger().Warn("render thread priority unchanged", "priority", c.cfg.ThreadPriority, "err", err)
	}
	c.state.Store(int32(StateRunning))
	slogger().Debug("render loop running", "device", c.deviceName())
	close(c.started)

	draw := false
	for !c.exit.Load() {
		mutated := c.drain(!draw)
		draw = (draw || mutated) && c.root != nil
		if draw {
			draw = c.runRoot()
		}
		c.replyFinish()
	}
	c.shutdown()
}

// drain applies queued commands in order and reports whether any of them
// mutated state. With block set it waits for the first record.
func (c *Context) drain(block bool) bool {
	mutated := false
	for n := 0; ; {
		op, payload, ok := c.cmds.Get(block && n == 0)
		if !ok {
			break
		}
		o := cmd.Op(op)
		c.dispatch(o, payload)
		c.cmds.Next()
		mutated = mutated || o.Mutates()
		n++
		if (c.cfg.DrainBatch > 0 && n >= c.cfg.DrainBatch) || c.exit.Load() {
			break
		}
	}
	return mutated
}

// runRoot draws one frame with the root script and presents it. It
// reports whether the script asked for another frame.
func (c *Context) runRoot() bool {
	s := c.root
	w, h := c.frameSize()
	if s.env.Ortho {
		c.projection = Ortho(float32(w), float32(h))
	} else {
		c.projection = Identity()
	}
	c.flushMirrors()
	c.beginFrame(gpu.ClearValues{
		Color:   s.env.ClearColor,
		Depth:   s.env.ClearDepth,
		Stencil: s.env.ClearStencil,
	})
	more := c.RunScript(s, s.launches)
	s.launches++
	c.endFrame()
	return more
}

func (c *Context) frameSize() (int, int) { return c.surf.Size() }

func (c *Context) beginFrame(clear gpu.ClearValues) {
	if sink, ok := c.surf.(surface.ClearSink); ok {
		sink.SetClear(clear.Color, clear.Depth, clear.Stencil)
	}
	if c.dev == nil {
		return
	}
	w, h := c.frameSize()
	if err := c.dev.BeginFrame(uint32(w), uint32(h), clear); err != nil {
		slogger().Error("begin frame", "err", err)
	}
}

func (c *Context) endFrame() {
	if c.dev != nil {
		if err := c.dev.EndFrame(); err != nil {
			slogger().Error("end frame", "err", err)
		}
	}
	if err := c.surf.Present(); err != nil {
		slogger().Error("present", "err", err)
		return
	}
	c.frames.Add(1)
}

func (c *Context) flushMirrors() {
	for _, o := range c.reg.objects {
		if o.Kind != KindAllocation {
			continue
		}
		a := o.Value.(*Allocation)
		if a.parent == nil && (a.texDirty || a.bufDirty) {
			if err := a.flush(c.dev); err != nil {
				slogger().Error("refresh GPU copy", "alloc", o.ID, "err", err)
			}
		}
	}
}

func (c *Context) replyFinish() {
	for _, seq := range c.finish {
		c.reply(cmd.OpContextFinish, seq, nil)
	}
	c.finish = c.finish[:0]
}

// reply writes a return record for a synchronous command.
func (c *Context) reply(op cmd.Op, seq uint32, body func(e *cmd.Encoder)) {
	e := c.enc.Reset(seq)
	if body != nil {
		body(e)
	}
	c.rets.Enqueue(uint32(op), e.Bytes())
}

// Destroy stops the render goroutine after its current iteration. The
// goroutine clears and presents a last frame, releases every object and the
// surface, then exits. Destroy must be called from the producer goroutine.
func (c *Context) Destroy() {
	c.destroy.Do(func() {
		c.state.Store(int32(StateExiting))
		c.exit.Store(true)
		var e cmd.Encoder
		c.cmds.Enqueue(uint32(cmd.OpContextDestroy), e.Reset(0).Bytes())
		<-c.done
	})
}

func (c *Context) shutdown() {
	c.state.Store(int32(StateExiting))
	c.beginFrame(gpu.ClearValues{})
	c.endFrame()
	c.replyFinish()

	for id := range c.reg.objects {
		c.release(c.reg.remove(id))
	}
	if err := c.surf.Release(); err != nil {
		slogger().Warn("release surface", "err", err)
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.ownDevice {
		c.dev.Close()
	}
	c.state.Store(int32(StateTerminated))
	slogger().Debug("render loop terminated", "frames", c.frames.Load())
	close(c.done)
}

// release frees the GPU side of an object removed from the registry.
func (c *Context) release(o *Object) {
	if o == nil {
		return
	}
	switch v := o.Value.(type) {
	case *Allocation:
		v.release(c.dev)
	case *Sampler:
		if c.dev != nil {
			c.dev.DestroySampler(v.s)
		}
	case *Script:
		v.release()
		if c.root == v {
			c.root = nil
		}
	}
}

func (c *Context) deviceName() string {
	if c.dev == nil {
		return "none"
	}
	return c.dev.Name()
}
