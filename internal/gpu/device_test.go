package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func openTestDevice(t *testing.T) *Device {
	t.Helper()
	d, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestFromProvider(t *testing.T) {
	owner := openTestDevice(t)
	dev, queue := owner.Hal()

	d, err := FromProvider(halProvider{device: dev, queue: queue})
	if err != nil {
		t.Fatalf("FromProvider() error = %v", err)
	}
	if _, err := d.CreateBuffer("scratch", 16, gputypes.BufferUsageCopyDst); err != nil {
		t.Errorf("CreateBuffer on provided device error = %v", err)
	}
	d.Close()
	if _, err := owner.CreateBuffer("still_open", 16, gputypes.BufferUsageCopyDst); err != nil {
		t.Errorf("closing a provided device destroyed the owner's device: %v", err)
	}

	if _, err := FromProvider(struct{}{}); !errors.Is(err, ErrNotHalProvider) {
		t.Errorf("FromProvider(struct{}) error = %v, want ErrNotHalProvider", err)
	}
	if _, err := FromProvider(halProvider{}); !errors.Is(err, ErrNotHalProvider) {
		t.Errorf("FromProvider(nil device) error = %v, want ErrNotHalProvider", err)
	}
}

func TestBufferBudget(t *testing.T) {
	d := openTestDevice(t)
	b, err := d.CreateBuffer("verts", 10, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		t.Fatal(err)
	}
	if b.Size() != 12 {
		t.Errorf("Size() = %d, want 12 (rounded to 4)", b.Size())
	}
	d.WriteBuffer(b, 0, make([]byte, 12))
	if got := d.Budget().Stats(); got.UsedBytes != 12 || got.Buffers != 1 {
		t.Errorf("budget after create = %+v", got)
	}
	d.DestroyBuffer(b)
	d.DestroyBuffer(b)
	if got := d.Budget().Stats(); got.UsedBytes != 0 || got.Buffers != 0 {
		t.Errorf("budget after destroy = %+v", got)
	}
	if d.Stats().BufferWrites != 1 {
		t.Errorf("BufferWrites = %d, want 1", d.Stats().BufferWrites)
	}

	d.budget = NewMemoryBudget(MinMemoryMB)
	if _, err := d.CreateBuffer("huge", (MinMemoryMB+1)*1024*1024, gputypes.BufferUsageCopyDst); !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Errorf("oversized CreateBuffer error = %v, want ErrMemoryBudgetExceeded", err)
	}
}

func TestTextureMips(t *testing.T) {
	d := openTestDevice(t)
	tex, err := d.CreateTexture("rgba", 8, 4, 4, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	// 8x4 + 4x2 + 2x1 + 1x1 texels of 4 bytes.
	if got, want := d.Budget().Stats().UsedBytes, uint64((32+8+2+1)*4); got != want {
		t.Errorf("texture bytes = %d, want %d", got, want)
	}
	for mip := uint32(0); mip < 4; mip++ {
		d.WriteTexture(tex, mip, make([]byte, 4))
	}
	d.WriteTexture(tex, 9, make([]byte, 4))
	if got := d.Stats().TextureWrites; got != 4 {
		t.Errorf("TextureWrites = %d, want 4", got)
	}
	d.DestroyTexture(tex)
	if got := d.Budget().Stats().Textures; got != 0 {
		t.Errorf("Textures after destroy = %d, want 0", got)
	}
}

func TestFrame(t *testing.T) {
	d := openTestDevice(t)
	if err := d.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("EndFrame() without BeginFrame error = %v, want ErrNoFrame", err)
	}

	clear := ClearValues{Color: [4]float32{0, 0, 0, 1}, Depth: 1}
	for i := 0; i < 3; i++ {
		if err := d.BeginFrame(64, 32, clear); err != nil {
			t.Fatalf("BeginFrame() error = %v", err)
		}
		d.Draw([]float32{0, 0, 1, 0, 0, 1})
		d.Draw([]float32{1, 1, 0, 1, 1, 0})
		if err := d.EndFrame(); err != nil {
			t.Fatalf("EndFrame() error = %v", err)
		}
	}

	s := d.Stats()
	if s.Frames != 3 || s.Draws != 6 || s.VertexFloats != 36 {
		t.Errorf("Stats() = %+v, want 3 frames, 6 draws, 36 floats", s)
	}
	if w, h := d.FrameSize(); w != 64 || h != 32 {
		t.Errorf("FrameSize() = %dx%d, want 64x32", w, h)
	}
	if d.targets.recreated != 1 {
		t.Errorf("targets recreated %d times, want 1", d.targets.recreated)
	}
	if got := d.Budget().Stats().Buffers; got != 0 {
		t.Errorf("transient vertex buffers leaked: %d", got)
	}
}

func TestBindProgram(t *testing.T) {
	d := openTestDevice(t)
	d.BindProgram(StageFragment, 4)
	d.BindProgram(StageFragment, 4)
	d.BindProgram(StageVertex, 2)
	if d.Active(StageFragment) != 4 || d.Active(StageVertex) != 2 {
		t.Errorf("Active = %d/%d, want 4/2", d.Active(StageFragment), d.Active(StageVertex))
	}
	if got := d.Stats().StateChanges; got != 2 {
		t.Errorf("StateChanges = %d, want 2", got)
	}
}

func TestClosedDevice(t *testing.T) {
	d, err := OpenNoop()
	if err != nil {
		t.Fatal(err)
	}
	d.Close()
	d.Close()
	if _, err := d.CreateBuffer("x", 4, gputypes.BufferUsageCopyDst); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateBuffer after Close error = %v, want ErrClosed", err)
	}
	if err := d.BeginFrame(1, 1, ClearValues{}); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginFrame after Close error = %v, want ErrClosed", err)
	}
}
