package gfxrt

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/schema"
)

func sized(t *testing.T, rs *Context, p schema.Predefined, count uint32, usage Usage) *Allocation {
	t.Helper()
	elem, err := rs.PredefinedElement(p)
	if err != nil {
		t.Fatalf("PredefinedElement(%d) error = %v", p, err)
	}
	a, err := rs.CreateSized(elem, count, usage)
	if err != nil {
		t.Fatalf("CreateSized() error = %v", err)
	}
	return a
}

func image2D(t *testing.T, rs *Context, p schema.Predefined, b TypeBuilder, usage Usage) *Allocation {
	t.Helper()
	elem, err := rs.PredefinedElement(p)
	if err != nil {
		t.Fatal(err)
	}
	typ, err := rs.CreateType(elem, b)
	if err != nil {
		t.Fatalf("CreateType(%+v) error = %v", b, err)
	}
	a, err := rs.CreateTyped(typ, usage)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestCopy1DRoundTrip(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedF32, 8, UsageScript)

	if err := Copy1DRangeFrom(a, 2, 3, []float32{1.5, -2, 4}); err != nil {
		t.Fatalf("Copy1DRangeFrom() error = %v", err)
	}
	got := make([]float32, 8)
	if err := Copy1DRangeTo(a, 0, 8, got); err != nil {
		t.Fatalf("Copy1DRangeTo() error = %v", err)
	}
	if want := []float32{0, 0, 1.5, -2, 4, 0, 0, 0}; !slices.Equal(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}
}

func TestCopy1DValidation(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedI32, 4, UsageScript)
	if err := CopyFrom(a, []int32{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	in := sized(t, rs, schema.PredefinedI32, 4, UsageIOInput|UsageScript)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"zero count", Copy1DRangeFrom(a, 0, 0, []int32{9}), ErrZeroCount},
		{"past the end", Copy1DRangeFrom(a, 2, 4, []int32{9, 9, 9, 9}), ErrOutOfRange},
		{"offset overflow", Copy1DRangeFrom(a, ^uint32(0), 2, []int32{9, 9}), ErrOutOfRange},
		{"short buffer", Copy1DRangeFrom(a, 0, 3, []int32{9, 9}), ErrShortBuffer},
		{"float into int", Copy1DRangeFrom(a, 0, 1, []float32{9}), ErrTypeMismatch},
		{"platform int", Copy1DRangeFrom(a, 0, 1, []int{9}), ErrTypeMismatch},
		{"unsigned into signed", Copy1DRangeFrom(a, 0, 1, []uint32{9}), ErrTypeMismatch},
		{"io input", Copy1DRangeFrom(in, 0, 1, []int32{9}), ErrWriteDisabled},
		{"read past the end", Copy1DRangeTo(a, 3, 2, make([]int32, 2)), ErrOutOfRange},
		{"read short buffer", Copy1DRangeTo(a, 0, 4, make([]int32, 3)), ErrShortBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}

	got := make([]int32, 4)
	if err := Copy1DRangeTo(a, 0, 4, got); err != nil {
		t.Fatal(err)
	}
	if want := []int32{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("rejected copies changed memory: %v, want %v", got, want)
	}
}

func TestCopyChunked(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.FifoBytes = 1024
	cfg.ReturnBytes = 1024
	rs, _ := newTestContext(t, WithConfig(cfg))

	const n = 2000
	a := sized(t, rs, schema.PredefinedU32, n, UsageScript)
	src := make([]uint32, n)
	for i := range src {
		src[i] = uint32(i * 7)
	}
	if err := CopyFrom(a, src); err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	got := make([]uint32, n)
	if err := Copy1DRangeTo(a, 0, n, got); err != nil {
		t.Fatalf("Copy1DRangeTo() error = %v", err)
	}
	if !slices.Equal(got, src) {
		t.Error("chunked round trip differs")
	}
}

func TestCopy2D(t *testing.T) {
	rs, _ := newTestContext(t)
	a := image2D(t, rs, schema.PredefinedU16, TypeBuilder{X: 4, Y: 3}, UsageScript)

	if err := Copy2DRangeFrom(a, 1, 1, 2, 2, []uint16{1, 2, 3, 4}); err != nil {
		t.Fatalf("Copy2DRangeFrom() error = %v", err)
	}
	got := make([]uint16, 12)
	if err := Copy2DRangeTo(a, 0, 0, 4, 3, got); err != nil {
		t.Fatalf("Copy2DRangeTo() error = %v", err)
	}
	want := []uint16{
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 3, 4, 0,
	}
	if !slices.Equal(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}

	if err := Copy2DRangeFrom(a, 3, 0, 2, 1, []uint16{1, 2}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("wide rect error = %v, want ErrOutOfRange", err)
	}
	if err := Copy2DRangeFrom(a, 0, 0, 0, 1, []uint16{}); !errors.Is(err, ErrZeroCount) {
		t.Errorf("empty rect error = %v, want ErrZeroCount", err)
	}
}

func TestPixelAsWord(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedRGBA8888, 2, UsageScript)
	if err := CopyFrom(a, []uint32{0x11223344, 0x55667788}); err != nil {
		t.Fatalf("uint32 pixels rejected: %v", err)
	}
	bytes := make([]uint8, 8)
	if err := Copy1DRangeTo(a, 0, 2, bytes); err != nil {
		t.Fatal(err)
	}
	words := make([]uint32, 2)
	if err := Copy1DRangeTo(a, 0, 2, words); err != nil {
		t.Fatal(err)
	}
	if words[0] != 0x11223344 || words[1] != 0x55667788 {
		t.Errorf("words = %#x", words)
	}
	if err := CopyFrom(a, []uint16{1, 2, 3, 4}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("uint16 into RGBA_8888 error = %v, want ErrTypeMismatch", err)
	}
}

func TestAllocationToAllocation(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedU8, 4, UsageScript)
	b := sized(t, rs, schema.PredefinedU8, 4, UsageScript)
	f := sized(t, rs, schema.PredefinedF32, 4, UsageScript)
	CopyFrom(a, []uint8{1, 2, 3, 4})

	if err := b.Copy1DRangeFromAllocation(1, 3, a, 0); err != nil {
		t.Fatalf("copy error = %v", err)
	}
	// Overlapping copy within one allocation.
	if err := a.Copy1DRangeFromAllocation(1, 3, a, 0); err != nil {
		t.Fatal(err)
	}
	gotA, gotB := make([]uint8, 4), make([]uint8, 4)
	Copy1DRangeTo(a, 0, 4, gotA)
	Copy1DRangeTo(b, 0, 4, gotB)
	if want := []uint8{1, 1, 2, 3}; !slices.Equal(gotA, want) {
		t.Errorf("overlapping copy = %v, want %v", gotA, want)
	}
	if want := []uint8{0, 1, 2, 3}; !slices.Equal(gotB, want) {
		t.Errorf("copy = %v, want %v", gotB, want)
	}

	if err := f.Copy1DRangeFromAllocation(0, 1, a, 0); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("mixed elements error = %v, want ErrTypeMismatch", err)
	}
	if err := b.Copy1DRangeFromAllocation(2, 3, a, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("overrun error = %v, want ErrOutOfRange", err)
	}
	if err := Copy1D(b.At(1, 0), 0, a.At(0, 0), 0, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("missing mip level error = %v, want ErrOutOfRange", err)
	}
}

func TestResize(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedI16, 3, UsageScript)
	CopyFrom(a, []int16{1, 2, 3})
	oldType := a.Type()

	if err := a.Resize1D(5); err != nil {
		t.Fatalf("Resize1D() error = %v", err)
	}
	if a.Type() == oldType || a.Type().Count() != 5 || a.Type().Handle() == 0 {
		t.Fatalf("type after resize = %v (handle %d)", a.Type().Schema(), a.Type().Handle())
	}
	got := make([]int16, 5)
	if err := Copy1DRangeTo(a, 0, 5, got); err != nil {
		t.Fatal(err)
	}
	if want := []int16{1, 2, 3, 0, 0}; !slices.Equal(got, want) {
		t.Errorf("after grow = %v, want %v", got, want)
	}

	if err := a.Resize1D(0); !errors.Is(err, ErrZeroCount) {
		t.Errorf("Resize1D(0) error = %v", err)
	}
	if err := a.Resize2D(2, 2); err != nil {
		t.Fatalf("Resize2D() error = %v", err)
	}
	if err := a.Resize1D(4); !errors.Is(err, ErrInvalidUsage) {
		t.Errorf("Resize1D of a 2D allocation error = %v, want ErrInvalidUsage", err)
	}

	mipped := image2D(t, rs, schema.PredefinedU8, TypeBuilder{X: 4, Y: 4, Mips: true}, UsageScript)
	if err := mipped.Resize2D(8, 8); !errors.Is(err, ErrInvalidUsage) {
		t.Errorf("Resize2D with mips error = %v, want ErrInvalidUsage", err)
	}
}

func TestAdapters(t *testing.T) {
	rs, _ := newTestContext(t)
	a := image2D(t, rs, schema.PredefinedU8, TypeBuilder{X: 3, Y: 2}, UsageScript)
	CopyFrom(a, []uint8{1, 2, 3, 4, 5, 6})

	row, err := a.Adapter1D(0, 0, 1)
	if err != nil {
		t.Fatalf("Adapter1D() error = %v", err)
	}
	if !row.Adapted() || row.Type().Count() != 3 {
		t.Errorf("adapter type = %v", row.Type().Schema())
	}
	got := make([]uint8, 3)
	if err := Copy1DRangeTo(row, 0, 3, got); err != nil {
		t.Fatal(err)
	}
	if want := []uint8{4, 5, 6}; !slices.Equal(got, want) {
		t.Errorf("row 1 = %v, want %v", got, want)
	}
	if err := Copy1DRangeFrom(row, 1, 1, []uint8{9}); err != nil {
		t.Fatal(err)
	}
	all := make([]uint8, 6)
	Copy1DRangeTo(a, 0, 6, all)
	if want := []uint8{1, 2, 3, 4, 9, 6}; !slices.Equal(all, want) {
		t.Errorf("parent after adapter write = %v, want %v", all, want)
	}

	// Adapters skip client bounds checks; the engine rejects the read.
	if err := Copy1DRangeTo(row, 2, 4, make([]uint8, 4)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("adapter overrun error = %v, want ErrOutOfRange", err)
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"row out of range", func() error { _, err := a.Adapter1D(0, 0, 2); return err }(), ErrOutOfRange},
		{"adapter of adapter", func() error { _, err := row.Adapter1D(0, 0, 0); return err }(), ErrNotAdapted},
		{"resize adapter", row.Resize1D(5), ErrNotAdapted},
		{"upload adapter", row.UploadToBufferObject(), ErrNotAdapted},
		{"slice out of range", func() error { _, err := a.Adapter2D(0, 0, 1); return err }(), ErrOutOfRange},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestAdapterAfterParentResize(t *testing.T) {
	rs, _ := newTestContext(t)
	a := image2D(t, rs, schema.PredefinedI32, TypeBuilder{X: 4, Y: 4}, UsageScript)
	view, err := a.Adapter2D(0, 0, 0)
	if err != nil {
		t.Fatalf("Adapter2D() error = %v", err)
	}
	if err := a.Resize2D(2, 2); err != nil {
		t.Fatalf("Resize2D() error = %v", err)
	}

	// The engine rejects the stale write and keeps running.
	if err := Copy2DRangeFrom(view, 0, 0, 4, 4, make([]int32, 16)); err != nil {
		t.Fatalf("Copy2DRangeFrom() error = %v", err)
	}
	if err := Copy2DRangeTo(view, 0, 0, 4, 4, make([]int32, 16)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("stale read error = %v, want ErrOutOfRange", err)
	}
	if err := rs.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if got := rs.State(); got != engine.StateRunning {
		t.Errorf("State() = %s, want running", got)
	}

	got := make([]int32, 4)
	if err := Copy2DRangeTo(a, 0, 0, 2, 2, got); err != nil {
		t.Fatal(err)
	}
	if want := []int32{0, 0, 0, 0}; !slices.Equal(got, want) {
		t.Errorf("parent after stale write = %v, want %v", got, want)
	}
}

type memIO struct {
	sent map[uint32][]byte
	next []byte
}

func (m *memIO) Send(alloc uint32, data []byte) { m.sent[alloc] = data }

func (m *memIO) Receive(_ uint32, dst []byte) bool {
	if m.next == nil {
		return false
	}
	copy(dst, m.next)
	return true
}

func TestUsageGatedOperations(t *testing.T) {
	io := &memIO{sent: make(map[uint32][]byte), next: []byte{7, 8}}
	rs, _ := newTestContext(t, WithIO(io))
	script := sized(t, rs, schema.PredefinedU8, 2, UsageScript)
	out := sized(t, rs, schema.PredefinedU8, 2, UsageScript|UsageIOOutput)
	in := sized(t, rs, schema.PredefinedU8, 2, UsageScript|UsageIOInput)
	vertex := sized(t, rs, schema.PredefinedF32, 4, UsageScript|UsageGraphicsVertex)
	CopyFrom(out, []uint8{1, 2})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"send without io usage", script.IOSendOutput(), ErrInvalidUsage},
		{"receive without io usage", script.IOReceive(), ErrInvalidUsage},
		{"send", out.IOSendOutput(), nil},
		{"receive", in.IOReceive(), nil},
		{"texture upload without usage", script.UploadToTexture(0), ErrInvalidUsage},
		{"buffer upload", vertex.UploadToBufferObject(), nil},
		{"buffer upload without usage", script.UploadToBufferObject(), ErrInvalidUsage},
		{"sync from two usages", vertex.SyncAll(UsageScript | UsageGraphicsVertex), ErrInvalidUsage},
		{"sync from missing usage", script.SyncAll(UsageGraphicsVertex), ErrInvalidUsage},
		{"sync", vertex.SyncAll(UsageScript), nil},
		{"mipmaps without mips", script.GenerateMipmaps(), ErrInvalidUsage},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	got := make([]uint8, 2)
	if err := Copy1DRangeTo(in, 0, 2, got); err != nil {
		t.Fatal(err)
	}
	if want := []uint8{7, 8}; !slices.Equal(got, want) {
		t.Errorf("received = %v, want %v", got, want)
	}
	if want := []byte{1, 2}; !slices.Equal(io.sent[out.Handle()], want) {
		t.Errorf("sent = %v, want %v", io.sent[out.Handle()], want)
	}
}

func TestScriptSlots(t *testing.T) {
	rs, _ := newTestContext(t)
	a := sized(t, rs, schema.PredefinedF32, 4, UsageScript)
	s, err := rs.NewScriptC().
		AddType(0, a.Type()).
		DefineInt("count", 4).
		DefineFloat("speed", 0.5).
		SetText("fn root() {}").
		Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.BindAllocation(a, 0); err != nil {
		t.Fatal(err)
	}
	slots := rs.Engine().Config().ScriptSlots
	if err := s.BindAllocation(a, slots); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("BindAllocation past the last slot error = %v, want ErrOutOfRange", err)
	}

	if _, err := rs.NewScriptC().AddType(slots, a.Type()).Create(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddType past the last slot error = %v, want ErrOutOfRange", err)
	}
	if _, err := rs.NewScriptC().DefineInt("", 1).Create(); err == nil {
		t.Error("empty constant name accepted")
	}
}
