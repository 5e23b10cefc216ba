package engine

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxrt/internal/gpu"
	"github.com/gogpu/gfxrt/internal/parallel"
	"github.com/gogpu/gfxrt/schema"
)

// Allocation errors. Handlers log them; the render goroutine never panics on
// a bad range.
var (
	ErrOutOfBounds   = errors.New("engine: range outside allocation")
	ErrShortData     = errors.New("engine: data shorter than range")
	ErrNotResizable  = errors.New("engine: allocation cannot be resized")
	ErrNoTexture     = errors.New("engine: element has no texture format")
	ErrSyncSource    = errors.New("engine: source must be exactly one usage type")
	ErrMismatch      = errors.New("engine: allocations have different elements")
	ErrNoDevice      = errors.New("engine: no GPU device")
	ErrIODisabled    = errors.New("engine: allocation lacks the IO usage")
	ErrAdapterParent = errors.New("engine: invalid adapter parent")
	ErrStaleView     = errors.New("engine: adapter outlived a resize of its parent")
)

type view struct {
	dims      int // 1 or 2
	lod, face int
	yz        uint32 // Y for 1D views, Z for 2D views
}

// Allocation is the storage of a typed memory block on the render goroutine.
// Adapters share the storage of their root allocation and address it
// through a fixed LOD, face and row or slice.
type Allocation struct {
	typ          *schema.Type
	usage        Usage
	writeAllowed bool
	data         []byte

	parent *Allocation
	view   view
	// gen counts resizes of a root allocation; adapters keep the value
	// seen at creation.
	gen uint32

	tex      *gpu.Texture
	texBase  int
	texDirty bool
	buf      *gpu.Buffer
	bufDirty bool
}

func newAllocation(t *schema.Type, usage Usage) *Allocation {
	writeAllowed, err := usage.Check()
	if err != nil {
		slogger().Error("allocation usage", "usage", usage, "err", err)
	}
	return &Allocation{
		typ:          t,
		usage:        usage,
		writeAllowed: writeAllowed,
		data:         make([]byte, t.SizeBytes()),
	}
}

func newAdapter(parent *Allocation, dims, lod, face int, yz uint32) (*Allocation, error) {
	pt := parent.typ
	if lod < 0 || lod >= pt.LODCount() || face < 0 || face >= pt.FaceCount() {
		return nil, fmt.Errorf("%w: lod %d face %d of %s", ErrAdapterParent, lod, face, pt)
	}
	l := pt.LOD(lod)
	var (
		t   *schema.Type
		err error
	)
	switch dims {
	case 1:
		if yz >= max(l.Y, 1) {
			return nil, fmt.Errorf("%w: row %d of %d", ErrAdapterParent, yz, max(l.Y, 1))
		}
		t, err = schema.NewType(pt.Element(), l.X, 0, 0, false, false)
	case 2:
		if yz >= max(l.Z, 1) {
			return nil, fmt.Errorf("%w: slice %d of %d", ErrAdapterParent, yz, max(l.Z, 1))
		}
		t, err = schema.NewType(pt.Element(), l.X, l.Y, 0, false, false)
	default:
		return nil, fmt.Errorf("%w: %d dimensions", ErrAdapterParent, dims)
	}
	if err != nil {
		return nil, err
	}
	return &Allocation{
		typ:          t,
		usage:        parent.usage,
		writeAllowed: parent.writeAllowed,
		parent:       parent,
		view:         view{dims: dims, lod: lod, face: face, yz: yz},
		gen:          parent.root().gen,
	}, nil
}

// Type returns the current type.
func (a *Allocation) Type() *schema.Type { return a.typ }

// Usage returns the usage mask.
func (a *Allocation) Usage() Usage { return a.usage }

// WriteAllowed reports whether host writes are permitted.
func (a *Allocation) WriteAllowed() bool { return a.writeAllowed }

// Adapted reports whether a is a view over another allocation.
func (a *Allocation) Adapted() bool { return a.parent != nil }

// Bytes returns the backing storage of the root allocation.
func (a *Allocation) Bytes() []byte { return a.root().data }

func (a *Allocation) root() *Allocation {
	for a.parent != nil {
		a = a.parent
	}
	return a
}

// offset resolves instance (x, y, z) of lod and face to a byte offset in
// the root storage.
func (a *Allocation) offset(lod, face int, x, y, z uint32) int {
	if a.parent == nil {
		return a.typ.Offset(lod, face, x, y, z)
	}
	v := a.view
	if v.dims == 1 {
		return a.parent.offset(v.lod, v.face, x, v.yz, 0)
	}
	return a.parent.offset(v.lod, v.face, x, y, v.yz)
}

// stale reports whether the root of an adapter was resized after the
// adapter was made.
func (a *Allocation) stale() bool {
	return a.parent != nil && a.gen != a.root().gen
}

func (a *Allocation) checkLOD(lod, face int) error {
	if a.stale() {
		return ErrStaleView
	}
	if lod < 0 || lod >= a.typ.LODCount() || face < 0 || face >= a.typ.FaceCount() {
		return fmt.Errorf("%w: lod %d face %d of %s", ErrOutOfBounds, lod, face, a.typ)
	}
	return nil
}

// span1D returns the byte range of count instances starting at off.
func (a *Allocation) span1D(lod, face int, off, count uint32) (int, int, error) {
	if err := a.checkLOD(lod, face); err != nil {
		return 0, 0, err
	}
	if count == 0 || uint64(off)+uint64(count) > uint64(a.typ.LODInstanceCount(lod)) {
		return 0, 0, fmt.Errorf("%w: offset %d count %d of %d", ErrOutOfBounds, off, count, a.typ.LODInstanceCount(lod))
	}
	stride := a.typ.Element().SizeBytes()
	start := a.offset(lod, face, 0, 0, 0) + int(off)*stride
	end := start + int(count)*stride
	if end > len(a.Bytes()) {
		return 0, 0, fmt.Errorf("%w: bytes %d..%d of %d", ErrOutOfBounds, start, end, len(a.Bytes()))
	}
	return start, end, nil
}

func (a *Allocation) check2D(lod, face int, xoff, yoff, w, h uint32) error {
	if err := a.checkLOD(lod, face); err != nil {
		return err
	}
	l := a.typ.LOD(lod)
	if w == 0 || h == 0 || uint64(xoff)+uint64(w) > uint64(l.X) || uint64(yoff)+uint64(h) > uint64(max(l.Y, 1)) {
		return fmt.Errorf("%w: rect %d,%d %dx%d of %dx%d", ErrOutOfBounds, xoff, yoff, w, h, l.X, max(l.Y, 1))
	}
	return nil
}

// checkRows verifies that h rows of row bytes starting at (xoff, yoff)
// resolve inside mem.
func (a *Allocation) checkRows(mem []byte, lod, face int, xoff, yoff, h uint32, row int) error {
	for r := range h {
		o := a.offset(lod, face, xoff, yoff+r, 0)
		if o < 0 || o+row > len(mem) {
			return fmt.Errorf("%w: row %d bytes %d..%d of %d", ErrOutOfBounds, yoff+r, o, o+row, len(mem))
		}
	}
	return nil
}

// Write1D copies count instances from data into the allocation at off.
func (a *Allocation) Write1D(lod, face int, off, count uint32, data []byte) error {
	start, end, err := a.span1D(lod, face, off, count)
	if err != nil {
		return err
	}
	if len(data) < end-start {
		return fmt.Errorf("%w: %d < %d", ErrShortData, len(data), end-start)
	}
	copy(a.Bytes()[start:end], data)
	a.touch()
	return nil
}

// Read1D returns a copy of count instances starting at off.
func (a *Allocation) Read1D(lod, face int, off, count uint32) ([]byte, error) {
	start, end, err := a.span1D(lod, face, off, count)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), a.Bytes()[start:end]...), nil
}

// Write2D copies a w x h rectangle of tightly packed rows into the
// allocation at (xoff, yoff).
func (a *Allocation) Write2D(lod, face int, xoff, yoff, w, h uint32, data []byte) error {
	if err := a.check2D(lod, face, xoff, yoff, w, h); err != nil {
		return err
	}
	row := int(w) * a.typ.Element().SizeBytes()
	if len(data) < row*int(h) {
		return fmt.Errorf("%w: %d < %d", ErrShortData, len(data), row*int(h))
	}
	mem := a.Bytes()
	if err := a.checkRows(mem, lod, face, xoff, yoff, h, row); err != nil {
		return err
	}
	for r := range h {
		o := a.offset(lod, face, xoff, yoff+r, 0)
		copy(mem[o:o+row], data[int(r)*row:])
	}
	a.touch()
	return nil
}

// Read2D returns a w x h rectangle as tightly packed rows.
func (a *Allocation) Read2D(lod, face int, xoff, yoff, w, h uint32) ([]byte, error) {
	if err := a.check2D(lod, face, xoff, yoff, w, h); err != nil {
		return nil, err
	}
	row := int(w) * a.typ.Element().SizeBytes()
	out := make([]byte, 0, row*int(h))
	mem := a.Bytes()
	if err := a.checkRows(mem, lod, face, xoff, yoff, h, row); err != nil {
		return nil, err
	}
	for r := range h {
		o := a.offset(lod, face, xoff, yoff+r, 0)
		out = append(out, mem[o:o+row]...)
	}
	return out, nil
}

// Slice selects a LOD and face on one end of an allocation-to-allocation
// copy.
type Slice struct {
	Alloc     *Allocation
	LOD, Face int
}

// Copy1D copies count instances from src at srcOff to dst at dstOff.
func Copy1D(dst Slice, dstOff uint32, src Slice, srcOff, count uint32) error {
	if !dst.Alloc.typ.Element().Equal(src.Alloc.typ.Element()) {
		return ErrMismatch
	}
	ss, se, err := src.Alloc.span1D(src.LOD, src.Face, srcOff, count)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	ds, de, err := dst.Alloc.span1D(dst.LOD, dst.Face, dstOff, count)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	copy(dst.Alloc.Bytes()[ds:de], src.Alloc.Bytes()[ss:se])
	dst.Alloc.touch()
	return nil
}

// Copy2D copies a w x h rectangle from src at (sx, sy) to dst at (dx, dy).
func Copy2D(dst Slice, dx, dy uint32, src Slice, sx, sy, w, h uint32) error {
	if !dst.Alloc.typ.Element().Equal(src.Alloc.typ.Element()) {
		return ErrMismatch
	}
	if err := src.Alloc.check2D(src.LOD, src.Face, sx, sy, w, h); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.Alloc.check2D(dst.LOD, dst.Face, dx, dy, w, h); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	row := int(w) * dst.Alloc.typ.Element().SizeBytes()
	dmem, smem := dst.Alloc.Bytes(), src.Alloc.Bytes()
	if err := src.Alloc.checkRows(smem, src.LOD, src.Face, sx, sy, h, row); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.Alloc.checkRows(dmem, dst.LOD, dst.Face, dx, dy, h, row); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	// Rows are copied bottom-up when both ends share storage and the
	// destination starts later, so overlapping rectangles move intact.
	rows := make([]uint32, h)
	for i := range rows {
		rows[i] = uint32(i)
	}
	if &dmem[0] == &smem[0] && dst.Alloc.offset(dst.LOD, dst.Face, dx, dy, 0) > src.Alloc.offset(src.LOD, src.Face, sx, sy, 0) {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	for _, r := range rows {
		do := dst.Alloc.offset(dst.LOD, dst.Face, dx, dy+r, 0)
		so := src.Alloc.offset(src.LOD, src.Face, sx, sy+r, 0)
		copy(dmem[do:do+row], smem[so:so+row])
	}
	dst.Alloc.touch()
	return nil
}

// Resize1D changes X of a one dimensional allocation, keeping the common
// prefix.
func (a *Allocation) Resize1D(x uint32) error {
	t := a.typ
	if a.parent != nil || t.Is2D() || t.HasFaces() || t.HasMips() {
		return fmt.Errorf("%w: %s", ErrNotResizable, t)
	}
	return a.resize(x, 0)
}

// Resize2D changes X and Y of a two dimensional allocation, keeping the
// overlapping rectangle.
func (a *Allocation) Resize2D(x, y uint32) error {
	t := a.typ
	if a.parent != nil || t.Z() > 1 || t.HasFaces() || t.HasMips() {
		return fmt.Errorf("%w: %s", ErrNotResizable, t)
	}
	return a.resize(x, y)
}

func (a *Allocation) resize(x, y uint32) error {
	old := a.typ
	nt, err := schema.NewType(old.Element(), x, y, 0, false, false)
	if err != nil {
		return err
	}
	data := make([]byte, nt.SizeBytes())
	row := int(min(old.X(), x)) * old.Element().SizeBytes()
	for r := range min(max(old.Y(), 1), max(y, 1)) {
		copy(data[nt.Offset(0, 0, 0, r, 0):], a.data[old.Offset(0, 0, 0, r, 0):][:row])
	}
	a.typ = nt
	a.data = data
	a.gen++
	a.touch()
	slogger().Debug("allocation resized", "from", old, "to", nt)
	return nil
}

// touch marks GPU mirrors stale after a host-side write.
func (a *Allocation) touch() {
	r := a.root()
	r.texDirty = r.tex != nil
	r.bufDirty = r.buf != nil
}

// textureFormat maps the element to the format used for its texture
// mirror.
func textureFormat(e *schema.Element) (gputypes.TextureFormat, bool) {
	if e.DataType() != schema.DataTypeUnsigned8 {
		return 0, false
	}
	switch e.ComponentCount() {
	case 1:
		return gputypes.TextureFormatR8Unorm, true
	case 4:
		return gputypes.TextureFormatRGBA8Unorm, true
	}
	return 0, false
}

// UploadToTexture creates or refreshes the texture mirror from baseMip
// down.
func (a *Allocation) UploadToTexture(dev *gpu.Device, baseMip int) error {
	if dev == nil {
		return ErrNoDevice
	}
	r := a.root()
	t := r.typ
	format, ok := textureFormat(t.Element())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTexture, t.Element())
	}
	if baseMip < 0 || baseMip >= t.LODCount() {
		return fmt.Errorf("%w: base mip %d of %d", ErrOutOfBounds, baseMip, t.LODCount())
	}
	base := t.LOD(baseMip)
	levels := uint32(t.LODCount() - baseMip)
	if r.tex != nil && (r.texBase != baseMip || r.tex.Width() != base.X || r.tex.Height() != max(base.Y, 1)) {
		dev.DestroyTexture(r.tex)
		r.tex = nil
	}
	if r.tex == nil {
		tex, err := dev.CreateTexture("allocation", base.X, max(base.Y, 1), levels, format)
		if err != nil {
			return err
		}
		r.tex, r.texBase = tex, baseMip
	}
	for l := baseMip; l < t.LODCount(); l++ {
		start := t.Offset(l, 0, 0, 0, 0)
		dev.WriteTexture(r.tex, uint32(l-baseMip), r.data[start:start+t.LODInstanceCount(l)*t.Element().SizeBytes()])
	}
	r.texDirty = false
	return nil
}

// UploadToBufferObject creates or refreshes the buffer mirror.
func (a *Allocation) UploadToBufferObject(dev *gpu.Device) error {
	if dev == nil {
		return ErrNoDevice
	}
	r := a.root()
	if r.buf != nil && r.buf.Size() < uint64(len(r.data)) {
		dev.DestroyBuffer(r.buf)
		r.buf = nil
	}
	if r.buf == nil {
		usage := gputypes.BufferUsageVertex | gputypes.BufferUsageUniform |
			gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
		buf, err := dev.CreateBuffer("allocation", len(r.data), usage)
		if err != nil {
			return err
		}
		r.buf = buf
	}
	dev.WriteBuffer(r.buf, 0, r.data)
	r.bufDirty = false
	return nil
}

// flush re-uploads stale mirrors.
func (a *Allocation) flush(dev *gpu.Device) error {
	var err error
	if a.texDirty {
		err = a.UploadToTexture(dev, a.texBase)
	}
	if a.bufDirty {
		err = errors.Join(err, a.UploadToBufferObject(dev))
	}
	return err
}

// SyncAll propagates the copy named by src to every other copy. The host
// storage is the source for script usage; a buffer-backed usage reads the
// GPU buffer back first.
func (a *Allocation) SyncAll(dev *gpu.Device, src Usage) error {
	if !src.single() {
		return fmt.Errorf("%w: %s", ErrSyncSource, src)
	}
	r := a.root()
	switch src {
	case UsageGraphicsVertex, UsageGraphicsConstants:
		if r.buf != nil && dev != nil {
			if err := dev.ReadBuffer(r.buf, 0, r.data); err != nil {
				return err
			}
			r.texDirty = r.tex != nil
			break
		}
		fallthrough
	default:
		r.touch()
	}
	return r.flush(dev)
}

func (a *Allocation) generateMipmaps(pool *parallel.WorkerPool) error {
	r := a.root()
	t := r.typ
	if !t.HasMips() {
		return nil
	}
	if t.Element().DataType() != schema.DataTypeUnsigned8 {
		return fmt.Errorf("%w: mipmaps need byte components, have %s", ErrNoTexture, t.Element())
	}
	ch := t.Element().SizeBytes()
	for face := range t.FaceCount() {
		for l := 1; l < t.LODCount(); l++ {
			boxFilter(pool, r.data[t.Offset(l, face, 0, 0, 0):], t.LOD(l),
				r.data[t.Offset(l-1, face, 0, 0, 0):], t.LOD(l-1), ch)
		}
	}
	r.touch()
	return nil
}

func (a *Allocation) release(dev *gpu.Device) {
	if dev != nil {
		dev.DestroyTexture(a.tex)
		dev.DestroyBuffer(a.buf)
	}
	a.tex, a.buf = nil, nil
}
