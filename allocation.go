package gfxrt

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/cmd"
	"github.com/gogpu/gfxrt/schema"
)

// Usage is the bit mask of the ways an allocation may be used.
type Usage = engine.Usage

// Allocation usages.
const (
	UsageScript               = engine.UsageScript
	UsageGraphicsTexture      = engine.UsageGraphicsTexture
	UsageGraphicsVertex       = engine.UsageGraphicsVertex
	UsageGraphicsConstants    = engine.UsageGraphicsConstants
	UsageGraphicsRenderTarget = engine.UsageGraphicsRenderTarget
	UsageIOInput              = engine.UsageIOInput
	UsageIOOutput             = engine.UsageIOOutput
)

// Record overhead of the data commands and read replies, rounded up.
const (
	data1DOverhead = 32
	data2DOverhead = 40
	replyOverhead  = 16
)

// Scalar is the set of host element types accepted by the typed range
// copies.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// dataTypeOf maps T to its schema data type. Platform sized integers have
// no fixed layout and map to DataTypeNone.
func dataTypeOf[T Scalar]() schema.DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return schema.DataTypeSigned8
	case int16:
		return schema.DataTypeSigned16
	case int32:
		return schema.DataTypeSigned32
	case int64:
		return schema.DataTypeSigned64
	case uint8:
		return schema.DataTypeUnsigned8
	case uint16:
		return schema.DataTypeUnsigned16
	case uint32:
		return schema.DataTypeUnsigned32
	case uint64:
		return schema.DataTypeUnsigned64
	case float32:
		return schema.DataTypeFloat32
	case float64:
		return schema.DataTypeFloat64
	}
	return schema.DataTypeNone
}

// Allocation is a typed memory block owned by the engine.
type Allocation struct {
	object
	typ          *Type
	usage        Usage
	writeAllowed bool
	adapted      bool
}

// CreateTyped creates an allocation of type t. Unknown or conflicting usage
// bits are logged and the allocation is still created.
func (rs *Context) CreateTyped(t *Type, usage Usage) (*Allocation, error) {
	if t == nil {
		return nil, fmt.Errorf("gfxrt: create allocation: %w", schema.ErrNoElement)
	}
	writeAllowed, err := usage.Check()
	if err != nil {
		slogger().Error("gfxrt: allocation usage", "usage", usage, "err", err)
	}
	id, err := rs.handle(cmd.OpAllocationCreateTyped, func(e *cmd.Encoder) { e.U32(t.id).U32(uint32(usage)) })
	if err != nil {
		return nil, err
	}
	return &Allocation{
		object:       object{rs: rs, id: id},
		typ:          t,
		usage:        usage,
		writeAllowed: writeAllowed,
	}, nil
}

// CreateSized creates a one dimensional allocation of count instances of e.
func (rs *Context) CreateSized(e *Element, count uint32, usage Usage) (*Allocation, error) {
	t, err := rs.CreateType(e, TypeBuilder{X: count})
	if err != nil {
		return nil, err
	}
	return rs.CreateTyped(t, usage)
}

// Type returns the current type. Resize replaces it.
func (a *Allocation) Type() *Type { return a.typ }

// Usage returns the usage mask.
func (a *Allocation) Usage() Usage { return a.usage }

// WriteAllowed reports whether host writes are permitted. IO input
// allocations are written only by their IO endpoint.
func (a *Allocation) WriteAllowed() bool { return a.writeAllowed }

// Adapted reports whether a is a view created by Adapter1D or Adapter2D.
func (a *Allocation) Adapted() bool { return a.adapted }

func (a *Allocation) stride() int { return a.typ.typ.Element().SizeBytes() }

// reject logs a validation failure and returns it wrapped with op.
func (a *Allocation) reject(op string, err error, attrs ...any) error {
	slogger().Error("gfxrt: "+op+" rejected", append([]any{"alloc", a.id, "err", err}, attrs...)...)
	return fmt.Errorf("gfxrt: %s: %w", op, err)
}

func (a *Allocation) checkLOD(lod, face int) error {
	st := a.typ.typ
	if lod < 0 || lod >= st.LODCount() || face < 0 || face >= st.FaceCount() {
		return fmt.Errorf("%w: lod %d face %d of %s", ErrOutOfRange, lod, face, st)
	}
	return nil
}

// check1D validates count instances at off of a mip level. Adapters leave
// bounds to their parent.
func (a *Allocation) check1D(lod, face int, off, count uint32) error {
	if count == 0 {
		return ErrZeroCount
	}
	if err := a.checkLOD(lod, face); err != nil {
		return err
	}
	if a.adapted {
		return nil
	}
	if n := a.typ.typ.LODInstanceCount(lod); uint64(off)+uint64(count) > uint64(n) {
		return fmt.Errorf("%w: offset %d count %d of %d", ErrOutOfRange, off, count, n)
	}
	return nil
}

func (a *Allocation) check2D(lod, face int, xoff, yoff, w, h uint32) error {
	if w == 0 || h == 0 {
		return ErrZeroCount
	}
	if err := a.checkLOD(lod, face); err != nil {
		return err
	}
	if a.adapted {
		return nil
	}
	l := a.typ.typ.LOD(lod)
	if uint64(xoff)+uint64(w) > uint64(l.X) || uint64(yoff)+uint64(h) > uint64(max(l.Y, 1)) {
		return fmt.Errorf("%w: rect %d,%d %dx%d of %dx%d", ErrOutOfRange, xoff, yoff, w, h, l.X, max(l.Y, 1))
	}
	return nil
}

// scalars returns how many values of type dt make up count instances.
func (a *Allocation) scalars(dt schema.DataType, count uint64) (int, error) {
	elem := a.typ.typ.Element()
	per := elem.ScalarsPerInstance(dt)
	if per == 0 {
		return 0, fmt.Errorf("%w: %s into %s", ErrTypeMismatch, dt, elem)
	}
	return int(count) * per, nil
}

// Copy1DRangeFrom writes count instances at off from data. T must match the
// element data type; an RGBA_8888 allocation also takes one uint32 per
// pixel. Data larger than a command record is split over several records.
func Copy1DRangeFrom[T Scalar](a *Allocation, off, count uint32, data []T) error {
	const op = "copy1DRangeFrom"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()

	if !a.writeAllowed {
		return a.reject(op, ErrWriteDisabled, "usage", a.usage)
	}
	if err := a.check1D(0, 0, off, count); err != nil {
		return a.reject(op, err, "offset", off, "count", count)
	}
	n, err := a.scalars(dataTypeOf[T](), uint64(count))
	if err != nil {
		return a.reject(op, err)
	}
	if len(data) < n {
		return a.reject(op, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(data), n), "offset", off, "count", count)
	}
	buf, err := binary.Append(nil, binary.NativeEndian, data[:n])
	if err != nil {
		return a.reject(op, err)
	}
	return a.write1DLocked(0, 0, off, count, buf)
}

// CopyFrom writes data over the whole base level of a.
func CopyFrom[T Scalar](a *Allocation, data []T) error {
	return Copy1DRangeFrom(a, 0, uint32(a.typ.typ.LODInstanceCount(0)), data)
}

// Copy2DRangeFrom writes a w x h rectangle at (xoff, yoff) from tightly
// packed rows in data.
func Copy2DRangeFrom[T Scalar](a *Allocation, xoff, yoff, w, h uint32, data []T) error {
	const op = "copy2DRangeFrom"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()

	if !a.writeAllowed {
		return a.reject(op, ErrWriteDisabled, "usage", a.usage)
	}
	if err := a.check2D(0, 0, xoff, yoff, w, h); err != nil {
		return a.reject(op, err, "xoff", xoff, "yoff", yoff, "w", w, "h", h)
	}
	n, err := a.scalars(dataTypeOf[T](), uint64(w)*uint64(h))
	if err != nil {
		return a.reject(op, err)
	}
	if len(data) < n {
		return a.reject(op, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(data), n), "w", w, "h", h)
	}
	buf, err := binary.Append(nil, binary.NativeEndian, data[:n])
	if err != nil {
		return a.reject(op, err)
	}
	return a.write2DLocked(0, 0, xoff, yoff, w, h, buf)
}

// Copy1DRangeTo reads count instances at off into dst.
func Copy1DRangeTo[T Scalar](a *Allocation, off, count uint32, dst []T) error {
	const op = "copy1DRangeTo"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()

	if err := a.check1D(0, 0, off, count); err != nil {
		return a.reject(op, err, "offset", off, "count", count)
	}
	n, err := a.scalars(dataTypeOf[T](), uint64(count))
	if err != nil {
		return a.reject(op, err)
	}
	if len(dst) < n {
		return a.reject(op, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(dst), n), "offset", off, "count", count)
	}
	buf, err := a.read1DLocked(0, 0, off, count)
	if err != nil {
		return a.reject(op, err, "offset", off, "count", count)
	}
	if _, err := binary.Decode(buf, binary.NativeEndian, dst[:n]); err != nil {
		return a.reject(op, err)
	}
	return nil
}

// Copy2DRangeTo reads a w x h rectangle at (xoff, yoff) into dst as
// tightly packed rows.
func Copy2DRangeTo[T Scalar](a *Allocation, xoff, yoff, w, h uint32, dst []T) error {
	const op = "copy2DRangeTo"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()

	if err := a.check2D(0, 0, xoff, yoff, w, h); err != nil {
		return a.reject(op, err, "xoff", xoff, "yoff", yoff, "w", w, "h", h)
	}
	n, err := a.scalars(dataTypeOf[T](), uint64(w)*uint64(h))
	if err != nil {
		return a.reject(op, err)
	}
	if len(dst) < n {
		return a.reject(op, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(dst), n), "w", w, "h", h)
	}
	buf, err := a.read2DLocked(0, 0, xoff, yoff, w, h)
	if err != nil {
		return a.reject(op, err)
	}
	if _, err := binary.Decode(buf, binary.NativeEndian, dst[:n]); err != nil {
		return a.reject(op, err)
	}
	return nil
}

// write1DLocked sends data in as many records as the command ring needs.
func (a *Allocation) write1DLocked(lod, face int, off, count uint32, data []byte) error {
	stride := a.stride()
	per := (a.rs.eng.Commands().MaxPayload() - data1DOverhead) / stride
	if per <= 0 {
		return a.reject("data1D", fmt.Errorf("%w: %d byte instances", ErrTooLarge, stride))
	}
	for count > 0 {
		n := min(count, uint32(per))
		chunk := data[:int(n)*stride]
		a.rs.enqueue(cmd.OpAllocationData1D, 0, func(e *cmd.Encoder) {
			e.U32(a.id).U32(uint32(lod)).U32(uint32(face)).U32(off).U32(n).Blob(chunk)
		})
		data = data[len(chunk):]
		off += n
		count -= n
	}
	return nil
}

// write2DLocked sends whole rows, as many per record as fit.
func (a *Allocation) write2DLocked(lod, face int, xoff, yoff, w, h uint32, data []byte) error {
	row := int(w) * a.stride()
	per := (a.rs.eng.Commands().MaxPayload() - data2DOverhead) / row
	if per <= 0 {
		return a.reject("data2D", fmt.Errorf("%w: %d byte rows", ErrTooLarge, row))
	}
	for h > 0 {
		n := min(h, uint32(per))
		chunk := data[:int(n)*row]
		a.rs.enqueue(cmd.OpAllocationData2D, 0, func(e *cmd.Encoder) {
			e.U32(a.id).U32(uint32(lod)).U32(uint32(face)).U32(xoff).U32(yoff).U32(w).U32(n).Blob(chunk)
		})
		data = data[len(chunk):]
		yoff += n
		h -= n
	}
	return nil
}

func (a *Allocation) readReply(op cmd.Op, body func(e *cmd.Encoder)) ([]byte, error) {
	var (
		ok   bool
		data []byte
	)
	a.rs.roundTrip(op, body, func(d *cmd.Decoder) {
		ok = d.Bool()
		data = append([]byte(nil), d.Blob()...)
	})
	if !ok {
		return nil, fmt.Errorf("%w: engine rejected %s", ErrOutOfRange, op)
	}
	return data, nil
}

func (a *Allocation) read1DLocked(lod, face int, off, count uint32) ([]byte, error) {
	stride := a.stride()
	per := (a.rs.eng.Returns().MaxPayload() - replyOverhead) / stride
	if per <= 0 {
		return nil, fmt.Errorf("%w: %d byte instances", ErrTooLarge, stride)
	}
	out := make([]byte, 0, int(count)*stride)
	for count > 0 {
		n := min(count, uint32(per))
		chunk, err := a.readReply(cmd.OpAllocationRead1D, func(e *cmd.Encoder) {
			e.U32(a.id).U32(uint32(lod)).U32(uint32(face)).U32(off).U32(n)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		off += n
		count -= n
	}
	return out, nil
}

func (a *Allocation) read2DLocked(lod, face int, xoff, yoff, w, h uint32) ([]byte, error) {
	row := int(w) * a.stride()
	per := (a.rs.eng.Returns().MaxPayload() - replyOverhead) / row
	if per <= 0 {
		return nil, fmt.Errorf("%w: %d byte rows", ErrTooLarge, row)
	}
	out := make([]byte, 0, int(h)*row)
	for h > 0 {
		n := min(h, uint32(per))
		chunk, err := a.readReply(cmd.OpAllocationRead2D, func(e *cmd.Encoder) {
			e.U32(a.id).U32(uint32(lod)).U32(uint32(face)).U32(xoff).U32(yoff).U32(w).U32(n)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		yoff += n
		h -= n
	}
	return out, nil
}

// Region selects a mip level and cube face on one end of an
// allocation-to-allocation copy.
type Region struct {
	Alloc     *Allocation
	LOD, Face int
}

// At returns the region of a at lod and face.
func (a *Allocation) At(lod, face int) Region {
	return Region{Alloc: a, LOD: lod, Face: face}
}

func checkPair(op string, dst, src Region) error {
	if dst.Alloc == nil || src.Alloc == nil || dst.Alloc.rs != src.Alloc.rs {
		return fmt.Errorf("gfxrt: %s: allocations missing or from different contexts", op)
	}
	if !dst.Alloc.writeAllowed {
		return dst.Alloc.reject(op, ErrWriteDisabled, "usage", dst.Alloc.usage)
	}
	de, se := dst.Alloc.typ.typ.Element(), src.Alloc.typ.typ.Element()
	if !de.Equal(se) {
		return dst.Alloc.reject(op, fmt.Errorf("%w: %s from %s", ErrTypeMismatch, de, se), "src", src.Alloc.id)
	}
	return nil
}

// Copy1D copies count instances from src at srcOff to dst at dstOff. The
// ranges may overlap.
func Copy1D(dst Region, dstOff uint32, src Region, srcOff, count uint32) error {
	const op = "copy1D"
	if err := checkPair(op, dst, src); err != nil {
		return err
	}
	rs := dst.Alloc.rs
	if err := rs.lock(); err != nil {
		return err
	}
	defer rs.mu.Unlock()
	if err := dst.Alloc.check1D(dst.LOD, dst.Face, dstOff, count); err != nil {
		return dst.Alloc.reject(op, err, "offset", dstOff, "count", count)
	}
	if err := src.Alloc.check1D(src.LOD, src.Face, srcOff, count); err != nil {
		return src.Alloc.reject(op, err, "offset", srcOff, "count", count)
	}
	rs.enqueue(cmd.OpAllocationCopy1D, 0, func(e *cmd.Encoder) {
		e.U32(dst.Alloc.id).U32(uint32(dst.LOD)).U32(uint32(dst.Face)).U32(dstOff).U32(count)
		e.U32(src.Alloc.id).U32(uint32(src.LOD)).U32(uint32(src.Face)).U32(srcOff)
	})
	return nil
}

// Copy2D copies a w x h rectangle from src at (sx, sy) to dst at (dx, dy).
func Copy2D(dst Region, dx, dy uint32, src Region, sx, sy, w, h uint32) error {
	const op = "copy2D"
	if err := checkPair(op, dst, src); err != nil {
		return err
	}
	rs := dst.Alloc.rs
	if err := rs.lock(); err != nil {
		return err
	}
	defer rs.mu.Unlock()
	if err := dst.Alloc.check2D(dst.LOD, dst.Face, dx, dy, w, h); err != nil {
		return dst.Alloc.reject(op, err, "xoff", dx, "yoff", dy, "w", w, "h", h)
	}
	if err := src.Alloc.check2D(src.LOD, src.Face, sx, sy, w, h); err != nil {
		return src.Alloc.reject(op, err, "xoff", sx, "yoff", sy, "w", w, "h", h)
	}
	rs.enqueue(cmd.OpAllocationCopy2D, 0, func(e *cmd.Encoder) {
		e.U32(dst.Alloc.id).U32(uint32(dst.LOD)).U32(uint32(dst.Face)).U32(dx).U32(dy).U32(w).U32(h)
		e.U32(src.Alloc.id).U32(uint32(src.LOD)).U32(uint32(src.Face)).U32(sx).U32(sy)
	})
	return nil
}

// Copy1DRangeFromAllocation copies count instances of the base level of src
// at srcOff into a at off.
func (a *Allocation) Copy1DRangeFromAllocation(off, count uint32, src *Allocation, srcOff uint32) error {
	return Copy1D(a.At(0, 0), off, src.At(0, 0), srcOff, count)
}

// Copy2DRangeFromAllocation copies a w x h rectangle of the base level of
// src at (sx, sy) into a at (xoff, yoff).
func (a *Allocation) Copy2DRangeFromAllocation(xoff, yoff, w, h uint32, src *Allocation, sx, sy uint32) error {
	return Copy2D(a.At(0, 0), xoff, yoff, src.At(0, 0), sx, sy, w, h)
}

// Resize1D changes the instance count of a one dimensional allocation. The
// common prefix is kept and the new type is fetched from the engine.
func (a *Allocation) Resize1D(x uint32) error {
	const op = "resize1D"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()
	st := a.typ.typ
	switch {
	case a.adapted:
		return a.reject(op, ErrNotAdapted)
	case st.Is2D() || st.HasFaces() || st.HasMips():
		return a.reject(op, fmt.Errorf("%w: %s is not one dimensional", ErrInvalidUsage, st))
	case x == 0:
		return a.reject(op, ErrZeroCount)
	}
	a.rs.enqueue(cmd.OpAllocationResize1D, 0, func(e *cmd.Encoder) { e.U32(a.id).U32(x) })
	return a.updateFromNative(x, 0)
}

// Resize2D changes the X and Y extents of a two dimensional allocation,
// keeping the overlapping rectangle.
func (a *Allocation) Resize2D(x, y uint32) error {
	const op = "resize2D"
	if err := a.rs.lock(); err != nil {
		return err
	}
	defer a.rs.mu.Unlock()
	st := a.typ.typ
	switch {
	case a.adapted:
		return a.reject(op, ErrNotAdapted)
	case st.Z() > 1 || st.HasFaces() || st.HasMips():
		return a.reject(op, fmt.Errorf("%w: %s has faces, mips or depth", ErrInvalidUsage, st))
	case x == 0 || y == 0:
		return a.reject(op, ErrZeroCount)
	}
	a.rs.enqueue(cmd.OpAllocationResize2D, 0, func(e *cmd.Encoder) { e.U32(a.id).U32(x).U32(y) })
	return a.updateFromNative(x, y)
}

// updateFromNative replaces the client type with the one the engine holds
// after a resize.
func (a *Allocation) updateFromNative(x, y uint32) error {
	id, err := a.rs.handleLocked(cmd.OpAllocationGetType, func(e *cmd.Encoder) { e.U32(a.id) })
	if err != nil {
		return err
	}
	st, err := schema.NewType(a.typ.typ.Element(), x, y, 0, false, false)
	if err != nil {
		return err
	}
	a.typ = &Type{object: object{rs: a.rs, id: id}, elem: a.typ.elem, typ: st}
	return nil
}

// UploadToTexture creates or refreshes the texture mirror of a, starting at
// mip level baseMip.
func (a *Allocation) UploadToTexture(baseMip int) error {
	const op = "uploadToTexture"
	switch {
	case a.adapted:
		return a.reject(op, ErrNotAdapted)
	case a.usage&UsageGraphicsTexture == 0:
		return a.reject(op, fmt.Errorf("%w: %s", ErrInvalidUsage, a.usage))
	case baseMip < 0 || baseMip >= a.typ.typ.LODCount():
		return a.reject(op, fmt.Errorf("%w: base mip %d of %d", ErrOutOfRange, baseMip, a.typ.typ.LODCount()))
	}
	return a.rs.send(cmd.OpAllocationUploadToTexture, func(e *cmd.Encoder) { e.U32(a.id).U32(uint32(baseMip)) })
}

// UploadToBufferObject creates or refreshes the buffer mirror of a.
func (a *Allocation) UploadToBufferObject() error {
	const op = "uploadToBufferObject"
	switch {
	case a.adapted:
		return a.reject(op, ErrNotAdapted)
	case a.usage&(UsageGraphicsVertex|UsageGraphicsConstants) == 0:
		return a.reject(op, fmt.Errorf("%w: %s", ErrInvalidUsage, a.usage))
	}
	return a.rs.send(cmd.OpAllocationUploadToBufferObject, func(e *cmd.Encoder) { e.U32(a.id) })
}

// GenerateMipmaps box filters every mip level from the base level.
func (a *Allocation) GenerateMipmaps() error {
	const op = "generateMipmaps"
	switch {
	case a.adapted:
		return a.reject(op, ErrNotAdapted)
	case !a.writeAllowed:
		return a.reject(op, ErrWriteDisabled)
	case !a.typ.typ.HasMips():
		return a.reject(op, fmt.Errorf("%w: %s has no mip levels", ErrInvalidUsage, a.typ.typ))
	}
	return a.rs.send(cmd.OpAllocationGenerateMipmaps, func(e *cmd.Encoder) { e.U32(a.id) })
}

// SyncAll propagates the copy of the data held for src to the other mirrors
// of a. src must be exactly one of script, constants, texture or vertex.
func (a *Allocation) SyncAll(src Usage) error {
	const op = "syncAll"
	switch src {
	case UsageScript, UsageGraphicsConstants, UsageGraphicsTexture, UsageGraphicsVertex:
	default:
		return a.reject(op, fmt.Errorf("%w: source %s", ErrInvalidUsage, src))
	}
	if a.usage&src == 0 {
		return a.reject(op, fmt.Errorf("%w: %s lacks %s", ErrInvalidUsage, a.usage, src))
	}
	return a.rs.send(cmd.OpAllocationSyncAll, func(e *cmd.Encoder) { e.U32(a.id).U32(uint32(src)) })
}

// IOSendOutput hands the contents of an IO output allocation to the IO
// endpoint.
func (a *Allocation) IOSendOutput() error {
	if a.usage&UsageIOOutput == 0 {
		return a.reject("ioSendOutput", fmt.Errorf("%w: %s", ErrInvalidUsage, a.usage))
	}
	return a.rs.send(cmd.OpAllocationIOSend, func(e *cmd.Encoder) { e.U32(a.id) })
}

// IOReceive refreshes an IO input allocation from the IO endpoint.
func (a *Allocation) IOReceive() error {
	if a.usage&UsageIOInput == 0 {
		return a.reject("ioReceive", fmt.Errorf("%w: %s", ErrInvalidUsage, a.usage))
	}
	return a.rs.send(cmd.OpAllocationIOReceive, func(e *cmd.Encoder) { e.U32(a.id) })
}

// Adapter1D returns a view of row y of mip level lod and face. The view
// shares the storage of a and skips client-side bounds checks.
func (a *Allocation) Adapter1D(lod, face int, y uint32) (*Allocation, error) {
	return a.adapter(cmd.OpAdapter1DCreate, lod, face, y)
}

// Adapter2D returns a view of slice z of mip level lod and face.
func (a *Allocation) Adapter2D(lod, face int, z uint32) (*Allocation, error) {
	return a.adapter(cmd.OpAdapter2DCreate, lod, face, z)
}

func (a *Allocation) adapter(op cmd.Op, lod, face int, yz uint32) (*Allocation, error) {
	if a.adapted {
		return nil, a.reject(op.String(), ErrNotAdapted)
	}
	if err := a.checkLOD(lod, face); err != nil {
		return nil, a.reject(op.String(), err)
	}
	l := a.typ.typ.LOD(lod)
	var y uint32
	if op == cmd.OpAdapter2DCreate {
		if yz >= max(l.Z, 1) {
			return nil, a.reject(op.String(), fmt.Errorf("%w: slice %d of %d", ErrOutOfRange, yz, max(l.Z, 1)))
		}
		y = l.Y
	} else if yz >= max(l.Y, 1) {
		return nil, a.reject(op.String(), fmt.Errorf("%w: row %d of %d", ErrOutOfRange, yz, max(l.Y, 1)))
	}
	st, err := schema.NewType(a.typ.typ.Element(), l.X, y, 0, false, false)
	if err != nil {
		return nil, err
	}
	id, err := a.rs.handle(op, func(e *cmd.Encoder) { e.U32(a.id).U32(uint32(lod)).U32(uint32(face)).U32(yz) })
	if err != nil {
		return nil, err
	}
	return &Allocation{
		object:       object{rs: a.rs, id: id},
		typ:          &Type{object: object{rs: a.rs}, elem: a.typ.elem, typ: st},
		usage:        a.usage,
		writeAllowed: a.writeAllowed,
		adapted:      true,
	}, nil
}
