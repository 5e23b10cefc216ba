package gpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer is a GPU buffer created on a Device.
type Buffer struct {
	buf   hal.Buffer
	size  uint64
	usage gputypes.BufferUsage
	label string
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// CreateBuffer allocates a buffer of size bytes. Sizes are rounded up to 4.
func (d *Device) CreateBuffer(label string, size int, usage gputypes.BufferUsage) (*Buffer, error) {
	if d.device == nil {
		return nil, ErrClosed
	}
	n := uint64((size + 3) &^ 3)
	if n == 0 {
		n = 4
	}
	if err := d.budget.reserve(n, false); err != nil {
		return nil, err
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  n,
		Usage: usage,
	})
	if err != nil {
		d.budget.release(n, false)
		return nil, fmt.Errorf("gpu: create buffer %s: %w", label, err)
	}
	return &Buffer{buf: buf, size: n, usage: usage, label: label}, nil
}

// WriteBuffer uploads data at offset through the queue.
func (d *Device) WriteBuffer(b *Buffer, offset uint64, data []byte) {
	if d.queue == nil || len(data) == 0 {
		return
	}
	if err := d.queue.WriteBuffer(b.buf, offset, data); err != nil {
		slogger().Error("write buffer", "label", b.label, "err", err)
		return
	}
	d.stats.BufferWrites++
}

// ReadBuffer copies buffer contents at offset into out through a mappable
// staging buffer.
func (d *Device) ReadBuffer(b *Buffer, offset uint64, out []byte) error {
	if d.queue == nil {
		return ErrClosed
	}
	n := uint64((len(out) + 3) &^ 3)
	if n == 0 {
		return nil
	}
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label + "_readback",
		Size:  n,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: read buffer %s: %w", b.label, err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback"})
	if err != nil {
		return fmt.Errorf("gpu: read buffer %s: %w", b.label, err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return fmt.Errorf("gpu: read buffer %s: %w", b.label, err)
	}
	encoder.CopyBufferToBuffer(b.buf, staging, []hal.BufferCopy{{SrcOffset: offset, Size: n}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gpu: read buffer %s: %w", b.label, err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submitAndWait(cmdBuf); err != nil {
		return err
	}

	m, err := d.device.MapBuffer(staging, 0, n)
	if err != nil {
		return fmt.Errorf("gpu: map %s: %w", b.label, err)
	}
	copy(out, unsafe.Slice((*byte)(m.Ptr), len(out)))
	return d.device.UnmapBuffer(staging)
}

// submitAndWait submits cmdBuf and polls until the queue reports it done.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	deadline := time.Now().Add(submitTimeout)
	for d.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("gpu: submission %d not complete after %v", idx, submitTimeout)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// DestroyBuffer releases b. Destroying nil is a no-op.
func (d *Device) DestroyBuffer(b *Buffer) {
	if b == nil || b.buf == nil {
		return
	}
	if d.device != nil {
		d.device.DestroyBuffer(b.buf)
	}
	d.budget.release(b.size, false)
	b.buf = nil
}
