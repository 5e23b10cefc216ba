package gpu

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoFrame is returned by EndFrame when BeginFrame was not called.
var ErrNoFrame = errors.New("gpu: no frame in progress")

const submitTimeout = 5 * time.Second

// ClearValues are applied when a frame begins.
type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

type frameState struct {
	active   bool
	clear    ClearValues
	vertices []float32
	draws    int
}

func (f *frameState) discard(*Device) {
	f.active = false
	f.vertices = f.vertices[:0]
	f.draws = 0
}

// BeginFrame starts recording a frame of size w x h that clears to clear.
func (d *Device) BeginFrame(w, h uint32, clear ClearValues) error {
	if d.device == nil {
		return ErrClosed
	}
	if err := d.targets.ensure(d.device, max(w, 1), max(h, 1)); err != nil {
		return err
	}
	d.frame.discard(d)
	d.frame.active = true
	d.frame.clear = clear
	return nil
}

// Draw appends vertices to the frame batch. Vertices are interleaved
// float32 attributes as laid out by the calling program.
func (d *Device) Draw(vertices []float32) {
	if !d.frame.active {
		slogger().Warn("draw outside of a frame", "vertices", len(vertices))
		return
	}
	d.frame.vertices = append(d.frame.vertices, vertices...)
	d.frame.draws++
}

// EndFrame encodes the clear pass, uploads the batched vertices, submits
// and waits for the GPU.
func (d *Device) EndFrame() error {
	if !d.frame.active {
		return ErrNoFrame
	}
	defer d.frame.discard(d)

	var vbuf *Buffer
	if n := len(d.frame.vertices); n > 0 {
		var err error
		vbuf, err = d.CreateBuffer("frame_vertices", n*4,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("gpu: frame vertices: %w", err)
		}
		defer d.DestroyBuffer(vbuf)
		d.WriteBuffer(vbuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&d.frame.vertices[0])), n*4))
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	c := d.frame.clear
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    d.targets.colorView,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(c.Color[0]),
				G: float64(c.Color[1]),
				B: float64(c.Color[2]),
				A: float64(c.Color[3]),
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              d.targets.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   c.Depth,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: c.Stencil,
		},
	})
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return err
	}

	d.stats.Frames++
	d.stats.Draws += uint64(d.frame.draws)
	d.stats.VertexFloats += uint64(len(d.frame.vertices))
	return nil
}

// FrameSize returns the size of the current frame targets.
func (d *Device) FrameSize() (uint32, uint32) { return d.targets.width, d.targets.height }
