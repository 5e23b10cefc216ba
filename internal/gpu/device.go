package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

var (
	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no adapters found")

	// ErrNotHalProvider is returned by FromProvider for values that do not
	// expose hal types.
	ErrNotHalProvider = errors.New("gpu: provider does not expose HAL types")

	// ErrClosed is returned when using a closed device.
	ErrClosed = errors.New("gpu: device closed")
)

// Stage identifies a pipeline stage whose program is tracked by the device.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageFragmentStore
	stageCount
)

// Stats counts work submitted through a Device.
type Stats struct {
	Frames        uint64
	Draws         uint64
	VertexFloats  uint64
	BufferWrites  uint64
	TextureWrites uint64
	StateChanges  uint64
}

// Device is a hal device plus the state the render goroutine keeps on it.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
	name     string

	budget  *MemoryBudget
	targets targetSet
	frame   frameState
	bound   [stageCount]uint32
	stats   Stats
}

// New wraps an opened device. The caller keeps ownership of device and queue.
func New(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:   device,
		queue:    queue,
		external: true,
		name:     "external",
		budget:   NewMemoryBudget(0),
	}
}

// FromProvider adopts the device of a host that exposes HalDevice() and
// HalQueue() returning hal types.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHalProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHalProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHalProvider)
	}
	d := New(device, queue)
	d.name = "provider"
	slogger().Info("using provided GPU device")
	return d, nil
}

// OpenNoop opens the hal noop backend. Every operation succeeds without
// touching real hardware.
func OpenNoop() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	openDev, err := adapters[0].Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open noop device: %w", err)
	}
	slogger().Debug("opened noop device", "adapter", adapters[0].Info.Name)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     adapters[0].Info.Name,
		budget:   NewMemoryBudget(0),
	}, nil
}

// Name returns a label for the underlying adapter.
func (d *Device) Name() string { return d.name }

// Hal returns the underlying device and queue.
func (d *Device) Hal() (hal.Device, hal.Queue) { return d.device, d.queue }

// Budget returns the memory accounting for resources created on d.
func (d *Device) Budget() *MemoryBudget { return d.budget }

// Stats returns counters accumulated since the device was opened.
func (d *Device) Stats() Stats { return d.stats }

// BindProgram records id as the active program of stage.
func (d *Device) BindProgram(stage Stage, id uint32) {
	if d.bound[stage] != id {
		d.bound[stage] = id
		d.stats.StateChanges++
	}
}

// Active returns the program last bound to stage.
func (d *Device) Active(stage Stage) uint32 { return d.bound[stage] }

// Close releases frame targets and, for devices opened by this package,
// the device and instance.
func (d *Device) Close() {
	if d.device == nil {
		return
	}
	d.frame.discard(d)
	d.targets.destroy(d.device)
	if !d.external {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
