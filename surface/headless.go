package surface

import (
	"sync"
	"sync/atomic"
)

// Headless is a Surface without a display. It counts presents and keeps
// the clear color of the last frame. It is safe to inspect from any
// goroutine while the render goroutine presents.
type Headless struct {
	width, height int

	presents atomic.Int64
	released atomic.Bool

	mu        sync.Mutex
	lastClear [4]float32
	presented chan struct{}
}

// NewHeadless returns a headless surface of the given size.
func NewHeadless(width, height int) *Headless {
	return &Headless{
		width:     max(width, 1),
		height:    max(height, 1),
		presented: make(chan struct{}, 1),
	}
}

// Size implements Surface.
func (h *Headless) Size() (int, int) { return h.width, h.height }

// Present implements Surface.
func (h *Headless) Present() error {
	if h.released.Load() {
		return ErrReleased
	}
	h.presents.Add(1)
	select {
	case h.presented <- struct{}{}:
	default:
	}
	return nil
}

// Release implements Surface.
func (h *Headless) Release() error {
	h.released.Store(true)
	return nil
}

// SetClear implements ClearSink.
func (h *Headless) SetClear(color [4]float32, _ float32, _ uint32) {
	h.mu.Lock()
	h.lastClear = color
	h.mu.Unlock()
}

// Presents returns the number of frames presented so far.
func (h *Headless) Presents() int { return int(h.presents.Load()) }

// Released reports whether Release was called.
func (h *Headless) Released() bool { return h.released.Load() }

// LastClear returns the clear color of the most recent frame.
func (h *Headless) LastClear() [4]float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastClear
}

// Presented returns a channel that receives after a Present. Presents that
// happen while a value is pending are coalesced.
func (h *Headless) Presented() <-chan struct{} { return h.presented }
