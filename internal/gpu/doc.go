// Package gpu wraps a wgpu hal device for the render goroutine.
//
// It mirrors allocations into GPU buffers and textures, owns the frame
// color and depth/stencil targets, encodes the per-frame clear pass and
// creates shader modules for compiled scripts. A Device is used from a
// single goroutine and performs no locking.
//
// Devices come from three places:
//
//   - OpenNoop opens the hal noop backend, used headless and in tests
//   - FromProvider adopts a host device exposing HalDevice/HalQueue
//   - New wraps an already opened hal.Device and hal.Queue
package gpu
