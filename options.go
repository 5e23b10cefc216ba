package gfxrt

import (
	"log/slog"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/render"
	"github.com/gogpu/gfxrt/surface"
)

// Option configures a Context during creation.
//
// Example:
//
//	// Headless context with the default configuration
//	rs, err := gfxrt.New()
//
//	// Share the host application's GPU device
//	rs, err := gfxrt.New(gfxrt.WithDevice(app), gfxrt.WithSurface(surf))
type Option func(*options)

type options struct {
	cfg      engine.Config
	surface  surface.Surface
	device   render.DeviceHandle
	compiler engine.Compiler
	io       engine.IO
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{cfg: engine.DefaultConfig()}
}

// WithConfig replaces the engine configuration. See engine.LoadConfig for
// reading one from a TOML file.
func WithConfig(cfg engine.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithSurface sets the surface frames are presented to.
func WithSurface(s surface.Surface) Option {
	return func(o *options) {
		o.surface = s
	}
}

// WithDevice draws with a GPU device owned by the host application. A nil
// or null handle keeps the default noop device.
func WithDevice(h render.DeviceHandle) Option {
	return func(o *options) {
		o.device = h
	}
}

// WithCompiler sets the script compiler, usually a *compiler.Compiler.
// Without one, scripts are created but never runnable.
func WithCompiler(c engine.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithIO sets the endpoint of IO usage allocations.
func WithIO(io engine.IO) Option {
	return func(o *options) {
		o.io = io
	}
}

// WithLogger calls SetLogger before the context starts.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
